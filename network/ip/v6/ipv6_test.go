package ipv6

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testpairs hold addresses with their canonical text form.
var testpairs = []struct {
	desc string
	repr string
	addr Addr
}{
	{
		desc: "example",
		repr: "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff",
		addr: Addr{
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		},
	},
	{
		desc: "leading zeros are omitted",
		repr: "ffff:fff:ff:f:0:f0:ff0:fff0",
		addr: Addr{
			0xFF, 0xFF, 0x0F, 0xFF, 0x00, 0xFF, 0x00, 0x0F,
			0x00, 0x00, 0x00, 0xF0, 0x0F, 0xF0, 0xFF, 0xF0,
		},
	},
	{
		desc: "sequence of 0s are omittable with ::",
		repr: "::",
		addr: Addr{},
	},
	{
		desc: "sequence of 0s are omittable with :: (last exists)",
		repr: "::1",
		addr: Addr{15: 0x01},
	},
	{
		desc: "sequence of 0s are omittable with :: (first exists)",
		repr: "1::",
		addr: Addr{1: 0x01},
	},
	{
		desc: "sequence of 0s are omittable with :: (on the middle)",
		repr: "1:12::ffff:0:13",
		addr: Addr{
			0x00, 0x01, 0x00, 0x12, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x13,
		},
	},
	{
		desc: "longest run of 0s is compressed",
		repr: "1:0:0:2::3",
		addr: Addr{
			0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03,
		},
	},
	{
		desc: "first run of 0s wins on ties",
		repr: "1::2:0:0:3:4",
		addr: Addr{1: 0x01, 7: 0x02, 13: 0x03, 15: 0x04},
	},
	{
		desc: "ipv4 mapped",
		repr: "::ffff:192.0.2.1",
		addr: Addr{10: 0xFF, 11: 0xFF, 12: 192, 13: 0, 14: 2, 15: 1},
	},
	{
		desc: "omitted single group",
		repr: "1:2:3:4:5:6:7:0",
		addr: Addr{1: 1, 3: 2, 5: 3, 7: 4, 9: 5, 11: 6, 13: 7},
	},
}

func TestParseAddr(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Addr
		wantErr  bool
	}{
		{
			desc:  "case insensitive",
			input: "ffff:FFFF:ffff:FFFF:ffff:FFFF:ffff:FFFF",
			expected: Addr{
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			},
		},
		{
			desc:  "last element can be an ipv4 address",
			input: "FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:255.255.255.255",
			expected: Addr{
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			},
		},
		{
			desc:     ":: may stand for a single group",
			input:    "1:2:3:4:5:6:7::",
			expected: Addr{1: 1, 3: 2, 5: 3, 7: 4, 9: 5, 11: 6, 13: 7},
		},
		{
			desc:    "using non-hex value",
			input:   "ZZZZ:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "more than 4 hex digits",
			input:   "0FFFF::1",
			wantErr: true,
		},
		{
			desc:    "length too long (2 bytes more)",
			input:   "FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "length too long on omitted",
			input:   "FFFF:FFFF:FFFF:FFFF::FFFF:FFFF:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "bad use of two colons (used more than once)",
			input:   "FFFF::FFFF:FFFF::FFFF:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "bad use of two colons (three colons)",
			input:   "FFFF::FFFF:::FFFF:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "ipv4 address on last, but invalid",
			input:   "FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:255.255.foo.255",
			wantErr: true,
		},
		{
			desc:    "ipv4 address on middle",
			input:   "FFFF:FFFF:FFFF:FFFF:FFFF:255.255.255.255:FFFF:FFFF",
			wantErr: true,
		},
		{
			desc:    "ipv4 address on middle (seperated by two colons)",
			input:   "FFFF:FFFF:FFFF:FFFF:FFFF:255.255.255.255::",
			wantErr: true,
		},
		{
			desc:    "zone identifier",
			input:   "fe80::1%eth0",
			wantErr: true,
		},
		{
			desc:    "bare ipv4",
			input:   "127.0.0.1",
			wantErr: true,
		},
	}

	for _, pair := range testpairs {
		testcases = append(testcases,
			struct {
				desc     string
				input    string
				expected Addr
				wantErr  bool
			}{
				desc:     pair.desc,
				input:    pair.repr,
				expected: pair.addr,
			})
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			parsed, err := ParseAddr(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Zero(t, parsed)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, parsed)
		})
	}
}

func TestAddrToString(t *testing.T) {
	for _, pair := range testpairs {
		t.Run(pair.desc, func(t *testing.T) {
			assert.Equal(t, pair.repr, pair.addr.String())
		})
	}
}

func TestIs4Mapped(t *testing.T) {
	assert.True(t, Addr{10: 0xFF, 11: 0xFF, 15: 1}.Is4Mapped())
	assert.False(t, Addr{15: 1}.Is4Mapped())
}

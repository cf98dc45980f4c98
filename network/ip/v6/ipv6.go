package ipv6

import (
	"encoding/binary"
	"strconv"
	"strings"

	ipv4 "network-stream/network/ip/v4"

	"github.com/pkg/errors"
)

type Addr [16]byte

// Prefix of IPv4-mapped addresses (::ffff:0:0/96).
var v4MappedPrefix = [12]byte{10: 0xFF, 11: 0xFF}

func ParseAddr(s string) (Addr, error) {
	if strings.ContainsRune(s, '%') {
		return Addr{}, errors.New("zone identifier is not supported")
	}

	before, after, found := strings.Cut(s, "::")
	var addr Addr

	if !found {
		// Two colons not found. parse the whole string.
		addrBytes, err := parseAddrFrag(before, true)
		if err != nil {
			return Addr{}, err
		}
		if len(addrBytes) != 16 {
			return Addr{}, errors.New("length of address is not 128bit")
		}

		copy(addr[:], addrBytes)

		return addr, nil
	}

	// Two colons found. parse each of them and combine them.
	frag1, err1 := parseAddrFrag(before, false)
	frag2, err2 := parseAddrFrag(after, true)
	if err1 != nil {
		return Addr{}, errors.Wrap(err1, "parsing fragment before ::")
	}
	if err2 != nil {
		return Addr{}, errors.Wrap(err2, "parsing fragment after ::")
	}

	if len(frag1)+len(frag2) > 14 {
		// :: stands for at least one group.
		return Addr{}, errors.New("ipv6 address too long")
	}

	// copy first len(frag1) bytes.
	copy(addr[:len(frag1)], frag1)
	// copy last len(frag2) bytes.
	copy(addr[len(addr)-len(frag2):], frag2)

	return addr, nil
}

func parseAddrFrag(s string, isLast bool) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	h16s := strings.Split(s, ":")

	addr := make([]byte, 0, len(h16s)*2)
	for idx, h16 := range h16s {
		if h16 == "" {
			// 0:::, 0::0::
			return nil, errors.New("invalid use of colon seperator")
		}

		if isLast && idx == len(h16s)-1 && strings.ContainsRune(h16, '.') {
			// Trailing dotted quad takes the last 32 bits.
			addrV4, err := ipv4.ParseAddr(h16)
			if err != nil {
				return nil, errors.Wrap(err,
					"non-hex item found on the last index, but wasn't ipv4 address",
				)
			}
			addr = append(addr, addrV4[:]...)
			continue
		}

		if len(h16) > 4 {
			return nil, errors.Errorf("group %q has more than 4 hex digits", h16)
		}

		n, err := strconv.ParseUint(h16, 16, 16)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse hex")
		}

		addr = binary.BigEndian.AppendUint16(addr, uint16(n))
	}

	return addr, nil
}

func (a Addr) Version() uint { return 6 }
func (a Addr) Raw() []byte   { return a[:] }

// Is4Mapped reports whether a is in ::ffff:0:0/96.
func (a Addr) Is4Mapped() bool {
	return [12]byte(a[:12]) == v4MappedPrefix
}

// String returns the canonical text form described in RFC 5952:
// lower-case hex, leading zeros dropped, and the longest run (first on ties)
// of two or more zero groups replaced with "::".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc5952#section-4
func (a Addr) String() string {
	if a.Is4Mapped() {
		return "::ffff:" + ipv4.Addr([4]byte(a[12:])).String()
	}

	var groups [8]uint16
	for idx := range groups {
		groups[idx] = binary.BigEndian.Uint16(a[idx*2:])
	}

	zeroStart, zeroLen := -1, 0
	for idx := 0; idx < len(groups); {
		if groups[idx] != 0 {
			idx++
			continue
		}

		end := idx
		for end < len(groups) && groups[end] == 0 {
			end++
		}
		if run := end - idx; run > zeroLen && run >= 2 {
			zeroStart, zeroLen = idx, run
		}
		idx = end
	}

	b := make([]byte, 0, len("ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"))
	for idx := 0; idx < len(groups); idx++ {
		if idx == zeroStart {
			b = append(b, ':', ':')
			idx += zeroLen - 1
			continue
		}

		if idx > 0 && b[len(b)-1] != ':' {
			b = append(b, ':')
		}
		b = strconv.AppendUint(b, uint64(groups[idx]), 16)
	}

	return string(b)
}

package ipv4

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Addr [4]byte

// ParseAddr parses dotted-decimal notation. Each part must be a decimal
// number in [0, 255] without leading zeros.
func ParseAddr(s string) (Addr, error) {
	digits := strings.Split(s, ".")
	if len(digits) != 4 {
		return Addr{}, errors.New("digits are not properly seperated")
	}

	var addr Addr
	for idx, digit := range digits {
		n, err := strconv.ParseUint(digit, 10, 8)
		if err != nil {
			return Addr{}, errors.Wrap(err, "failed to parse a part into digit")
		}

		if digit[0] == '0' && !(n == 0 && len(digit) == 1) {
			// '00', '01'
			return Addr{}, errors.New("leading zero is not allowed in digit")
		}
		addr[idx] = byte(n)
	}

	return addr, nil
}

func (a Addr) Version() uint    { return 4 }
func (a Addr) Raw() []byte      { return a[:] }
func (a Addr) ToUint32() uint32 { return binary.BigEndian.Uint32(a[:]) }

func (a Addr) String() string {
	b := make([]byte, 0, len("255.255.255.255"))
	for idx, octet := range a {
		if idx > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendUint(b, uint64(octet), 10)
	}
	return string(b)
}

package ip

import (
	"strings"

	"network-stream/network"
	ipv4 "network-stream/network/ip/v4"
	ipv6 "network-stream/network/ip/v6"

	"github.com/pkg/errors"
)

type Addr interface {
	network.Addr

	Version() uint
}

var (
	_ Addr = ipv4.Addr{}
	_ Addr = ipv6.Addr{}
)

// Family tags which version of IP an address belongs to.
type Family uint8

const (
	FamilyUnspec Family = 0
	FamilyIPv4   Family = 4
	FamilyIPv6   Family = 6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	default:
		return "unspec"
	}
}

// FamilyOf returns the family of addr, or FamilyUnspec for nil or
// unknown implementations.
func FamilyOf(addr Addr) Family {
	switch addr.(type) {
	case ipv4.Addr:
		return FamilyIPv4
	case ipv6.Addr:
		return FamilyIPv6
	default:
		return FamilyUnspec
	}
}

var ErrNotNumeric = errors.New("not a numeric ip address")

// ParseAddr parses a numeric IPv4 or IPv6 literal.
// Host names are never looked up.
func ParseAddr(s string) (Addr, error) {
	if s == "" {
		return nil, errors.Wrap(ErrNotNumeric, "empty address")
	}

	if strings.ContainsRune(s, ':') {
		addr, err := ipv6.ParseAddr(s)
		if err != nil {
			return nil, errors.Wrapf(ErrNotNumeric, "%q: %s", s, err)
		}
		return addr, nil
	}

	addr, err := ipv4.ParseAddr(s)
	if err != nil {
		return nil, errors.Wrapf(ErrNotNumeric, "%q: %s", s, err)
	}
	return addr, nil
}

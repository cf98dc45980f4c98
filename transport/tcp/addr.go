package tcp

import (
	"strconv"

	"network-stream/network"
	"network-stream/network/ip"
	ipv4 "network-stream/network/ip/v4"
	ipv6 "network-stream/network/ip/v6"
	"network-stream/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Addr is an IP address of either family paired with a port.
// The zero value is not a valid address.
type Addr struct {
	ipAddr ip.Addr
	port   uint16
}

var _ transport.Addr = Addr{}

func NewAddr(ipAddr ip.Addr, port uint16) Addr {
	return Addr{ipAddr, port}
}

// Resolve parses a numeric IPv4 or IPv6 literal into an Addr with port 0.
// Host names are rejected rather than looked up.
func Resolve(address string) (Addr, error) {
	ipAddr, err := ip.ParseAddr(address)
	if err != nil {
		return Addr{}, errors.Wrapf(transport.ErrInvalidArgument,
			"could not parse the provided address: %s", err)
	}

	if ip.FamilyOf(ipAddr) == ip.FamilyUnspec {
		return Addr{}, errors.Wrapf(transport.ErrInvalidArgument,
			"address %q has an unexpected address family", address)
	}

	return Addr{ipAddr: ipAddr}, nil
}

// ValidatePort checks that port lies in [MinPort, MaxPort].
func ValidatePort(port int) (uint16, error) {
	if port < MinPort || port > MaxPort {
		return 0, errors.Wrapf(transport.ErrInvalidArgument,
			"the provided port number %d is out of range", port)
	}
	return uint16(port), nil
}

func (a Addr) IP() ip.Addr               { return a.ipAddr }
func (a Addr) Port() uint16              { return a.port }
func (a Addr) Family() ip.Family         { return ip.FamilyOf(a.ipAddr) }
func (a Addr) NetworkAddr() network.Addr { return a.ipAddr }
func (a Addr) Identifier() any           { return a.port }

// WithPort returns a copy of a carrying port.
func (a Addr) WithPort(port uint16) Addr {
	a.port = port
	return a
}

// Host returns the canonical text of the IP part only.
func (a Addr) Host() string {
	if a.ipAddr == nil {
		return ""
	}
	return a.ipAddr.String()
}

func (a Addr) String() string {
	net := a.Host()
	if a.Family() == ip.FamilyIPv6 {
		net = "[" + net + "]"
	}

	return net + ":" + strconv.FormatUint(uint64(a.port), 10)
}

// domain returns the socket domain matching the family of a.
func (a Addr) domain() int {
	if a.Family() == ip.FamilyIPv6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func (a Addr) sockaddr() unix.Sockaddr {
	switch addr := a.ipAddr.(type) {
	case ipv4.Addr:
		return &unix.SockaddrInet4{Port: int(a.port), Addr: [4]byte(addr)}
	case ipv6.Addr:
		return &unix.SockaddrInet6{Port: int(a.port), Addr: [16]byte(addr)}
	default:
		return nil
	}
}

// addrFromSockaddr converts what the kernel reports (accept, getsockname)
// back into an Addr.
func addrFromSockaddr(sa unix.Sockaddr) (Addr, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return NewAddr(ipv4.Addr(sa.Addr), uint16(sa.Port)), nil
	case *unix.SockaddrInet6:
		return NewAddr(ipv6.Addr(sa.Addr), uint16(sa.Port)), nil
	default:
		return Addr{}, errors.Wrapf(transport.ErrInvalidArgument,
			"unexpected socket address %T", sa)
	}
}

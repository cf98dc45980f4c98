package transport

import (
	"network-stream/network"

	"github.com/pkg/errors"
)

type Protocol string

const (
	TCP Protocol = "tcp"
)

type Addr interface {
	NetworkAddr() network.Addr
	Identifier() any // Extra identifier (e.g. port)
	String() string
}

// Every error returned by a transport wraps exactly one of these.
var (
	// ErrInvalidArgument reports a violated precondition. It is returned
	// before any blocking I/O and leaves the resource untouched.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnexpected reports a failure of the peer or the kernel after the
	// operation was committed. The affected descriptor is already closed.
	ErrUnexpected = errors.New("unexpected error")
)

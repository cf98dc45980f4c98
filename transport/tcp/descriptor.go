package tcp

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Syscall entry points. Tests swap them to count or fail calls.
var (
	socketFn = unix.Socket
	readFn   = unix.Read
	writeFn  = unix.Write
)

// descriptor is the exclusive handle of one socket file descriptor.
// It is closed at most once.
type descriptor struct {
	fd     int
	closed bool
}

func newDescriptor(fd int) *descriptor {
	return &descriptor{fd: fd}
}

// openSocket creates a blocking stream socket of the given domain.
func openSocket(domain int) (*descriptor, error) {
	fd, err := socketFn(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, errors.Wrap(err, "creating socket")
	}
	unix.CloseOnExec(fd)

	return newDescriptor(fd), nil
}

// valid reports whether the descriptor is still open. It is open when this
// handle never closed it and the kernel still knows the descriptor.
func (d *descriptor) valid() bool {
	if d == nil || d.closed || d.fd < 0 {
		return false
	}

	_, err := unix.FcntlInt(uintptr(d.fd), unix.F_GETFD, 0)
	return err == nil
}

func (d *descriptor) close() error {
	if !d.valid() {
		return nil
	}
	d.closed = true

	return errors.Wrap(unix.Close(d.fd), "closing descriptor")
}

// Read issues exactly one read(2), retrying only on EINTR.
func (d *descriptor) Read(p []byte) (n int, err error) {
	for {
		n, err = readFn(d.fd, p)
		if err != unix.EINTR {
			return max(n, 0), err
		}
	}
}

// Write issues one write(2), retrying only on EINTR.
func (d *descriptor) Write(p []byte) (n int, err error) {
	for {
		n, err = writeFn(d.fd, p)
		if err != unix.EINTR {
			return max(n, 0), err
		}
	}
}

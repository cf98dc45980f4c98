package tcp

import (
	"log/slog"

	"network-stream/network/ip"
	"network-stream/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Listener is a bound, listening TCP socket producing inbound Streams.
// It is not safe for concurrent use.
type Listener struct {
	fd   *descriptor
	addr Addr

	opts   Options
	logger *slog.Logger
}

// Listen binds to address:port with SO_REUSEADDR set and starts listening.
// address must be a numeric IPv4 or IPv6 literal.
func Listen(address string, port int, opts Options) (*Listener, error) {
	p, err := ValidatePort(port)
	if err != nil {
		return nil, err
	}

	addr, err := Resolve(address)
	if err != nil {
		return nil, err
	}
	addr = addr.WithPort(p)

	fd, err := openSocket(addr.domain())
	if err != nil {
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't bind to %s: %s", addr, err)
	}

	if err := bindAndListen(fd.fd, addr, opts.backlog()); err != nil {
		_ = fd.close()
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't bind to %s: %s", addr, err)
	}

	l := &Listener{
		fd:     fd,
		addr:   addr,
		opts:   opts,
		logger: opts.logger().With("listen", addr.String()),
	}
	l.logger.Debug("listening", "backlog", opts.backlog())

	return l, nil
}

func bindAndListen(fd int, addr Addr, backlog int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return errors.Wrap(err, "setting SO_REUSEADDR")
	}
	if err := unix.Bind(fd, addr.sockaddr()); err != nil {
		return errors.Wrap(err, "bind")
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return errors.Wrap(err, "listen")
	}
	return nil
}

// Accept blocks until a peer connects and returns the inbound Stream for it.
func (l *Listener) Accept() (*Stream, error) {
	if !l.fd.valid() {
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't accept client on %s: invalid socket", l.addr)
	}

	var (
		nfd int
		sa  unix.Sockaddr
		err error
	)
	for {
		nfd, sa, err = unix.Accept(l.fd.fd)
		if err != unix.EINTR && err != unix.ECONNABORTED {
			break
		}
	}
	if err != nil {
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't accept client on %s: %s", l.addr, err)
	}
	unix.CloseOnExec(nfd)

	peer, err := addrFromSockaddr(sa)
	if err != nil {
		_ = unix.Close(nfd)
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't accept client on %s: %s", l.addr, err)
	}

	s, err := NewInboundStream(l.addr.Host(), peer.Host(), int(l.addr.Port()), nfd, l.opts)
	if err != nil {
		_ = unix.Close(nfd)
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't accept client %s on %s: %s", peer, l.addr, err)
	}
	l.logger.Debug("accepted", "peer", peer.String())

	return s, nil
}

// Close closes the listening descriptor if it is still open.
// Streams already accepted are not affected.
func (l *Listener) Close() error {
	if !l.fd.valid() {
		return nil
	}
	l.logger.Debug("closing listener")

	return l.fd.close()
}

// Valid reports whether the listening descriptor is still open.
func (l *Listener) Valid() bool { return l.fd.valid() }

func (l *Listener) Descriptor() int   { return l.fd.fd }
func (l *Listener) Family() ip.Family { return l.addr.Family() }
func (l *Listener) Host() string      { return l.addr.Host() }
func (l *Listener) Port() uint16      { return l.addr.Port() }
func (l *Listener) Addr() Addr        { return l.addr }

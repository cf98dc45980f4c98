package tcp

import (
	"log/slog"

	"network-stream/lib/ds/queue"
	iolib "network-stream/lib/io"
	"network-stream/network/ip"
	"network-stream/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Flow tells which side initiated a Stream.
type Flow uint8

const (
	Inbound Flow = iota
	Outbound
)

func (f Flow) String() string {
	if f == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Stream is a connected TCP socket with a buffered read side.
//
// Bytes read from the socket but not yet consumed by the caller stay in the
// buffer for later calls. A Stream is not safe for concurrent use.
type Stream struct {
	fd   *descriptor
	flow Flow

	listen Addr // zero for outbound streams.
	remote Addr

	buf *queue.Bytes

	logger  *slog.Logger
	metrics *Metrics
}

// Dial connects to address:port. address must be a numeric IPv4 or IPv6
// literal.
func Dial(address string, port int, opts Options) (*Stream, error) {
	p, err := ValidatePort(port)
	if err != nil {
		return nil, err
	}

	remote, err := Resolve(address)
	if err != nil {
		return nil, err
	}
	remote = remote.WithPort(p)

	fd, err := openSocket(remote.domain())
	if err != nil {
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't connect to %s: %s", remote, err)
	}

	if err := unix.Connect(fd.fd, remote.sockaddr()); err != nil {
		_ = fd.close()
		return nil, errors.Wrapf(transport.ErrUnexpected,
			"couldn't connect to %s: %s", remote, err)
	}

	s := newStream(fd, Outbound, Addr{}, remote, opts)
	s.logger.Debug("connected")

	return s, nil
}

// NewInboundStream wraps fd, a descriptor accepted on listenAddr:port from
// remoteAddr. Both addresses must be numeric literals of the same family.
// On error the caller still owns fd.
func NewInboundStream(
	listenAddr, remoteAddr string, port int, fd int, opts Options,
) (*Stream, error) {
	p, err := ValidatePort(port)
	if err != nil {
		return nil, err
	}

	d := newDescriptor(fd)
	if !d.valid() {
		return nil, errors.Wrap(transport.ErrInvalidArgument,
			"the provided socket file descriptor is invalid")
	}

	listen, err := Resolve(listenAddr)
	if err != nil {
		return nil, err
	}
	remote, err := Resolve(remoteAddr)
	if err != nil {
		return nil, err
	}

	if listen.Family() != remote.Family() {
		return nil, errors.Wrapf(transport.ErrInvalidArgument,
			"the listen address %s and remote address %s have differing address families",
			listen.Host(), remote.Host())
	}

	// The peer's own port is not part of the inbound record.
	return newStream(d, Inbound, listen.WithPort(p), remote.WithPort(p), opts), nil
}

func newStream(fd *descriptor, flow Flow, listen, remote Addr, opts Options) *Stream {
	s := &Stream{
		fd:      fd,
		flow:    flow,
		listen:  listen,
		remote:  remote,
		buf:     queue.NewBytes(MaxBytes),
		metrics: opts.Metrics,
	}
	s.logger = opts.logger().With(
		"flow", flow.String(),
		"remote", remote.String(),
	)
	s.metrics.established(flow)

	return s
}

// Enqueue reads from the socket into the buffer and returns the number of
// bytes added.
//
// If reliable is false, exactly one read of at most min(n, MaxBytes) bytes
// is issued. Otherwise reads of at most MaxBytes are repeated until n bytes
// have been added.
//
// A failed read, or the peer closing its side, closes the descriptor and
// returns an error wrapping [transport.ErrUnexpected].
func (s *Stream) Enqueue(reliable bool, n uint) (uint, error) {
	if n == 0 {
		return 0, errors.Wrap(transport.ErrInvalidArgument, "the requested length is invalid")
	}
	if !s.fd.valid() {
		return 0, errors.Wrap(transport.ErrInvalidArgument, "the socket file descriptor is invalid")
	}

	if !reliable {
		n = min(n, MaxBytes)
	}

	chunk := make([]byte, min(n, MaxBytes))
	total := uint(0)
	for once := true; once || (reliable && total < n); once = false {
		p := chunk[:min(n-total, MaxBytes)]

		nn, err := s.fd.Read(p)
		if err == nil && nn == 0 {
			err = errors.New("end of stream")
		}
		if err != nil {
			return 0, s.reset(err)
		}

		s.buf.Enqueue(p[:nn])
		s.metrics.read(nn)
		total += uint(nn)
	}

	return total, nil
}

// reset closes the descriptor after a failed read.
func (s *Stream) reset(cause error) error {
	s.logger.Warn("connection reset by peer", "error", cause)
	s.metrics.reset()
	_ = s.closeDescriptor()

	return errors.Wrapf(transport.ErrUnexpected,
		"connection reset by peer %s", s.remote)
}

// Read consumes n bytes from the head of the buffer.
//
// When fewer than n bytes are buffered, a reliable read enqueues exactly the
// shortfall and an unreliable read enqueues once, up to MaxBytes. The
// result may be shorter than n only for unreliable reads.
func (s *Stream) Read(reliable bool, n uint) ([]byte, error) {
	if buffered := s.buf.Len(); buffered < n {
		request := uint(MaxBytes)
		if reliable {
			request = n - buffered
		}

		if _, err := s.Enqueue(reliable, request); err != nil {
			return nil, err
		}
	}

	return s.buf.Dequeue(n), nil
}

// ReadDelimited consumes the buffer up to and including the first delim,
// enqueueing unreliably until delim shows up. It blocks for as long as the
// peer does not send delim.
func (s *Stream) ReadDelimited(delim byte) ([]byte, error) {
	from := uint(0)
	for {
		if idx := s.buf.IndexByte(delim, from); idx >= 0 {
			return s.buf.Dequeue(uint(idx) + 1), nil
		}
		// Bytes already searched don't have to be searched again.
		from = s.buf.Len()

		if _, err := s.Enqueue(false, MaxBytes); err != nil {
			return nil, err
		}
	}
}

// Write sends data, followed by '\n' if newline is set. It keeps writing
// until every byte is accepted by the kernel.
func (s *Stream) Write(data []byte, newline bool) error {
	if !s.fd.valid() {
		return errors.Wrap(transport.ErrInvalidArgument, "the socket file descriptor is invalid")
	}

	if newline {
		data = append(data[:len(data):len(data)], '\n')
	}

	written, err := iolib.WriteFull(s.fd, data)
	s.metrics.written(int(written))
	if err != nil {
		s.logger.Warn("write failed", "written", written, "error", err)
		_ = s.closeDescriptor()
		return errors.Wrapf(transport.ErrUnexpected,
			"couldn't write to %s after %d of %d bytes: %s", s.remote, written, len(data), err)
	}

	return nil
}

// Valid reports whether the descriptor is still open.
func (s *Stream) Valid() bool { return s.fd.valid() }

// Close closes the descriptor if it is still open. Buffered bytes stay
// readable. Calling Close more than once is a no-op.
func (s *Stream) Close() error {
	if !s.fd.valid() {
		return nil
	}
	s.logger.Debug("closing stream")

	return s.closeDescriptor()
}

func (s *Stream) closeDescriptor() error {
	if !s.fd.valid() {
		return nil
	}

	err := s.fd.close()
	s.metrics.closed()
	if err != nil {
		s.logger.Error("error when closing descriptor", "error", err)
	}
	return err
}

// Buffered returns the number of bytes read from the socket but not yet
// consumed.
func (s *Stream) Buffered() uint { return s.buf.Len() }

func (s *Stream) Descriptor() int   { return s.fd.fd }
func (s *Stream) Flow() Flow        { return s.flow }
func (s *Stream) Family() ip.Family { return s.remote.Family() }
func (s *Stream) Port() uint16      { return s.remote.Port() }
func (s *Stream) RemoteAddr() Addr  { return s.remote }
func (s *Stream) ListenAddr() Addr  { return s.listen }

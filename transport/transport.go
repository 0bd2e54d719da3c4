package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxFrame bounds the payload of a single received frame unless the
// caller asks for less.
const DefaultMaxFrame = 64 << 10

var (
	// ErrTimeout is returned when an operation does not complete before its
	// deadline.
	ErrTimeout = errors.New("transport timeout")

	// ErrConnect is returned when a connection cannot be established.
	ErrConnect = errors.New("transport connect failed")

	// ErrPeerClosed is returned when the remote side closes the stream
	// before a complete frame arrives.
	ErrPeerClosed = errors.New("transport peer closed")

	// ErrFrameTooLarge is returned when a frame header announces more bytes
	// than the receiver accepts. The body is skipped so the next frame can
	// still be read; when that is impossible every later Receive on the
	// stream fails with ErrFrameTooLarge as well.
	ErrFrameTooLarge = errors.New("transport frame too large")
)

// Conn is a bidirectional stream of length-prefixed frames between two
// parties.
type Conn interface {
	// Send writes payload as one frame. The write is bounded by ctx and by
	// the connection's write timeout.
	Send(ctx context.Context, payload []byte) error

	// Receive reads one frame of at most maxLen bytes, waiting no longer
	// than timeout. A zero timeout waits until ctx is done.
	Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error)

	// RemoteAddr returns the peer address, for logging.
	RemoteAddr() string

	// Close releases the connection.
	Close() error
}

// Listener accepts incoming connections.
type Listener interface {
	// Accept waits up to timeout for one connection. A zero timeout waits
	// until ctx is done.
	Accept(ctx context.Context, timeout time.Duration) (Conn, error)

	// Addr returns the bound address.
	Addr() string

	// Close stops listening.
	Close() error
}

// Dialer establishes outgoing connections.
type Dialer interface {
	// Dial connects to address, giving up after timeout.
	Dial(ctx context.Context, address string, timeout time.Duration) (Conn, error)
}

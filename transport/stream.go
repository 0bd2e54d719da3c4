package transport

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// aLongTimeAgo is a deadline in the past, used to unblock pending I/O when a
// context is cancelled.
var aLongTimeAgo = time.Unix(1, 0)

// streamConn frames messages over any net.Conn: a 4-byte big-endian length
// followed by the payload.
type streamConn struct {
	conn         net.Conn
	writeTimeout time.Duration

	sendLock sync.Mutex
	recvLock sync.Mutex

	// desynced is set once an oversized frame could not be skipped; the
	// stream position is then unknown and no further frame is read.
	desynced bool
}

// maxDrain bounds how many bytes of a rejected frame Receive discards to
// stay aligned with the next frame.
const maxDrain = 4 * DefaultMaxFrame

// NewConn wraps c. writeTimeout bounds every Send; zero means only the
// context bounds it.
func NewConn(c net.Conn, writeTimeout time.Duration) Conn {
	return &streamConn{
		conn:         c,
		writeTimeout: writeTimeout,
	}
}

// Send implements Conn.
func (s *streamConn) Send(ctx context.Context, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.Wrapf(ErrFrameTooLarge, "payload of %d bytes", len(payload))
	}

	s.sendLock.Lock()
	defer s.sendLock.Unlock()

	var deadline time.Time
	if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return s.mapErr(ctx, err)
	}
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetWriteDeadline(aLongTimeAgo)
	})
	defer stop()

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	if _, err := s.conn.Write(frame); err != nil {
		return s.mapErr(ctx, errors.Wrap(err, "writing frame"))
	}
	return nil
}

// Receive implements Conn.
func (s *streamConn) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	if maxLen <= 0 || maxLen > DefaultMaxFrame {
		maxLen = DefaultMaxFrame
	}

	s.recvLock.Lock()
	defer s.recvLock.Unlock()

	if s.desynced {
		return nil, errors.Wrap(ErrFrameTooLarge, "stream out of sync")
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, s.mapErr(ctx, err)
	}
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	var header [4]byte
	if _, err := io.ReadFull(s.conn, header[:]); err != nil {
		return nil, s.mapErr(ctx, errors.Wrap(err, "reading frame length"))
	}

	n := binary.BigEndian.Uint32(header[:])
	if uint64(n) > uint64(maxLen) {
		s.skip(int64(n))
		return nil, errors.Wrapf(ErrFrameTooLarge, "frame of %d bytes, limit %d", n, maxLen)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, s.mapErr(ctx, errors.Wrap(err, "reading frame body"))
	}
	return buf, nil
}

// skip discards the n-byte body of a rejected frame under the current read
// deadline, or marks the stream desynced if it cannot.
func (s *streamConn) skip(n int64) {
	if n > maxDrain {
		s.desynced = true
		return
	}
	if _, err := io.CopyN(io.Discard, s.conn, n); err != nil {
		s.desynced = true
	}
}

// RemoteAddr implements Conn.
func (s *streamConn) RemoteAddr() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Close implements Conn.
func (s *streamConn) Close() error {
	return s.conn.Close()
}

// mapErr translates low-level I/O errors into the package's sentinels.
func (s *streamConn) mapErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.Wrap(ErrTimeout, ctxErr.Error())
		}
		return errors.Wrap(ctxErr, "transport")
	}
	return classify(err)
}

func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errors.Wrap(ErrTimeout, err.Error())
	case errors.As(err, &netErr) && netErr.Timeout():
		return errors.Wrap(ErrTimeout, err.Error())
	default:
		// EOF, reset, closed pipe: the peer is gone either way.
		return errors.Wrap(ErrPeerClosed, err.Error())
	}
}

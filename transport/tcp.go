package transport

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// TCPDialer dials plain TCP connections.
type TCPDialer struct {
	// WriteTimeout bounds each Send on dialed connections.
	WriteTimeout time.Duration
}

// Dial implements the Dialer interface.
func (d *TCPDialer) Dial(ctx context.Context, address string, timeout time.Duration) (Conn, error) {
	nd := net.Dialer{Timeout: timeout}
	c, err := nd.DialContext(ctx, "tcp", address)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.Wrapf(ErrTimeout, "dial %s: %v", address, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrapf(ErrTimeout, "dial %s: %v", address, err)
		}
		return nil, errors.Wrapf(ErrConnect, "dial %s: %v", address, err)
	}
	return NewConn(c, d.WriteTimeout), nil
}

// TCPListener implements Listener for plain TCP.
type TCPListener struct {
	listener     *net.TCPListener
	writeTimeout time.Duration
}

// Listen binds a TCP listener on address. Use port 0 to let the kernel pick
// one and read it back with Addr.
func Listen(address string, writeTimeout time.Duration) (*TCPListener, error) {
	list, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(ErrConnect, "listen %s: %v", address, err)
	}
	tl, ok := list.(*net.TCPListener)
	if !ok {
		list.Close()
		return nil, errors.Wrapf(ErrConnect, "listen %s: not a TCP address", address)
	}
	return &TCPListener{
		listener:     tl,
		writeTimeout: writeTimeout,
	}, nil
}

// Accept implements the Listener interface.
func (t *TCPListener) Accept(ctx context.Context, timeout time.Duration) (Conn, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := t.listener.SetDeadline(deadline); err != nil {
		return nil, classify(err)
	}
	stop := context.AfterFunc(ctx, func() {
		t.listener.SetDeadline(aLongTimeAgo)
	})
	defer stop()

	c, err := t.listener.AcceptTCP()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, errors.Wrap(ErrTimeout, "accept")
			}
			return nil, errors.Wrap(ctxErr, "accept")
		}
		return nil, errors.Wrap(classify(err), "accept")
	}
	return NewConn(c, t.writeTimeout), nil
}

// Addr implements the Listener interface.
func (t *TCPListener) Addr() string {
	return t.listener.Addr().String()
}

// Close implements the Listener interface.
func (t *TCPListener) Close() error {
	return t.listener.Close()
}

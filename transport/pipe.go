package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Pipe returns two connected in-memory Conns. Frames written to one are read
// from the other. Deadlines and timeouts behave as on TCP.
func Pipe() (Conn, Conn) {
	a, b := net.Pipe()
	return NewConn(a, 0), NewConn(b, 0)
}

// PipeNetwork is an in-memory Listener and Dialer. Dial hands one end of a
// fresh Pipe to the next Accept.
type PipeNetwork struct {
	addr    string
	pending chan Conn

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPipeNetwork returns a PipeNetwork answering to addr.
func NewPipeNetwork(addr string) *PipeNetwork {
	return &PipeNetwork{
		addr:    addr,
		pending: make(chan Conn),
		closed:  make(chan struct{}),
	}
}

// Dial implements the Dialer interface. address must equal the network's own
// address.
func (p *PipeNetwork) Dial(ctx context.Context, address string, timeout time.Duration) (Conn, error) {
	if address != p.addr {
		return nil, errors.Wrapf(ErrConnect, "no pipe listener at %q", address)
	}
	local, remote := Pipe()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case p.pending <- remote:
		return local, nil
	case <-p.closed:
	case <-expired:
		local.Close()
		remote.Close()
		return nil, errors.Wrapf(ErrTimeout, "dial %s", address)
	case <-ctx.Done():
		local.Close()
		remote.Close()
		return nil, errors.Wrapf(ErrTimeout, "dial %s: %v", address, ctx.Err())
	}
	local.Close()
	remote.Close()
	return nil, errors.Wrapf(ErrConnect, "pipe listener %q closed", address)
}

// Accept implements the Listener interface.
func (p *PipeNetwork) Accept(ctx context.Context, timeout time.Duration) (Conn, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case c := <-p.pending:
		return c, nil
	case <-p.closed:
		return nil, errors.Wrap(ErrPeerClosed, "accept on closed pipe listener")
	case <-expired:
		return nil, errors.Wrap(ErrTimeout, "accept")
	case <-ctx.Done():
		return nil, errors.Wrapf(ErrTimeout, "accept: %v", ctx.Err())
	}
}

// Addr implements the Listener interface.
func (p *PipeNetwork) Addr() string {
	return p.addr
}

// Close implements the Listener interface.
func (p *PipeNetwork) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return nil
}

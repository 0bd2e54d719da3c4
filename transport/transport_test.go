package transport

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	payloads := [][]byte{{0x01}, bytes.Repeat([]byte{0xee}, 1024), {}}

	var g errgroup.Group
	g.Go(func() error {
		for _, p := range payloads {
			if err := a.Send(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})

	for _, want := range payloads {
		got, err := b.Receive(ctx, 0, time.Second)
		require.NoError(t, err)
		assert.Equal(t, len(want), len(got))
		assert.True(t, bytes.Equal(want, got))
	}
	require.NoError(t, g.Wait())
}

func TestReceiveTimeout(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	start := time.Now()
	_, err := b.Receive(context.Background(), 32, 100*time.Millisecond)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReceiveContextDeadline(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := b.Receive(ctx, 32, 0)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestReceivePeerClosed(t *testing.T) {
	a, b := Pipe()
	defer b.Close()

	require.NoError(t, a.Close())
	_, err := b.Receive(context.Background(), 32, time.Second)
	assert.True(t, errors.Is(err, ErrPeerClosed), "got %v", err)
}

func TestReceiveFrameTooLarge(t *testing.T) {
	raw, peer := net.Pipe()
	defer raw.Close()
	c := NewConn(peer, 0)
	defer c.Close()

	go func() {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], 4096)
		raw.Write(header[:])
		raw.Write(bytes.Repeat([]byte{0xaa}, 4096))
		binary.BigEndian.PutUint32(header[:], 2)
		raw.Write(header[:])
		raw.Write([]byte("ok"))
	}()

	_, err := c.Receive(context.Background(), 64, time.Second)
	assert.True(t, errors.Is(err, ErrFrameTooLarge), "got %v", err)

	// The rejected body was skipped; the next frame lines up.
	got, err := c.Receive(context.Background(), 64, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

func TestReceiveFrameTooLargeDesyncs(t *testing.T) {
	raw, peer := net.Pipe()
	defer raw.Close()
	c := NewConn(peer, 0)
	defer c.Close()

	go func() {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], maxDrain+1)
		raw.Write(header[:])
		raw.Write(bytes.Repeat([]byte{0xaa}, 64))
	}()

	_, err := c.Receive(context.Background(), 64, time.Second)
	assert.True(t, errors.Is(err, ErrFrameTooLarge), "got %v", err)

	// Too large to skip: the stream is not read from again.
	_, err = c.Receive(context.Background(), 64, time.Second)
	assert.True(t, errors.Is(err, ErrFrameTooLarge), "got %v", err)
}

func TestTCPSendReceive(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", time.Second)
	require.NoError(t, err)
	defer ln.Close()

	ctx := context.Background()
	var g errgroup.Group
	g.Go(func() error {
		conn, err := ln.Accept(ctx, 2*time.Second)
		if err != nil {
			return err
		}
		defer conn.Close()
		msg, err := conn.Receive(ctx, 64, 2*time.Second)
		if err != nil {
			return err
		}
		return conn.Send(ctx, append([]byte("echo:"), msg...))
	})

	d := &TCPDialer{WriteTimeout: time.Second}
	conn, err := d.Dial(ctx, ln.Addr(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(ctx, []byte("ping")))
	reply, err := conn.Receive(ctx, 64, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(reply))
	require.NoError(t, g.Wait())
	assert.NotEmpty(t, conn.RemoteAddr())
}

func TestTCPAcceptTimeout(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", 0)
	require.NoError(t, err)
	defer ln.Close()

	_, err = ln.Accept(context.Background(), 50*time.Millisecond)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestTCPDialRefused(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", 0)
	require.NoError(t, err)
	addr := ln.Addr()
	require.NoError(t, ln.Close())

	d := &TCPDialer{}
	_, err = d.Dial(context.Background(), addr, time.Second)
	assert.True(t, errors.Is(err, ErrConnect) || errors.Is(err, ErrTimeout), "got %v", err)
}

func TestPipeNetwork(t *testing.T) {
	pn := NewPipeNetwork("pipe:verifier")
	defer pn.Close()

	ctx := context.Background()
	var g errgroup.Group
	g.Go(func() error {
		conn, err := pn.Accept(ctx, time.Second)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Send(ctx, []byte("hi"))
	})

	conn, err := pn.Dial(ctx, "pipe:verifier", time.Second)
	require.NoError(t, err)
	defer conn.Close()
	msg, err := conn.Receive(ctx, 8, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(msg))
	require.NoError(t, g.Wait())

	_, err = pn.Dial(ctx, "pipe:elsewhere", time.Second)
	assert.True(t, errors.Is(err, ErrConnect))

	_, err = pn.Accept(ctx, 20*time.Millisecond)
	assert.True(t, errors.Is(err, ErrTimeout))

	require.NoError(t, pn.Close())
	_, err = pn.Accept(ctx, time.Second)
	assert.True(t, errors.Is(err, ErrPeerClosed))
}

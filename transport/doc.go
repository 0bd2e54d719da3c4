// Package transport carries length-prefixed frames between a prover and a
// verifier.
//
// Every frame is a 4-byte big-endian payload length followed by the payload.
// Receivers pass the largest payload they are willing to accept; a header
// announcing more fails with ErrFrameTooLarge before the body is read.
//
// Two implementations are provided: TCP (Listen, TCPDialer) and an
// in-memory network (Pipe, PipeNetwork) for tests and self-checks. Both honor
// per-call timeouts and context cancellation, reporting ErrTimeout,
// ErrConnect or ErrPeerClosed.
package transport

package ibi

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/toranova/id2/schnorr"
	"github.com/toranova/id2/transport"
)

// Prover holds an identity and its usk and proves possession of the usk to
// verifiers. The key material is read-only, so one Prover may run any number
// of sessions, concurrently or not.
type Prover struct {
	scheme *schnorr.Scheme
	mpk    *schnorr.PublicKey
	id     []byte
	usk    *schnorr.Signature
	logger *logrus.Entry
}

// NewProver returns a Prover for id. mpk is only used to sanity-check that
// usk was issued by the same authority; it is never sent.
func NewProver(sch *schnorr.Scheme, mpk *schnorr.PublicKey, id []byte, usk *schnorr.Signature, logger *logrus.Entry) (*Prover, error) {
	if err := checkIdentity(id); err != nil {
		return nil, err
	}
	if mpk == nil || usk == nil {
		return nil, errors.Wrap(schnorr.ErrMalformedKey, "prover needs mpk and usk")
	}
	if usk.P2 != mpk.P2 {
		return nil, errors.Wrap(schnorr.ErrMalformedKey, "usk was not issued under mpk")
	}
	return &Prover{
		scheme: sch,
		mpk:    mpk,
		id:     append([]byte(nil), id...),
		usk:    usk,
		logger: orDiscard(logger).WithField("id", string(id)),
	}, nil
}

// ID returns the identity this prover claims.
func (p *Prover) ID() []byte {
	return append([]byte(nil), p.id...)
}

// Dial connects to the verifier at address through d and runs one session.
// timeout bounds the connection attempt and every protocol step.
func (p *Prover) Dial(ctx context.Context, d transport.Dialer, address string, timeout time.Duration) (Outcome, error) {
	conn, err := d.Dial(ctx, address, timeout)
	if err != nil {
		err = transportErr(err, "connect")
		if errors.Is(err, ErrProtocolTimeout) {
			return OutcomeTimeout, err
		}
		return OutcomeReject, err
	}
	defer conn.Close()
	return p.Prove(ctx, conn, timeout)
}

// Prove runs the prover side of one session on conn:
//
//	-> Hello{id, U, T = B^t, P2}
//	<- Challenge{c}
//	-> Response{z = t + c*s}
//	<- Outcome
//
// The outcome says nothing beyond accepted or not. A verifier that goes
// silent yields OutcomeTimeout and ErrProtocolTimeout; one that hangs up
// yields OutcomeReject and ErrConnection.
func (p *Prover) Prove(ctx context.Context, conn transport.Conn, timeout time.Duration) (Outcome, error) {
	g := p.scheme.Group()
	sess := newSession("prover", conn.RemoteAddr(), p.logger)
	sess.advance(StateConnected)

	s, err := g.NewScalar().SetBytes(p.usk.S[:])
	if err != nil {
		sess.finish(OutcomeReject)
		return OutcomeReject, errors.Wrap(schnorr.ErrMalformedKey, "usk scalar")
	}
	defer s.Zero()

	t, err := g.RandomScalar(p.scheme.Rand())
	if err != nil {
		sess.finish(OutcomeReject)
		return OutcomeReject, errors.Wrap(err, "sampling commitment")
	}
	defer t.Zero()

	hello := &Hello{
		ID: p.id,
		U:  p.usk.U,
		P2: p.usk.P2,
	}
	copy(hello.T[:], g.NewPoint().ScalarBaseMult(t).Bytes())
	msg, err := hello.Marshal()
	if err != nil {
		sess.finish(OutcomeReject)
		return OutcomeReject, err
	}
	if err := conn.Send(ctx, msg); err != nil {
		return p.abort(sess, transportErr(err, "send hello"))
	}

	raw, err := conn.Receive(ctx, ChallengeSize, timeout)
	if err != nil {
		return p.abort(sess, transportErr(err, "receive challenge"))
	}
	c, err := g.NewScalar().SetBytes(raw)
	if err != nil {
		// A verifier that cannot encode a scalar is not worth answering.
		sess.logger.Debug("malformed challenge")
		return sess.finish(OutcomeReject), nil
	}
	sess.advance(StateChallenged)

	z := g.NewScalar().Mul(c, s)
	z = z.Add(z, t)
	defer z.Zero()
	resp := z.Bytes()
	err = conn.Send(ctx, resp)
	schnorr.Wipe(resp)
	if err != nil {
		return p.abort(sess, transportErr(err, "send response"))
	}
	sess.advance(StateResponded)

	raw, err = conn.Receive(ctx, OutcomeSize, timeout)
	if err != nil {
		return p.abort(sess, transportErr(err, "receive outcome"))
	}

	outcome := OutcomeReject
	if len(raw) == OutcomeSize && raw[0] == outcomeAcceptByte {
		outcome = OutcomeAccept
	}
	sess.logger.WithField("outcome", outcome).Debug("identification finished")
	return sess.finish(outcome), nil
}

func (p *Prover) abort(sess *session, err error) (Outcome, error) {
	o := OutcomeReject
	if errors.Is(err, ErrProtocolTimeout) {
		o = OutcomeTimeout
	}
	sess.logger.WithError(err).Debug("session aborted")
	return sess.finish(o), err
}

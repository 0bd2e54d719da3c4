package ibi

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/toranova/id2/group"
	"github.com/toranova/id2/schnorr"
	"github.com/toranova/id2/transport"
)

// Result is what a verifier learns from one session.
type Result struct {
	Outcome Outcome
	// ID is the identity the prover claimed. It is set whenever the Hello
	// parsed, whatever the outcome.
	ID     []byte
	Remote string
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// ExpectIdentity makes the verifier reject any prover not claiming id.
func ExpectIdentity(id []byte) VerifierOption {
	return func(v *Verifier) {
		v.expect = append([]byte(nil), id...)
	}
}

// WithLogger sets the verifier's logger.
func WithLogger(logger *logrus.Entry) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// Verifier checks provers against the authority's mpk. It holds no secrets
// and no per-session state, so one Verifier may serve many sessions
// concurrently.
type Verifier struct {
	scheme *schnorr.Scheme
	mpk    *schnorr.PublicKey
	expect []byte
	logger *logrus.Entry
}

// NewVerifier returns a Verifier for identities issued under mpk.
func NewVerifier(sch *schnorr.Scheme, mpk *schnorr.PublicKey, opts ...VerifierOption) (*Verifier, error) {
	if mpk == nil {
		return nil, errors.Wrap(schnorr.ErrMalformedKey, "nil master public key")
	}
	if err := mpk.Validate(sch.Group()); err != nil {
		return nil, errors.Wrap(err, "master public key")
	}
	v := &Verifier{
		scheme: sch,
		mpk:    mpk,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = orDiscard(v.logger)
	return v, nil
}

// VerifyOnce accepts one connection from ln, waiting at most timeout, and
// runs a session on it.
func (v *Verifier) VerifyOnce(ctx context.Context, ln transport.Listener, timeout time.Duration) (*Result, error) {
	conn, err := ln.Accept(ctx, timeout)
	if err != nil {
		err = transportErr(err, "accept")
		if errors.Is(err, ErrProtocolTimeout) {
			return &Result{Outcome: OutcomeTimeout}, err
		}
		return &Result{Outcome: OutcomeReject}, err
	}
	defer conn.Close()
	return v.Verify(ctx, conn, timeout)
}

// ListenAndVerify binds address, serves exactly one session and closes the
// listener.
func (v *Verifier) ListenAndVerify(ctx context.Context, address string, timeout time.Duration) (*Result, error) {
	ln, err := transport.Listen(address, timeout)
	if err != nil {
		return &Result{Outcome: OutcomeReject}, errors.Wrap(ErrConnection, err.Error())
	}
	defer ln.Close()
	return v.VerifyOnce(ctx, ln, timeout)
}

// Verify runs the verifier side of one session on conn.
//
// A malformed Hello or Response is treated exactly like a failed relation:
// the verifier still sends a fresh challenge, waits for the response and
// answers with a rejection. A silent prover gets no outcome at all; the
// session ends with OutcomeTimeout and ErrProtocolTimeout.
func (v *Verifier) Verify(ctx context.Context, conn transport.Conn, timeout time.Duration) (*Result, error) {
	g := v.scheme.Group()
	res := &Result{Remote: conn.RemoteAddr()}
	sess := newSession("verifier", res.Remote, v.logger)
	sess.advance(StateConnected)

	// Every check below clears ok instead of returning early.
	ok := true

	raw, err := conn.Receive(ctx, MaxHelloSize, timeout)
	if err != nil {
		if !errors.Is(err, transport.ErrFrameTooLarge) {
			return v.abort(sess, res, transportErr(err, "receive hello"))
		}
		ok = false
	}

	var cl *claim
	if ok {
		hello, herr := UnmarshalHello(raw)
		if herr == nil {
			res.ID = hello.ID
			sess.logger = sess.logger.WithField("id", string(hello.ID))
			cl, herr = v.decodeHello(hello)
		}
		if herr != nil {
			sess.logger.WithError(herr).Debug("hello rejected")
			ok = false
		}
	}

	c, err := g.RandomScalar(v.scheme.Rand())
	if err != nil {
		sess.finish(OutcomeReject)
		res.Outcome = OutcomeReject
		return res, errors.Wrap(err, "sampling challenge")
	}
	if err := conn.Send(ctx, c.Bytes()); err != nil {
		return v.abort(sess, res, transportErr(err, "send challenge"))
	}
	sess.advance(StateChallenged)

	raw, err = conn.Receive(ctx, ResponseSize, timeout)
	if err != nil {
		if !errors.Is(err, transport.ErrFrameTooLarge) {
			return v.abort(sess, res, transportErr(err, "receive response"))
		}
		ok = false
	}
	sess.advance(StateResponded)

	var z group.Scalar
	if ok {
		if z, err = g.NewScalar().SetBytes(raw); err != nil {
			sess.logger.Debug("malformed response")
			ok = false
		}
	}

	if ok {
		ok = v.relation(cl, c, z)
	}

	outcome, b := OutcomeReject, outcomeRejectByte
	if ok {
		outcome, b = OutcomeAccept, outcomeAcceptByte
	}
	res.Outcome = outcome
	if err := conn.Send(ctx, []byte{b}); err != nil {
		// The decision stands even if the prover cannot hear it.
		sess.logger.WithError(err).Debug("send outcome")
	}
	sess.logger.WithField("outcome", outcome).Info("identification finished")
	sess.finish(outcome)
	return res, nil
}

// claim is a Hello with its elements decoded and checked against mpk.
type claim struct {
	id   []byte
	rawU []byte
	U, T group.Point
}

func (v *Verifier) decodeHello(h *Hello) (*claim, error) {
	g := v.scheme.Group()

	// Both checks run before either result is looked at.
	idOK := 1
	if v.expect != nil {
		idOK = subtle.ConstantTimeCompare(h.ID, v.expect)
	}
	p2OK := subtle.ConstantTimeCompare(h.P2[:], v.mpk.P2[:])
	if idOK&p2OK != 1 {
		return nil, errors.Wrap(errMalformedMessage, "identity or P2 does not match")
	}

	U, err := g.NewPoint().SetBytes(h.U[:])
	if err != nil {
		return nil, errors.Wrap(errMalformedMessage, "U")
	}
	T, err := g.NewPoint().SetBytes(h.T[:])
	if err != nil {
		return nil, errors.Wrap(errMalformedMessage, "T")
	}
	return &claim{id: h.ID, rawU: h.U[:], U: U, T: T}, nil
}

// relation checks B^z == T + c*(U - x*P1) with x = H(id || U || P1).
//
// For an honest usk, U - x*P1 = B^s, so the check is the Schnorr
// verification equation for knowledge of s.
func (v *Verifier) relation(cl *claim, c, z group.Scalar) bool {
	g := v.scheme.Group()

	P1, err := g.NewPoint().SetBytes(v.mpk.P1[:])
	if err != nil {
		return false
	}
	x, err := v.scheme.Challenge(cl.id, cl.rawU, v.mpk.P1[:])
	if err != nil {
		return false
	}

	Y := g.NewPoint().ScalarMult(x, P1)
	Y = Y.Sub(cl.U, Y)

	rhs := g.NewPoint().ScalarMult(c, Y)
	rhs = rhs.Add(cl.T, rhs)

	lhs := g.NewPoint().ScalarBaseMult(z)
	return lhs.Equal(rhs)
}

func (v *Verifier) abort(sess *session, res *Result, err error) (*Result, error) {
	res.Outcome = OutcomeReject
	if errors.Is(err, ErrProtocolTimeout) {
		res.Outcome = OutcomeTimeout
	}
	sess.logger.WithError(err).Debug("session aborted")
	sess.finish(res.Outcome)
	return res, err
}

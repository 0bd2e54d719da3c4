package schnorr

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/pkg/errors"

	"github.com/toranova/id2/group"
)

// Scheme holds the group, challenge hasher and randomness source.
// A Scheme is immutable after New and safe for concurrent use as long as
// its random source is.
type Scheme struct {
	group  group.Group
	hasher Hasher
	rand   io.Reader
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithHasher replaces the default SHA-512 challenge hasher.
func WithHasher(h Hasher) Option {
	return func(s *Scheme) {
		s.hasher = h
	}
}

// WithRand replaces crypto/rand as the source of keys and nonces.
// Only tests should need this.
func WithRand(r io.Reader) Option {
	return func(s *Scheme) {
		s.rand = r
	}
}

// New creates a Scheme over g.
func New(g group.Group, opts ...Option) *Scheme {
	s := &Scheme{
		group:  g,
		hasher: &SHA512Hasher{},
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Group returns the underlying group.
func (sc *Scheme) Group() group.Group {
	return sc.group
}

// Hasher returns the challenge hasher.
func (sc *Scheme) Hasher() Hasher {
	return sc.hasher
}

// Rand returns the randomness source.
func (sc *Scheme) Rand() io.Reader {
	return sc.rand
}

// Challenge computes x = H(msg || U || P1).
func (sc *Scheme) Challenge(msg, U, P1 []byte) (group.Scalar, error) {
	return sc.hasher.Challenge(sc.group, msg, U, P1)
}

// KeyGen samples independent uniform scalars a and e and returns the key
// with P1 = B^(-a) and P2 = B^e. The ephemeral e is wiped before returning
// and is not retained anywhere.
func (sc *Scheme) KeyGen() (*SecretKey, error) {
	a, err := sc.group.RandomScalar(sc.rand)
	if err != nil {
		return nil, errors.Wrap(err, "sampling a")
	}
	defer a.Zero()

	e, err := sc.group.RandomScalar(sc.rand)
	if err != nil {
		return nil, errors.Wrap(err, "sampling e")
	}
	defer e.Zero()

	neg := sc.group.NewScalar().Negate(a)
	defer neg.Zero()

	P1 := sc.group.NewPoint().ScalarBaseMult(neg)
	P2 := sc.group.NewPoint().ScalarBaseMult(e)

	sk := &SecretKey{}
	putScalar(&sk.a, a)
	copy(sk.Pub.P1[:], P1.Bytes())
	copy(sk.Pub.P2[:], P2.Bytes())
	return sk, nil
}

// Sign signs msg under sk. Every call samples a fresh nonce r; two
// signatures sharing r would reveal a.
//
//	U = B^r
//	x = H(msg || U || P1)
//	s = r + x*a
func (sc *Scheme) Sign(sk *SecretKey, msg []byte) (*Signature, error) {
	if sk == nil {
		return nil, errors.Wrap(ErrMalformedKey, "nil secret key")
	}
	a, err := sc.group.NewScalar().SetBytes(sk.a[:])
	if err != nil {
		return nil, errors.Wrap(ErrMalformedKey, err.Error())
	}
	defer a.Zero()
	// A destroyed key reads back as zero.
	if a.IsZero() {
		return nil, errors.Wrap(ErrMalformedKey, "zero secret scalar")
	}

	r, err := sc.group.RandomScalar(sc.rand)
	if err != nil {
		return nil, errors.Wrap(err, "sampling nonce")
	}
	defer r.Zero()

	U := sc.group.NewPoint().ScalarBaseMult(r)
	Ub := U.Bytes()

	x, err := sc.Challenge(msg, Ub, sk.Pub.P1[:])
	if err != nil {
		return nil, errors.Wrap(err, "computing challenge")
	}

	s := sc.group.NewScalar().Mul(x, a)
	s = s.Add(s, r)
	defer s.Zero()

	sig := &Signature{}
	putScalar(&sig.S, s)
	putScalar(&sig.X, x)
	copy(sig.U[:], Ub)
	sig.P2 = sk.Pub.P2
	return sig, nil
}

// Verify reports whether sig is a valid signature on msg under pk.
//
// With P1 = B^(-a) and s = r + x*a, a valid signature satisfies
//
//	B^s + x*P1 = B^r = U
//
// and x = H(msg || U || P1). The signature must also carry pk's P2.
// Any encoding error is a rejection.
func (sc *Scheme) Verify(pk *PublicKey, msg []byte, sig *Signature) bool {
	if pk == nil || sig == nil {
		return false
	}
	P1, err := sc.group.NewPoint().SetBytes(pk.P1[:])
	if err != nil {
		return false
	}
	U, err := sc.group.NewPoint().SetBytes(sig.U[:])
	if err != nil {
		return false
	}
	s, err := sc.group.NewScalar().SetBytes(sig.S[:])
	if err != nil {
		return false
	}
	defer s.Zero()
	x, err := sc.group.NewScalar().SetBytes(sig.X[:])
	if err != nil {
		return false
	}

	xp, err := sc.Challenge(msg, sig.U[:], pk.P1[:])
	if err != nil {
		return false
	}

	ok := subtle.ConstantTimeCompare(xp.Bytes(), sig.X[:])
	ok &= subtle.ConstantTimeCompare(sig.P2[:], pk.P2[:])

	lhs := sc.group.NewPoint().ScalarBaseMult(s)
	lhs = lhs.Add(lhs, sc.group.NewPoint().ScalarMult(x, P1))

	return ok == 1 && lhs.Equal(U)
}

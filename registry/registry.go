package registry

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/toranova/id2/bjj"
	"github.com/toranova/id2/ibi"
	"github.com/toranova/id2/ristretto"
	"github.com/toranova/id2/schnorr"
	"github.com/toranova/id2/transport"
)

// Names of the shipped variants. RSSBabyJubjub is only registered through
// WithResearchVariants.
const (
	RSS25519        = "rss25519"
	RSS25519Blake2b = "rss25519-blake2b"
	RSSBabyJubjub   = "rssbjj"
)

var (
	// ErrUnknownAlgorithm is returned by Get for unregistered names.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrDuplicateAlgorithm is returned by New when two variants share a
	// name.
	ErrDuplicateAlgorithm = errors.New("duplicate algorithm name")
)

// Registry maps variant names to algorithms. It is immutable after New and
// safe for concurrent use.
type Registry struct {
	algs map[string]*Algorithm
}

// New builds a registry holding algs.
func New(algs ...*Algorithm) (*Registry, error) {
	r := &Registry{algs: make(map[string]*Algorithm, len(algs))}
	for _, a := range algs {
		if _, dup := r.algs[a.name]; dup {
			return nil, errors.Wrap(ErrDuplicateAlgorithm, a.name)
		}
		r.algs[a.name] = a
	}
	return r, nil
}

// Option adds variants to a registry built by Default.
type Option func(*[]*Algorithm)

// WithResearchVariants adds the Baby Jubjub variant. Its arithmetic runs on
// math/big and is not constant-time, so it is for interop and research use
// only and never part of the default set.
func WithResearchVariants() Option {
	return func(algs *[]*Algorithm) {
		*algs = append(*algs, NewAlgorithm(RSSBabyJubjub, schnorr.New(&bjj.BJJ{})))
	}
}

// Default returns a registry with the constant-time variants this module
// ships: ristretto255 with SHA-512 or Blake2b challenges. Options may add
// more.
func Default(opts ...Option) *Registry {
	algs := []*Algorithm{
		NewAlgorithm(RSS25519, schnorr.New(ristretto.New())),
		NewAlgorithm(RSS25519Blake2b, schnorr.New(ristretto.New(), schnorr.WithHasher(schnorr.NewBlake2bHasher()))),
	}
	for _, opt := range opts {
		opt(&algs)
	}
	r, err := New(algs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the algorithm registered as name.
func (r *Registry) Get(name string) (*Algorithm, error) {
	a, ok := r.algs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", name)
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.algs))
	for n := range r.algs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Algorithm is one variant's operations over serialized keys, identities and
// signatures. Secret inputs are parsed into copies that are wiped before
// returning; secret outputs belong to the caller.
type Algorithm struct {
	name   string
	scheme *schnorr.Scheme
}

// NewAlgorithm names sch.
func NewAlgorithm(name string, sch *schnorr.Scheme) *Algorithm {
	return &Algorithm{name: name, scheme: sch}
}

// Name returns the registered name.
func (a *Algorithm) Name() string {
	return a.name
}

// Scheme returns the underlying signature scheme.
func (a *Algorithm) Scheme() *schnorr.Scheme {
	return a.scheme
}

// KeyGen returns a fresh secret key and its public key.
func (a *Algorithm) KeyGen() (sk, pk []byte, err error) {
	key, err := a.scheme.KeyGen()
	if err != nil {
		return nil, nil, err
	}
	defer key.Destroy()
	return key.Bytes(), key.Pub.Bytes(), nil
}

// Sign signs msg with sk.
func (a *Algorithm) Sign(sk, msg []byte) ([]byte, error) {
	key, err := schnorr.ParseSecretKey(sk)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	sig, err := a.scheme.Sign(key, msg)
	if err != nil {
		return nil, err
	}
	return sig.Bytes(), nil
}

// Verify reports whether sig is valid on msg under pk. Wrong buffer lengths
// are an error; everything else that fails is false.
func (a *Algorithm) Verify(pk, msg, sig []byte) (bool, error) {
	pub, err := schnorr.ParsePublicKey(pk)
	if err != nil {
		return false, err
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, err
	}
	return a.scheme.Verify(pub, msg, s), nil
}

// Setup returns a fresh master key pair.
func (a *Algorithm) Setup() (msk, mpk []byte, err error) {
	key, err := ibi.Setup(a.scheme)
	if err != nil {
		return nil, nil, err
	}
	defer key.Destroy()
	return key.Bytes(), key.Pub.Bytes(), nil
}

// Extract issues the usk for id under msk.
func (a *Algorithm) Extract(msk, id []byte) ([]byte, error) {
	key, err := schnorr.ParseSecretKey(msk)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	usk, err := ibi.Extract(a.scheme, key, id)
	if err != nil {
		return nil, err
	}
	defer usk.Destroy()
	return usk.Bytes(), nil
}

// Prove dials the verifier at address and identifies as id.
func (a *Algorithm) Prove(ctx context.Context, mpk, id, usk []byte, d transport.Dialer, address string, timeout time.Duration, logger *logrus.Entry) (ibi.Outcome, error) {
	pub, err := schnorr.ParsePublicKey(mpk)
	if err != nil {
		return ibi.OutcomeReject, err
	}
	key, err := schnorr.ParseSignature(usk)
	if err != nil {
		return ibi.OutcomeReject, err
	}
	defer key.Destroy()

	p, err := ibi.NewProver(a.scheme, pub, id, key, logger)
	if err != nil {
		return ibi.OutcomeReject, err
	}
	return p.Dial(ctx, d, address, timeout)
}

// Identify accepts one prover on ln and checks it against mpk.
func (a *Algorithm) Identify(ctx context.Context, mpk []byte, ln transport.Listener, timeout time.Duration, logger *logrus.Entry) (*ibi.Result, error) {
	pub, err := schnorr.ParsePublicKey(mpk)
	if err != nil {
		return &ibi.Result{Outcome: ibi.OutcomeReject}, err
	}
	v, err := ibi.NewVerifier(a.scheme, pub, ibi.WithLogger(logger))
	if err != nil {
		return &ibi.Result{Outcome: ibi.OutcomeReject}, err
	}
	return v.VerifyOnce(ctx, ln, timeout)
}

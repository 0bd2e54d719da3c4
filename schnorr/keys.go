package schnorr

import (
	"github.com/pkg/errors"

	"github.com/toranova/id2/group"
)

// Serialized sizes. Fields are concatenated canonical encodings with no
// length prefixes.
const (
	ScalarSize  = group.ScalarSize
	ElementSize = group.ElementSize

	// SecretKeySize is len(a || P1 || P2).
	SecretKeySize = ScalarSize + 2*ElementSize
	// PublicKeySize is len(P1 || P2).
	PublicKeySize = 2 * ElementSize
	// SignatureSize is len(s || x || U || P2).
	SignatureSize = 2*ScalarSize + 2*ElementSize
)

// ErrMalformedKey is returned when a key or signature buffer has the wrong
// length, or a stored scalar is not canonical.
var ErrMalformedKey = errors.New("malformed key material")

// ErrCryptoBackend aliases group.ErrCryptoBackend so callers of this package
// need not import group to match it.
var ErrCryptoBackend = group.ErrCryptoBackend

// wipe overwrites secret buffers. Tests replace it to observe zeroization.
var wipe = func(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// PublicKey is the pair P1 = B^(-a), P2 = B^e.
//
// In the identification protocol the authority's PublicKey is the master
// public key (mpk).
type PublicKey struct {
	P1 [ElementSize]byte
	P2 [ElementSize]byte
}

// Bytes returns P1 || P2.
func (k *PublicKey) Bytes() []byte {
	out := make([]byte, 0, PublicKeySize)
	out = append(out, k.P1[:]...)
	return append(out, k.P2[:]...)
}

// Equal reports whether k and o hold the same encodings.
func (k *PublicKey) Equal(o *PublicKey) bool {
	return o != nil && k.P1 == o.P1 && k.P2 == o.P2
}

// Validate checks that P1 and P2 decode to elements of g. Parse functions do
// not validate, so keys received from outside should be validated before use.
func (k *PublicKey) Validate(g group.Group) error {
	if _, err := g.NewPoint().SetBytes(k.P1[:]); err != nil {
		return errors.Wrap(err, "P1")
	}
	if _, err := g.NewPoint().SetBytes(k.P2[:]); err != nil {
		return errors.Wrap(err, "P2")
	}
	return nil
}

// ParsePublicKey slices a 64-byte P1 || P2 buffer.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, errors.Wrapf(ErrMalformedKey, "public key must be %d bytes, got %d", PublicKeySize, len(b))
	}
	k := &PublicKey{}
	copy(k.P1[:], b[:ElementSize])
	copy(k.P2[:], b[ElementSize:])
	return k, nil
}

// SecretKey holds the secret scalar a together with its public key.
// It is owned exclusively by its holder, who must call Destroy when done.
//
// In the identification protocol the authority's SecretKey is the master
// secret key (msk).
type SecretKey struct {
	a   [ScalarSize]byte
	Pub PublicKey
}

// Public returns a copy of the public half of k.
func (k *SecretKey) Public() *PublicKey {
	pub := k.Pub
	return &pub
}

// Bytes returns a || P1 || P2. The result contains the secret scalar; the
// caller owns it and should wipe it after use.
func (k *SecretKey) Bytes() []byte {
	out := make([]byte, 0, SecretKeySize)
	out = append(out, k.a[:]...)
	out = append(out, k.Pub.P1[:]...)
	return append(out, k.Pub.P2[:]...)
}

// Destroy overwrites the secret scalar with zeros. The key is unusable
// afterwards.
func (k *SecretKey) Destroy() {
	wipe(k.a[:])
}

// ParseSecretKey slices a 96-byte a || P1 || P2 buffer. The input is copied,
// so the caller may wipe b afterwards.
func ParseSecretKey(b []byte) (*SecretKey, error) {
	if len(b) != SecretKeySize {
		return nil, errors.Wrapf(ErrMalformedKey, "secret key must be %d bytes, got %d", SecretKeySize, len(b))
	}
	k := &SecretKey{}
	copy(k.a[:], b[:ScalarSize])
	copy(k.Pub.P1[:], b[ScalarSize:ScalarSize+ElementSize])
	copy(k.Pub.P2[:], b[ScalarSize+ElementSize:])
	return k, nil
}

// Signature is {s, x, U, P2} with s = r + x*a, x = H(m || U || P1) and
// U = B^r. It carries the signer's P2 so a verifier need not fetch it.
//
// A Signature over an identity issued by the authority is a user secret key
// (usk); S is then secret and Destroy must be called when done.
type Signature struct {
	S  [ScalarSize]byte
	X  [ScalarSize]byte
	U  [ElementSize]byte
	P2 [ElementSize]byte
}

// Bytes returns s || x || U || P2.
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 0, SignatureSize)
	out = append(out, sig.S[:]...)
	out = append(out, sig.X[:]...)
	out = append(out, sig.U[:]...)
	return append(out, sig.P2[:]...)
}

// Destroy zeroes s, x and U.
func (sig *Signature) Destroy() {
	wipe(sig.S[:])
	wipe(sig.X[:])
	wipe(sig.U[:])
}

// ParseSignature slices a 128-byte s || x || U || P2 buffer.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) != SignatureSize {
		return nil, errors.Wrapf(ErrMalformedKey, "signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	sig := &Signature{}
	off := copy(sig.S[:], b)
	off += copy(sig.X[:], b[off:])
	off += copy(sig.U[:], b[off:])
	copy(sig.P2[:], b[off:])
	return sig, nil
}

// Wipe zeroes b. It is exported for callers that hold serialized secrets.
func Wipe(b []byte) {
	wipe(b)
}

// putScalar copies the encoding of s into dst and wipes the temporary slice.
func putScalar(dst *[ScalarSize]byte, s group.Scalar) {
	enc := s.Bytes()
	copy(dst[:], enc)
	wipe(enc)
}

package group

import (
	"io"

	"github.com/pkg/errors"
)

// ScalarSize and ElementSize are the fixed widths, in bytes, of every
// canonical scalar and point encoding produced by a Group.
const (
	ScalarSize  = 32
	ElementSize = 32

	// WideSize is the digest length accepted by ReduceWide.
	WideSize = 64
)

// ErrCryptoBackend is returned when an underlying primitive fails. It signals
// a broken dependency or entropy source, not a recoverable condition.
var ErrCryptoBackend = errors.New("crypto backend failure")

// ErrInvalidEncoding is returned by SetBytes for bytes that are not the
// canonical encoding of a scalar or group element.
var ErrInvalidEncoding = errors.New("invalid canonical encoding")

// Scalar represents an element of the scalar field associated with a
// cryptographic group. Scalars are integers modulo the group order and
// are used as exponents in scalar multiplication.
//
// All arithmetic methods use a mutable receiver pattern: they modify
// the receiver, store the result in it, and return it. This allows for
// efficient method chaining while minimizing memory allocations.
//
// Implementations must ensure all operations produce results in the
// valid range [0, order).
type Scalar interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Scalar) Scalar
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Scalar) Scalar
	// Mul sets the receiver to a*b and returns it.
	Mul(a, b Scalar) Scalar
	// Negate sets the receiver to -a and returns it.
	Negate(a Scalar) Scalar
	// Set sets the receiver to a and returns it.
	Set(a Scalar) Scalar
	// Bytes returns the 32-byte canonical representation of the scalar.
	Bytes() []byte
	// SetBytes sets the receiver from a canonical encoding and returns it.
	// Returns ErrInvalidEncoding if data is not exactly ScalarSize bytes
	// or is not reduced modulo the group order.
	SetBytes(data []byte) (Scalar, error)
	// Equal reports whether the receiver equals b.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is zero.
	IsZero() bool
	// Zero overwrites the receiver's internal storage with zeros.
	Zero()
}

// Point represents an element of a cryptographic group, typically a point
// on an elliptic curve. Points support addition, subtraction, negation,
// and scalar multiplication.
//
// Like [Scalar], all arithmetic methods use a mutable receiver pattern
// for efficiency.
//
// The identity element is the additive identity: P + Identity = P for all
// points P.
type Point interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Point) Point
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Point) Point
	// Negate sets the receiver to -a and returns it.
	Negate(a Point) Point
	// ScalarMult sets the receiver to s*p and returns it.
	ScalarMult(s Scalar, p Point) Point
	// ScalarBaseMult sets the receiver to s*G, G being the group generator,
	// and returns it.
	ScalarBaseMult(s Scalar) Point
	// Set sets the receiver to a and returns it.
	Set(a Point) Point
	// Bytes returns the 32-byte canonical encoding of the point.
	Bytes() []byte
	// SetBytes sets the receiver from a canonical encoding and returns it.
	// Returns ErrInvalidEncoding if data does not encode a group element.
	SetBytes(data []byte) (Point, error)
	// Equal reports whether the receiver equals b.
	Equal(b Point) bool
	// IsIdentity reports whether the receiver is the identity element.
	IsIdentity() bool
}

// Group defines a prime-order group suitable for the tight Schnorr signature
// scheme and the identification protocol built on it. It provides factory
// methods for creating scalars and points, access to the group's generator,
// and utility functions for random scalar generation and hash reduction.
//
// A Group implementation encapsulates all curve-specific details, allowing
// the signature and identification code to be generic over curves.
//
// Example usage:
//
//	g := ristretto.New() // or any other Group implementation
//	a, _ := g.RandomScalar(rand.Reader)
//	A := g.NewPoint().ScalarBaseMult(a)
type Group interface {
	// Name returns a short identifier for the group, e.g. "ristretto255".
	Name() string
	// NewScalar returns a new zero scalar.
	NewScalar() Scalar
	// NewPoint returns a new identity point.
	NewPoint() Point
	// Generator returns the group's base point.
	Generator() Point
	// RandomScalar returns a uniformly random scalar read from r.
	// Failures reading r are reported as ErrCryptoBackend.
	RandomScalar(r io.Reader) (Scalar, error)
	// ReduceWide interprets a WideSize-byte digest as a little-endian
	// integer and reduces it modulo the group order.
	ReduceWide(digest []byte) (Scalar, error)
	// Order returns the group order as a big-endian byte slice.
	Order() []byte
}

package ristretto

import (
	"encoding/hex"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/pkg/errors"

	"github.com/toranova/id2/group"
)

// order is l = 2^252 + 27742317777372353535851937790883648493, big-endian.
var order, _ = hex.DecodeString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed")

// Scalar represents an element of the ristretto255 scalar field.
// It implements [group.Scalar] by wrapping a ristretto255.Scalar.
//
// All arithmetic is constant-time and reduced modulo l.
type Scalar struct {
	inner *ristretto255.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: ristretto255.NewScalar()}
}

// Add sets s to a + b (mod l) and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b (mod l) and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Subtract(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Mul sets s to a * b (mod l) and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Multiply(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

// Negate sets s to -a (mod l) and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Negate(a.(*Scalar).inner)
	return s
}

// Set copies the value of a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	var buf [group.ScalarSize]byte
	// a is canonical, so decoding its own encoding cannot fail.
	_ = s.inner.Decode(a.(*Scalar).inner.Encode(buf[:0]))
	wipe(buf[:])
	return s
}

// Bytes returns the 32-byte little-endian canonical encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Encode(make([]byte, 0, group.ScalarSize))
}

// SetBytes sets s from a canonical 32-byte little-endian encoding.
// Unreduced values are rejected.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != group.ScalarSize {
		return nil, errors.Wrapf(group.ErrInvalidEncoding, "scalar length %d", len(data))
	}
	if err := s.inner.Decode(data); err != nil {
		return nil, errors.Wrap(group.ErrInvalidEncoding, err.Error())
	}
	return s, nil
}

// Equal reports whether s and b represent the same scalar, in constant time.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equal(b.(*Scalar).inner) == 1
}

// IsZero reports whether s is the zero scalar.
func (s *Scalar) IsZero() bool {
	return s.inner.Equal(ristretto255.NewScalar()) == 1
}

// Zero overwrites s with the zero scalar.
func (s *Scalar) Zero() {
	s.inner.Zero()
}

// Point represents a ristretto255 group element.
// It implements [group.Point] by wrapping a ristretto255.Element.
type Point struct {
	inner *ristretto255.Element
}

func newPoint() *Point {
	return &Point{inner: ristretto255.NewElement()}
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(a.(*Point).inner, b.(*Point).inner)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	p.inner.Subtract(a.(*Point).inner, b.(*Point).inner)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Negate(a.(*Point).inner)
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.ScalarMult(s.(*Scalar).inner, q.(*Point).inner)
	return p
}

// ScalarBaseMult sets p to s * B and returns p.
func (p *Point) ScalarBaseMult(s group.Scalar) group.Point {
	p.inner.ScalarBaseMult(s.(*Scalar).inner)
	return p
}

// Set copies the value of a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	_ = p.inner.Decode(a.(*Point).inner.Encode(nil))
	return p
}

// Bytes returns the 32-byte canonical ristretto255 encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Encode(make([]byte, 0, group.ElementSize))
}

// SetBytes decodes a canonical ristretto255 encoding into p.
// Every successfully decoded element lies in the prime-order group.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != group.ElementSize {
		return nil, errors.Wrapf(group.ErrInvalidEncoding, "element length %d", len(data))
	}
	if err := p.inner.Decode(data); err != nil {
		return nil, errors.Wrap(group.ErrInvalidEncoding, err.Error())
	}
	return p, nil
}

// Equal reports whether p and b represent the same element, in constant time.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(b.(*Point).inner) == 1
}

// IsIdentity reports whether p is the identity element.
func (p *Point) IsIdentity() bool {
	return p.inner.Equal(ristretto255.NewElement()) == 1
}

// Ristretto implements [group.Group] for ristretto255.
//
// Ristretto is a zero-sized type; create an instance with [New] or
// &Ristretto{}.
type Ristretto struct{}

// New returns the ristretto255 group.
func New() *Ristretto {
	return &Ristretto{}
}

// Name returns "ristretto255".
func (g *Ristretto) Name() string {
	return "ristretto255"
}

// NewScalar returns a new scalar initialized to zero.
func (g *Ristretto) NewScalar() group.Scalar {
	return newScalar()
}

// NewPoint returns a new point initialized to the identity element.
func (g *Ristretto) NewPoint() group.Point {
	return newPoint()
}

// Generator returns the canonical ristretto255 base point.
func (g *Ristretto) Generator() group.Point {
	p := newPoint()
	p.inner.Base()
	return p
}

// RandomScalar reads 64 bytes from r and reduces them modulo l, giving a
// scalar whose distribution is statistically close to uniform.
func (g *Ristretto) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [group.WideSize]byte
	defer wipe(buf[:])
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}
	s := newScalar()
	s.inner.FromUniformBytes(buf[:])
	return s, nil
}

// ReduceWide reduces a 64-byte little-endian digest modulo l, as
// crypto_core_ristretto255_scalar_reduce does.
func (g *Ristretto) ReduceWide(digest []byte) (group.Scalar, error) {
	if len(digest) != group.WideSize {
		return nil, errors.Wrapf(group.ErrCryptoBackend, "wide reduction needs %d bytes, got %d", group.WideSize, len(digest))
	}
	s := newScalar()
	s.inner.FromUniformBytes(digest)
	return s, nil
}

// Order returns l as a big-endian byte slice.
func (g *Ristretto) Order() []byte {
	out := make([]byte, len(order))
	copy(out, order)
	return out
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var _ group.Group = (*Ristretto)(nil)

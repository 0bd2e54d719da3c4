package ristretto

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toranova/id2/group"
)

func TestScalar(t *testing.T) {
	g := New()

	t.Run("AddSub", func(t *testing.T) {
		a, err := g.RandomScalar(rand.Reader)
		require.NoError(t, err)
		b, err := g.RandomScalar(rand.Reader)
		require.NoError(t, err)

		sum := g.NewScalar().Add(a, b)
		assert.True(t, g.NewScalar().Sub(sum, b).Equal(a))
	})

	t.Run("MulDistributes", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		b, _ := g.RandomScalar(rand.Reader)
		c, _ := g.RandomScalar(rand.Reader)

		left := g.NewScalar().Mul(a, g.NewScalar().Add(b, c))
		right := g.NewScalar().Add(g.NewScalar().Mul(a, b), g.NewScalar().Mul(a, c))
		assert.True(t, left.Equal(right))
	})

	t.Run("Negate", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		sum := g.NewScalar().Add(a, g.NewScalar().Negate(a))
		assert.True(t, sum.IsZero())
	})

	t.Run("SetCopies", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		b := g.NewScalar().Set(a)
		require.True(t, b.Equal(a))

		a.Zero()
		assert.False(t, b.IsZero(), "copy must not alias the original")
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		encoded := a.Bytes()
		require.Len(t, encoded, group.ScalarSize)

		restored, err := g.NewScalar().SetBytes(encoded)
		require.NoError(t, err)
		assert.True(t, restored.Equal(a))
	})

	t.Run("SetBytesRejectsNonCanonical", func(t *testing.T) {
		bad := make([]byte, group.ScalarSize)
		for i := range bad {
			bad[i] = 0xff
		}
		_, err := g.NewScalar().SetBytes(bad)
		assert.True(t, errors.Is(err, group.ErrInvalidEncoding))

		_, err = g.NewScalar().SetBytes(bad[:10])
		assert.True(t, errors.Is(err, group.ErrInvalidEncoding))
	})

	t.Run("Zero", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		a.Zero()
		assert.True(t, a.IsZero())
	})

	t.Run("ReduceWide", func(t *testing.T) {
		d1 := sha512.Sum512([]byte("one"))
		d2 := sha512.Sum512([]byte("two"))

		x1, err := g.ReduceWide(d1[:])
		require.NoError(t, err)
		x1again, err := g.ReduceWide(d1[:])
		require.NoError(t, err)
		x2, err := g.ReduceWide(d2[:])
		require.NoError(t, err)

		assert.True(t, x1.Equal(x1again))
		assert.False(t, x1.Equal(x2))

		_, err = g.ReduceWide(d1[:32])
		assert.True(t, errors.Is(err, group.ErrCryptoBackend))
	})

	t.Run("RandomScalarReaderFailure", func(t *testing.T) {
		_, err := g.RandomScalar(iotest.ErrReader(errors.New("no entropy")))
		assert.True(t, errors.Is(err, group.ErrCryptoBackend))
	})
}

func TestPoint(t *testing.T) {
	g := New()

	t.Run("AddSub", func(t *testing.T) {
		s1, _ := g.RandomScalar(rand.Reader)
		s2, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarBaseMult(s1)
		Q := g.NewPoint().ScalarBaseMult(s2)

		sum := g.NewPoint().Add(P, Q)
		assert.True(t, g.NewPoint().Sub(sum, Q).Equal(P))
	})

	t.Run("BaseMultMatchesScalarMult", func(t *testing.T) {
		s, _ := g.RandomScalar(rand.Reader)
		assert.True(t, g.NewPoint().ScalarBaseMult(s).Equal(g.NewPoint().ScalarMult(s, g.Generator())))
	})

	t.Run("Linearity", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		b, _ := g.RandomScalar(rand.Reader)

		left := g.NewPoint().ScalarBaseMult(g.NewScalar().Add(a, b))
		right := g.NewPoint().Add(g.NewPoint().ScalarBaseMult(a), g.NewPoint().ScalarBaseMult(b))
		assert.True(t, left.Equal(right))
	})

	t.Run("Negate", func(t *testing.T) {
		s, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarBaseMult(s)
		assert.True(t, g.NewPoint().Add(P, g.NewPoint().Negate(P)).IsIdentity())
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		s, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarBaseMult(s)
		encoded := P.Bytes()
		require.Len(t, encoded, group.ElementSize)

		restored, err := g.NewPoint().SetBytes(encoded)
		require.NoError(t, err)
		assert.True(t, restored.Equal(P))
	})

	t.Run("SetBytesRejectsInvalid", func(t *testing.T) {
		bad := make([]byte, group.ElementSize)
		for i := range bad {
			bad[i] = 0xff
		}
		_, err := g.NewPoint().SetBytes(bad)
		assert.True(t, errors.Is(err, group.ErrInvalidEncoding))
	})

	t.Run("IsIdentity", func(t *testing.T) {
		assert.True(t, g.NewPoint().IsIdentity())
		assert.False(t, g.Generator().IsIdentity())
	})
}

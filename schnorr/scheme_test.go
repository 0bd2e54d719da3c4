package schnorr

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toranova/id2/bjj"
	"github.com/toranova/id2/group"
	"github.com/toranova/id2/ristretto"
)

// schemesUnderTest returns every group/hasher combination the module ships.
func schemesUnderTest(t *testing.T) map[string]*Scheme {
	t.Helper()
	return map[string]*Scheme{
		"ristretto255/sha512":  New(ristretto.New()),
		"ristretto255/blake2b": New(ristretto.New(), WithHasher(NewBlake2bHasher())),
		"babyjubjub/sha512":    New(&bjj.BJJ{}),
	}
}

func TestSignVerify(t *testing.T) {
	for name, sch := range schemesUnderTest(t) {
		sch := sch
		t.Run(name, func(t *testing.T) {
			sk, err := sch.KeyGen()
			require.NoError(t, err)
			defer sk.Destroy()
			pk := sk.Public()

			for _, msg := range [][]byte{nil, []byte("alice"), bytes.Repeat([]byte{0xab}, 4096)} {
				sig, err := sch.Sign(sk, msg)
				require.NoError(t, err)
				assert.True(t, sch.Verify(pk, msg, sig), "honest signature on %q rejected", msg)
			}

			sig, err := sch.Sign(sk, []byte("hello"))
			require.NoError(t, err)
			assert.False(t, sch.Verify(pk, []byte("hellO"), sig), "signature verified on wrong message")

			other, err := sch.KeyGen()
			require.NoError(t, err)
			defer other.Destroy()
			assert.False(t, sch.Verify(other.Public(), []byte("hello"), sig), "signature verified under wrong key")
		})
	}
}

func TestVerifyRejectsSingleByteFlips(t *testing.T) {
	for name, sch := range schemesUnderTest(t) {
		sch := sch
		t.Run(name, func(t *testing.T) {
			sk, err := sch.KeyGen()
			require.NoError(t, err)
			defer sk.Destroy()
			pk := sk.Public()

			msg := []byte("flip me")
			sig, err := sch.Sign(sk, msg)
			require.NoError(t, err)
			raw := sig.Bytes()

			// s, x and U occupy the first 96 bytes.
			for i := 0; i < 2*ScalarSize+ElementSize; i++ {
				tampered := append([]byte(nil), raw...)
				tampered[i] ^= 0x01
				forged, err := ParseSignature(tampered)
				require.NoError(t, err)
				assert.False(t, sch.Verify(pk, msg, forged), "flip at byte %d accepted", i)
			}
		})
	}
}

func TestVerifyRejectsForeignP2(t *testing.T) {
	sch := New(ristretto.New())
	sk, err := sch.KeyGen()
	require.NoError(t, err)

	sig, err := sch.Sign(sk, []byte("m"))
	require.NoError(t, err)

	sig.P2[0] ^= 0x80
	assert.False(t, sch.Verify(sk.Public(), []byte("m"), sig))
}

func TestVerifyNil(t *testing.T) {
	sch := New(ristretto.New())
	sk, err := sch.KeyGen()
	require.NoError(t, err)
	sig, err := sch.Sign(sk, nil)
	require.NoError(t, err)

	assert.False(t, sch.Verify(nil, nil, sig))
	assert.False(t, sch.Verify(sk.Public(), nil, nil))
}

func TestNonceFreshness(t *testing.T) {
	sch := New(ristretto.New())
	sk, err := sch.KeyGen()
	require.NoError(t, err)
	defer sk.Destroy()

	seen := make(map[[ElementSize]byte]struct{}, 100)
	for i := 0; i < 100; i++ {
		sig, err := sch.Sign(sk, []byte("same message"))
		require.NoError(t, err)
		_, dup := seen[sig.U]
		require.False(t, dup, "nonce commitment repeated at signature %d", i)
		seen[sig.U] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestKeyGenBinding(t *testing.T) {
	g := ristretto.New()
	sch := New(g)
	sk, err := sch.KeyGen()
	require.NoError(t, err)

	a, err := g.NewScalar().SetBytes(sk.a[:])
	require.NoError(t, err)
	P1 := g.NewPoint().ScalarBaseMult(g.NewScalar().Negate(a))
	assert.Equal(t, P1.Bytes(), sk.Pub.P1[:], "P1 must equal B^(-a)")
	assert.NotEqual(t, sk.Pub.P1, sk.Pub.P2)
	assert.NoError(t, sk.Pub.Validate(g))
}

func TestSerializationRoundTrip(t *testing.T) {
	for name, sch := range schemesUnderTest(t) {
		sch := sch
		t.Run(name, func(t *testing.T) {
			sk, err := sch.KeyGen()
			require.NoError(t, err)
			sig, err := sch.Sign(sk, []byte("round trip"))
			require.NoError(t, err)

			skb := sk.Bytes()
			require.Len(t, skb, SecretKeySize)
			sk2, err := ParseSecretKey(skb)
			require.NoError(t, err)
			assert.Equal(t, skb, sk2.Bytes())

			pkb := sk.Public().Bytes()
			require.Len(t, pkb, PublicKeySize)
			pk2, err := ParsePublicKey(pkb)
			require.NoError(t, err)
			assert.Equal(t, pkb, pk2.Bytes())
			assert.True(t, pk2.Equal(sk.Public()))

			sigb := sig.Bytes()
			require.Len(t, sigb, SignatureSize)
			sig2, err := ParseSignature(sigb)
			require.NoError(t, err)
			assert.Equal(t, sigb, sig2.Bytes())

			// A parsed key signs signatures the original key's public half accepts.
			sig3, err := sch.Sign(sk2, []byte("parsed"))
			require.NoError(t, err)
			assert.True(t, sch.Verify(pk2, []byte("parsed"), sig3))
		})
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	cases := []struct {
		name  string
		parse func([]byte) error
		size  int
	}{
		{"secret", func(b []byte) error { _, err := ParseSecretKey(b); return err }, SecretKeySize},
		{"public", func(b []byte) error { _, err := ParsePublicKey(b); return err }, PublicKeySize},
		{"signature", func(b []byte) error { _, err := ParseSignature(b); return err }, SignatureSize},
	}
	for _, tc := range cases {
		for _, n := range []int{0, tc.size - 1, tc.size + 1} {
			t.Run(fmt.Sprintf("%s/%d", tc.name, n), func(t *testing.T) {
				err := tc.parse(make([]byte, n))
				assert.True(t, errors.Is(err, ErrMalformedKey), "got %v", err)
			})
		}
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	pk := &PublicKey{}
	for i := range pk.P1 {
		pk.P1[i] = 0xff
	}
	err := pk.Validate(ristretto.New())
	assert.True(t, errors.Is(err, group.ErrInvalidEncoding))
}

func TestSignRejectsNonCanonicalSecret(t *testing.T) {
	sch := New(ristretto.New())
	sk := &SecretKey{}
	for i := range sk.a {
		sk.a[i] = 0xff
	}
	_, err := sch.Sign(sk, []byte("m"))
	assert.True(t, errors.Is(err, ErrMalformedKey))

	_, err = sch.Sign(nil, []byte("m"))
	assert.True(t, errors.Is(err, ErrMalformedKey))
}

func TestSignAfterDestroy(t *testing.T) {
	sch := New(ristretto.New())
	sk, err := sch.KeyGen()
	require.NoError(t, err)
	_, err = sch.Sign(sk, []byte("m"))
	require.NoError(t, err)

	sk.Destroy()
	sig, err := sch.Sign(sk, []byte("m"))
	assert.Nil(t, sig)
	assert.True(t, errors.Is(err, ErrMalformedKey), "got %v", err)
}

func TestBackendFailure(t *testing.T) {
	broken := New(ristretto.New(), WithRand(iotest.ErrReader(errors.New("entropy exhausted"))))

	_, err := broken.KeyGen()
	assert.True(t, errors.Is(err, ErrCryptoBackend), "got %v", err)

	sk, err := New(ristretto.New()).KeyGen()
	require.NoError(t, err)
	_, err = broken.Sign(sk, []byte("m"))
	assert.True(t, errors.Is(err, ErrCryptoBackend), "got %v", err)
}

func TestDestroyZeroizes(t *testing.T) {
	var wiped [][]byte
	orig := wipe
	wipe = func(b []byte) {
		orig(b)
		wiped = append(wiped, b)
	}
	defer func() { wipe = orig }()

	sch := New(ristretto.New())
	sk, err := sch.KeyGen()
	require.NoError(t, err)
	secret := append([]byte(nil), sk.a[:]...)
	require.NotEqual(t, make([]byte, ScalarSize), secret)

	wiped = nil
	sk.Destroy()

	assert.Equal(t, make([]byte, ScalarSize), sk.a[:], "a survived Destroy")
	assert.Equal(t, make([]byte, ScalarSize), sk.Bytes()[:ScalarSize])
	require.Len(t, wiped, 1)
	assert.Same(t, &sk.a[0], &wiped[0][0], "Destroy must wipe the key's own storage")

	sig, err := sch.Sign(mustKey(t, sch), []byte("usk"))
	require.NoError(t, err)
	sig.Destroy()
	assert.Equal(t, make([]byte, ScalarSize), sig.S[:])
	assert.Equal(t, make([]byte, ScalarSize), sig.X[:])
	assert.Equal(t, make([]byte, ElementSize), sig.U[:])
}

func TestSignWipesTemporaries(t *testing.T) {
	var calls int
	orig := wipe
	wipe = func(b []byte) {
		orig(b)
		calls++
	}
	defer func() { wipe = orig }()

	sch := New(ristretto.New())
	sk := mustKey(t, sch)

	calls = 0
	_, err := sch.Sign(sk, []byte("m"))
	require.NoError(t, err)
	// digest, s encoding and x encoding.
	assert.GreaterOrEqual(t, calls, 3)
}

func mustKey(t *testing.T, sch *Scheme) *SecretKey {
	t.Helper()
	sk, err := sch.KeyGen()
	require.NoError(t, err)
	return sk
}

func BenchmarkSign(b *testing.B) {
	sch := New(ristretto.New())
	sk, _ := sch.KeyGen()
	msg := make([]byte, 64)
	_, _ = rand.Read(msg)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = sch.Sign(sk, msg)
	}
}

func BenchmarkVerify(b *testing.B) {
	sch := New(ristretto.New())
	sk, _ := sch.KeyGen()
	msg := make([]byte, 64)
	sig, _ := sch.Sign(sk, msg)
	pk := sk.Public()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sch.Verify(pk, msg, sig)
	}
}

// Package schnorr implements a tight Schnorr-style signature scheme over an
// arbitrary prime-order group.
//
// # Keys
//
// A secret key is a uniform scalar a. Its public key is the pair
//
//	P1 = B^(-a)
//	P2 = B^e
//
// where e is an ephemeral scalar sampled once by [Scheme.KeyGen] and then
// wiped. P1 binds the key: there is exactly one valid P1 per a. P2 is a
// key-bound auxiliary element used by the identification layer (see package
// ibi), not by the signing relation.
//
// # Signing
//
// For each message a fresh nonce r is sampled:
//
//	U = B^r
//	x = H(m || U || P1)
//	s = r + x*a
//
// The signature is {s, x, U, P2}. The challenge is bound to P1, never P2.
//
// # Verification
//
// [Scheme.Verify] recomputes x' = H(m || U || P1) and accepts iff x' = x and
//
//	B^s + x*P1 = U
//
// which holds because x*P1 = B^(-x*a).
//
// # Serialization
//
// Keys and signatures serialize to fixed-width concatenations with no length
// prefixes:
//
//	SecretKey  a  || P1 || P2       96 bytes
//	PublicKey  P1 || P2             64 bytes
//	Signature  s  || x  || U || P2  128 bytes
//
// Parsing only slices. Points are not validated until they are used, or until
// [PublicKey.Validate] is called.
//
// # Example
//
//	sch := schnorr.New(ristretto.New())
//	sk, _ := sch.KeyGen()
//	defer sk.Destroy()
//
//	sig, _ := sch.Sign(sk, []byte("hello"))
//	ok := sch.Verify(sk.Public(), []byte("hello"), sig)
//
// # Security Considerations
//
// Nonces must never repeat; Sign draws one from the scheme's random source on
// every call. Secret scalars are wiped on every return path, including errors,
// and key types expose Destroy to wipe what they own.
package schnorr

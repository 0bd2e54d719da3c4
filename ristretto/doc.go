// Package ristretto provides the ristretto255 implementation of the
// [group.Group] interface. It is the default group for id2 signatures and
// identification.
//
// ristretto255 is a prime-order group of order
//
//	l = 2^252 + 27742317777372353535851937790883648493
//
// built on Curve25519. Unlike the raw Edwards curve it has no cofactor, so
// every successfully decoded element is a member of the group and no extra
// subgroup check is needed after [Point.SetBytes].
//
// This package wraps github.com/gtank/ristretto255. All scalar and point
// operations are constant-time. Scalars are encoded little-endian, and
// [Ristretto.ReduceWide] matches libsodium's crypto_core_ristretto255_scalar_reduce,
// so SHA-512 challenges agree byte for byte with libsodium-based peers.
package ristretto

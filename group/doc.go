// Package group defines abstract interfaces for the prime-order groups
// used by the tight Schnorr signature scheme and its identification protocol.
//
// This package provides three core interfaces that abstract over the
// mathematical operations needed for Schnorr-style signatures:
//
//   - [Scalar]: Elements of the scalar field (integers modulo the group order)
//   - [Point]: Elements of the group (points on an elliptic curve)
//   - [Group]: Factory and utility methods for creating scalars and points
//
// # Design Philosophy
//
// The interfaces use a mutable receiver pattern for efficiency. Operations
// like Add, Mul, and ScalarMult set the receiver to the result and return it,
// allowing method chaining while minimizing allocations:
//
//	// Compute r + x*a
//	s := g.NewScalar().Mul(x, a)
//	s = s.Add(s, r)
//
// Every scalar and point has a fixed 32-byte canonical encoding, so keys and
// signatures built on top of a Group serialize to fixed-width buffers
// regardless of the curve.
//
// # Implementing a Group
//
// To add a new curve:
//
//  1. Create a Scalar type that wraps your field element and implements [Scalar]
//  2. Create a Point type that wraps your curve point and implements [Point]
//  3. Create a Group type that implements [Group] as a factory
//
// The new group becomes usable once it is added to a registry entry; see the
// ristretto package for the default implementation and bjj for a second one.
//
// # Security Considerations
//
// Implementations must ensure:
//
//   - Scalar arithmetic is performed modulo the group order
//   - Point operations are constant-time where possible
//   - Random scalars are uniform and come from cryptographically secure sources
//   - Non-canonical scalars and invalid points are rejected in SetBytes
//   - Zero actually overwrites secret material
package group

// Package registry names the algorithm variants and exposes each one as a set
// of operations over byte buffers: KeyGen, Sign, Verify, Setup, Extract,
// Prove and Identify.
//
// A registry is an ordinary value built with New or Default; nothing is
// registered at init time. Adding a variant means pairing a group.Group with a
// schnorr.Hasher and giving it a name.
package registry

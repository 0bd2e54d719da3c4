// Package ibi implements identity-based identification on top of package
// schnorr, following the Kurosawa-Heng transform: a signature over an
// identity, issued by an authority, is the secret that identifies its holder.
//
// # Keys
//
// The [Authority] owns the master key pair (msk, mpk), which are an ordinary
// schnorr secret and public key. [Authority.Extract] signs an identity with
// msk; the resulting signature (s, x, U, P2) is the user secret key (usk).
//
// # Protocol
//
// The prover shows it knows s with B^s = U - x*P1, where x = H(id || U || P1)
// and P1 comes from mpk. Anybody holding mpk can compute the right side from
// the claimed id and U, so the exchange is a plain Schnorr proof of knowledge:
//
//	Prover                                   Verifier
//	  t random, T = B^t
//	  Hello {id, U, T, P2}        ------>
//	                              <------   Challenge {c}, c random
//	  z = t + c*s
//	  Response {z}                ------>
//	                                        B^z == T + c*(U - x*P1) ?
//	                              <------   Outcome {accept | reject}
//
// The usk itself never crosses the wire, and a transcript is useless for a
// later session because c is fresh each time.
//
// # Failure handling
//
// The prover learns one bit. A malformed message is handled exactly like a
// wrong response: the verifier still issues a challenge and rejects at the
// end. A peer that goes silent for longer than the session timeout ends the
// session without an outcome message; both sides then report
// [ErrProtocolTimeout].
//
// # Serving
//
// [Verifier.Verify] runs one session on one connection and is safe to call
// concurrently. [Server] is a ready-made accept loop with per-host rate
// limiting and Prometheus metrics.
package ibi

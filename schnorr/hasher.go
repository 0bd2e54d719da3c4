package schnorr

import (
	"crypto/sha512"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/toranova/id2/group"
)

// Hasher defines the challenge hash used by the scheme.
// Different implementations can provide different hash functions
// and domain separation schemes.
type Hasher interface {
	// Name identifies the hash construction, e.g. "sha512".
	Name() string

	// Challenge computes x = H(msg || U || P1) reduced into the scalar
	// field of g. The digest must be 64 bytes wide so the reduction is
	// statistically uniform.
	Challenge(g group.Group, msg, U, P1 []byte) (group.Scalar, error)
}

// SHA512Hasher implements Hasher using plain SHA-512 over msg || U || P1
// followed by a wide reduction. This is the default hasher and matches
// libsodium-based implementations of the scheme.
type SHA512Hasher struct{}

// Name implements Hasher.Name.
func (h *SHA512Hasher) Name() string {
	return "sha512"
}

// Challenge implements Hasher.Challenge.
func (h *SHA512Hasher) Challenge(g group.Group, msg, U, P1 []byte) (group.Scalar, error) {
	hasher := sha512.New()
	hasher.Write(msg)
	hasher.Write(U)
	hasher.Write(P1)
	digest := hasher.Sum(nil)
	defer wipe(digest)

	return g.ReduceWide(digest)
}

// Blake2bHasher implements Hasher using Blake2b-512 with domain separation.
//
// Domain separation format: prefix + tag + input
type Blake2bHasher struct {
	// Prefix is the domain separation prefix.
	// Default: "ID2-RSS-BLAKE512-v1"
	Prefix string
}

// NewBlake2bHasher creates a Blake2bHasher with the default prefix.
func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{
		Prefix: "ID2-RSS-BLAKE512-v1",
	}
}

// Name implements Hasher.Name.
func (h *Blake2bHasher) Name() string {
	return "blake2b512"
}

// Challenge implements Hasher.Challenge.
func (h *Blake2bHasher) Challenge(g group.Group, msg, U, P1 []byte) (group.Scalar, error) {
	hasher, err := blake2b.New512(nil)
	if err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}
	hasher.Write([]byte(h.Prefix))
	hasher.Write([]byte("chal"))
	hasher.Write(msg)
	hasher.Write(U)
	hasher.Write(P1)
	digest := hasher.Sum(nil)
	defer wipe(digest)

	return g.ReduceWide(digest)
}

var (
	_ Hasher = (*SHA512Hasher)(nil)
	_ Hasher = (*Blake2bHasher)(nil)
)

package ibi

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/toranova/id2/schnorr"
)

// Identity length bounds, in bytes.
const (
	MinIdentityLen = 1
	MaxIdentityLen = 1024
)

// Wire sizes of the fixed-width messages.
const (
	ChallengeSize = schnorr.ScalarSize
	ResponseSize  = schnorr.ScalarSize
	OutcomeSize   = 1

	helloFixedSize = 2 + 3*schnorr.ElementSize
	// MaxHelloSize is the largest Hello a verifier reads.
	MaxHelloSize = helloFixedSize + MaxIdentityLen
)

const (
	outcomeRejectByte byte = 0
	outcomeAcceptByte byte = 1
)

// Hello is the prover's opening message: the claimed identity, the U and P2
// of its usk, and the commitment T = B^t.
//
//	[idLen:2 BE][id][U:32][T:32][P2:32]
type Hello struct {
	ID []byte
	U  [schnorr.ElementSize]byte
	T  [schnorr.ElementSize]byte
	P2 [schnorr.ElementSize]byte
}

// Marshal encodes h.
func (h *Hello) Marshal() ([]byte, error) {
	if err := checkIdentity(h.ID); err != nil {
		return nil, err
	}
	out := make([]byte, 2, helloFixedSize+len(h.ID))
	binary.BigEndian.PutUint16(out, uint16(len(h.ID)))
	out = append(out, h.ID...)
	out = append(out, h.U[:]...)
	out = append(out, h.T[:]...)
	return append(out, h.P2[:]...), nil
}

// UnmarshalHello decodes a Hello. Only the framing is checked here; the
// elements are decoded by the verifier.
func UnmarshalHello(b []byte) (*Hello, error) {
	if len(b) < helloFixedSize+MinIdentityLen {
		return nil, errors.Wrapf(errMalformedMessage, "hello of %d bytes", len(b))
	}
	n := int(binary.BigEndian.Uint16(b))
	if n < MinIdentityLen || n > MaxIdentityLen {
		return nil, errors.Wrapf(errMalformedMessage, "identity length %d", n)
	}
	if len(b) != helloFixedSize+n {
		return nil, errors.Wrapf(errMalformedMessage, "hello of %d bytes for identity length %d", len(b), n)
	}

	h := &Hello{ID: make([]byte, n)}
	off := 2
	off += copy(h.ID, b[off:])
	off += copy(h.U[:], b[off:])
	off += copy(h.T[:], b[off:])
	copy(h.P2[:], b[off:])
	return h, nil
}

func checkIdentity(id []byte) error {
	if len(id) < MinIdentityLen || len(id) > MaxIdentityLen {
		return errors.Wrapf(ErrInvalidIdentity, "length %d outside [%d, %d]", len(id), MinIdentityLen, MaxIdentityLen)
	}
	return nil
}

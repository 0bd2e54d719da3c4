package ibi

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/toranova/id2/schnorr"
	"github.com/toranova/id2/transport"
)

// SelfTest runs a prover for (id, usk) against a verifier for mpk over an
// in-memory pipe and returns the verifier's outcome. It is the quickest way
// to check that a usk on disk still matches its authority.
func SelfTest(ctx context.Context, sch *schnorr.Scheme, mpk *schnorr.PublicKey, id []byte, usk *schnorr.Signature, timeout time.Duration, logger *logrus.Entry) (Outcome, error) {
	prover, err := NewProver(sch, mpk, id, usk, logger)
	if err != nil {
		return OutcomeReject, err
	}
	verifier, err := NewVerifier(sch, mpk, ExpectIdentity(id), WithLogger(logger))
	if err != nil {
		return OutcomeReject, err
	}

	pc, vc := transport.Pipe()
	defer pc.Close()
	defer vc.Close()

	var (
		proverOutcome Outcome
		res           *Result
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		proverOutcome, err = prover.Prove(ctx, pc, timeout)
		return err
	})
	eg.Go(func() error {
		var err error
		res, err = verifier.Verify(ctx, vc, timeout)
		return err
	})
	if err := eg.Wait(); err != nil {
		if res != nil && res.Outcome == OutcomeTimeout {
			return OutcomeTimeout, err
		}
		return OutcomeReject, err
	}

	if res.Outcome != proverOutcome {
		return OutcomeReject, errors.Errorf("prover saw %s, verifier decided %s", proverOutcome, res.Outcome)
	}
	if res.Outcome == OutcomeAccept && !bytes.Equal(res.ID, id) {
		return OutcomeReject, errors.Errorf("verifier recovered identity %q, want %q", res.ID, id)
	}
	return res.Outcome, nil
}

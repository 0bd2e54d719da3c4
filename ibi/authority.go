package ibi

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/toranova/id2/schnorr"
)

// Setup generates a master key pair. It is schnorr KeyGen under another
// name: mpk = msk.Public().
func Setup(sch *schnorr.Scheme) (*schnorr.SecretKey, error) {
	return sch.KeyGen()
}

// Extract issues the user secret key for id: a signature over id under msk.
// Authenticating the requester is the caller's business.
func Extract(sch *schnorr.Scheme, msk *schnorr.SecretKey, id []byte) (*schnorr.Signature, error) {
	if err := checkIdentity(id); err != nil {
		return nil, err
	}
	return sch.Sign(msk, id)
}

// Authority holds the master key pair and issues user secret keys.
//
// It starts uninitialized. Setup moves it to ready; Destroy wipes msk and
// moves it back. An Authority is safe for concurrent use.
type Authority struct {
	mu     sync.RWMutex
	scheme *schnorr.Scheme
	msk    *schnorr.SecretKey
	state  AuthorityState
}

// NewAuthority returns an uninitialized authority over sch.
func NewAuthority(sch *schnorr.Scheme) *Authority {
	return &Authority{scheme: sch}
}

// LoadAuthority returns a ready authority holding msk. The authority takes
// ownership of msk.
func LoadAuthority(sch *schnorr.Scheme, msk *schnorr.SecretKey) (*Authority, error) {
	if msk == nil {
		return nil, errors.Wrap(schnorr.ErrMalformedKey, "nil master secret key")
	}
	if err := msk.Pub.Validate(sch.Group()); err != nil {
		return nil, errors.Wrap(err, "master public key")
	}
	return &Authority{
		scheme: sch,
		msk:    msk,
		state:  AuthorityReady,
	}, nil
}

// Setup generates the master key pair and returns mpk. Calling Setup on a
// ready authority replaces and wipes the previous msk.
func (a *Authority) Setup() (*schnorr.PublicKey, error) {
	msk, err := Setup(a.scheme)
	if err != nil {
		return nil, errors.Wrap(err, "authority setup")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.msk != nil {
		a.msk.Destroy()
	}
	a.msk = msk
	a.state = AuthorityReady
	return msk.Public(), nil
}

// State returns the authority's lifecycle state.
func (a *Authority) State() AuthorityState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// MasterPublicKey returns mpk.
func (a *Authority) MasterPublicKey() (*schnorr.PublicKey, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != AuthorityReady {
		return nil, ErrAuthorityNotReady
	}
	return a.msk.Public(), nil
}

// MasterSecretKey returns a serialized copy of msk for storage. The caller
// owns the buffer and must wipe it.
func (a *Authority) MasterSecretKey() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != AuthorityReady {
		return nil, ErrAuthorityNotReady
	}
	return a.msk.Bytes(), nil
}

// Extract issues the usk for id.
func (a *Authority) Extract(id []byte) (*schnorr.Signature, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != AuthorityReady {
		return nil, ErrAuthorityNotReady
	}
	usk, err := Extract(a.scheme, a.msk, id)
	if err != nil {
		return nil, errors.Wrap(err, "extract")
	}
	return usk, nil
}

// Destroy wipes msk. The authority returns to the uninitialized state.
func (a *Authority) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.msk != nil {
		a.msk.Destroy()
		a.msk = nil
	}
	a.state = AuthorityUninitialized
}

package ibi

import (
	"github.com/pkg/errors"

	"github.com/toranova/id2/transport"
)

var (
	// ErrAuthorityNotReady is returned by Authority methods that need the
	// master keys before Setup has run, or after Destroy.
	ErrAuthorityNotReady = errors.New("authority not set up")

	// ErrProtocolTimeout is returned when a peer sends nothing before the
	// session timeout. The caller may retry with a fresh session.
	ErrProtocolTimeout = errors.New("identification protocol timeout")

	// ErrConnection is returned when the transport fails mid-session.
	ErrConnection = errors.New("identification connection error")

	// ErrInvalidIdentity is returned for identities outside
	// [MinIdentityLen, MaxIdentityLen].
	ErrInvalidIdentity = errors.New("invalid identity")

	// errMalformedMessage marks structurally invalid wire data. It never
	// leaves the package: the verifier folds it into a rejection.
	errMalformedMessage = errors.New("malformed message")
)

// transportErr maps transport failures onto the protocol taxonomy.
func transportErr(err error, step string) error {
	if errors.Is(err, transport.ErrTimeout) {
		return errors.Wrapf(ErrProtocolTimeout, "%s: %v", step, err)
	}
	return errors.Wrapf(ErrConnection, "%s: %v", step, err)
}

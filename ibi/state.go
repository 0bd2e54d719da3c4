package ibi

// Outcome is the result of one identification session.
type Outcome int

const (
	// OutcomeReject means the prover failed to identify. Malformed messages
	// and failed relations both end here.
	OutcomeReject Outcome = iota
	// OutcomeAccept means the prover demonstrated a valid usk for the
	// claimed identity.
	OutcomeAccept
	// OutcomeTimeout means the session was abandoned because a peer was
	// silent for longer than the timeout.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accept"
	case OutcomeReject:
		return "reject"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// State is the position of a prover or verifier session in the protocol.
type State int

const (
	StateInit State = iota
	StateConnected
	StateChallenged
	StateResponded
	StateAccepted
	StateRejected
	StateTimeout
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnected:
		return "connected"
	case StateChallenged:
		return "challenged"
	case StateResponded:
		return "responded"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Final reports whether s ends a session.
func (s State) Final() bool {
	return s == StateAccepted || s == StateRejected || s == StateTimeout
}

// finalState maps an outcome to the state it leaves a session in.
func finalState(o Outcome) State {
	switch o {
	case OutcomeAccept:
		return StateAccepted
	case OutcomeTimeout:
		return StateTimeout
	default:
		return StateRejected
	}
}

// AuthorityState is the lifecycle of an Authority.
type AuthorityState int

const (
	AuthorityUninitialized AuthorityState = iota
	AuthorityReady
)

func (s AuthorityState) String() string {
	if s == AuthorityReady {
		return "ready"
	}
	return "uninitialized"
}

package ibi

import (
	"io"

	"github.com/sirupsen/logrus"
)

// session tracks one run of the protocol on one connection. It is never
// reused: a new session starts in StateInit for every connection.
type session struct {
	role   string
	state  State
	logger *logrus.Entry
}

func newSession(role, remote string, logger *logrus.Entry) *session {
	return &session{
		role:  role,
		state: StateInit,
		logger: logger.WithFields(logrus.Fields{
			"role":   role,
			"remote": remote,
		}),
	}
}

// advance moves the session to next. Final states are sticky.
func (s *session) advance(next State) {
	if s.state.Final() {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"from": s.state,
		"to":   next,
	}).Debug("session state")
	s.state = next
}

// finish moves the session to the final state for o and returns o.
func (s *session) finish(o Outcome) Outcome {
	s.advance(finalState(o))
	return o
}

// orDiscard returns l, or a logger that drops everything when l is nil.
func orDiscard(l *logrus.Entry) *logrus.Entry {
	if l != nil {
		return l
	}
	logger := logrus.New()
	logger.Out = io.Discard
	return logrus.NewEntry(logger)
}

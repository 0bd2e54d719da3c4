package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

// testLoggerAdapter routes log output through testing.TB.Log, so logs only
// show for failed tests or with -v.
type testLoggerAdapter struct {
	t testing.TB
}

func (a *testLoggerAdapter) Write(d []byte) (int, error) {
	n := len(d)
	if n > 0 && d[n-1] == '\n' {
		d = d[:n-1]
	}
	a.t.Log(string(d))
	return n, nil
}

// NewTestLogger returns a debug-level logger writing to t.
func NewTestLogger(t testing.TB) *logrus.Logger {
	logger := logrus.New()
	logger.Out = &testLoggerAdapter{t: t}
	logger.Level = logrus.DebugLevel
	return logger
}

// NewTestEntry returns an Entry of NewTestLogger with the "prefix" field set.
func NewTestEntry(t testing.TB, prefix string) *logrus.Entry {
	return NewTestLogger(t).WithField("prefix", prefix)
}

// NewTestConfig returns a default config rooted in a temporary directory and
// logging to t.
func NewTestConfig(t testing.TB) *Config {
	c := NewDefaultConfig()
	c.DataDir = t.TempDir()
	c.LogLevel = "debug"
	c.logger = NewTestLogger(t)
	return c
}

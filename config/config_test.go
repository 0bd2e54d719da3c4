package config

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	c := NewDefaultConfig()
	assert.Equal(t, DefaultScheme, c.Scheme)
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.Equal(t, DefaultBindAddr, c.BindAddr)

	c.SetDataDir("/tmp/id2")
	assert.Equal(t, filepath.Join("/tmp/id2", DefaultMasterSecretFile), c.MasterSecretPath())
	assert.Equal(t, filepath.Join("/tmp/id2", DefaultMasterPublicFile), c.MasterPublicPath())
	assert.Equal(t, filepath.Join("/tmp/id2", DefaultUserKeyFile), c.UserKeyPath())
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"bogus": logrus.DebugLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, LogLevel(in), in)
	}
}

func TestLoggerPrefix(t *testing.T) {
	c := NewTestConfig(t)
	entry := c.Logger()
	assert.Equal(t, "id2", entry.Data["prefix"])
	assert.Same(t, entry.Logger, c.Logger().Logger)
}

package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames, relative to DataDir.
const (
	// DefaultMasterSecretFile holds the authority's encrypted msk.
	DefaultMasterSecretFile = "msk.json"
	// DefaultMasterPublicFile holds the authority's mpk in base58.
	DefaultMasterPublicFile = "mpk.b58"
	// DefaultUserKeyFile holds a prover's encrypted usk.
	DefaultUserKeyFile = "usk.json"
	// DefaultConfigName is the viper config file name, without extension.
	DefaultConfigName = "id2"
)

// Default configuration values.
const (
	DefaultLogLevel     = "info"
	DefaultScheme       = "rss25519"
	DefaultBindAddr     = "127.0.0.1:1338"
	DefaultVerifierAddr = "127.0.0.1:1338"
	DefaultMetricsAddr  = ""
	DefaultTimeout      = 5000 * time.Millisecond
	DefaultMaxSessions  = 64
	DefaultRatePerHost  = 5.0
	DefaultBurstPerHost = 10
)

// Config contains the configuration of an id2 node, whichever role it plays.
type Config struct {
	// DataDir is the directory holding keys and the optional config file.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// Scheme names the algorithm variant, see package registry.
	Scheme string `mapstructure:"scheme"`

	// BindAddr is the address:port a verifier listens on.
	BindAddr string `mapstructure:"listen"`

	// VerifierAddr is the address:port a prover dials.
	VerifierAddr string `mapstructure:"verifier"`

	// MetricsAddr, if set, serves Prometheus metrics over HTTP.
	MetricsAddr string `mapstructure:"metrics"`

	// Timeout bounds connecting and every protocol step.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxSessions caps concurrent verifier sessions.
	MaxSessions int `mapstructure:"max-sessions"`

	// RatePerHost and BurstPerHost throttle sessions per remote host.
	RatePerHost  float64 `mapstructure:"rate"`
	BurstPerHost int     `mapstructure:"burst"`

	// Identity is the identity a prover claims, or a verifier expects.
	Identity string `mapstructure:"id"`

	// Passphrase unlocks secret key files. Prefer the ID2_PASSPHRASE
	// environment variable to a flag.
	Passphrase string `mapstructure:"passphrase"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:      DefaultDataDir(),
		LogLevel:     DefaultLogLevel,
		Scheme:       DefaultScheme,
		BindAddr:     DefaultBindAddr,
		VerifierAddr: DefaultVerifierAddr,
		MetricsAddr:  DefaultMetricsAddr,
		Timeout:      DefaultTimeout,
		MaxSessions:  DefaultMaxSessions,
		RatePerHost:  DefaultRatePerHost,
		BurstPerHost: DefaultBurstPerHost,
	}
}

// SetDataDir sets the top-level data directory.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
}

// MasterSecretPath returns the path of the authority's msk file.
func (c *Config) MasterSecretPath() string {
	return filepath.Join(c.DataDir, DefaultMasterSecretFile)
}

// MasterPublicPath returns the path of the authority's mpk file.
func (c *Config) MasterPublicPath() string {
	return filepath.Join(c.DataDir, DefaultMasterPublicFile)
}

// UserKeyPath returns the path of the prover's usk file.
func (c *Config) UserKeyPath() string {
	return filepath.Join(c.DataDir, DefaultUserKeyFile)
}

// Logger returns a formatted logrus Entry, with prefix set to "id2".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "id2")
}

// DefaultDataDir returns the default directory for id2 keys and config,
// attempting to respect OS conventions.
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, ".ID2")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "ID2")
		default:
			return filepath.Join(home, ".id2")
		}
	}
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}

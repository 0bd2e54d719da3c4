package commands

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toranova/id2/config"
	"github.com/toranova/id2/keystore"
	"github.com/toranova/id2/registry"
	"github.com/toranova/id2/schnorr"
)

var (
	_config   = config.NewDefaultConfig()
	_registry = registry.Default()
)

// RootCmd is the root command for id2.
var RootCmd = &cobra.Command{
	Use:              "id2",
	Short:            "tight Schnorr signatures and identity-based identification",
	TraverseChildren: true,
	SilenceUsage:     true,
}

func init() {
	RootCmd.PersistentFlags().String("datadir", _config.DataDir, "Top-level directory for keys and configuration")
	RootCmd.PersistentFlags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	RootCmd.PersistentFlags().String("scheme", _config.Scheme, "Algorithm variant: "+strings.Join(_registry.Names(), ", "))
	RootCmd.PersistentFlags().String("passphrase", "", "Passphrase for secret key files (or ID2_PASSPHRASE)")
}

// loadConfig binds flags and environment, reads [datadir]/id2.{toml,yaml,json}
// if present, and logs the result.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix("ID2")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags and environment
	if err := v.Unmarshal(_config); err != nil {
		return err
	}

	v.SetConfigName(config.DefaultConfigName)
	v.AddConfigPath(_config.DataDir)

	if err := v.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	if err := v.Unmarshal(_config); err != nil {
		return err
	}
	_config.SetDataDir(_config.DataDir)

	_config.Logger().WithFields(logrus.Fields{
		"DataDir":      _config.DataDir,
		"Scheme":       _config.Scheme,
		"BindAddr":     _config.BindAddr,
		"VerifierAddr": _config.VerifierAddr,
		"MetricsAddr":  _config.MetricsAddr,
		"Timeout":      _config.Timeout,
		"MaxSessions":  _config.MaxSessions,
		"RatePerHost":  _config.RatePerHost,
		"BurstPerHost": _config.BurstPerHost,
		"Identity":     _config.Identity,
	}).Debug("config")
	return nil
}

func algorithm() (*registry.Algorithm, error) {
	return _registry.Get(_config.Scheme)
}

// readSecret opens a keystore file and checks it holds the expected kind of
// key for the configured scheme.
func readSecret(path, kind string) (*keystore.Secret, error) {
	s, err := keystore.ReadSecretFile(path, _config.Passphrase)
	if err != nil {
		return nil, err
	}
	if s.Kind != kind || s.Scheme != _config.Scheme {
		s.Destroy()
		return nil, errors.Errorf("%s holds a %s/%s key, want %s/%s", path, s.Scheme, s.Kind, _config.Scheme, kind)
	}
	return s, nil
}

// readPublic reads a public key file for the configured scheme.
func readPublic(path string) ([]byte, error) {
	scheme, pk, err := keystore.ReadPublicFile(path)
	if err != nil {
		return nil, err
	}
	if scheme != _config.Scheme {
		return nil, errors.Errorf("%s holds a %s key, want %s", path, scheme, _config.Scheme)
	}
	if len(pk) != schnorr.PublicKeySize {
		return nil, errors.Wrapf(schnorr.ErrMalformedKey, "%s", path)
	}
	return pk, nil
}

func requirePassphrase() error {
	if _config.Passphrase == "" {
		return errors.New("a passphrase is required: set --passphrase or ID2_PASSPHRASE")
	}
	return nil
}

package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toranova/id2/keystore"
	"github.com/toranova/id2/schnorr"
)

// NewSetupCmd returns the command that creates the authority's master keys.
func NewSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Short:   "Create the authority master key pair in the data directory",
		PreRunE: loadConfig,
		RunE:    setup,
	}
}

// NewExtractCmd returns the command that issues a user secret key.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract",
		Short:   "Issue the user secret key for an identity",
		PreRunE: loadConfig,
		RunE:    extract,
	}
	cmd.Flags().String("id", "", "Identity to issue a key for")
	cmd.Flags().String("out", "", "User key file (default [datadir]/usk.json)")
	cmd.Flags().String("user-passphrase", "", "Passphrase for the user key file (default: same as --passphrase)")
	return cmd
}

func setup(cmd *cobra.Command, args []string) error {
	if err := requirePassphrase(); err != nil {
		return err
	}
	alg, err := algorithm()
	if err != nil {
		return err
	}

	msk, mpk, err := alg.Setup()
	if err != nil {
		return err
	}
	defer schnorr.Wipe(msk)

	secret := &keystore.Secret{Kind: keystore.KindMaster, Scheme: alg.Name(), Key: msk}
	if err := keystore.WriteSecretFile(_config.MasterSecretPath(), _config.Passphrase, secret, keystore.DefaultParams); err != nil {
		return err
	}
	if err := keystore.WritePublicFile(_config.MasterPublicPath(), alg.Name(), mpk); err != nil {
		return err
	}

	_config.Logger().WithField("datadir", _config.DataDir).Info("authority ready")
	fmt.Fprintln(cmd.OutOrStdout(), keystore.EncodePublic(alg.Name(), mpk))
	return nil
}

func extract(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	if _config.Identity == "" {
		return errors.New("--id is required")
	}

	msk, err := readSecret(_config.MasterSecretPath(), keystore.KindMaster)
	if err != nil {
		return err
	}
	defer msk.Destroy()

	usk, err := alg.Extract(msk.Key, []byte(_config.Identity))
	if err != nil {
		return err
	}
	defer schnorr.Wipe(usk)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = _config.UserKeyPath()
	}
	pass, _ := cmd.Flags().GetString("user-passphrase")
	if pass == "" {
		pass = _config.Passphrase
	}

	secret := &keystore.Secret{
		Kind:     keystore.KindUser,
		Scheme:   alg.Name(),
		Identity: []byte(_config.Identity),
		Key:      usk,
	}
	if err := keystore.WriteSecretFile(out, pass, secret, keystore.DefaultParams); err != nil {
		return err
	}

	_config.Logger().WithFields(logrus.Fields{
		"id":   _config.Identity,
		"file": out,
	}).Info("user key issued")
	return nil
}

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/toranova/id2/keystore"
	"github.com/toranova/id2/schnorr"
)

// NewKeygenCmd returns the command that creates a signing key pair.
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen",
		Short:   "Create a signing key pair",
		PreRunE: loadConfig,
		RunE:    keygen,
	}
	cmd.Flags().String("out", "", "Secret key file (default [datadir]/signer.json); the public key goes to <out>.pub")
	return cmd
}

// NewSignCmd returns the command that signs a message.
func NewSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sign [message]",
		Short:   "Sign a message and print the base58 signature",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE:    sign,
	}
	cmd.Flags().String("key", "", "Secret key file (default [datadir]/signer.json)")
	return cmd
}

// NewVerifyCmd returns the command that checks a signature.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify [message] [signature]",
		Short:   "Check a base58 signature on a message",
		Args:    cobra.ExactArgs(2),
		PreRunE: loadConfig,
		RunE:    verify,
	}
	cmd.Flags().String("pub", "", "Public key file (default [datadir]/signer.json.pub)")
	return cmd
}

func signerPath(cmd *cobra.Command, flag string) string {
	if p, _ := cmd.Flags().GetString(flag); p != "" {
		return p
	}
	return filepath.Join(_config.DataDir, "signer.json")
}

func keygen(cmd *cobra.Command, args []string) error {
	if err := requirePassphrase(); err != nil {
		return err
	}
	alg, err := algorithm()
	if err != nil {
		return err
	}

	sk, pk, err := alg.KeyGen()
	if err != nil {
		return err
	}
	defer schnorr.Wipe(sk)

	out := signerPath(cmd, "out")
	secret := &keystore.Secret{Kind: keystore.KindSecretKey, Scheme: alg.Name(), Key: sk}
	if err := keystore.WriteSecretFile(out, _config.Passphrase, secret, keystore.DefaultParams); err != nil {
		return err
	}
	if err := keystore.WritePublicFile(out+".pub", alg.Name(), pk); err != nil {
		return err
	}

	_config.Logger().WithField("file", out).Info("key pair written")
	fmt.Fprintln(cmd.OutOrStdout(), keystore.EncodePublic(alg.Name(), pk))
	return nil
}

func sign(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	secret, err := readSecret(signerPath(cmd, "key"), keystore.KindSecretKey)
	if err != nil {
		return err
	}
	defer secret.Destroy()

	sig, err := alg.Sign(secret.Key, []byte(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), base58.Encode(sig))
	return nil
}

func verify(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	pubPath, _ := cmd.Flags().GetString("pub")
	if pubPath == "" {
		pubPath = filepath.Join(_config.DataDir, "signer.json.pub")
	}
	pk, err := readPublic(pubPath)
	if err != nil {
		return err
	}
	sig, err := base58.Decode(args[1])
	if err != nil {
		return errors.Wrap(err, "decoding signature")
	}

	ok, err := alg.Verify(pk, []byte(args[0]), sig)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "invalid")
		return errors.New("signature does not verify")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}

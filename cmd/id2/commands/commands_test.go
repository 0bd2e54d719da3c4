package commands

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	RootCmd.AddCommand(
		NewKeygenCmd(),
		NewSignCmd(),
		NewVerifyCmd(),
		NewSetupCmd(),
		NewExtractCmd(),
		NewProveCmd(),
		NewServeCmd(),
		NewSelfTestCmd(),
	)
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestAuthorityFlow(t *testing.T) {
	dir := t.TempDir()
	common := []string{"--datadir", dir, "--passphrase", "pw", "--scheme", "rss25519", "--log", "error"}

	out, err := execute(t, append([]string{"setup"}, common...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rss25519:"), out)

	_, err = execute(t, append([]string{"extract", "--id", "alice"}, common...)...)
	require.NoError(t, err)

	out, err = execute(t, append([]string{"selftest"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "accept", out)

	_, err = execute(t, "selftest", "--datadir", dir, "--passphrase", "wrong", "--scheme", "rss25519", "--log", "error")
	assert.Error(t, err)
}

func TestVariableTimeSchemeNotOffered(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "keygen", "--datadir", dir, "--passphrase", "pw", "--scheme", "rssbjj", "--log", "error")
	assert.Error(t, err)
}

func TestSignFlow(t *testing.T) {
	dir := t.TempDir()
	common := []string{"--datadir", dir, "--passphrase", "pw", "--scheme", "rss25519-blake2b", "--log", "error"}

	_, err := execute(t, append([]string{"keygen"}, common...)...)
	require.NoError(t, err)

	sig, err := execute(t, append([]string{"sign", "hello"}, common...)...)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	out, err := execute(t, append([]string{"verify", "hello", sig}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "valid", out)

	out, err = execute(t, append([]string{"verify", "hellO", sig}, common...)...)
	assert.Error(t, err)
	assert.Equal(t, "invalid", out)

	// Keys are bound to their scheme.
	_, err = execute(t, "sign", "hello", "--datadir", dir, "--passphrase", "pw", "--scheme", "rss25519", "--log", "error")
	assert.Error(t, err)
}

package keystore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps argon2 fast in tests.
var cheap = Params{Time: 1, MemoryKB: 64, Threads: 1}

func TestSealOpen(t *testing.T) {
	in := &Secret{
		Kind:     KindUser,
		Scheme:   "rss25519",
		Identity: []byte("alice"),
		Key:      bytes.Repeat([]byte{7}, 128),
	}
	raw, err := Seal("hunter2", in, cheap)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, in.Key), "plaintext key in envelope")

	out, err := Open("hunter2", raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out.Destroy()
	assert.Equal(t, make([]byte, 128), out.Key)
}

func TestOpenWrongPassphrase(t *testing.T) {
	raw, err := Seal("right", &Secret{Kind: KindMaster, Scheme: "rssbjj", Key: []byte{1, 2, 3}}, cheap)
	require.NoError(t, err)

	_, err = Open("wrong", raw)
	assert.True(t, errors.Is(err, ErrAuthFailed))
}

func TestOpenRejectsTamperedMetadata(t *testing.T) {
	raw, err := Seal("pw", &Secret{Kind: KindUser, Scheme: "rss25519", Identity: []byte("alice"), Key: []byte{9}}, cheap)
	require.NoError(t, err)

	// "alice" is base64 "YWxpY2U=" in the JSON; swap in "bob".
	tampered := bytes.Replace(raw, []byte(`"YWxpY2U="`), []byte(`"Ym9i"`), 1)
	require.NotEqual(t, raw, tampered)
	_, err = Open("pw", tampered)
	assert.True(t, errors.Is(err, ErrAuthFailed))
}

func TestOpenRejectsGarbage(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("hello"), []byte(filePrefix + "{"), []byte(filePrefix + `{"version":2}`)} {
		_, err := Open("pw", raw)
		assert.True(t, errors.Is(err, ErrInvalid), "accepted %q", raw)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	skPath := filepath.Join(dir, "keys", "msk.json")
	require.NoError(t, WriteSecretFile(skPath, "pw", &Secret{Kind: KindMaster, Scheme: "rss25519", Key: []byte{1, 2}}, cheap))
	s, err := ReadSecretFile(skPath, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, s.Key)
	assert.Equal(t, KindMaster, s.Kind)

	pkPath := filepath.Join(dir, "mpk.b58")
	pk := []byte{0, 1, 2, 3, 250, 251}
	require.NoError(t, WritePublicFile(pkPath, "rssbjj", pk))
	scheme, got, err := ReadPublicFile(pkPath)
	require.NoError(t, err)
	assert.Equal(t, "rssbjj", scheme)
	assert.Equal(t, pk, got)
}

func TestDecodePublicRejects(t *testing.T) {
	for _, s := range []string{"", "rss25519", ":abc", "rss25519:", "rss25519:0OIl"} {
		_, _, err := DecodePublic(s)
		assert.True(t, errors.Is(err, ErrInvalid), "accepted %q", s)
	}
}

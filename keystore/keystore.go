package keystore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/toranova/id2/group"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	filePrefix      = "ID2ENC1\n"
	kdfName         = "argon2id"
)

// Kinds of secret a keystore file may hold.
const (
	KindSecretKey = "sk"
	KindMaster    = "msk"
	KindUser      = "usk"
)

var (
	// ErrAuthFailed is returned when the passphrase is wrong or the file was
	// tampered with.
	ErrAuthFailed = errors.New("keystore authentication failed")
	// ErrInvalid is returned for files that are not keystore envelopes.
	ErrInvalid = errors.New("keystore envelope is invalid")
)

// Params are the argon2id cost parameters.
type Params struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// DefaultParams is the argon2id cost used for new files.
var DefaultParams = Params{Time: 2, MemoryKB: 64 * 1024, Threads: 1}

// Secret is a decrypted keystore entry.
type Secret struct {
	Kind     string
	Scheme   string
	Identity []byte
	Key      []byte
}

// Destroy wipes the key bytes.
func (s *Secret) Destroy() {
	zeroBytes(s.Key)
}

// Envelope is the on-disk form of a Secret. Kind, Scheme and Identity are in
// the clear but authenticated.
type Envelope struct {
	Version     uint32 `json:"version"`
	Kind        string `json:"kind"`
	Scheme      string `json:"scheme"`
	Identity    []byte `json:"identity,omitempty"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Seal encrypts s under passphrase.
func Seal(passphrase string, s *Secret, p Params) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}
	key := argon2.IDKey([]byte(passphrase), salt, p.Time, p.MemoryKB, p.Threads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}

	env := &Envelope{
		Version:     envelopeVersion,
		Kind:        s.Kind,
		Scheme:      s.Scheme,
		Identity:    s.Identity,
		KDF:         kdfName,
		KDFTime:     p.Time,
		KDFMemoryKB: p.MemoryKB,
		KDFThreads:  p.Threads,
		Salt:        salt,
		Nonce:       nonce,
	}
	env.Ciphertext = aead.Seal(nil, nonce, s.Key, env.associatedData())

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "encoding envelope")
	}
	return append([]byte(filePrefix), raw...), nil
}

// Open decrypts data produced by Seal.
func Open(passphrase string, data []byte) (*Secret, error) {
	if !bytes.HasPrefix(data, []byte(filePrefix)) {
		return nil, errors.Wrap(ErrInvalid, "missing header")
	}
	var env Envelope
	if err := json.Unmarshal(data[len(filePrefix):], &env); err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	if env.Version != envelopeVersion || env.KDF != kdfName {
		return nil, errors.Wrapf(ErrInvalid, "version %d, kdf %q", env.Version, env.KDF)
	}
	if len(env.Nonce) != chacha20poly1305.NonceSizeX || env.KDFThreads == 0 {
		return nil, errors.Wrap(ErrInvalid, "bad parameters")
	}

	key := argon2.IDKey([]byte(passphrase), env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(group.ErrCryptoBackend, err.Error())
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, env.associatedData())
	if err != nil {
		return nil, ErrAuthFailed
	}
	return &Secret{
		Kind:     env.Kind,
		Scheme:   env.Scheme,
		Identity: env.Identity,
		Key:      plaintext,
	}, nil
}

// associatedData binds the clear-text metadata to the ciphertext.
func (e *Envelope) associatedData() []byte {
	var b bytes.Buffer
	for _, f := range [][]byte{[]byte(e.Kind), []byte(e.Scheme), e.Identity} {
		b.WriteByte(byte(len(f) >> 8))
		b.WriteByte(byte(len(f)))
		b.Write(f)
	}
	return b.Bytes()
}

// WriteSecretFile seals s into path, readable only by the owner.
func WriteSecretFile(path, passphrase string, s *Secret, p Params) error {
	raw, err := Seal(passphrase, s, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating key directory")
	}
	return errors.Wrap(os.WriteFile(path, raw, 0o600), "writing key file")
}

// ReadSecretFile opens the sealed file at path.
func ReadSecretFile(path, passphrase string) (*Secret, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading key file")
	}
	return Open(passphrase, raw)
}

// EncodePublic renders a public key as "scheme:base58".
func EncodePublic(scheme string, pk []byte) string {
	return scheme + ":" + base58.Encode(pk)
}

// DecodePublic parses the output of EncodePublic.
func DecodePublic(s string) (scheme string, pk []byte, err error) {
	scheme, enc, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || scheme == "" || enc == "" {
		return "", nil, errors.Wrap(ErrInvalid, "public key must be scheme:base58")
	}
	pk, err = base58.Decode(enc)
	if err != nil {
		return "", nil, errors.Wrap(ErrInvalid, err.Error())
	}
	return scheme, pk, nil
}

// WritePublicFile writes EncodePublic(scheme, pk) to path.
func WritePublicFile(path, scheme string, pk []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating key directory")
	}
	return errors.Wrap(os.WriteFile(path, []byte(EncodePublic(scheme, pk)+"\n"), 0o644), "writing public key")
}

// ReadPublicFile reads a file written by WritePublicFile.
func ReadPublicFile(path string) (scheme string, pk []byte, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "reading public key")
	}
	return DecodePublic(string(raw))
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

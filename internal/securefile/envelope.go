// Package securefile reads and writes passphrase-encrypted JSON files.
// Keys are derived with Argon2id and sealed with XChaCha20-Poly1305; writes
// go through a temp file and a rename.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/errs"
)

const (
	envelopeVersion = 1
	saltSize        = 16
)

// ErrInvalidPassphrase is deliberately vague: a wrong passphrase and a
// tampered file look the same.
var ErrInvalidPassphrase = errs.New(errs.KindConfiguration, "invalid_passphrase", "invalid passphrase or corrupted file")

// KDF holds the Argon2id cost parameters stored with each envelope.
type KDF struct {
	Time    uint32 `json:"argon_time"`
	Memory  uint32 `json:"argon_memory_kib"`
	Threads uint8  `json:"argon_threads"`
	KeyLen  uint32 `json:"argon_key_len"`
}

var DefaultKDF = KDF{
	Time:    2,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  chacha20poly1305.KeySize,
}

// Envelope is the on-disk form.
type Envelope struct {
	Version int    `json:"version"`
	KDF     KDF    `json:"kdf"`
	Salt    string `json:"salt_b64"`
	Nonce   string `json:"nonce_b64"`
	Cipher  string `json:"ct_b64"`
}

type Options struct {
	KDF KDF
	// AAD must be identical on read and write.
	AAD []byte
}

func (o Options) kdf() KDF {
	if o.KDF.KeyLen == 0 {
		return DefaultKDF
	}
	return o.KDF
}

// Seal encrypts v under passphrase.
func Seal[T any](v T, passphrase []byte, opt Options) (Envelope, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "marshal plaintext")
	}

	kdf := opt.kdf()
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, errors.Wrap(err, "rand salt")
	}
	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt, kdf))
	if err != nil {
		return Envelope{}, errors.Wrap(err, "aead")
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, errors.Wrap(err, "rand nonce")
	}

	return Envelope{
		Version: envelopeVersion,
		KDF:     kdf,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Cipher:  base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, opt.AAD)),
	}, nil
}

// Open decrypts env into a T.
func Open[T any](env Envelope, passphrase []byte, opt Options) (T, error) {
	var zero T
	if env.Version != envelopeVersion {
		return zero, errors.Errorf("unsupported envelope version %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return zero, errors.Wrap(err, "decode salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return zero, errors.Wrap(err, "decode nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(env.Cipher)
	if err != nil {
		return zero, errors.Wrap(err, "decode ciphertext")
	}

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt, env.KDF))
	if err != nil {
		return zero, errors.Wrap(err, "aead")
	}
	if len(nonce) != aead.NonceSize() {
		return zero, ErrInvalidPassphrase
	}
	plain, err := aead.Open(nil, nonce, ct, opt.AAD)
	if err != nil {
		return zero, ErrInvalidPassphrase
	}

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, errors.Wrap(err, "unmarshal plaintext")
	}
	return out, nil
}

// WriteJSON seals v and atomically replaces path.
func WriteJSON[T any](path string, v T, passphrase []byte, opt Options) error {
	env, err := Seal(v, passphrase, opt)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}
	return atomicWriteFile(path, b, constants.FilePerm)
}

// ReadJSON opens the envelope at path. A missing file is reported with an
// error matching os.ErrNotExist.
func ReadJSON[T any](path string, passphrase []byte, opt Options) (T, error) {
	var zero T
	b, err := os.ReadFile(path)
	if err != nil {
		return zero, errors.Wrap(err, "read envelope")
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return zero, errors.Wrap(err, "unmarshal envelope")
	}
	return Open[T](env, passphrase, opt)
}

func deriveKey(passphrase, salt []byte, kdf KDF) []byte {
	return argon2.IDKey(passphrase, salt, kdf.Time, kdf.Memory, kdf.Threads, kdf.KeyLen)
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "write tmp")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "rename")
	}
	return nil
}

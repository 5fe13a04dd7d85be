// Package memo builds the encrypted memo attached to burn transfers.
//
// Wire format: ENC:<base64 iv>:<base64 ciphertext>, AES-256-CBC with PKCS#7
// padding and a fresh 16-byte IV per call. The backend owns decryption.
package memo

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/errs"
)

const (
	Prefix  = "ENC"
	KeySize = 32
	IVSize  = aes.BlockSize

	TypeBurn = "burn"

	base64KeyPrefix = "base64:"
)

var (
	ErrMissingKey = errs.New(errs.KindConfiguration, "missing_key", "memo encryption key is not configured")
	ErrInvalidKey = errs.New(errs.KindConfiguration, "invalid_key", "memo encryption key must be 32 bytes")
)

// Payload is the cleartext of a burn memo. Field order is the serialized key
// order.
type Payload struct {
	Type          string `json:"type"`
	User          string `json:"user"`
	AssetID       string `json:"assetId"`
	IncineratorID string `json:"incineratorId"`
	TS            int64  `json:"ts"`
}

func NewBurnPayload(user, assetID, incineratorID string, now time.Time) Payload {
	return Payload{
		Type:          TypeBurn,
		User:          user,
		AssetID:       assetID,
		IncineratorID: incineratorID,
		TS:            now.Unix(),
	}
}

// ParseKey turns the configured secret into key bytes. The secret is either
// the raw 32-byte string or "base64:" followed by its encoding.
func ParseKey(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingKey
	}
	key := []byte(secret)
	if strings.HasPrefix(secret, base64KeyPrefix) {
		b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, base64KeyPrefix))
		if err != nil {
			return nil, errs.Wrap(ErrInvalidKey, err)
		}
		key = b
	}
	if len(key) != KeySize {
		return nil, errs.Wrapf(ErrInvalidKey, "got %d bytes", len(key))
	}
	return key, nil
}

// Encode serializes p and encrypts it under key.
func Encode(p Payload, key []byte) (string, error) {
	return encode(p, key, rand.Reader)
}

func encode(p Payload, key []byte, random io.Reader) (string, error) {
	if len(key) == 0 {
		return "", ErrMissingKey
	}
	if len(key) != KeySize {
		return "", errs.Wrapf(ErrInvalidKey, "got %d bytes", len(key))
	}

	plain, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshal memo payload")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errs.Wrap(ErrInvalidKey, err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return "", errors.Wrap(err, "read iv")
	}

	padded := pkcs7Pad(plain, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return Format(iv, ct), nil
}

// Format joins iv and ciphertext into the wire format.
func Format(iv, ct []byte) string {
	return strings.Join([]string{
		Prefix,
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(ct),
	}, ":")
}

// IsEncrypted reports whether s has the three-field wire shape.
func IsEncrypted(s string) bool {
	parts := strings.Split(s, ":")
	return len(parts) == 3 && parts[0] == Prefix && parts[1] != "" && parts[2] != ""
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

package memo

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/errs"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// decrypt mirrors what the backend does with a memo.
func decrypt(t *testing.T, memo string, key []byte) []byte {
	t.Helper()
	parts := strings.Split(memo, ":")
	require.Len(t, parts, 3)
	require.Equal(t, Prefix, parts[0])

	iv, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.Len(t, iv, IVSize)
	ct, err := base64.StdEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	require.Zero(t, len(ct)%aes.BlockSize)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	pad := int(plain[len(plain)-1])
	require.True(t, pad >= 1 && pad <= aes.BlockSize)
	require.Equal(t, bytes.Repeat([]byte{byte(pad)}, pad), plain[len(plain)-pad:])
	return plain[:len(plain)-pad]
}

func TestEncodeRoundTrip(t *testing.T) {
	p := NewBurnPayload("alice.wam", "1099511627776", "1099511620001", time.Unix(1700000000, 0))

	out, err := Encode(p, testKey)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(out))

	want := `{"type":"burn","user":"alice.wam","assetId":"1099511627776","incineratorId":"1099511620001","ts":1700000000}`
	assert.Equal(t, want, string(decrypt(t, out, testKey)))
}

func TestEncodeFreshIV(t *testing.T) {
	p := NewBurnPayload("alice.wam", "1", "2", time.Unix(1700000000, 0))

	a, err := Encode(p, testKey)
	require.NoError(t, err)
	b, err := Encode(p, testKey)
	require.NoError(t, err)

	assert.NotEqual(t, strings.Split(a, ":")[1], strings.Split(b, ":")[1])
	assert.Equal(t, decrypt(t, a, testKey), decrypt(t, b, testKey))
}

func TestEncodeDeterministicWithFixedRandom(t *testing.T) {
	p := NewBurnPayload("bob", "1", "2", time.Unix(1, 0))
	iv := bytes.Repeat([]byte{7}, IVSize)

	out, err := encode(p, testKey, bytes.NewReader(iv))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ENC:"+base64.StdEncoding.EncodeToString(iv)+":"))
}

func TestEncodeMissingKey(t *testing.T) {
	_, err := Encode(Payload{Type: TypeBurn}, nil)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	_, err = Encode(Payload{Type: TypeBurn}, []byte("short"))
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" " + string(testKey) + " ")
	require.NoError(t, err)
	assert.Equal(t, testKey, k)

	k, err = ParseKey("base64:" + base64.StdEncoding.EncodeToString(testKey))
	require.NoError(t, err)
	assert.Equal(t, testKey, k)

	_, err = ParseKey("")
	assert.True(t, errors.Is(err, ErrMissingKey))

	_, err = ParseKey("too-short")
	assert.True(t, errors.Is(err, ErrInvalidKey))

	_, err = ParseKey("base64:!!!")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted("ENC:aaa:bbb"))
	assert.False(t, IsEncrypted("ENC:aaa"))
	assert.False(t, IsEncrypted("PLAIN:aaa:bbb"))
	assert.False(t, IsEncrypted(`{"type":"burn"}`))
}

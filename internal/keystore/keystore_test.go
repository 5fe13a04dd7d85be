package keystore

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/memo"
	"github.com/cinderlabs/cinder-client/internal/securefile"
)

func TestSaveLoad(t *testing.T) {
	s := NewStoreAt(filepath.Join(t.TempDir(), "keystore.json"))
	assert.False(t, s.Exists())

	seed, err := NewSeed()
	require.NoError(t, err)
	assert.Len(t, seed, SeedSize)

	in := Secrets{
		Account:    "alice.wam",
		Permission: "active",
		MemoKey:    strings.Repeat("k", 32),
		SignerSeed: seed,
	}
	require.NoError(t, s.Save(in, []byte("correct horse")))
	assert.True(t, s.Exists())

	out, err := s.Load([]byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, "alice.wam", out.Account)
	assert.Equal(t, seed, out.SignerSeed)
	assert.Equal(t, 1, out.Version)
	assert.NotEmpty(t, out.CreatedAt)

	_, err = s.Load([]byte("wrong horse"))
	assert.True(t, errors.Is(err, securefile.ErrInvalidPassphrase))
}

func TestLoadMissing(t *testing.T) {
	s := NewStoreAt(filepath.Join(t.TempDir(), "keystore.json"))
	_, err := s.Load([]byte("x"))
	assert.True(t, errors.Is(err, ErrNotInitialized))
}

func TestMemoKeyBytesEnvOverride(t *testing.T) {
	sec := Secrets{MemoKey: strings.Repeat("a", 32)}

	t.Setenv("CINDER_MEMO_KEY", "")
	key, err := sec.MemoKeyBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte(strings.Repeat("a", 32)), key)

	t.Setenv("CINDER_MEMO_KEY", strings.Repeat("b", 32))
	key, err = sec.MemoKeyBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte(strings.Repeat("b", 32)), key)

	t.Setenv("CINDER_MEMO_KEY", "")
	_, err = Secrets{}.MemoKeyBytes()
	assert.True(t, errors.Is(err, memo.ErrMissingKey))
}

func TestPromptLineWithDefault(t *testing.T) {
	var out bytes.Buffer
	got := PromptLineWithDefault(strings.NewReader("\n"), &out, "Account", "alice.wam")
	assert.Equal(t, "alice.wam", got)
	assert.Equal(t, "Account [alice.wam]: ", out.String())

	got = PromptLineWithDefault(strings.NewReader(" bob.wam \n"), &out, "Account", "alice.wam")
	assert.Equal(t, "bob.wam", got)

	got = PromptLineWithDefault(strings.NewReader("carol.wam"), &out, "Account", "")
	assert.Equal(t, "carol.wam", got)
}

func TestValidatePassphrase(t *testing.T) {
	assert.Error(t, ValidatePassphrase([]byte("short")))
	assert.NoError(t, ValidatePassphrase([]byte("long enough")))
}

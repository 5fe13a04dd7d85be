// Package keystore persists the account secrets in an encrypted file.
package keystore

import (
	"crypto/rand"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/memo"
	"github.com/cinderlabs/cinder-client/internal/securefile"
)

const SeedSize = 32

var ErrNotInitialized = errs.New(errs.KindConfiguration, "keystore_missing", "keystore not found, run `cinder-client init`")

// Secrets never leave the process unencrypted and are never logged.
type Secrets struct {
	Version    int    `json:"version"`
	Account    string `json:"account"`
	Permission string `json:"permission"`
	MemoKey    string `json:"memo_key"`
	SignerSeed []byte `json:"signer_seed,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// MemoKeyBytes resolves the memo key, preferring CINDER_MEMO_KEY when set.
func (s Secrets) MemoKeyBytes() ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(constants.MemoKeyEnvVar)); v != "" {
		return memo.ParseKey(v)
	}
	return memo.ParseKey(s.MemoKey)
}

type Store struct {
	Path string
	opt  securefile.Options
}

// NewStore uses the existing keystore location if any, otherwise the
// preferred config path.
func NewStore() (*Store, error) {
	paths, err := securefile.PathCandidates(constants.AppName, constants.KeystoreFile)
	if err != nil {
		return nil, err
	}
	return NewStoreAt(securefile.FirstExisting(paths)), nil
}

func NewStoreAt(path string) *Store {
	return &Store{
		Path: path,
		opt:  securefile.Options{AAD: []byte(constants.KeystoreAAD)},
	}
}

func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

func (s *Store) Load(passphrase []byte) (Secrets, error) {
	sec, err := securefile.ReadJSON[Secrets](s.Path, passphrase, s.opt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Secrets{}, errs.Wrapf(ErrNotInitialized, "%s", s.Path)
		}
		return Secrets{}, err
	}
	return sec, nil
}

func (s *Store) Save(sec Secrets, passphrase []byte) error {
	if sec.Version == 0 {
		sec.Version = constants.SchemaV1
	}
	if sec.CreatedAt == "" {
		sec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := securefile.WriteJSON(s.Path, sec, passphrase, s.opt); err != nil {
		return err
	}
	log.Info("saved keystore", "path", s.Path, "account", sec.Account)
	return nil
}

// NewSeed returns fresh randomness for the local signer.
func NewSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(err, "rand seed")
	}
	return seed, nil
}

func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

package wallet

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

const (
	SchemeName = "ML-DSA-65"

	// TxExpiration bounds how long a pushed transaction stays valid.
	TxExpiration = 60 * time.Second
)

// UnsignedTransaction is the canonical body signed by the local plugin.
type UnsignedTransaction struct {
	Actor      string          `json:"actor"`
	Permission string          `json:"permission"`
	Actions    []shared.Action `json:"actions"`
	Expiration time.Time       `json:"expiration"`
}

// Scheme returns the signature scheme used by the local plugin.
func Scheme() sign.Scheme {
	return schemes.ByName(SchemeName)
}

// PublicKeyFromSeed returns the packed public key the local plugin signs
// with for seed. Register it with the account before using the plugin.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	scheme := Scheme()
	if scheme == nil {
		return nil, errs.Wrapf(ErrInvalidSeed, "scheme %s not available", SchemeName)
	}
	if len(seed) != scheme.SeedSize() {
		return nil, errs.Wrapf(ErrInvalidSeed, "seed must be %d bytes, got %d", scheme.SeedSize(), len(seed))
	}
	pk, _ := scheme.DeriveKey(seed)
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key")
	}
	return pub, nil
}

// localSession signs with an ML-DSA-65 key derived from a seed.
type localSession struct {
	actor       string
	permission  string
	scheme      sign.Scheme
	sk          sign.PrivateKey
	pub         []byte
	broadcaster Broadcaster
	now         func() time.Time
}

func newLocalSession(actor, permission string, seed []byte, broadcaster Broadcaster) (*localSession, error) {
	if broadcaster == nil {
		return nil, ErrNoBroadcaster
	}
	scheme := Scheme()
	if scheme == nil {
		return nil, errs.Wrapf(ErrInvalidSeed, "scheme %s not available", SchemeName)
	}
	if len(seed) != scheme.SeedSize() {
		return nil, errs.Wrapf(ErrInvalidSeed, "seed must be %d bytes, got %d", scheme.SeedSize(), len(seed))
	}

	pk, sk := scheme.DeriveKey(seed)
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key")
	}

	return &localSession{
		actor:       actor,
		permission:  permission,
		scheme:      scheme,
		sk:          sk,
		pub:         pub,
		broadcaster: broadcaster,
		now:         time.Now,
	}, nil
}

func (s *localSession) Actor() string      { return s.actor }
func (s *localSession) Permission() string { return s.permission }

// PublicKey is the packed ML-DSA-65 public key.
func (s *localSession) PublicKey() []byte { return s.pub }

func (s *localSession) Sign(actions []shared.Action) (shared.SignedTransaction, error) {
	if len(actions) == 0 {
		return shared.SignedTransaction{}, ErrNoActions
	}
	body, err := json.Marshal(UnsignedTransaction{
		Actor:      s.actor,
		Permission: s.permission,
		Actions:    authorize(actions, s.actor, s.permission),
		Expiration: s.now().UTC().Add(TxExpiration).Truncate(time.Second),
	})
	if err != nil {
		return shared.SignedTransaction{}, errors.Wrap(err, "encode transaction")
	}

	sig := s.scheme.Sign(s.sk, body, nil)
	return shared.SignedTransaction{
		Transaction: body,
		Signature:   sig,
		PublicKey:   s.pub,
	}, nil
}

func (s *localSession) Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error) {
	tx, err := s.Sign(actions)
	if err != nil {
		return shared.TxResult{}, err
	}
	return s.broadcaster.PushTransaction(ctx, tx)
}

// Verify checks a transaction signed by the local plugin.
func Verify(tx shared.SignedTransaction) (bool, error) {
	scheme := Scheme()
	pk, err := scheme.UnmarshalBinaryPublicKey(tx.PublicKey)
	if err != nil {
		return false, errors.Wrap(err, "unmarshal public key")
	}
	return scheme.Verify(pk, tx.Transaction, tx.Signature, nil), nil
}

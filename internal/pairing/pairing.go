// Package pairing hands the local API session token to a UI that proves it
// knows a short one-time code shown in the client's log.
package pairing

import (
	crand "crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cinderlabs/cinder-client/internal/errs"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0 O I 1
	codeLength   = 8

	DefaultTTL = 60 * time.Second
)

var (
	ErrExpired     = errs.New(errs.KindState, "pair_expired", "pairing expired or already used")
	ErrInvalidCode = errs.New(errs.KindValidation, "invalid_pair_code", "invalid pairing code")
)

func GenerateCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := crand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

func HashCode(code string) []byte {
	h := sha256.Sum256([]byte(code))
	return h[:]
}

type entry struct {
	codeHash  []byte
	expiresAt time.Time
	used      bool
}

// Registry tracks outstanding pairings for one session token.
type Registry struct {
	token string
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]*entry
}

func NewRegistry(token string, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		token:   token,
		ttl:     ttl,
		now:     time.Now,
		pending: map[string]*entry{},
	}
}

// Issue creates a pairing and returns its id and the cleartext code.
func (r *Registry) Issue() (pairID, code string, err error) {
	code, err = GenerateCode()
	if err != nil {
		return "", "", err
	}
	pairID = uuid.NewString()

	r.mu.Lock()
	r.pending[pairID] = &entry{codeHash: HashCode(code), expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return pairID, code, nil
}

// Exchange trades a valid, unused code for the session token. A pairing can
// be exchanged once.
func (r *Registry) Exchange(pairID, code string) (string, error) {
	pairID = strings.TrimSpace(pairID)
	code = strings.ToUpper(strings.TrimSpace(code))
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pending {
		if now.After(p.expiresAt) {
			delete(r.pending, id)
		}
	}

	p, ok := r.pending[pairID]
	if !ok || p.used {
		return "", ErrExpired
	}
	if subtle.ConstantTimeCompare(p.codeHash, HashCode(code)) != 1 {
		return "", ErrInvalidCode
	}
	p.used = true
	return r.token, nil
}

// Package dashboard keeps the account's incinerators and balances current.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/shared"
)

type Source interface {
	StakedIncinerators(ctx context.Context, account string) ([]shared.Incinerator, error)
	UnstakedIncinerators(ctx context.Context, account string) ([]shared.Incinerator, error)
	Balances(ctx context.Context, account string) (shared.Balances, error)
}

type Snapshot struct {
	Account   string               `json:"account"`
	Staked    []shared.Incinerator `json:"staked"`
	Unstaked  []shared.Incinerator `json:"unstaked"`
	Balances  shared.Balances      `json:"balances"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// State is replaced wholesale on each successful Refresh; a failed refresh
// leaves the previous snapshot in place.
type State struct {
	account string
	source  Source
	now     func() time.Time

	mu          sync.RWMutex
	snap        Snapshot
	subscribers []func(Snapshot)
}

func New(account string, source Source) *State {
	return &State{
		account: account,
		source:  source,
		now:     time.Now,
		snap:    Snapshot{Account: account, Balances: shared.Balances{}},
	}
}

// Subscribe registers fn to receive every new snapshot.
func (s *State) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *State) Refresh(ctx context.Context) error {
	staked, err := s.source.StakedIncinerators(ctx, s.account)
	if err != nil {
		return errors.Wrap(err, "refresh staked incinerators")
	}
	unstaked, err := s.source.UnstakedIncinerators(ctx, s.account)
	if err != nil {
		return errors.Wrap(err, "refresh unstaked incinerators")
	}
	balances, err := s.source.Balances(ctx, s.account)
	if err != nil {
		return errors.Wrap(err, "refresh balances")
	}
	if balances == nil {
		balances = shared.Balances{}
	}

	next := Snapshot{
		Account:   s.account,
		Staked:    staked,
		Unstaked:  unstaked,
		Balances:  balances,
		UpdatedAt: s.now(),
	}

	s.mu.Lock()
	s.snap = next
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}
	return nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s *State) Balances() shared.Balances {
	return s.Snapshot().Balances
}

// Incinerator finds an incinerator by asset id among staked and unstaked.
func (s *State) Incinerator(assetID string) (shared.Incinerator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range [][]shared.Incinerator{s.snap.Staked, s.snap.Unstaked} {
		for _, inc := range list {
			if inc.AssetID == assetID {
				return inc, true
			}
		}
	}
	return shared.Incinerator{}, false
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Staked = append([]shared.Incinerator(nil), s.Staked...)
	out.Unstaked = append([]shared.Incinerator(nil), s.Unstaked...)
	out.Balances = make(shared.Balances, len(s.Balances))
	for k, v := range s.Balances {
		out.Balances[k] = v
	}
	return out
}

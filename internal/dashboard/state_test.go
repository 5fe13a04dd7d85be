package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/shared"
)

type fakeSource struct {
	staked   []shared.Incinerator
	unstaked []shared.Incinerator
	balances shared.Balances
	err      error
}

func (f *fakeSource) StakedIncinerators(context.Context, string) ([]shared.Incinerator, error) {
	return f.staked, f.err
}

func (f *fakeSource) UnstakedIncinerators(context.Context, string) ([]shared.Incinerator, error) {
	return f.unstaked, nil
}

func (f *fakeSource) Balances(context.Context, string) (shared.Balances, error) {
	return f.balances, nil
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	src := &fakeSource{
		staked:   []shared.Incinerator{{AssetID: "9", Staked: true, Durability: 500}},
		unstaked: []shared.Incinerator{{AssetID: "10"}},
		balances: shared.Balances{"TRASH": 5},
	}
	s := New("alice.wam", src)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	var got []Snapshot
	s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "alice.wam", got[0].Account)
	assert.Equal(t, now, got[0].UpdatedAt)

	inc, ok := s.Incinerator("10")
	assert.True(t, ok)
	assert.False(t, inc.Staked)
	_, ok = s.Incinerator("11")
	assert.False(t, ok)

	assert.Equal(t, uint64(5), s.Balances().Get("TRASH"))
}

func TestFailedRefreshKeepsPrevious(t *testing.T) {
	src := &fakeSource{balances: shared.Balances{"TRASH": 5}}
	s := New("alice.wam", src)
	require.NoError(t, s.Refresh(context.Background()))

	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	src.err = errors.New("timeout")
	src.balances = shared.Balances{"TRASH": 1}
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staked incinerators")
	assert.Equal(t, 0, calls)
	assert.Equal(t, uint64(5), s.Balances().Get("TRASH"))
}

func TestSnapshotIsACopy(t *testing.T) {
	src := &fakeSource{balances: shared.Balances{"TRASH": 5}}
	s := New("alice.wam", src)
	require.NoError(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	snap.Balances["TRASH"] = 0
	assert.Equal(t, uint64(5), s.Balances().Get("TRASH"))
}

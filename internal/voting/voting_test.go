package voting

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

func TestValidateVoteAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		min     []decimal.Decimal
		want    string
		wantErr *errs.Error
	}{
		{name: "four decimals", raw: "10000.0001", wantErr: ErrInvalidFormat},
		{name: "zero", raw: "0", wantErr: ErrInvalidAmount},
		{name: "zero with decimals", raw: "0.000", wantErr: ErrInvalidAmount},
		{name: "below minimum", raw: "5.5", min: []decimal.Decimal{decimal.NewFromInt(10)}, wantErr: ErrBelowMinimum},
		{name: "normalized", raw: "5.5", want: "5.500"},
		{name: "integer", raw: "42", want: "42.000"},
		{name: "trailing point", raw: "7.", want: "7.000"},
		{name: "at minimum", raw: "10", min: []decimal.Decimal{decimal.NewFromInt(10)}, want: "10.000"},
		{name: "negative", raw: "-1", wantErr: ErrInvalidFormat},
		{name: "leading point", raw: ".5", wantErr: ErrInvalidFormat},
		{name: "letters", raw: "1e3", wantErr: ErrInvalidFormat},
		{name: "empty", raw: "", wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateVoteAmount(tt.raw, tt.min...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingVotingTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	r := RemainingVotingTime(now.Add(-90_000_000*time.Millisecond), now)
	assert.True(t, r.Closed)
	assert.Equal(t, "Closed", r.String())

	r = RemainingVotingTime(now.Add(-24*time.Hour), now)
	assert.True(t, r.Closed, "exactly 24h elapsed is closed")

	r = RemainingVotingTime(now.Add(-3_661_000*time.Millisecond), now)
	assert.False(t, r.Closed)
	assert.Equal(t, Remaining{Hours: 22, Minutes: 58, Seconds: 59}, r)

	r = RemainingVotingTime(now.Add(-time.Second), now)
	assert.Equal(t, Remaining{Hours: 23, Minutes: 59, Seconds: 59}, r)
	assert.Equal(t, "23h 59m 59s", r.String())
}

func TestRemainingVotingTimeFutureCreatedAtIsClamped(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	r := RemainingVotingTime(now.Add(2*time.Hour), now)
	assert.Equal(t, Remaining{Hours: 24}, r)
}

func TestBuildVoteRequest(t *testing.T) {
	p := shared.Proposal{PropID: 17}
	req := BuildVoteRequest(p, false, "5.500")

	assert.Equal(t, VoteRequest{PropID: 17, VoteFor: false, AmountTrash: "5.500"}, req)
	assert.Equal(t, "stakevote:17:false", req.Memo())
	assert.Equal(t, "stakevote:3:true", VoteMemo(3, true))
}

func TestPrefillFor(t *testing.T) {
	against := false
	staked := "12.5"
	bad := "12.34567"

	assert.Equal(t, Prefill{VoteFor: true, Amount: DefaultStakeAmount}, PrefillFor(shared.Proposal{}))
	assert.Equal(t, Prefill{VoteFor: false, Amount: "12.500"}, PrefillFor(shared.Proposal{MyVote: &against, MyStaked: &staked}))
	assert.Equal(t, Prefill{VoteFor: true, Amount: DefaultStakeAmount}, PrefillFor(shared.Proposal{MyStaked: &bad}))
}

type fakeSession struct {
	actions []shared.Action
	err     error
}

func (f *fakeSession) Actor() string      { return "alice.wam" }
func (f *fakeSession) Permission() string { return "active" }
func (f *fakeSession) Transact(_ context.Context, actions []shared.Action) (shared.TxResult, error) {
	f.actions = append(f.actions, actions...)
	if f.err != nil {
		return shared.TxResult{}, f.err
	}
	return shared.TxResult{TransactionID: "abc123"}, nil
}

type fakeBalances shared.Balances

func (f fakeBalances) Balances(context.Context, string) (shared.Balances, error) {
	return shared.Balances(f), nil
}

func newTestService(session *fakeSession, bal shared.Balances, now time.Time) *Service {
	minStake := decimal.NewFromInt(1)
	s := NewService(Config{
		TokenContract:   "cleanuptoken",
		StakingContract: "stakevote",
		MinStake:        &minStake,
	}, session, fakeBalances(bal), nil)
	s.now = func() time.Time { return now }
	return s
}

func TestServiceCast(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := shared.Proposal{PropID: 9, CreatedAt: now.Add(-time.Hour)}
	session := &fakeSession{}
	s := newTestService(session, shared.Balances{"TRASH": 10_000}, now)

	req, res, err := s.Cast(context.Background(), p, true, "5.5")
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.TransactionID)
	assert.Equal(t, "5.500", req.AmountTrash)

	require.Len(t, session.actions, 1)
	a := session.actions[0]
	assert.Equal(t, "cleanuptoken", a.Account)
	assert.Equal(t, "transfer", a.Name)
	assert.Equal(t, []shared.Authorization{{Actor: "alice.wam", Permission: "active"}}, a.Authorization)
	assert.Equal(t, shared.TransferData{
		From:     "alice.wam",
		To:       "stakevote",
		Quantity: "5.500 TRASH",
		Memo:     "stakevote:9:true",
	}, a.Data)
}

func TestServiceCastRejections(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	open := shared.Proposal{PropID: 1, CreatedAt: now.Add(-time.Hour)}
	closed := shared.Proposal{PropID: 2, CreatedAt: now.Add(-25 * time.Hour)}

	session := &fakeSession{}
	s := newTestService(session, shared.Balances{"TRASH": 1_000}, now)

	_, _, err := s.Cast(context.Background(), closed, true, "1")
	assert.True(t, errors.Is(err, ErrVotingClosed))

	_, _, err = s.Cast(context.Background(), open, true, "0.5")
	assert.True(t, errors.Is(err, ErrBelowMinimum))

	_, _, err = s.Cast(context.Background(), open, true, "2")
	assert.Equal(t, "insufficient_balance", errs.CodeOf(err))

	assert.Empty(t, session.actions, "nothing may be signed after a rejection")
}

func TestServiceCastPreservesBroadcastCause(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cause := errors.New("user rejected")
	session := &fakeSession{err: cause}
	s := newTestService(session, shared.Balances{"TRASH": 10_000}, now)

	_, _, err := s.Cast(context.Background(), shared.Proposal{PropID: 1, CreatedAt: now}, false, "1")
	assert.True(t, errors.Is(err, ErrSubmitFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Len(t, session.actions, 1, "no automatic retry")
}

func TestAmountErrorsAreDistinct(t *testing.T) {
	assert.NotEqual(t, costs.ErrInvalidAmount.Code, ErrInvalidAmount.Code)
	assert.False(t, errors.Is(errs.Wrapf(costs.ErrInvalidAmount, "x"), ErrInvalidAmount))
	assert.False(t, errors.Is(errs.Wrapf(ErrInvalidAmount, "x"), costs.ErrInvalidAmount))
}

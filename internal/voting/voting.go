// Package voting implements the stake-to-vote rules for governance
// proposals: the 24h window, stake amount validation and vote requests.
package voting

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

const (
	// AmountDecimals is the number of fractional digits of a stake amount.
	AmountDecimals = 3

	// DefaultStakeAmount prefills the amount when the account has not
	// staked on a proposal yet.
	DefaultStakeAmount = "1.000"

	memoPrefix = "stakevote"
)

var (
	ErrInvalidFormat = errs.New(errs.KindValidation, "invalid_format", "amount must be digits with at most 3 decimals")
	ErrInvalidAmount = errs.New(errs.KindValidation, "invalid_amount", "amount must be greater than zero")
	ErrBelowMinimum  = errs.New(errs.KindValidation, "below_minimum", "amount is below the minimum stake")
	ErrVotingClosed  = errs.New(errs.KindState, "voting_closed", "voting window is closed")
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{0,3})?$`)

// Remaining is what is left of a proposal's voting window.
type Remaining struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Closed  bool `json:"closed"`
}

func (r Remaining) String() string {
	if r.Closed {
		return "Closed"
	}
	return fmt.Sprintf("%dh %dm %ds", r.Hours, r.Minutes, r.Seconds)
}

// RemainingVotingTime computes the time left to vote on a proposal created
// at createdAt. A createdAt in the future counts as zero elapsed time.
func RemainingVotingTime(createdAt, now time.Time) Remaining {
	elapsed := now.Sub(createdAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	ms := constants.VotingWindow.Milliseconds() - elapsed
	if ms <= 0 {
		return Remaining{Closed: true}
	}
	// ms <= 24h here, so hours needs no wrap.
	return Remaining{
		Hours:   int(ms / 3_600_000),
		Minutes: int(ms/60_000) % 60,
		Seconds: int(ms/1000) % 60,
	}
}

// IsOpen reports whether votes are still accepted on p at now.
func IsOpen(p shared.Proposal, now time.Time) bool {
	return !RemainingVotingTime(p.CreatedAt, now).Closed
}

// ValidateVoteAmount checks raw user input and returns it normalized to
// three fractional digits. An optional minimum may be passed.
func ValidateVoteAmount(raw string, minimum ...decimal.Decimal) (string, error) {
	raw = strings.TrimSpace(raw)
	if !amountPattern.MatchString(raw) {
		return "", errs.Wrapf(ErrInvalidFormat, "%q", raw)
	}
	v, err := decimal.NewFromString(strings.TrimSuffix(raw, "."))
	if err != nil {
		return "", errs.Wrap(ErrInvalidFormat, err)
	}
	if !v.IsPositive() {
		return "", errs.Wrapf(ErrInvalidAmount, "%q", raw)
	}
	if len(minimum) > 0 && v.LessThan(minimum[0]) {
		return "", errs.Wrapf(ErrBelowMinimum, "%s < %s", v.StringFixed(AmountDecimals), minimum[0].StringFixed(AmountDecimals))
	}
	return v.StringFixed(AmountDecimals), nil
}

// VoteRequest is the vote intent sent for a proposal.
type VoteRequest struct {
	PropID      uint64 `json:"propId"`
	VoteFor     bool   `json:"voteFor"`
	AmountTrash string `json:"amountTrash"`
}

func BuildVoteRequest(p shared.Proposal, voteFor bool, normalizedAmount string) VoteRequest {
	return VoteRequest{
		PropID:      p.PropID,
		VoteFor:     voteFor,
		AmountTrash: normalizedAmount,
	}
}

// Memo is the transfer memo carrying the vote.
func (r VoteRequest) Memo() string {
	return VoteMemo(r.PropID, r.VoteFor)
}

func VoteMemo(propID uint64, voteFor bool) string {
	return fmt.Sprintf("%s:%d:%t", memoPrefix, propID, voteFor)
}

// Prefill holds the defaults shown when a vote form opens.
type Prefill struct {
	VoteFor bool   `json:"voteFor"`
	Amount  string `json:"amount"`
}

// PrefillFor picks the recorded vote direction (default "for") and the
// previously staked amount (default DefaultStakeAmount).
func PrefillFor(p shared.Proposal) Prefill {
	out := Prefill{VoteFor: true, Amount: DefaultStakeAmount}
	if p.MyVote != nil {
		out.VoteFor = *p.MyVote
	}
	if p.MyStaked != nil {
		if amt, err := ValidateVoteAmount(*p.MyStaked); err == nil {
			out.Amount = amt
		}
	}
	return out
}

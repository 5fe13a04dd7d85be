package voting

import (
	"context"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/shopspring/decimal"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/metrics"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

var ErrSubmitFailed = errs.New(errs.KindNetwork, "vote_submit_failed", "vote submission failed")

// Transactor signs and broadcasts actions for the session account.
type Transactor interface {
	Actor() string
	Permission() string
	Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error)
}

type BalanceSource interface {
	Balances(ctx context.Context, account string) (shared.Balances, error)
}

type Config struct {
	TokenContract   string // TRASH token account
	StakingContract string // receives stake-vote transfers
	MinStake        *decimal.Decimal
}

// Service casts votes by staking TRASH on a proposal.
type Service struct {
	cfg      Config
	session  Transactor
	balances BalanceSource
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(cfg Config, session Transactor, balances BalanceSource, m *metrics.Metrics) *Service {
	return &Service{
		cfg:      cfg,
		session:  session,
		balances: balances,
		metrics:  m,
		now:      time.Now,
	}
}

// Validate normalizes raw against the configured minimum.
func (s *Service) Validate(raw string) (string, error) {
	if s.cfg.MinStake != nil {
		return ValidateVoteAmount(raw, *s.cfg.MinStake)
	}
	return ValidateVoteAmount(raw)
}

// Cast stakes rawAmount TRASH for or against p. Failures are returned to
// the caller as-is; nothing is retried.
func (s *Service) Cast(ctx context.Context, p shared.Proposal, voteFor bool, rawAmount string) (VoteRequest, shared.TxResult, error) {
	if !IsOpen(p, s.now()) {
		return VoteRequest{}, shared.TxResult{}, errs.Wrapf(ErrVotingClosed, "proposal %d", p.PropID)
	}

	amount, err := s.Validate(rawAmount)
	if err != nil {
		return VoteRequest{}, shared.TxResult{}, err
	}
	minor, err := costs.ToMinor(decimal.RequireFromString(amount), constants.TrashPrecision)
	if err != nil {
		return VoteRequest{}, shared.TxResult{}, err
	}

	actor := s.session.Actor()
	if s.balances != nil {
		bal, err := s.balances.Balances(ctx, actor)
		if err != nil {
			return VoteRequest{}, shared.TxResult{}, err
		}
		if err := costs.Require(constants.SymbolTrash, bal.Get(constants.SymbolTrash), minor, constants.TrashPrecision); err != nil {
			return VoteRequest{}, shared.TxResult{}, err
		}
	}

	req := BuildVoteRequest(p, voteFor, amount)
	action := shared.Action{
		Account: s.cfg.TokenContract,
		Name:    "transfer",
		Authorization: []shared.Authorization{
			{Actor: actor, Permission: s.session.Permission()},
		},
		Data: shared.TransferData{
			From:     actor,
			To:       s.cfg.StakingContract,
			Quantity: costs.Quantity(minor, constants.TrashPrecision, constants.SymbolTrash),
			Memo:     req.Memo(),
		},
	}

	res, err := s.session.Transact(ctx, []shared.Action{action})
	s.metrics.ObserveVote(voteFor, metrics.Outcome(err))
	if err != nil {
		log.Error("vote failed", "proposal", p.PropID, "vote_for", voteFor, "error", err)
		return req, shared.TxResult{}, errs.Wrap(ErrSubmitFailed, err)
	}

	log.Info("vote cast", "proposal", p.PropID, "vote_for", voteFor, "amount", amount, "tx", res.TransactionID)
	return req, res, nil
}

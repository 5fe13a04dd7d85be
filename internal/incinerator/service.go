// Package incinerator submits maintenance and staking actions for
// incinerator NFTs. Every paid action checks the balance first so nothing
// is signed that the chain would reject for lack of funds.
package incinerator

import (
	"context"
	"fmt"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/metrics"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

const (
	ActionFuel    = "fuel"
	ActionEnergy  = "energy"
	ActionRepair  = "repair"
	ActionStake   = "stake"
	ActionUnstake = "unstake"
)

var (
	ErrInvalidRepair    = errs.New(errs.KindValidation, "invalid_repair", "repair points out of range")
	ErrNotStaked        = errs.New(errs.KindState, "not_staked", "incinerator is not staked")
	ErrAlreadyStaked    = errs.New(errs.KindState, "already_staked", "incinerator is already staked")
	ErrDurabilityTooLow = errs.New(errs.KindState, "durability_too_low", "incinerator durability is below the unstake threshold")
	ErrActionFailed     = errs.New(errs.KindNetwork, "action_failed", "incinerator action was not broadcast")
)

type Transactor interface {
	Actor() string
	Permission() string
	Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error)
}

type Backend interface {
	Balances(ctx context.Context, account string) (shared.Balances, error)
	RepairStatus(ctx context.Context, incineratorID string) (shared.RepairStatus, error)
}

type Config struct {
	TokenContract       string // issues TRASH and CINDER
	AssetContract       string // NFT contract holding incinerators
	IncineratorContract string
}

type UnstakeData struct {
	Owner   string `json:"owner"`
	AssetID string `json:"asset_id"`
}

type Service struct {
	cfg     Config
	session Transactor
	backend Backend
	metrics *metrics.Metrics
}

func NewService(cfg Config, session Transactor, backend Backend, m *metrics.Metrics) *Service {
	return &Service{cfg: cfg, session: session, backend: backend, metrics: m}
}

// Refuel buys amount units of fuel, paid in TRASH.
func (s *Service) Refuel(ctx context.Context, inc shared.Incinerator, amount uint64) (shared.TxResult, error) {
	if amount == 0 {
		return shared.TxResult{}, errs.Wrapf(costs.ErrInvalidQuantity, "fuel amount must be positive")
	}
	cost, err := costs.FuelCost(amount)
	if err != nil {
		return shared.TxResult{}, err
	}
	if err := s.require(ctx, constants.SymbolTrash, cost, constants.TrashPrecision); err != nil {
		return shared.TxResult{}, err
	}
	return s.submit(ctx, ActionFuel, inc, s.payment(constants.TrashPrecision, constants.SymbolTrash, cost, "fuel:"+inc.AssetID))
}

// Energize pays the flat energy cost in CINDER.
func (s *Service) Energize(ctx context.Context, inc shared.Incinerator) (shared.TxResult, error) {
	cost := costs.EnergyCost()
	if err := s.require(ctx, constants.SymbolCinder, cost, constants.CinderPrecision); err != nil {
		return shared.TxResult{}, err
	}
	return s.submit(ctx, ActionEnergy, inc, s.payment(constants.CinderPrecision, constants.SymbolCinder, cost, "energy:"+inc.AssetID))
}

// Repair restores points of durability, paid in CINDER. Durability may not
// exceed constants.MaxDurability.
func (s *Service) Repair(ctx context.Context, inc shared.Incinerator, points uint64) (shared.TxResult, error) {
	if err := ValidateRepair(inc, points); err != nil {
		return shared.TxResult{}, err
	}
	cost, err := costs.RepairCost(points)
	if err != nil {
		return shared.TxResult{}, err
	}
	if err := s.require(ctx, constants.SymbolCinder, cost, constants.CinderPrecision); err != nil {
		return shared.TxResult{}, err
	}
	memo := fmt.Sprintf("repair:%s:%d", inc.AssetID, points)
	return s.submit(ctx, ActionRepair, inc, s.payment(constants.CinderPrecision, constants.SymbolCinder, cost, memo))
}

// Stake hands the incinerator NFT to the incinerator contract.
func (s *Service) Stake(ctx context.Context, inc shared.Incinerator) (shared.TxResult, error) {
	if inc.Staked {
		return shared.TxResult{}, errs.Wrapf(ErrAlreadyStaked, "incinerator %s", inc.AssetID)
	}
	actor := s.session.Actor()
	action := shared.Action{
		Account:       s.cfg.AssetContract,
		Name:          "transfer",
		Authorization: s.auth(),
		Data: shared.AssetTransferData{
			From:     actor,
			To:       s.cfg.IncineratorContract,
			AssetIDs: []string{inc.AssetID},
			Memo:     ActionStake,
		},
	}
	return s.submit(ctx, ActionStake, inc, action)
}

// Unstake returns a fully repaired incinerator to its owner.
func (s *Service) Unstake(ctx context.Context, inc shared.Incinerator) (shared.TxResult, error) {
	if err := CanUnstake(inc); err != nil {
		return shared.TxResult{}, err
	}
	action := shared.Action{
		Account:       s.cfg.IncineratorContract,
		Name:          ActionUnstake,
		Authorization: s.auth(),
		Data:          UnstakeData{Owner: s.session.Actor(), AssetID: inc.AssetID},
	}
	return s.submit(ctx, ActionUnstake, inc, action)
}

func (s *Service) RepairStatus(ctx context.Context, incineratorID string) (shared.RepairStatus, error) {
	return s.backend.RepairStatus(ctx, incineratorID)
}

func ValidateRepair(inc shared.Incinerator, points uint64) error {
	if points < 1 {
		return errs.Wrapf(ErrInvalidRepair, "points must be at least 1")
	}
	if inc.Durability < 0 || points > constants.MaxDurability || uint64(inc.Durability)+points > constants.MaxDurability {
		return errs.Wrapf(ErrInvalidRepair, "durability %d + %d exceeds %d", inc.Durability, points, constants.MaxDurability)
	}
	return nil
}

func CanUnstake(inc shared.Incinerator) error {
	if !inc.Staked {
		return errs.Wrapf(ErrNotStaked, "incinerator %s", inc.AssetID)
	}
	if inc.Durability < constants.UnstakeDurabilityThreshold {
		return errs.Wrapf(ErrDurabilityTooLow, "durability %d < %d", inc.Durability, constants.UnstakeDurabilityThreshold)
	}
	return nil
}

func (s *Service) require(ctx context.Context, symbol string, required uint64, precision int32) error {
	bal, err := s.backend.Balances(ctx, s.session.Actor())
	if err != nil {
		return err
	}
	return costs.Require(symbol, bal.Get(symbol), required, precision)
}

func (s *Service) payment(precision int32, symbol string, minor uint64, memo string) shared.Action {
	actor := s.session.Actor()
	return shared.Action{
		Account:       s.cfg.TokenContract,
		Name:          "transfer",
		Authorization: s.auth(),
		Data: shared.TransferData{
			From:     actor,
			To:       s.cfg.IncineratorContract,
			Quantity: costs.Quantity(minor, precision, symbol),
			Memo:     memo,
		},
	}
}

func (s *Service) auth() []shared.Authorization {
	return []shared.Authorization{{Actor: s.session.Actor(), Permission: s.session.Permission()}}
}

func (s *Service) submit(ctx context.Context, name string, inc shared.Incinerator, action shared.Action) (shared.TxResult, error) {
	res, err := s.session.Transact(ctx, []shared.Action{action})
	s.metrics.ObserveAction(name, metrics.Outcome(err))
	if err != nil {
		log.Error("incinerator action failed", "action", name, "incinerator", inc.AssetID, "error", err)
		return shared.TxResult{}, errs.Wrap(ErrActionFailed, err)
	}
	log.Info("incinerator action submitted", "action", name, "incinerator", inc.AssetID, "tx", res.TransactionID)
	return res, nil
}

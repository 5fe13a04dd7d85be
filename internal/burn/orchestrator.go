// Package burn runs the burn pipeline for a slot: validate, encrypt the
// memo, sign and broadcast the transfer, then release the slot.
package burn

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/memo"
	"github.com/cinderlabs/cinder-client/internal/metrics"
	"github.com/cinderlabs/cinder-client/internal/shared"
	"github.com/cinderlabs/cinder-client/internal/slots"
)

var (
	ErrSlotBusy              = errs.New(errs.KindState, "slot_busy", "a burn is already in progress for this slot")
	ErrEmptySlot             = errs.New(errs.KindValidation, "empty_slot", "slot is empty")
	ErrNoIncineratorSelected = errs.New(errs.KindValidation, "no_incinerator_selected", "no incinerator selected for this slot")
	ErrBroadcastFailed       = errs.New(errs.KindNetwork, "broadcast_failed", "burn transaction was not broadcast")
)

type Transactor interface {
	Actor() string
	Permission() string
	Transact(ctx context.Context, actions []shared.Action) (shared.TxResult, error)
}

// Invalidator drops a burned asset from the owner's cached catalog.
type Invalidator interface {
	Invalidate(owner, assetID string)
}

type BalanceSource interface {
	Balances(ctx context.Context, account string) (shared.Balances, error)
}

type Config struct {
	AssetContract       string // NFT contract holding the assets
	IncineratorContract string // receives burned assets
	MemoKey             []byte
}

type Request struct {
	Slot          int    `json:"slot"`
	IncineratorID string `json:"incinerator_id,omitempty"`
}

// Orchestrator serializes burns per slot. A burn against a slot that is
// already burning fails with ErrSlotBusy instead of queueing.
type Orchestrator struct {
	cfg      Config
	slots    *slots.Allocator
	catalog  Invalidator
	session  Transactor
	balances BalanceSource
	metrics  *metrics.Metrics
	now      func() time.Time

	mu       sync.Mutex
	locked   map[int]bool
	pairing  map[int]string
	last     map[int]Attempt
	onChange func(Attempt)
}

// New builds an orchestrator. balances may be nil to skip the fee check.
func New(cfg Config, allocator *slots.Allocator, catalog Invalidator, session Transactor, balances BalanceSource, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		slots:    allocator,
		catalog:  catalog,
		session:  session,
		balances: balances,
		metrics:  m,
		now:      time.Now,
		locked:   map[int]bool{},
		pairing:  map[int]string{},
		last:     map[int]Attempt{},
	}
}

// OnChange registers fn to receive a copy of the attempt on every
// transition.
func (o *Orchestrator) OnChange(fn func(Attempt)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// SetIncinerator pairs slot with an incinerator. An empty id clears the
// pairing.
func (o *Orchestrator) SetIncinerator(slot int, incineratorID string) error {
	if slot < 0 || slot >= o.slots.Size() {
		return errs.Wrapf(slots.ErrSlotOutOfRange, "slot %d", slot)
	}
	incineratorID = strings.TrimSpace(incineratorID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if incineratorID == "" {
		delete(o.pairing, slot)
		return nil
	}
	o.pairing[slot] = incineratorID
	return nil
}

func (o *Orchestrator) Incinerator(slot int) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id, ok := o.pairing[slot]
	return id, ok
}

// Pairings returns a copy of the slot to incinerator map.
func (o *Orchestrator) Pairings() map[int]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[int]string, len(o.pairing))
	for k, v := range o.pairing {
		out[k] = v
	}
	return out
}

func (o *Orchestrator) Busy(slot int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.locked[slot]
}

// Last returns the most recent attempt for slot.
func (o *Orchestrator) Last(slot int) (Attempt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.last[slot]
	return a, ok
}

// Burn runs one attempt to completion. The returned Attempt is final; err
// is the same failure recorded on it.
func (o *Orchestrator) Burn(ctx context.Context, req Request) (Attempt, error) {
	a := newAttempt(req.Slot, o.now())
	o.publish(a)

	o.step(a, StateValidating)
	if req.Slot < 0 || req.Slot >= o.slots.Size() {
		return o.finish(a, errs.Wrapf(slots.ErrSlotOutOfRange, "slot %d", req.Slot))
	}
	if !o.lock(req.Slot) {
		return o.finish(a, errs.Wrapf(ErrSlotBusy, "slot %d", req.Slot))
	}
	defer o.unlock(req.Slot)

	asset, ok := o.slots.Get(req.Slot)
	if !ok {
		return o.finish(a, errs.Wrapf(ErrEmptySlot, "slot %d", req.Slot))
	}
	a.AssetID = asset.AssetID

	incineratorID := strings.TrimSpace(req.IncineratorID)
	if incineratorID == "" {
		incineratorID, _ = o.Incinerator(req.Slot)
	}
	if incineratorID == "" {
		return o.finish(a, errs.Wrapf(ErrNoIncineratorSelected, "slot %d", req.Slot))
	}
	a.IncineratorID = incineratorID

	actor := o.session.Actor()
	if err := o.checkFee(ctx, actor, asset); err != nil {
		return o.finish(a, err)
	}

	o.step(a, StateEncoding)
	enc, err := memo.Encode(memo.NewBurnPayload(actor, asset.AssetID, incineratorID, o.now()), o.cfg.MemoKey)
	if err != nil {
		return o.finish(a, err)
	}

	o.step(a, StateSigning)
	res, err := o.session.Transact(ctx, []shared.Action{{
		Account: o.cfg.AssetContract,
		Name:    "transfer",
		Authorization: []shared.Authorization{
			{Actor: actor, Permission: o.session.Permission()},
		},
		Data: shared.AssetTransferData{
			From:     actor,
			To:       o.cfg.IncineratorContract,
			AssetIDs: []string{asset.AssetID},
			Memo:     enc,
		},
	}})
	if err != nil {
		return o.finish(a, errs.Wrap(ErrBroadcastFailed, err))
	}
	a.TxID = res.TransactionID

	if o.catalog != nil {
		o.catalog.Invalidate(actor, asset.AssetID)
	}
	if err := o.slots.Clear(req.Slot); err != nil {
		log.Warn("clear slot after burn", "slot", req.Slot, "error", err)
	}
	return o.finish(a, nil)
}

func (o *Orchestrator) checkFee(ctx context.Context, actor string, asset shared.Asset) error {
	if o.balances == nil || !asset.FeeAmount.IsPositive() {
		return nil
	}
	fee, err := costs.ToMinor(asset.FeeAmount, constants.TrashPrecision)
	if err != nil {
		return err
	}
	bal, err := o.balances.Balances(ctx, actor)
	if err != nil {
		return err
	}
	return costs.Require(constants.SymbolTrash, bal.Get(constants.SymbolTrash), fee, constants.TrashPrecision)
}

func (o *Orchestrator) lock(slot int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.locked[slot] {
		return false
	}
	o.locked[slot] = true
	return true
}

func (o *Orchestrator) unlock(slot int) {
	o.mu.Lock()
	delete(o.locked, slot)
	o.mu.Unlock()
}

func (o *Orchestrator) step(a *Attempt, s State) {
	a.moveTo(s, o.now())
	o.publish(a)
}

func (o *Orchestrator) finish(a *Attempt, err error) (Attempt, error) {
	if err != nil {
		a.fail(err, o.now())
	} else {
		a.moveTo(StateConfirmed, o.now())
	}
	o.metrics.ObserveBurn(string(a.State))
	o.publish(a)

	if err != nil {
		log.Error("burn failed", "attempt", a.ID, "slot", a.Slot, "asset", a.AssetID, "kind", errs.KindOf(err).String(), "error", err)
	} else {
		log.Info("burn confirmed", "attempt", a.ID, "slot", a.Slot, "asset", a.AssetID, "incinerator", a.IncineratorID, "tx", a.TxID)
	}
	return a.clone(), err
}

func (o *Orchestrator) publish(a *Attempt) {
	snapshot := a.clone()

	o.mu.Lock()
	o.last[a.Slot] = snapshot
	fn := o.onChange
	o.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

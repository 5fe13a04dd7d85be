// Package slots keeps the fixed set of burn slots an account fills before
// burning. An asset id never sits in more than one slot at a time.
package slots

import (
	"sync"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/shared"
)

var (
	ErrAlreadyAssigned = errs.New(errs.KindState, "already_assigned", "asset already assigned to a slot")
	ErrSlotOccupied    = errs.New(errs.KindState, "slot_occupied", "slot is occupied")
	ErrAllSlotsFull    = errs.New(errs.KindState, "all_slots_full", "all slots are full")
	ErrSlotOutOfRange  = errs.New(errs.KindValidation, "slot_out_of_range", "slot index out of range")
	ErrInvalidSize     = errs.New(errs.KindConfiguration, "invalid_slot_count", "slot count must be at least 1")
)

// Slot is a read-only view of one position. Asset is nil when empty.
type Slot struct {
	Index int           `json:"index"`
	Asset *shared.Asset `json:"asset"`
}

type Allocator struct {
	mu       sync.RWMutex
	slots    []*shared.Asset
	onChange func([]Slot)
}

func New(size int) (*Allocator, error) {
	if size < 1 {
		return nil, errs.Wrapf(ErrInvalidSize, "got %d", size)
	}
	return &Allocator{slots: make([]*shared.Asset, size)}, nil
}

// OnChange registers fn to receive a snapshot after every mutation.
func (a *Allocator) OnChange(fn func([]Slot)) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

func (a *Allocator) Size() int { return len(a.slots) }

func (a *Allocator) IsAssigned(assetID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.indexOf(assetID)
	return ok
}

func (a *Allocator) IndexOf(assetID string) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexOf(assetID)
}

// Assign puts asset into the lowest empty slot and returns its index.
func (a *Allocator) Assign(asset shared.Asset) (int, error) {
	a.mu.Lock()
	if _, ok := a.indexOf(asset.AssetID); ok {
		a.mu.Unlock()
		return 0, errs.Wrapf(ErrAlreadyAssigned, "asset %s", asset.AssetID)
	}
	idx := -1
	for i, s := range a.slots {
		if s == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return 0, ErrAllSlotsFull
	}
	a.slots[idx] = &asset
	a.mu.Unlock()

	a.notify()
	return idx, nil
}

// AssignAt puts asset into slot index. An occupied index fails; it never
// falls back to another slot.
func (a *Allocator) AssignAt(asset shared.Asset, index int) (int, error) {
	a.mu.Lock()
	if _, ok := a.indexOf(asset.AssetID); ok {
		a.mu.Unlock()
		return 0, errs.Wrapf(ErrAlreadyAssigned, "asset %s", asset.AssetID)
	}
	if index < 0 || index >= len(a.slots) {
		a.mu.Unlock()
		return 0, errs.Wrapf(ErrSlotOutOfRange, "slot %d of %d", index, len(a.slots))
	}
	if a.slots[index] != nil {
		a.mu.Unlock()
		return 0, errs.Wrapf(ErrSlotOccupied, "slot %d", index)
	}
	a.slots[index] = &asset
	a.mu.Unlock()

	a.notify()
	return index, nil
}

// Clear empties a slot. Clearing an empty slot is a no-op.
func (a *Allocator) Clear(index int) error {
	a.mu.Lock()
	if index < 0 || index >= len(a.slots) {
		a.mu.Unlock()
		return errs.Wrapf(ErrSlotOutOfRange, "slot %d of %d", index, len(a.slots))
	}
	if a.slots[index] == nil {
		a.mu.Unlock()
		return nil
	}
	a.slots[index] = nil
	a.mu.Unlock()

	a.notify()
	return nil
}

// Get returns the asset held by slot index.
func (a *Allocator) Get(index int) (shared.Asset, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < 0 || index >= len(a.slots) || a.slots[index] == nil {
		return shared.Asset{}, false
	}
	return *a.slots[index], true
}

func (a *Allocator) Snapshot() []Slot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot()
}

func (a *Allocator) snapshot() []Slot {
	out := make([]Slot, len(a.slots))
	for i, s := range a.slots {
		out[i] = Slot{Index: i}
		if s != nil {
			cp := *s
			out[i].Asset = &cp
		}
	}
	return out
}

func (a *Allocator) indexOf(assetID string) (int, bool) {
	for i, s := range a.slots {
		if s != nil && s.AssetID == assetID {
			return i, true
		}
	}
	return 0, false
}

func (a *Allocator) notify() {
	a.mu.RLock()
	fn := a.onChange
	snap := a.snapshot()
	a.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}

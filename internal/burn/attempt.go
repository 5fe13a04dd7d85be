package burn

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateEncoding   State = "encoding"
	StateSigning    State = "signing"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

type Transition struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// Attempt is one run of the burn pipeline for a slot. Attempts are never
// reused; a retry by the user is a new Attempt.
type Attempt struct {
	ID            string       `json:"id"`
	Slot          int          `json:"slot"`
	AssetID       string       `json:"asset_id,omitempty"`
	IncineratorID string       `json:"incinerator_id,omitempty"`
	State         State        `json:"state"`
	Transitions   []Transition `json:"transitions"`
	TxID          string       `json:"tx_id,omitempty"`
	Error         string       `json:"error,omitempty"`

	err error
}

func newAttempt(slot int, now time.Time) *Attempt {
	return &Attempt{
		ID:          uuid.NewString(),
		Slot:        slot,
		State:       StateIdle,
		Transitions: []Transition{{State: StateIdle, At: now}},
	}
}

// Err is the failure cause of a failed attempt.
func (a Attempt) Err() error { return a.err }

func (a *Attempt) moveTo(s State, now time.Time) {
	a.State = s
	a.Transitions = append(a.Transitions, Transition{State: s, At: now})
}

func (a *Attempt) fail(err error, now time.Time) {
	a.err = err
	a.Error = err.Error()
	a.moveTo(StateFailed, now)
}

// States lists the visited states in order.
func (a Attempt) States() []State {
	out := make([]State, len(a.Transitions))
	for i, t := range a.Transitions {
		out[i] = t.State
	}
	return out
}

func (a *Attempt) clone() Attempt {
	c := *a
	c.Transitions = append([]Transition(nil), a.Transitions...)
	return c
}

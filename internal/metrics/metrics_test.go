package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAfterRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New()
	m.Register(registry)
	m.Register(registry) // idempotent

	m.ObserveBurn("confirmed")
	m.ObserveBurn("confirmed")
	m.ObserveBurn("failed")
	m.ObserveVote(true, "confirmed")
	m.ObserveAction("fuel", "failed")
	m.IncPollError("dashboard")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.burnAttempts.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.burnAttempts.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.votes.WithLabelValues("true", "confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.actions.WithLabelValues("fuel", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.pollErrors.WithLabelValues("dashboard")))
}

func TestNilAndUnregisteredAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBurn("failed")
		m.Register(prometheus.NewRegistry())
	})

	assert.NotPanics(t, func() {
		New().ObserveVote(false, "failed")
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "confirmed", Outcome(nil))
	assert.Equal(t, "failed", Outcome(errors.New("boom")))
}

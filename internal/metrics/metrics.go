package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinder_client"

// Metrics counts burn attempts, votes and incinerator actions. A nil
// *Metrics, or one never registered, records nothing.
type Metrics struct {
	burnAttempts *prometheus.CounterVec
	votes        *prometheus.CounterVec
	actions      *prometheus.CounterVec
	pollErrors   *prometheus.CounterVec

	registerOnce sync.Once
}

func New() *Metrics {
	return &Metrics{}
}

// Register creates the collectors on registry. Subsequent calls are no-ops.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.burnAttempts = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "burn_attempts_total",
			Help:      "Burn attempts by final state",
		}, []string{"outcome"})

		m.votes = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote submissions by direction and outcome",
		}, []string{"vote_for", "outcome"})

		m.actions = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incinerator_actions_total",
			Help:      "Incinerator actions by kind and outcome",
		}, []string{"action", "outcome"})

		m.pollErrors = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed refreshes per poller",
		}, []string{"poller"})
	})
}

func (m *Metrics) ObserveBurn(outcome string) {
	if m == nil || m.burnAttempts == nil {
		return
	}
	m.burnAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveVote(voteFor bool, outcome string) {
	if m == nil || m.votes == nil {
		return
	}
	m.votes.WithLabelValues(strconv.FormatBool(voteFor), outcome).Inc()
}

func (m *Metrics) ObserveAction(action, outcome string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncPollError(poller string) {
	if m == nil || m.pollErrors == nil {
		return
	}
	m.pollErrors.WithLabelValues(poller).Inc()
}

// Outcome labels an operation result.
func Outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "confirmed"
}

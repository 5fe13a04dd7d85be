// Package poller runs a refresh function on a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/metrics"
)

type RefreshFunc func(ctx context.Context) error

// Poller calls its refresh function once right away and then every
// Interval until stopped. Errors are logged and counted; the next tick
// runs regardless.
type Poller struct {
	Name     string
	Interval time.Duration
	Refresh  RefreshFunc
	Metrics  *metrics.Metrics
}

func New(name string, interval time.Duration, fn RefreshFunc, m *metrics.Metrics) *Poller {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Poller{Name: name, Interval: interval, Refresh: fn, Metrics: m}
}

// Start launches the loop. The returned stop function cancels it and waits
// for the goroutine to exit; it is safe to call more than once.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	numRefreshes := 0
	p.refresh(ctx)
	numRefreshes++

	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("poller exiting", "poller", p.Name, "numRefreshes", numRefreshes)
			return
		case <-timer.C:
			p.refresh(ctx)
			numRefreshes++
			timer.Reset(p.Interval)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.Metrics.IncPollError(p.Name)
		log.Warn("poll refresh failed", "poller", p.Name, "error", err)
	}
}

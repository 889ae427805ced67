// Package orchestrator runs the scanner's three cycles: pool
// discovery, market polling with scoring, and retention pruning.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/storage"
)

// Default cadences.
const (
	DefaultMinDiscoveryInterval = 30 * time.Second
	DefaultMaxDiscoveryInterval = 120 * time.Second
	DefaultPollInterval         = 5 * time.Minute
	DefaultPruneInterval        = time.Hour
	DefaultRetention            = 7 * 24 * time.Hour
	DefaultCooldown             = 30 * time.Second

	// Upserting this many pools in one cycle marks the market as busy
	// and tightens the discovery cadence.
	busyCycleThreshold = 10
)

// DiscoveryRunner performs one discovery pass.
type DiscoveryRunner interface {
	RunCycle(ctx context.Context) (upserted int, err error)
}

// PollRunner performs one polling pass.
type PollRunner interface {
	RunCycle(ctx context.Context) (stored int, err error)
}

// Orchestrator coordinates the long-running cycles over shared stores.
type Orchestrator struct {
	discovery DiscoveryRunner
	poller    PollRunner
	history   storage.PriceHistoryStore
	metrics   *observability.Metrics
	logger    zerolog.Logger

	minDiscoveryInterval time.Duration
	maxDiscoveryInterval time.Duration
	pollInterval         time.Duration
	pruneInterval        time.Duration
	retention            time.Duration
	cooldown             time.Duration
	now                  func() time.Time
}

// Options contains configuration for creating an Orchestrator.
type Options struct {
	Discovery DiscoveryRunner
	Poller    PollRunner
	History   storage.PriceHistoryStore
	Metrics   *observability.Metrics
	Logger    zerolog.Logger

	MinDiscoveryInterval time.Duration
	MaxDiscoveryInterval time.Duration
	PollInterval         time.Duration
	PruneInterval        time.Duration
	Retention            time.Duration
	// Cooldown is the wait after a cycle aborts on storage
	// unavailability.
	Cooldown time.Duration
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		discovery:            opts.Discovery,
		poller:               opts.Poller,
		history:              opts.History,
		metrics:              opts.Metrics,
		logger:               opts.Logger.With().Str("component", "orchestrator").Logger(),
		minDiscoveryInterval: opts.MinDiscoveryInterval,
		maxDiscoveryInterval: opts.MaxDiscoveryInterval,
		pollInterval:         opts.PollInterval,
		pruneInterval:        opts.PruneInterval,
		retention:            opts.Retention,
		cooldown:             opts.Cooldown,
		now:                  time.Now,
	}
	if o.minDiscoveryInterval == 0 {
		o.minDiscoveryInterval = DefaultMinDiscoveryInterval
	}
	if o.maxDiscoveryInterval == 0 {
		o.maxDiscoveryInterval = DefaultMaxDiscoveryInterval
	}
	if o.pollInterval == 0 {
		o.pollInterval = DefaultPollInterval
	}
	if o.pruneInterval == 0 {
		o.pruneInterval = DefaultPruneInterval
	}
	if o.retention == 0 {
		o.retention = DefaultRetention
	}
	if o.cooldown == 0 {
		o.cooldown = DefaultCooldown
	}
	return o
}

// Run starts all cycles and blocks until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info().
		Dur("poll_interval", o.pollInterval).
		Dur("prune_interval", o.pruneInterval).
		Dur("retention", o.retention).
		Msg("starting cycles")

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		o.discoveryLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		o.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		o.pruneLoop(ctx)
	}()

	wg.Wait()
	o.logger.Info().Msg("all cycles stopped")
	return ctx.Err()
}

// discoveryLoop runs discovery on an adaptive cadence: a busy cycle
// halves the interval, an empty one doubles it, both clamped to the
// configured bounds.
func (o *Orchestrator) discoveryLoop(ctx context.Context) {
	interval := o.minDiscoveryInterval

	for {
		upserted, err := o.discovery.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, storage.ErrUnavailable):
			o.logger.Warn().Err(err).Dur("cooldown", o.cooldown).Msg("discovery aborted, store unavailable")
			if !o.sleep(ctx, o.cooldown) {
				return
			}
			continue
		case err != nil:
			o.logger.Error().Err(err).Msg("discovery cycle failed")
		default:
			interval = o.nextDiscoveryInterval(interval, upserted)
		}

		if !o.sleep(ctx, interval) {
			return
		}
	}
}

func (o *Orchestrator) nextDiscoveryInterval(current time.Duration, upserted int) time.Duration {
	switch {
	case upserted >= busyCycleThreshold:
		current /= 2
	case upserted == 0:
		current *= 2
	}
	if current < o.minDiscoveryInterval {
		current = o.minDiscoveryInterval
	}
	if current > o.maxDiscoveryInterval {
		current = o.maxDiscoveryInterval
	}
	return current
}

func (o *Orchestrator) pollLoop(ctx context.Context) {
	for {
		_, err := o.poller.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, storage.ErrUnavailable):
			o.logger.Warn().Err(err).Dur("cooldown", o.cooldown).Msg("polling aborted, store unavailable")
			if !o.sleep(ctx, o.cooldown) {
				return
			}
			continue
		case err != nil:
			o.logger.Error().Err(err).Msg("poll cycle failed")
		}

		if !o.sleep(ctx, o.pollInterval) {
			return
		}
	}
}

func (o *Orchestrator) pruneLoop(ctx context.Context) {
	for {
		if !o.sleep(ctx, o.pruneInterval) {
			return
		}

		cutoff := o.now().Add(-o.retention).UnixMilli()
		removed, err := o.history.Prune(ctx, cutoff)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			o.logger.Warn().Err(err).Msg("prune failed")
			continue
		}

		if o.metrics != nil {
			o.metrics.SamplesPruned.Add(float64(removed))
		}
		o.logger.Info().Int64("removed", removed).Int64("cutoff_ms", cutoff).Msg("retention prune complete")
	}
}

// sleep waits for d or until cancellation, reporting whether the
// caller should continue.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

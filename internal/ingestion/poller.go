package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/scoring"
	"solana-pool-radar/internal/storage"
)

// Poller defaults.
const (
	DefaultLookback    = 24 * time.Hour
	DefaultVolumeFloor = 100.0
	DefaultBatchLimit  = 200
)

// PairSource fetches trading pairs for a token.
type PairSource interface {
	TokenPairs(ctx context.Context, tokenAddress string) ([]Pair, error)
}

// Acquirer gates outbound API calls.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Poller walks active tokens, fetches fresh market data, validates it
// into price samples and refreshes cached scores.
type Poller struct {
	pools     storage.PoolStore
	history   storage.PriceHistoryStore
	source    PairSource
	limiter   Acquirer
	validator *Validator
	engine    *scoring.Engine
	security  func(tokenAddress string) *domain.TokenSecurity
	metrics   *observability.Metrics
	logger    zerolog.Logger

	lookback    time.Duration
	volumeFloor float64
	batchLimit  int
	now         func() time.Time
}

// PollerOptions contains configuration for creating a Poller.
type PollerOptions struct {
	PoolStore    storage.PoolStore
	HistoryStore storage.PriceHistoryStore
	Source       PairSource
	Limiter      Acquirer
	Validator    *Validator
	Engine       *scoring.Engine
	// SecurityLookup optionally supplies externally collected token
	// security snapshots. Nil results mean no data.
	SecurityLookup func(tokenAddress string) *domain.TokenSecurity
	Metrics        *observability.Metrics
	Logger         zerolog.Logger

	Lookback    time.Duration
	VolumeFloor float64
	BatchLimit  int
}

// NewPoller creates a new market poller.
func NewPoller(opts PollerOptions) *Poller {
	lookback := opts.Lookback
	if lookback == 0 {
		lookback = DefaultLookback
	}
	volumeFloor := opts.VolumeFloor
	if volumeFloor == 0 {
		volumeFloor = DefaultVolumeFloor
	}
	batchLimit := opts.BatchLimit
	if batchLimit <= 0 || batchLimit > DefaultBatchLimit {
		batchLimit = DefaultBatchLimit
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewValidator(0, 0)
	}
	engine := opts.Engine
	if engine == nil {
		engine = scoring.NewEngine(0)
	}

	return &Poller{
		pools:       opts.PoolStore,
		history:     opts.HistoryStore,
		source:      opts.Source,
		limiter:     opts.Limiter,
		validator:   validator,
		engine:      engine,
		security:    opts.SecurityLookup,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With().Str("component", "poller").Logger(),
		lookback:    lookback,
		volumeFloor: volumeFloor,
		batchLimit:  batchLimit,
		now:         time.Now,
	}
}

// RunCycle polls every active token once and returns the number of
// samples stored. Per-token failures are logged and skipped; only
// storage.ErrUnavailable aborts the cycle.
func (p *Poller) RunCycle(ctx context.Context) (int, error) {
	started := p.now()
	since := started.Add(-p.lookback).UnixMilli()

	candidates, err := p.pools.ActiveTokens(ctx, since, p.volumeFloor, p.batchLimit)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, pool := range candidates {
		if ctx.Err() != nil {
			return stored, ctx.Err()
		}

		ok, err := p.pollToken(ctx, pool)
		if err != nil {
			if errors.Is(err, storage.ErrUnavailable) || ctx.Err() != nil {
				return stored, err
			}
			p.logger.Warn().Err(err).Str("token", pool.TokenAddress).Msg("poll failed")
			continue
		}
		if ok {
			stored++
		}
	}

	if p.metrics != nil {
		p.metrics.PollCycleDuration.Observe(p.now().Sub(started).Seconds())
		p.metrics.LastSuccessfulPoll.Set(float64(p.now().Unix()))
	}

	p.logger.Info().
		Int("candidates", len(candidates)).
		Int("stored", stored).
		Dur("took", p.now().Sub(started)).
		Msg("poll cycle complete")

	return stored, nil
}

// pollToken fetches, validates and stores one sample for a token, then
// refreshes the pool's cached scores. Returns true when a sample was
// stored.
func (p *Poller) pollToken(ctx context.Context, pool *domain.Pool) (bool, error) {
	if p.limiter != nil {
		if err := p.limiter.Acquire(ctx); err != nil {
			return false, err
		}
	}
	if p.metrics != nil {
		p.metrics.TokensPolled.Inc()
	}

	pairs, err := p.source.TokenPairs(ctx, pool.TokenAddress)
	if err != nil {
		if errors.Is(err, ErrNoPairs) {
			if p.metrics != nil {
				p.metrics.TokensWithoutPairs.Inc()
			}
			p.logger.Debug().Str("token", pool.TokenAddress).Msg("no pairs, skipping")
			return false, nil
		}
		return false, err
	}

	sample, err := BestPair(pairs).ToSample(pool.TokenAddress, p.now())
	if err != nil {
		return false, err
	}

	prev, err := p.previousSample(ctx, pool.TokenAddress)
	if err != nil {
		return false, err
	}

	if err := p.validator.Check(sample, prev); err != nil {
		if p.metrics != nil {
			p.metrics.SamplesRejected.WithLabelValues("price_sanity").Inc()
		}
		p.logger.Warn().Err(err).Str("token", pool.TokenAddress).Msg("sample rejected")
		return false, nil
	}

	if err := p.history.Append(ctx, sample); err != nil {
		if errors.Is(err, storage.ErrOutOfOrder) {
			// Two polls within the same millisecond; keep the first.
			return false, nil
		}
		return false, err
	}
	if p.metrics != nil {
		p.metrics.SamplesStored.Inc()
	}

	if err := p.refreshScores(ctx, pool); err != nil {
		return true, err
	}
	return true, nil
}

func (p *Poller) previousSample(ctx context.Context, tokenAddress string) (*domain.PriceSample, error) {
	recent, err := p.history.Recent(ctx, tokenAddress, 1)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return recent[0], nil
}

// refreshScores recomputes the score snapshot from the latest window
// and caches it on the pool row.
func (p *Poller) refreshScores(ctx context.Context, pool *domain.Pool) error {
	window, err := p.history.Recent(ctx, pool.TokenAddress, p.engine.WindowSize())
	if err != nil {
		return err
	}

	var security *domain.TokenSecurity
	if p.security != nil {
		security = p.security(pool.TokenAddress)
	}

	snap := p.engine.Score(pool, window, security, p.now())
	if p.metrics != nil {
		p.metrics.ScoresComputed.Inc()
		if snap.IsHoneypot {
			p.metrics.HoneypotsFlagged.Inc()
		}
	}

	return p.pools.UpdateScores(ctx, pool.TokenAddress, snap)
}

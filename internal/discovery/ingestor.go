package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/solana"
	"solana-pool-radar/internal/storage"
)

// Ingestor runs discovery cycles: fetch the pool list, normalize each
// entry and upsert it into the pool store.
type Ingestor struct {
	client  *Client
	pools   storage.PoolStore
	metrics *observability.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// IngestorOptions contains configuration for creating an Ingestor.
type IngestorOptions struct {
	Client    *Client
	PoolStore storage.PoolStore
	Metrics   *observability.Metrics
	Logger    zerolog.Logger
}

// NewIngestor creates a new discovery ingestor.
func NewIngestor(opts IngestorOptions) *Ingestor {
	return &Ingestor{
		client:  opts.Client,
		pools:   opts.PoolStore,
		metrics: opts.Metrics,
		logger:  opts.Logger.With().Str("component", "discovery").Logger(),
		now:     time.Now,
	}
}

// RunCycle performs one discovery pass. Per-entry failures are logged
// and skipped; only storage.ErrUnavailable aborts the cycle so the
// orchestrator can back off.
func (i *Ingestor) RunCycle(ctx context.Context) (int, error) {
	started := i.now()

	entries, err := i.client.FetchPools(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		i.logger.Warn().Err(err).Msg("pool list fetch failed, empty cycle")
		return 0, nil
	}

	if i.metrics != nil {
		i.metrics.PoolsFetched.Add(float64(len(entries)))
	}

	upserted := 0
	for idx := range entries {
		if ctx.Err() != nil {
			return upserted, ctx.Err()
		}

		pool, err := Normalize(&entries[idx], i.now())
		if err != nil {
			if reason, ok := AsSkip(err); ok {
				if i.metrics != nil {
					i.metrics.PoolsSkipped.WithLabelValues(reason).Inc()
				}
				continue
			}
			i.logger.Warn().Err(err).Str("pool_id", entries[idx].PoolID).Msg("normalize failed")
			continue
		}

		if !solana.IsOnCurve(pool.TokenAddress) {
			// Off-curve mints are program-derived addresses; rare for
			// token mints and worth a trace when digging into a token.
			i.logger.Debug().Str("token", pool.TokenAddress).Msg("token mint is off-curve")
		}

		if err := i.pools.Upsert(ctx, pool); err != nil {
			if errors.Is(err, storage.ErrUnavailable) {
				return upserted, err
			}
			i.logger.Warn().Err(err).Str("pool_id", pool.PoolID).Msg("upsert failed")
			continue
		}
		upserted++
	}

	if i.metrics != nil {
		i.metrics.PoolsUpserted.Add(float64(upserted))
		i.metrics.DiscoveryDuration.Observe(i.now().Sub(started).Seconds())
		i.metrics.LastSuccessfulDiscovery.Set(float64(i.now().Unix()))
	}

	i.logger.Info().
		Int("fetched", len(entries)).
		Int("upserted", upserted).
		Dur("took", i.now().Sub(started)).
		Msg("discovery cycle complete")

	return upserted, nil
}

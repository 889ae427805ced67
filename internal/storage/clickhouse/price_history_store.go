package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore backed by ClickHouse.
// Samples are stored in a MergeTree table ordered by (token_address, timestamp_ms).
type PriceHistoryStore struct {
	conn *Conn
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// NewPriceHistoryStore creates a new ClickHouse price history store.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

const sampleColumns = `token_address, timestamp_ms, price_usd, liquidity_usd,
	volume_5m, volume_1h, volume_24h,
	buys_5m, sells_5m,
	price_change_5m, price_change_1h, price_change_24h,
	market_cap_estimate`

// Append inserts a price sample. The sample's timestamp must be strictly
// greater than the latest stored timestamp for the token; otherwise
// storage.ErrOutOfOrder is returned.
func (s *PriceHistoryStore) Append(ctx context.Context, sample *domain.PriceSample) error {
	if sample == nil || sample.TokenAddress == "" {
		return fmt.Errorf("%w: sample must have a token address", storage.ErrInvalidInput)
	}

	latest, err := s.LatestTimestamp(ctx, sample.TokenAddress)
	if err != nil {
		return err
	}
	if sample.TimestampMs <= latest {
		return fmt.Errorf("%w: timestamp %d is not after %d for token %s",
			storage.ErrOutOfOrder, sample.TimestampMs, latest, sample.TokenAddress)
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO price_history ("+sampleColumns+")")
	if err != nil {
		return s.wrapErr("prepare batch", err)
	}

	err = batch.Append(
		sample.TokenAddress,
		sample.TimestampMs,
		sample.PriceUSD,
		sample.LiquidityUSD,
		sample.Volume5m,
		sample.Volume1h,
		sample.Volume24h,
		int32(sample.Buys5m),
		int32(sample.Sells5m),
		sample.PriceChange5m,
		sample.PriceChange1h,
		sample.PriceChange24h,
		sample.MarketCapEstimate,
	)
	if err != nil {
		return s.wrapErr("append to batch", err)
	}

	if err := batch.Send(); err != nil {
		return s.wrapErr("send batch", err)
	}
	return nil
}

// Recent returns up to limit samples for the token, newest first.
func (s *PriceHistoryStore) Recent(ctx context.Context, tokenAddress string, limit int) ([]*domain.PriceSample, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidInput)
	}

	query := "SELECT " + sampleColumns + ` FROM price_history
		WHERE token_address = ?
		ORDER BY timestamp_ms DESC
		LIMIT ?`

	rows, err := s.conn.Query(ctx, query, tokenAddress, limit)
	if err != nil {
		return nil, s.wrapErr("query recent samples", err)
	}
	defer rows.Close()

	var samples []*domain.PriceSample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("iterate samples", err)
	}
	return samples, nil
}

// GetByTimeRange returns samples within [startMs, endMs], oldest first.
func (s *PriceHistoryStore) GetByTimeRange(ctx context.Context, tokenAddress string, startMs, endMs int64) ([]*domain.PriceSample, error) {
	query := "SELECT " + sampleColumns + ` FROM price_history
		WHERE token_address = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC`

	rows, err := s.conn.Query(ctx, query, tokenAddress, startMs, endMs)
	if err != nil {
		return nil, s.wrapErr("query samples by time range", err)
	}
	defer rows.Close()

	var samples []*domain.PriceSample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("iterate samples", err)
	}
	return samples, nil
}

// LatestTimestamp returns the newest stored timestamp for the token,
// or 0 when no samples exist.
func (s *PriceHistoryStore) LatestTimestamp(ctx context.Context, tokenAddress string) (int64, error) {
	var latest int64
	err := s.conn.QueryRow(ctx,
		"SELECT max(timestamp_ms) FROM price_history WHERE token_address = ?",
		tokenAddress,
	).Scan(&latest)
	if err != nil {
		return 0, s.wrapErr("query latest timestamp", err)
	}
	return latest, nil
}

// Prune deletes all samples older than cutoffMs and returns the number removed.
// ClickHouse mutations are asynchronous; the returned count is measured before
// the delete is issued.
func (s *PriceHistoryStore) Prune(ctx context.Context, cutoffMs int64) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		"SELECT count() FROM price_history WHERE timestamp_ms < ?",
		cutoffMs,
	).Scan(&count)
	if err != nil {
		return 0, s.wrapErr("count prunable samples", err)
	}

	err = s.conn.Exec(ctx,
		"ALTER TABLE price_history DELETE WHERE timestamp_ms < ?",
		cutoffMs,
	)
	if err != nil {
		return 0, s.wrapErr("delete old samples", err)
	}
	return int64(count), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (*domain.PriceSample, error) {
	var (
		sample domain.PriceSample
		buys   int32
		sells  int32
	)
	err := row.Scan(
		&sample.TokenAddress,
		&sample.TimestampMs,
		&sample.PriceUSD,
		&sample.LiquidityUSD,
		&sample.Volume5m,
		&sample.Volume1h,
		&sample.Volume24h,
		&buys,
		&sells,
		&sample.PriceChange5m,
		&sample.PriceChange1h,
		&sample.PriceChange24h,
		&sample.MarketCapEstimate,
	)
	if err != nil {
		return nil, err
	}
	sample.Buys5m = int(buys)
	sample.Sells5m = int(sells)
	return &sample, nil
}

// wrapErr maps connection-level failures to storage.ErrUnavailable so callers
// can back off instead of treating them as data errors.
func (s *PriceHistoryStore) wrapErr(op string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, clickhouse.ErrAcquireConnTimeout) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}

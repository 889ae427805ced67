package discovery

import (
	"errors"
	"time"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/solana"
)

// Normalization skip reasons, used for metrics labels.
const (
	SkipMissingPoolID = "missing_pool_id"
	SkipNoTokenSide   = "no_token_side"
	SkipBothWSOL      = "both_wsol"
	SkipInvalidMint   = "invalid_mint"
)

// SkipError marks a pool entry that cannot be normalized. The entry is
// dropped from the cycle without aborting it.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "pool entry skipped: " + e.Reason
}

// AsSkip extracts the skip reason from err, if any.
func AsSkip(err error) (string, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}

// Normalize converts a raw pair-list entry into a Pool. The token of
// interest is whichever of base/quote mint is not WSOL; entries where
// neither or both sides are WSOL are malformed and skipped.
func Normalize(entry *domain.RawPoolEntry, now time.Time) (*domain.Pool, error) {
	if entry.PoolID == "" {
		return nil, &SkipError{Reason: SkipMissingPoolID}
	}

	var token string
	switch {
	case entry.BaseMint == solana.WSOLMint && entry.QuoteMint == solana.WSOLMint:
		return nil, &SkipError{Reason: SkipBothWSOL}
	case entry.BaseMint == solana.WSOLMint:
		token = entry.QuoteMint
	case entry.QuoteMint == solana.WSOLMint:
		token = entry.BaseMint
	default:
		return nil, &SkipError{Reason: SkipNoTokenSide}
	}

	if !solana.IsValidMint(token) {
		return nil, &SkipError{Reason: SkipInvalidMint}
	}

	name := entry.Name
	if name == "" {
		name = "UNKNOWN/WSOL"
	}

	return &domain.Pool{
		PoolID:         entry.PoolID,
		TokenAddress:   token,
		DisplayName:    name,
		LiquidityUSD:   entry.Liquidity,
		Volume24hUSD:   entry.Volume24h,
		DiscoveredAt:   now.UnixMilli(),
		PlatformNative: solana.IsPumpMint(token),
	}, nil
}

package discovery

import (
	"testing"
	"time"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/solana"
)

const (
	testMint     = solana.USDCMint
	testPumpMint = "2qEHjDLDLbuBgRYvsxhc5D6uDWAivNFZGan56P1tpump"
)

func TestNormalize_TokenOfInterest(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("base is WSOL", func(t *testing.T) {
		pool, err := Normalize(&domain.RawPoolEntry{
			PoolID:    "pool-1",
			Name:      "USDC/WSOL",
			BaseMint:  solana.WSOLMint,
			QuoteMint: testMint,
			Liquidity: 5000,
			Volume24h: 1200,
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pool.TokenAddress != testMint {
			t.Errorf("expected token %s, got %s", testMint, pool.TokenAddress)
		}
		if pool.DiscoveredAt != now.UnixMilli() {
			t.Errorf("expected discovered_at %d, got %d", now.UnixMilli(), pool.DiscoveredAt)
		}
	})

	t.Run("quote is WSOL", func(t *testing.T) {
		pool, err := Normalize(&domain.RawPoolEntry{
			PoolID:    "pool-2",
			BaseMint:  testMint,
			QuoteMint: solana.WSOLMint,
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pool.TokenAddress != testMint {
			t.Errorf("expected token %s, got %s", testMint, pool.TokenAddress)
		}
	})
}

func TestNormalize_Skips(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		entry  domain.RawPoolEntry
		reason string
	}{
		{
			name:   "missing pool id",
			entry:  domain.RawPoolEntry{BaseMint: solana.WSOLMint, QuoteMint: testMint},
			reason: SkipMissingPoolID,
		},
		{
			name:   "neither side WSOL",
			entry:  domain.RawPoolEntry{PoolID: "p", BaseMint: testMint, QuoteMint: solana.USDTMint},
			reason: SkipNoTokenSide,
		},
		{
			name:   "both sides WSOL",
			entry:  domain.RawPoolEntry{PoolID: "p", BaseMint: solana.WSOLMint, QuoteMint: solana.WSOLMint},
			reason: SkipBothWSOL,
		},
		{
			name:   "invalid mint",
			entry:  domain.RawPoolEntry{PoolID: "p", BaseMint: solana.WSOLMint, QuoteMint: "not-a-mint"},
			reason: SkipInvalidMint,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(&tc.entry, now)
			reason, ok := AsSkip(err)
			if !ok {
				t.Fatalf("expected skip error, got %v", err)
			}
			if reason != tc.reason {
				t.Errorf("expected reason %q, got %q", tc.reason, reason)
			}
		})
	}
}

func TestNormalize_PlatformNative(t *testing.T) {
	pool, err := Normalize(&domain.RawPoolEntry{
		PoolID:    "pool-pump",
		BaseMint:  testPumpMint,
		QuoteMint: solana.WSOLMint,
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pool.PlatformNative {
		t.Error("expected pump-suffixed mint to be platform native")
	}
}

func TestNormalize_DefaultDisplayName(t *testing.T) {
	pool, err := Normalize(&domain.RawPoolEntry{
		PoolID:    "pool-3",
		BaseMint:  solana.WSOLMint,
		QuoteMint: testMint,
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.DisplayName != "UNKNOWN/WSOL" {
		t.Errorf("expected default display name, got %q", pool.DisplayName)
	}
}

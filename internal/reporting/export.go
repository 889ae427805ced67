// Package reporting serializes filter results for export.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"solana-pool-radar/internal/filter"
)

// csvHeader is the stable column order of CSV exports.
var csvHeader = []string{
	"name",
	"token_address",
	"liquidity",
	"volume_24h",
	"market_cap_estimate",
	"price_usd",
	"price_change_5m",
	"price_change_1h",
	"price_change_24h",
	"momentum_score",
	"momentum_category",
	"honeypot_score",
	"sell_ratio",
	"is_likely_honeypot",
	"risk_score",
	"opportunity_score",
	"composite_score",
	"discovered_at",
	"is_platform_native",
	"solscan_url",
	"dexscreener_url",
}

// WriteCSV writes results as CSV with a header row. Timestamps are
// rendered as RFC 3339 UTC.
func WriteCSV(w io.Writer, results []filter.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range results {
		r := &results[i]
		row := []string{
			r.Name,
			r.TokenAddress,
			formatFloat(r.LiquidityUSD),
			formatFloat(r.Volume24hUSD),
			formatFloat(r.MarketCapEstimate),
			strconv.FormatFloat(r.PriceUSD, 'g', -1, 64),
			formatFloat(r.PriceChange5m),
			formatFloat(r.PriceChange1h),
			formatFloat(r.PriceChange24h),
			formatFloat(r.MomentumScore),
			r.MomentumCategory,
			strconv.Itoa(r.HoneypotScore),
			strconv.FormatFloat(r.SellRatio, 'f', 4, 64),
			strconv.FormatBool(r.IsLikelyHoneypot),
			strconv.Itoa(r.RiskScore),
			strconv.Itoa(r.OpportunityScore),
			strconv.Itoa(r.CompositeScore),
			time.UnixMilli(r.DiscoveredAt).UTC().Format(time.RFC3339),
			strconv.FormatBool(r.PlatformNative),
			r.SolscanURL,
			r.DexScreenerURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []filter.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []filter.Result{}
	}
	return enc.Encode(results)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

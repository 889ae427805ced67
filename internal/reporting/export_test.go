package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"solana-pool-radar/internal/filter"
)

func sampleResults() []filter.Result {
	return []filter.Result{
		{
			Name:              "MEME/WSOL",
			TokenAddress:      "token-abc",
			LiquidityUSD:      25000,
			Volume24hUSD:      9000,
			MarketCapEstimate: 37500,
			PriceUSD:          0.00125,
			MomentumScore:     35.5,
			MomentumCategory:  "bullish",
			RiskScore:         3,
			OpportunityScore:  5,
			CompositeScore:    2,
			DiscoveredAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
			SolscanURL:        "https://solscan.io/token/token-abc",
			DexScreenerURL:    "https://dexscreener.com/solana/token-abc",
		},
		{
			Name:             "TRAP/WSOL",
			TokenAddress:     "token-trap",
			HoneypotScore:    90,
			IsLikelyHoneypot: true,
			RiskScore:        10,
			CompositeScore:   -10,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "name" || records[0][len(records[0])-1] != "dexscreener_url" {
		t.Errorf("unexpected header: %v", records[0])
	}
	for i, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			t.Errorf("row %d has %d fields, want %d", i, len(rec), len(csvHeader))
		}
	}
	if records[1][1] != "token-abc" {
		t.Errorf("unexpected token column: %q", records[1][1])
	}
	if records[1][17] != "2025-06-01T12:00:00Z" {
		t.Errorf("unexpected discovered_at rendering: %q", records[1][17])
	}
	if records[2][13] != "true" {
		t.Errorf("honeypot flag not rendered: %q", records[2][13])
	}
}

func TestWriteCSV_EmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only header, got %d lines", len(lines))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["token_address"] != "token-abc" {
		t.Errorf("unexpected token_address: %v", decoded[0]["token_address"])
	}
	if decoded[1]["is_likely_honeypot"] != true {
		t.Errorf("honeypot flag missing")
	}
}

func TestWriteJSON_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

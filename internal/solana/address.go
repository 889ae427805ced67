// Package solana provides address validation helpers and well-known
// mint constants.
package solana

import (
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known mints.
const (
	// WSOLMint is the wrapped SOL mint. Pool entries pair a token of
	// interest against it.
	WSOLMint = "So11111111111111111111111111111111111111112"

	// USDCMint and USDTMint are the canonical stablecoin mints.
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	// pumpMintSuffix marks tokens minted through the pump.fun launch
	// platform.
	pumpMintSuffix = "pump"
)

// DenylistedMints are wrapped/stable assets excluded from every filter
// result.
var DenylistedMints = []string{WSOLMint, USDCMint, USDTMint}

// IsValidMint reports whether addr decodes to a 32-byte base58 value.
func IsValidMint(addr string) bool {
	if addr == "" {
		return false
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// IsOnCurve reports whether a 32-byte value is a valid ed25519 point.
// Mint accounts are keypair-derived and sit on the curve; program
// derived addresses (pool vaults, AMM ids) are intentionally off it.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// IsPumpMint reports whether a mint was issued by the pump.fun launch
// platform, recognizable by its vanity suffix.
func IsPumpMint(addr string) bool {
	return strings.HasSuffix(addr, pumpMintSuffix)
}

// IsDenylisted reports whether addr is a wrapped or stable asset that
// never appears in filter results.
func IsDenylisted(addr string) bool {
	for _, m := range DenylistedMints {
		if addr == m {
			return true
		}
	}
	return false
}

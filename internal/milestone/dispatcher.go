package milestone

import (
	"math"
	"strings"
)

const (
	// DefaultAssetCode is used when a milestone is detected without investment detail
	DefaultAssetCode = "BTC"

	// DefaultAmountUSD is the nominal purchase value used in the same case
	DefaultAmountUSD = 10.0

	// DefaultHoldingsQuantity is reported until holdings are known to the client
	DefaultHoldingsQuantity = "0"
)

var assetDisplayNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"SOL":   "Solana",
	"USDC":  "USD Coin",
	"USDT":  "Tether",
	"XRP":   "XRP",
	"ADA":   "Cardano",
	"DOGE":  "Dogecoin",
	"AVAX":  "Avalanche",
	"DOT":   "Polkadot",
	"LINK":  "Chainlink",
	"LTC":   "Litecoin",
	"MATIC": "Polygon",
}

// AssetDisplayName maps an asset code to its human readable name.
// Unknown codes are returned unchanged.
func AssetDisplayName(code string) string {
	if name, ok := assetDisplayNames[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// BuildPayload turns the detected investment into a celebration payload.
// A nil investment still yields a complete payload built from the defaults.
func BuildPayload(investment *FirstInvestment) CelebrationPayload {
	code := DefaultAssetCode
	amount := DefaultAmountUSD
	if investment != nil {
		code = investment.TargetAsset
		amount = investment.AmountUSD
	}

	return CelebrationPayload{
		AssetDisplayName:   AssetDisplayName(code),
		PurchaseValueCents: toCents(amount),
		HoldingsQuantity:   DefaultHoldingsQuantity,
		TargetAssetCode:    code,
	}
}

func toCents(amountUSD float64) int64 {
	if math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) || amountUSD < 0 {
		return 0
	}
	cents := math.Round(amountUSD * 100)
	if cents >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(cents)
}

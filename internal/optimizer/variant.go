package optimizer

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomai/internal/shopify"
)

// Sentinel written to inventory_management when quantity tracking is on.
const trackingSentinel = "shopify"

const defaultInventoryPolicy = "deny"

// Compare-at strategies: absolute, additive, multiplicative.
const (
	CompareAtAbsolute = "="
	CompareAtAdditive = "+"
	CompareAtMultiply = "x"
)

// VariantSettings is the per-bulk-edit inventory and pricing configuration.
// Every numeric field is optional; absent fields fall back to the defaults
// the resolve* helpers encode, never to an error. The JSON keys mirror the
// bulk edit payload.
type VariantSettings struct {
	QtyMin            *int     `json:"qty_min,omitempty"`
	QtyMax            *int     `json:"qty_max,omitempty"`
	InventoryPolicy   string   `json:"variant_inventory_policy,omitempty"`
	WeightUnit        string   `json:"variant_weight_unit,omitempty"`
	TrackQuantity     bool     `json:"track_quantity,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	AdjustPrices      bool     `json:"adjustPrices,omitempty"`
	AdjustmentAmount  *float64 `json:"adjustmentAmount,omitempty"`
	RoundPrices       bool     `json:"roundPrices,omitempty"`
	RoundingNumber    *float64 `json:"roundingNumber,omitempty"`
	CompareAtStrategy string   `json:"compare_at_strategy,omitempty"`
	CompareAtAmount   *float64 `json:"compare_at_amount,omitempty"`

	// Optional per-variant field edits resolved by the batch layer.
	SKU     *EditDescriptor `json:"sku,omitempty"`
	Barcode *EditDescriptor `json:"barcode,omitempty"`
}

// resolveQtyRange applies the quantity defaults: min falls back to 0, max
// falls back to min.
func (s *VariantSettings) resolveQtyRange() (int, int) {
	min := 0
	if s.QtyMin != nil {
		min = *s.QtyMin
	}
	max := min
	if s.QtyMax != nil {
		max = *s.QtyMax
	}
	return min, max
}

// Normalizer rewrites a variant's inventory and pricing fields from a
// settings bag. The quantity draw is its only non-deterministic step.
type Normalizer struct {
	rng *rand.Rand
}

func NewNormalizer() *Normalizer {
	return NewNormalizerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewNormalizerWithSource injects the random source, letting tests assert
// quantity range coverage without flakiness.
func NewNormalizerWithSource(src rand.Source) *Normalizer {
	return &Normalizer{rng: rand.New(src)}
}

// Apply mutates variant in place. Step order matters: the price must be
// finalized (adjusted, rounded, reformatted) before the compare-at candidate
// is computed against it.
func (n *Normalizer) Apply(variant *shopify.Variant, settings *VariantSettings) {
	// Inventory policy, defaulting to "deny".
	if settings.InventoryPolicy != "" {
		variant.InventoryPolicy = settings.InventoryPolicy
	} else {
		variant.InventoryPolicy = defaultInventoryPolicy
	}

	// Weight unit only when configured; otherwise the variant keeps its own.
	if settings.WeightUnit != "" {
		variant.WeightUnit = settings.WeightUnit
	}

	// Inventory management is overwritten on every call: tracking sentinel
	// or explicit null.
	if settings.TrackQuantity {
		sentinel := trackingSentinel
		variant.InventoryManagement = &sentinel
	} else {
		variant.InventoryManagement = nil
	}

	// Quantity: uniform draw over the closed range when max > min, the
	// bare minimum otherwise.
	min, max := settings.resolveQtyRange()
	if max > min {
		variant.InventoryQuantity = n.rng.Intn(max-min+1) + min
	} else {
		variant.InventoryQuantity = min
	}

	// Price currency is tagged whenever a currency is configured, whether
	// or not the price itself changes.
	if settings.Currency != "" {
		variant.PriceCurrency = settings.Currency
	}

	price := parsePrice(variant.Price)

	if settings.AdjustPrices && settings.AdjustmentAmount != nil {
		price += *settings.AdjustmentAmount
	}

	// Force the fractional part to the configured target. This keeps the
	// whole units and swaps in the target decimals even when that lands
	// below the pre-rounding price (10.97 with target 0.50 becomes 10.50);
	// known discrepancy with a round-up-to-next-X policy, kept as observed.
	if settings.RoundPrices && settings.RoundingNumber != nil {
		price = math.Floor(price) + *settings.RoundingNumber
	}

	variant.Price = formatPrice(price)

	// Compare-at price, computed against the just-finalized price. A
	// candidate that is not strictly greater is discarded, leaving any
	// pre-existing compare-at value untouched.
	basePrice := parsePrice(variant.Price)
	if settings.CompareAtAmount != nil {
		amount := *settings.CompareAtAmount
		candidate := math.NaN()

		switch settings.CompareAtStrategy {
		case CompareAtAbsolute:
			candidate = amount
		case CompareAtAdditive:
			candidate = basePrice + amount
		case CompareAtMultiply:
			candidate = basePrice * amount
		}

		if !math.IsNaN(candidate) && candidate > basePrice {
			formatted := formatPrice(candidate)
			variant.CompareAtPrice = &formatted
			if settings.Currency != "" {
				variant.CompareAtPriceCurrency = settings.Currency
			}
		}
	}
}

// parsePrice reads a decimal string, degrading to 0 for absent or malformed
// input.
func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// formatPrice renders a price with two decimals, rounding half away from
// zero the way merchant platforms expect ("15.505" -> "15.51").
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

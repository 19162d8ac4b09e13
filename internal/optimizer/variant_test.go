package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomai/internal/shopify"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestApplyDefaultsInventoryPolicy(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00", InventoryPolicy: "continue"}
	n.Apply(variant, &VariantSettings{})
	assert.Equal(t, "deny", variant.InventoryPolicy)

	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{InventoryPolicy: "continue"})
	assert.Equal(t, "continue", variant.InventoryPolicy)
}

func TestApplyWeightUnitOnlyWhenSet(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00", WeightUnit: "lb"}
	n.Apply(variant, &VariantSettings{})
	assert.Equal(t, "lb", variant.WeightUnit)

	n.Apply(variant, &VariantSettings{WeightUnit: "kg"})
	assert.Equal(t, "kg", variant.WeightUnit)
}

func TestApplyTrackQuantity(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{TrackQuantity: true})
	require.NotNil(t, variant.InventoryManagement)
	assert.Equal(t, "shopify", *variant.InventoryManagement)

	// Tracking off clears a previously set value.
	n.Apply(variant, &VariantSettings{})
	assert.Nil(t, variant.InventoryManagement)
}

func TestApplyQuantityRangeCoverage(t *testing.T) {
	n := NewNormalizerWithSource(rand.NewSource(1))

	settings := &VariantSettings{QtyMin: intPtr(3), QtyMax: intPtr(5)}
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		variant := &shopify.Variant{Price: "10.00"}
		n.Apply(variant, settings)
		require.GreaterOrEqual(t, variant.InventoryQuantity, 3)
		require.LessOrEqual(t, variant.InventoryQuantity, 5)
		seen[variant.InventoryQuantity] = true
	}
	// Both endpoints of the closed range must be reachable.
	assert.True(t, seen[3])
	assert.True(t, seen[5])
}

func TestApplyQuantityDegenerateRange(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00", InventoryQuantity: 42}
	n.Apply(variant, &VariantSettings{QtyMin: intPtr(7), QtyMax: intPtr(7)})
	assert.Equal(t, 7, variant.InventoryQuantity)

	// Max below min collapses to min.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{QtyMin: intPtr(9), QtyMax: intPtr(2)})
	assert.Equal(t, 9, variant.InventoryQuantity)

	// No range at all draws 0.
	variant = &shopify.Variant{Price: "10.00", InventoryQuantity: 42}
	n.Apply(variant, &VariantSettings{})
	assert.Equal(t, 0, variant.InventoryQuantity)
}

func TestApplyPricePassthroughReformats(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "15.5"}
	n.Apply(variant, &VariantSettings{})
	assert.Equal(t, "15.50", variant.Price)

	variant = &shopify.Variant{Price: "not-a-price"}
	n.Apply(variant, &VariantSettings{})
	assert.Equal(t, "0.00", variant.Price)
}

func TestApplyPriceAdjustment(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{AdjustPrices: true, AdjustmentAmount: floatPtr(2.5)})
	assert.Equal(t, "12.50", variant.Price)

	// Adjustment flag without an amount is a no-op.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{AdjustPrices: true})
	assert.Equal(t, "10.00", variant.Price)

	// Negative adjustments are allowed.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{AdjustPrices: true, AdjustmentAmount: floatPtr(-3)})
	assert.Equal(t, "7.00", variant.Price)
}

func TestApplyPriceRounding(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.23"}
	n.Apply(variant, &VariantSettings{RoundPrices: true, RoundingNumber: floatPtr(0.99)})
	assert.Equal(t, "10.99", variant.Price)

	// The fractional target replaces the decimals even when that moves the
	// price down.
	variant = &shopify.Variant{Price: "10.97"}
	n.Apply(variant, &VariantSettings{RoundPrices: true, RoundingNumber: floatPtr(0.50)})
	assert.Equal(t, "10.50", variant.Price)
}

func TestApplyAdjustThenRound(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{
		AdjustPrices:     true,
		AdjustmentAmount: floatPtr(5.25),
		RoundPrices:      true,
		RoundingNumber:   floatPtr(0.99),
	})
	assert.Equal(t, "15.99", variant.Price)
}

func TestApplyCompareAtStrategies(t *testing.T) {
	n := NewNormalizer()

	// Additive.
	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtAdditive, CompareAtAmount: floatPtr(5)})
	require.NotNil(t, variant.CompareAtPrice)
	assert.Equal(t, "15.00", *variant.CompareAtPrice)

	// Multiplicative.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtMultiply, CompareAtAmount: floatPtr(1.5)})
	require.NotNil(t, variant.CompareAtPrice)
	assert.Equal(t, "15.00", *variant.CompareAtPrice)

	// Absolute.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtAbsolute, CompareAtAmount: floatPtr(19.99)})
	require.NotNil(t, variant.CompareAtPrice)
	assert.Equal(t, "19.99", *variant.CompareAtPrice)
}

func TestApplyCompareAtMustExceedPrice(t *testing.T) {
	n := NewNormalizer()

	// Absolute value below the price is discarded.
	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtAbsolute, CompareAtAmount: floatPtr(5)})
	assert.Nil(t, variant.CompareAtPrice)

	// Equal is not strictly greater.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtAbsolute, CompareAtAmount: floatPtr(10)})
	assert.Nil(t, variant.CompareAtPrice)

	// A rejected candidate leaves an existing compare-at alone.
	existing := "30.00"
	variant = &shopify.Variant{Price: "10.00", CompareAtPrice: &existing}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: CompareAtAbsolute, CompareAtAmount: floatPtr(5)})
	require.NotNil(t, variant.CompareAtPrice)
	assert.Equal(t, "30.00", *variant.CompareAtPrice)
}

func TestApplyCompareAtUnknownStrategy(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{CompareAtStrategy: "??", CompareAtAmount: floatPtr(50)})
	assert.Nil(t, variant.CompareAtPrice)
}

func TestApplyCompareAtAgainstFinalPrice(t *testing.T) {
	n := NewNormalizer()

	// The multiplier works off the adjusted and rounded price, not the
	// original one.
	variant := &shopify.Variant{Price: "8.00"}
	n.Apply(variant, &VariantSettings{
		AdjustPrices:      true,
		AdjustmentAmount:  floatPtr(2),
		CompareAtStrategy: CompareAtMultiply,
		CompareAtAmount:   floatPtr(2),
	})
	assert.Equal(t, "10.00", variant.Price)
	require.NotNil(t, variant.CompareAtPrice)
	assert.Equal(t, "20.00", *variant.CompareAtPrice)
}

func TestApplyCurrencyTagging(t *testing.T) {
	n := NewNormalizer()

	variant := &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{
		Currency:          "EUR",
		CompareAtStrategy: CompareAtAdditive,
		CompareAtAmount:   floatPtr(5),
	})
	assert.Equal(t, "EUR", variant.PriceCurrency)
	assert.Equal(t, "EUR", variant.CompareAtPriceCurrency)

	// No compare-at set, no compare-at currency.
	variant = &shopify.Variant{Price: "10.00"}
	n.Apply(variant, &VariantSettings{Currency: "EUR"})
	assert.Equal(t, "EUR", variant.PriceCurrency)
	assert.Empty(t, variant.CompareAtPriceCurrency)
}

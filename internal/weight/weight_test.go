package weight

import (
	"testing"

	"packtrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allUnits = []Unit{Pound, Kilogram, Gram, Ounce}

func TestRateRoundTrip(t *testing.T) {
	for _, from := range allUnits {
		for _, to := range allUnits {
			product := Rate(from, to) * Rate(to, from)
			assert.InDelta(t, 1.0, product, 1e-4,
				"rate[%s][%s]*rate[%s][%s] should be ~1", from, to, to, from)
		}
	}
}

func TestRateIdentity(t *testing.T) {
	for _, u := range allUnits {
		assert.Equal(t, 1.0, Rate(u, u))
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		w        float64
		from, to Unit
		want     float64
	}{
		{"kg to lb", 1, Kilogram, Pound, 2.20462},
		{"lb to oz", 1, Pound, Ounce, 16},
		{"kg to g", 2.5, Kilogram, Gram, 2500},
		{"oz to g", 1, Ounce, Gram, 28.3495},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Convert(tt.w, tt.from, tt.to), 1e-6)
		})
	}
}

func TestNormalizeFallsBackToOwnerUnit(t *testing.T) {
	assert.Equal(t, Kilogram, Normalize("kg", Pound))
	assert.Equal(t, Pound, Normalize("", Pound))
	assert.Equal(t, Pound, Normalize("stone", Pound))
}

func TestRateUnknownUnitIsIdentity(t *testing.T) {
	// Unresolvable units must not poison totals; factor 1 by decision.
	assert.Equal(t, 1.0, Rate(Unit("stone"), Pound))
	assert.Equal(t, 1.0, Rate(Pound, Unit("")))
}

func TestItemWeightMultipliesQty(t *testing.T) {
	it := &models.Item{Weight: 1, Qty: 2, WeightUnit: "kg"}
	assert.InDelta(t, 4.40924, ItemWeight(it, Pound), 1e-5)

	// Zero qty is treated as one item.
	it = &models.Item{Weight: 3, Qty: 0, WeightUnit: "g"}
	assert.InDelta(t, 3, ItemWeight(it, Gram), 1e-9)
}

func TestTotals(t *testing.T) {
	items := []models.Item{
		{Weight: 1, Qty: 2, WeightUnit: "kg"},
		{Weight: 2, Qty: 1, WeightUnit: "lb", Worn: true},
	}

	total, worn := Totals(items, Pound)
	// (1*2*2.20462) + (2*1*1) = 6.40924 lb
	assert.InDelta(t, 6.40924, total, 1e-5)
	assert.InDelta(t, 2, worn, 1e-9)
	require.LessOrEqual(t, worn, total)
}

func TestTotalsEmptyUnitUsesOwnerUnit(t *testing.T) {
	items := []models.Item{
		{Weight: 100, Qty: 1},             // no unit: owner's grams
		{Weight: 1, Qty: 1, Worn: true},   // no unit
		{Weight: 1, WeightUnit: "kg", Qty: 1},
	}
	total, worn := Totals(items, Gram)
	assert.InDelta(t, 1101, total, 1e-6)
	assert.InDelta(t, 1, worn, 1e-9)
}

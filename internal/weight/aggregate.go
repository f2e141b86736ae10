package weight

import "packtrail/internal/models"

// ItemWeight is an item's contribution to its category total, converted into
// the owner's unit: weight * qty * rate[itemUnit][ownerUnit].
func ItemWeight(it *models.Item, ownerUnit Unit) float64 {
	qty := it.Qty
	if qty < 1 {
		qty = 1
	}
	from := Normalize(it.WeightUnit, ownerUnit)
	return Convert(it.Weight*float64(qty), from, ownerUnit)
}

// Totals computes the total and worn-only weight of items in ownerUnit.
// The caller resolves the owner's unit once per aggregation and passes it
// down; this function never touches storage.
func Totals(items []models.Item, ownerUnit Unit) (total, worn float64) {
	for i := range items {
		w := ItemWeight(&items[i], ownerUnit)
		total += w
		if items[i].Worn {
			worn += w
		}
	}
	return total, worn
}

package cart

import (
	"fmt"

	"go-dispensary/models"
)

const (
	// TaxRate is the flat sales tax applied to the cart subtotal.
	TaxRate = 0.08
	// FreeDeliveryThreshold is the subtotal at which delivery upgrades
	// to free next-business-day.
	FreeDeliveryThreshold = 75.0
	// MaxLineQuantity caps a single line's quantity. The source design
	// left this unbounded; see DESIGN.md.
	MaxLineQuantity = 99
)

type quantityBreak struct {
	MinQuantity int
	Discount    float64
}

// quantityBreaks are ordered most-aggressive first; the first
// qualifying tier wins.
var quantityBreaks = []quantityBreak{
	{MinQuantity: 10, Discount: 0.15},
	{MinQuantity: 5, Discount: 0.10},
	{MinQuantity: 3, Discount: 0.05},
}

// EffectivePrice returns the per-unit price for a base price at the
// given quantity, applying the highest qualifying quantity break.
// Below the lowest tier the base price is returned unchanged.
func EffectivePrice(basePrice float64, quantity int) float64 {
	for _, b := range quantityBreaks {
		if quantity >= b.MinQuantity {
			return basePrice * (1 - b.Discount)
		}
	}
	return basePrice
}

// NextTierHint describes the closest quantity break above the current
// quantity, or "" when the top tier is already reached.
func NextTierHint(quantity int) string {
	for i := len(quantityBreaks) - 1; i >= 0; i-- {
		b := quantityBreaks[i]
		if quantity < b.MinQuantity {
			return fmt.Sprintf("Add %d more to save %d%%", b.MinQuantity-quantity, int(b.Discount*100+0.5))
		}
	}
	return ""
}

// calculateStats derives the cart aggregates from the line list. Pure;
// invoked after every mutation.
func calculateStats(lines []models.CartLine) models.CartStats {
	var subtotal float64
	var units int
	for _, line := range lines {
		subtotal += line.EffectivePrice * float64(line.Quantity)
		units += line.Quantity
	}
	tax := subtotal * TaxRate

	progress := subtotal / FreeDeliveryThreshold
	if progress > 1 {
		progress = 1
	}
	delivery := "2-3 business days"
	if subtotal >= FreeDeliveryThreshold {
		delivery = "Next business day (FREE)"
	}
	return models.CartStats{
		ItemCount:            len(lines),
		UnitCount:            units,
		Subtotal:             subtotal,
		Tax:                  tax,
		Total:                subtotal + tax,
		FreeDeliveryProgress: progress * 100,
		EstimatedDelivery:    delivery,
	}
}

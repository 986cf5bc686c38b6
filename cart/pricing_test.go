package cart

import (
	"math"
	"testing"

	"go-dispensary/models"
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEffectivePriceTiers(t *testing.T) {
	cases := []struct {
		quantity int
		want     float64
	}{
		{1, 10.0},
		{2, 10.0},
		{3, 9.5},
		{4, 9.5},
		{5, 9.0},
		{9, 9.0},
		{10, 8.5},
		{50, 8.5},
	}
	for _, tc := range cases {
		got := EffectivePrice(10.0, tc.quantity)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("EffectivePrice(10, %d) = %v, want %v", tc.quantity, got, tc.want)
		}
	}
}

func TestNextTierHint(t *testing.T) {
	cases := []struct {
		quantity int
		want     string
	}{
		{1, "Add 2 more to save 5%"},
		{2, "Add 1 more to save 5%"},
		{3, "Add 2 more to save 10%"},
		{5, "Add 5 more to save 15%"},
		{9, "Add 1 more to save 15%"},
		{10, ""},
		{40, ""},
	}
	for _, tc := range cases {
		if got := NextTierHint(tc.quantity); got != tc.want {
			t.Fatalf("NextTierHint(%d) = %q, want %q", tc.quantity, got, tc.want)
		}
	}
}

func TestCalculateStats(t *testing.T) {
	lines := []models.CartLine{
		{Quantity: 2, OriginalPrice: 29.99, EffectivePrice: 29.99},
		{Quantity: 1, OriginalPrice: 39.99, EffectivePrice: 39.99},
	}
	stats := calculateStats(lines)

	if stats.ItemCount != 2 || stats.UnitCount != 3 {
		t.Fatalf("counts = %d items / %d units, want 2 / 3", stats.ItemCount, stats.UnitCount)
	}
	approx(t, stats.Subtotal, 99.97)
	approx(t, stats.Tax, 99.97*0.08)
	approx(t, stats.Total, 99.97*1.08)
	approx(t, stats.FreeDeliveryProgress, 100)
	if stats.EstimatedDelivery != "Next business day (FREE)" {
		t.Fatalf("delivery = %q, want free next-day", stats.EstimatedDelivery)
	}
}

func TestCalculateStatsBelowDeliveryThreshold(t *testing.T) {
	lines := []models.CartLine{
		{Quantity: 1, OriginalPrice: 30.0, EffectivePrice: 30.0},
	}
	stats := calculateStats(lines)

	approx(t, stats.Subtotal, 30.0)
	approx(t, stats.FreeDeliveryProgress, 40)
	if stats.EstimatedDelivery != "2-3 business days" {
		t.Fatalf("delivery = %q, want standard window", stats.EstimatedDelivery)
	}
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := calculateStats(nil)
	if stats.ItemCount != 0 || stats.UnitCount != 0 {
		t.Fatalf("empty cart counts = %+v", stats)
	}
	approx(t, stats.Subtotal, 0)
	approx(t, stats.Tax, 0)
	approx(t, stats.Total, 0)
	approx(t, stats.FreeDeliveryProgress, 0)
}

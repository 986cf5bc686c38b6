package cart

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-dispensary/models"
)

var engineNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return engineNow })}, opts...)
	return NewEngine("session-1", opts...)
}

func flowerRef() models.ProductRef {
	return models.ProductRef{ID: "prod-1", Name: "Blue Dream 3.5g", Price: 29.99, Category: "flower"}
}

func TestAddItemMergesByProduct(t *testing.T) {
	eng := newTestEngine()

	if err := eng.AddItem(flowerRef(), 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := eng.AddItem(flowerRef(), 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	lines := eng.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", lines[0].Quantity)
	}
	// Quantity three crosses the first break, so the merged line is
	// repriced at 5% off.
	approx(t, lines[0].EffectivePrice, 29.99*0.95)
	if lines[0].NextTierHint != "Add 2 more to save 10%" {
		t.Fatalf("hint = %q", lines[0].NextTierHint)
	}
	if eng.Stats().UnitCount != 3 {
		t.Fatalf("unit count = %d, want 3", eng.Stats().UnitCount)
	}
}

func TestAddItemQuantityBreakOnFirstAdd(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 5); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lines := eng.Lines()
	approx(t, lines[0].EffectivePrice, 29.99*0.90)
	approx(t, lines[0].OriginalPrice, 29.99)
}

func TestAddItemClampsQuantity(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 0); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := eng.Lines()[0].Quantity; got != 1 {
		t.Fatalf("zero quantity should clamp to 1, got %d", got)
	}

	eng.UpdateQuantity(eng.Lines()[0].LineID, 500)
	if got := eng.Lines()[0].Quantity; got != MaxLineQuantity {
		t.Fatalf("quantity = %d, want cap %d", got, MaxLineQuantity)
	}
}

func TestAddItemSanitizesName(t *testing.T) {
	eng := newTestEngine()
	ref := flowerRef()
	ref.Name = "  <b>Blue\x00 Dream</b>  "
	if err := eng.AddItem(ref, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := eng.Lines()[0].Product.Name; got != "bBlue Dream/b" {
		t.Fatalf("sanitized name = %q", got)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	eng.UpdateQuantity(eng.Lines()[0].LineID, 0)
	if len(eng.Lines()) != 0 {
		t.Fatalf("expected line removed")
	}
	if eng.Count() != 0 {
		t.Fatalf("count = %d, want 0", eng.Count())
	}
}

func TestUpdateQuantityReprices(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lineID := eng.Lines()[0].LineID

	eng.UpdateQuantity(lineID, 10)
	line := eng.Lines()[0]
	approx(t, line.EffectivePrice, 29.99*0.85)
	if line.NextTierHint != "" {
		t.Fatalf("top tier should carry no hint, got %q", line.NextTierHint)
	}

	// Dropping back below the tier restores the base price.
	eng.UpdateQuantity(lineID, 2)
	approx(t, eng.Lines()[0].EffectivePrice, 29.99)
}

func TestRemoveUnknownLineIsNoOp(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	eng.RemoveItem("no-such-line")
	if len(eng.Lines()) != 1 {
		t.Fatalf("unknown line removal must not touch the cart")
	}
}

func TestClearResetsStats(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 4); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	eng.Clear()

	if len(eng.Lines()) != 0 {
		t.Fatalf("expected empty cart after Clear")
	}
	stats := eng.Stats()
	if stats.ItemCount != 0 || stats.UnitCount != 0 || stats.Subtotal != 0 || stats.Total != 0 {
		t.Fatalf("stats not reset: %+v", stats)
	}
}

func TestTotalIsPreTaxSubtotal(t *testing.T) {
	eng := newTestEngine()
	if err := eng.AddItem(flowerRef(), 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	approx(t, eng.Total(), 29.99*2)
	approx(t, eng.Stats().Total, 29.99*2*1.08)
}

func TestIsInCart(t *testing.T) {
	eng := newTestEngine()
	if eng.IsInCart("prod-1") {
		t.Fatalf("empty cart should not contain prod-1")
	}
	if err := eng.AddItem(flowerRef(), 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !eng.IsInCart("prod-1") {
		t.Fatalf("expected prod-1 in cart")
	}
	if eng.IsInCart("prod-2") {
		t.Fatalf("prod-2 should not be in cart")
	}
}

func TestAddItemRateLimited(t *testing.T) {
	eng := newTestEngine()
	for i := 0; i < DefaultAddLimit; i++ {
		ref := models.ProductRef{ID: fmt.Sprintf("prod-%d", i), Name: "P", Price: 5}
		if err := eng.AddItem(ref, 1); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	err := eng.AddItem(models.ProductRef{ID: "prod-over", Name: "P", Price: 5}, 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if eng.LastError() == "" {
		t.Fatalf("expected LastError to be set")
	}
	if len(eng.Lines()) != DefaultAddLimit {
		t.Fatalf("rejected add must not mutate the cart")
	}

	// Quantity updates are not limited; only adds consume the window.
	eng.UpdateQuantity(eng.Lines()[0].LineID, 2)
	if got := eng.Lines()[0].Quantity; got != 2 {
		t.Fatalf("quantity = %d, want 2", got)
	}
	if err := eng.AddItem(flowerRef(), 1); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("window has not slid yet, expected ErrRateLimited")
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Minute)
	base := engineNow

	if !limiter.Allow("s", base) || !limiter.Allow("s", base.Add(time.Second)) {
		t.Fatalf("first two attempts must pass")
	}
	if limiter.Allow("s", base.Add(2*time.Second)) {
		t.Fatalf("third attempt inside the window must be rejected")
	}
	// Rejected attempts are not recorded, so once the original two age
	// out the session recovers.
	if !limiter.Allow("s", base.Add(61*time.Second)) {
		t.Fatalf("attempt after the window slides must pass")
	}
	// Sessions are independent.
	if !limiter.Allow("other", base.Add(2*time.Second)) {
		t.Fatalf("other sessions must not share the window")
	}
}

func TestRestoreRecomputesStats(t *testing.T) {
	eng := newTestEngine()
	eng.Restore([]models.CartLine{
		{LineID: "l1", Product: models.ProductRef{ID: "prod-1"}, Quantity: 3, OriginalPrice: 10, EffectivePrice: 9.5},
	})
	stats := eng.Stats()
	approx(t, stats.Subtotal, 28.5)
	if stats.UnitCount != 3 {
		t.Fatalf("unit count = %d, want 3", stats.UnitCount)
	}
}

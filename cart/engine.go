package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-dispensary/analytics"
	"go-dispensary/models"
)

// ErrRateLimited is returned when a session exceeds the rolling add
// window. Recoverable: the cart is untouched and the call can be
// retried once the window slides.
var ErrRateLimited = errors.New("too many cart updates, please try again shortly")

// Engine owns the in-memory cart for one shopper session: an ordered
// line list with at most one line per product, quantity-break pricing,
// and derived aggregates. All methods are safe for concurrent use.
type Engine struct {
	sessionID string
	limiter   AttemptLimiter
	tracker   analytics.Tracker
	nowFn     func() time.Time

	mu      sync.Mutex
	lines   []models.CartLine
	stats   models.CartStats
	lastErr string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimiter replaces the default in-memory add limiter.
func WithLimiter(l AttemptLimiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithTracker wires the analytics sink.
func WithTracker(t analytics.Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithClock overrides the engine's clock.
func WithClock(nowFn func() time.Time) Option {
	return func(e *Engine) { e.nowFn = nowFn }
}

// NewEngine creates an empty cart engine for a session.
func NewEngine(sessionID string, opts ...Option) *Engine {
	e := &Engine{
		sessionID: sessionID,
		limiter:   NewMemoryLimiter(DefaultAddLimit, DefaultAddWindow),
		tracker:   analytics.NoopTracker{},
		nowFn:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats = calculateStats(nil)
	return e
}

// AddItem puts a product in the cart. If a line for the product
// already exists its quantity grows and the effective price is
// recomputed at the new total; otherwise a fresh line is appended.
func (e *Engine) AddItem(product models.ProductRef, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowFn()
	if !e.limiter.Allow(e.sessionID, now) {
		e.lastErr = ErrRateLimited.Error()
		return ErrRateLimited
	}
	if quantity < 1 {
		quantity = 1
	}
	product.Name = SanitizeName(product.Name)

	merged := false
	for i := range e.lines {
		if e.lines[i].Product.ID == product.ID {
			newQty := e.lines[i].Quantity + quantity
			if newQty > MaxLineQuantity {
				newQty = MaxLineQuantity
			}
			e.lines[i].Quantity = newQty
			e.lines[i].EffectivePrice = EffectivePrice(e.lines[i].OriginalPrice, newQty)
			e.lines[i].NextTierHint = NextTierHint(newQty)
			merged = true
			break
		}
	}
	if !merged {
		if quantity > MaxLineQuantity {
			quantity = MaxLineQuantity
		}
		e.lines = append(e.lines, models.CartLine{
			LineID:         uuid.NewString(),
			Product:        product,
			Quantity:       quantity,
			OriginalPrice:  product.Price,
			EffectivePrice: EffectivePrice(product.Price, quantity),
			NextTierHint:   NextTierHint(quantity),
			DateAdded:      now,
		})
	}

	e.lastErr = ""
	e.stats = calculateStats(e.lines)
	e.track("cart_add", product.ID, map[string]any{"quantity": quantity})
	return nil
}

// RemoveItem deletes the line with the given id. Removing an unknown
// line is a no-op, not an error.
func (e *Engine) RemoveItem(lineID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var productID string
	kept := e.lines[:0]
	for _, line := range e.lines {
		if line.LineID == lineID {
			productID = line.Product.ID
			continue
		}
		kept = append(kept, line)
	}
	e.lines = kept
	e.stats = calculateStats(e.lines)
	if productID != "" {
		e.track("cart_remove", productID, nil)
	}
}

// UpdateQuantity sets a line's quantity, recomputing its effective
// price. A quantity of zero or below removes the line.
func (e *Engine) UpdateQuantity(lineID string, quantity int) {
	if quantity <= 0 {
		e.RemoveItem(lineID)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity > MaxLineQuantity {
		quantity = MaxLineQuantity
	}
	for i := range e.lines {
		if e.lines[i].LineID == lineID {
			e.lines[i].Quantity = quantity
			e.lines[i].EffectivePrice = EffectivePrice(e.lines[i].OriginalPrice, quantity)
			e.lines[i].NextTierHint = NextTierHint(quantity)
			e.stats = calculateStats(e.lines)
			e.track("cart_update", e.lines[i].Product.ID, map[string]any{"quantity": quantity})
			return
		}
	}
}

// Clear empties the cart and resets the aggregates.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.stats = calculateStats(nil)
	e.lastErr = ""
	e.track("cart_clear", "", nil)
}

// Restore replaces the cart contents from a persisted snapshot and
// recomputes the aggregates.
func (e *Engine) Restore(lines []models.CartLine) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = append([]models.CartLine(nil), lines...)
	e.stats = calculateStats(e.lines)
}

// IsInCart reports whether any line carries the given product id.
func (e *Engine) IsInCart(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, line := range e.lines {
		if line.Product.ID == productID {
			return true
		}
	}
	return false
}

// Count returns the total unit count across all lines.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	var n int
	for _, line := range e.lines {
		n += line.Quantity
	}
	return n
}

// Total returns the pre-tax subtotal. The tax-inclusive figure lives
// in Stats().Total.
func (e *Engine) Total() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Subtotal
}

// Lines returns a copy of the current line list.
func (e *Engine) Lines() []models.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Stats returns the current derived aggregates.
func (e *Engine) Stats() models.CartStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// LastError returns the most recent recoverable error message, or ""
// after a successful mutation.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// track emits an analytics event without blocking the mutation that
// triggered it. Delivery failures are logged and swallowed.
func (e *Engine) track(action, productID string, metadata map[string]any) {
	tracker := e.tracker
	event := analytics.Event{
		Action:    action,
		SessionID: e.sessionID,
		ProductID: productID,
		Metadata:  metadata,
		Timestamp: e.nowFn().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := tracker.Track(ctx, event); err != nil {
			log.Printf("analytics: %s event dropped: %v", action, err)
		}
	}()
}

package cart

import (
	"sync"
	"time"

	"go-dispensary/models"
)

// Wishlist is a saved-product set keyed by product id. Its lifecycle
// is independent of the cart lines.
type Wishlist struct {
	mu      sync.Mutex
	order   []string
	entries map[string]models.WishlistEntry
	nowFn   func() time.Time
}

// NewWishlist creates an empty wishlist.
func NewWishlist() *Wishlist {
	return &Wishlist{
		entries: make(map[string]models.WishlistEntry),
		nowFn:   time.Now,
	}
}

// Add saves a product. Re-adding an already saved product is a no-op.
func (w *Wishlist) Add(product models.ProductRef) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[product.ID]; ok {
		return
	}
	product.Name = SanitizeName(product.Name)
	w.entries[product.ID] = models.WishlistEntry{Product: product, SavedAt: w.nowFn()}
	w.order = append(w.order, product.ID)
}

// Remove drops a saved product. Unknown ids are a no-op.
func (w *Wishlist) Remove(productID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[productID]; !ok {
		return
	}
	delete(w.entries, productID)
	kept := w.order[:0]
	for _, id := range w.order {
		if id != productID {
			kept = append(kept, id)
		}
	}
	w.order = kept
}

// Contains reports whether a product is saved.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[productID]
	return ok
}

// List returns the saved entries in insertion order.
func (w *Wishlist) List() []models.WishlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.WishlistEntry, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entries[id])
	}
	return out
}

// Restore replaces the wishlist contents from a persisted snapshot.
func (w *Wishlist) Restore(entries []models.WishlistEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = make(map[string]models.WishlistEntry, len(entries))
	w.order = w.order[:0]
	for _, entry := range entries {
		if _, ok := w.entries[entry.Product.ID]; ok {
			continue
		}
		w.entries[entry.Product.ID] = entry
		w.order = append(w.order, entry.Product.ID)
	}
}

package models

import (
	"time"
)

// CartLine represents one distinct product in the cart. The cart holds
// at most one line per product id; re-adding a product grows the
// quantity of its existing line.
type CartLine struct {
	LineID         string     `bson:"line_id" json:"line_id"`
	Product        ProductRef `bson:"product" json:"product"`
	Quantity       int        `bson:"quantity" json:"quantity"`
	OriginalPrice  float64    `bson:"original_price" json:"original_price"`
	EffectivePrice float64    `bson:"effective_price" json:"effective_price"`
	NextTierHint   string     `bson:"next_tier_hint,omitempty" json:"next_tier_hint,omitempty"`
	DateAdded      time.Time  `bson:"date_added" json:"date_added"`
}

// CartStats are the aggregates derived from the current cart lines.
// They are recomputed as a pure function of the line list after every
// mutation and never edited directly.
type CartStats struct {
	ItemCount            int     `bson:"item_count" json:"item_count"`
	UnitCount            int     `bson:"unit_count" json:"unit_count"`
	Subtotal             float64 `bson:"subtotal" json:"subtotal"`
	Tax                  float64 `bson:"tax" json:"tax"`
	Total                float64 `bson:"total" json:"total"`
	FreeDeliveryProgress float64 `bson:"free_delivery_progress" json:"free_delivery_progress"` // percentage, 0-100
	EstimatedDelivery    string  `bson:"estimated_delivery" json:"estimated_delivery"`
}

// SessionSnapshot is the persisted form of one shopper session: the
// session flags plus the cart and wishlist contents. Absence of a
// snapshot means fresh default state.
type SessionSnapshot struct {
	Session   ShopperSession  `bson:"session" json:"session"`
	Lines     []CartLine      `bson:"lines" json:"lines"`
	Stats     CartStats       `bson:"stats" json:"stats"`
	Wishlist  []WishlistEntry `bson:"wishlist" json:"wishlist"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

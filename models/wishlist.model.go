package models

import (
	"time"
)

// WishlistEntry is a saved product reference. No quantity or pricing
// semantics; membership is keyed by product id.
type WishlistEntry struct {
	Product   ProductRef `bson:"product" json:"product"`
	SavedAt   time.Time  `bson:"saved_at" json:"saved_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order represents a checked-out cart. Line prices and totals are
// copied from the cart engine at checkout time so later price changes
// never rewrite an order.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	SessionID     string             `bson:"session_id" json:"session_id"`
	Lines         []CartLine         `bson:"lines" json:"lines"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	Tax           float64            `bson:"tax" json:"tax"`
	TotalAmount   float64            `bson:"total_amount" json:"total_amount"`
	ShippingState string             `bson:"shipping_state" json:"shipping_state"`
	Address       Address            `bson:"address" json:"address"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	Status        string             `bson:"status" json:"status"` // e.g., "Pending", "Shipped"
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	DeliveryDate  string             `bson:"delivery_date" json:"delivery_date"` // e.g., "2-3 business days"
}

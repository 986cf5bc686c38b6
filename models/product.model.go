package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog product
type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Price          float64            `bson:"price" json:"price"`
	Category       string             `bson:"category" json:"category"` // e.g., "flower", "vape", "edible"
	StrainType     string             `bson:"strain_type" json:"strain_type"` // "indica", "sativa", "hybrid"
	ThcaPercentage float64            `bson:"thca_percentage" json:"thca_percentage"`
	Image          string             `bson:"image" json:"image"`
	Stock          int                `bson:"stock" json:"stock"`
}

// ProductRef is the slice of product data the cart works with. Product
// IDs are carried as hex strings so the cart packages stay free of
// database types.
type ProductRef struct {
	ID             string  `bson:"id" json:"id"`
	Name           string  `bson:"name" json:"name"`
	Price          float64 `bson:"price" json:"price"`
	Category       string  `bson:"category" json:"category"`
	StrainType     string  `bson:"strain_type" json:"strain_type"`
	ThcaPercentage float64 `bson:"thca_percentage" json:"thca_percentage"`
	Image          string  `bson:"image" json:"image"`
}

// Ref converts a catalog product into the reference shape used by the cart.
func (p Product) Ref() ProductRef {
	return ProductRef{
		ID:             p.ID.Hex(),
		Name:           p.Name,
		Price:          p.Price,
		Category:       p.Category,
		StrainType:     p.StrainType,
		ThcaPercentage: p.ThcaPercentage,
		Image:          p.Image,
	}
}

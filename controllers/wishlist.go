package controllers

import (
	"context"
	"encoding/json"
	"go-dispensary/middleware"
	"go-dispensary/models"
	"go-dispensary/session"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WishlistController exposes the session wishlist over HTTP
type WishlistController struct {
	Products *mongo.Collection
	Sessions *session.Manager
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(client *mongo.Client, sessions *session.Manager) *WishlistController {
	return &WishlistController{
		Products: client.Database("dispensary").Collection("products"),
		Sessions: sessions,
	}
}

// SaveProduct adds a product to the session wishlist
func (wc *WishlistController) SaveProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var product models.Product
	err = wc.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	state := wc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	state.Wishlist.Add(product.Ref())
	wc.Sessions.Save(r.Context(), state)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.Wishlist.List())
}

// RemoveProduct drops a product from the session wishlist
func (wc *WishlistController) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	state := wc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	state.Wishlist.Remove(params["product_id"])
	wc.Sessions.Save(r.Context(), state)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.Wishlist.List())
}

// GetWishlist returns the session wishlist
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	state := wc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.Wishlist.List())
}

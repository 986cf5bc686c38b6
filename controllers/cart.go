package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-dispensary/cart"
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

// CartController exposes the session cart engine over HTTP. Product
// data is looked up from the catalog at add time so the cart never
// trusts client-supplied prices.
type CartController struct {
	Products *mongo.Collection
	Sessions *session.Manager
}

// NewCartController creates a new CartController
func NewCartController(client *mongo.Client, sessions *session.Manager) *CartController {
	return &CartController{
		Products: client.Database("dispensary").Collection("products"),
		Sessions: sessions,
	}
}

type cartResponse struct {
	Lines []models.CartLine `json:"lines"`
	Stats models.CartStats  `json:"stats"`
}

func (cc *CartController) respond(w http.ResponseWriter, state *session.State) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartResponse{
		Lines: state.Cart.Lines(),
		Stats: state.Cart.Stats(),
	})
}

// AddItem adds a product to the session cart
func (cc *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var product models.Product
	err = cc.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	if err := state.Cart.AddItem(product.Ref(), input.Quantity); err != nil {
		if errors.Is(err, cart.ErrRateLimited) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": state.Cart.LastError()})
			return
		}
		http.Error(w, "Error adding item to cart", http.StatusInternalServerError)
		return
	}
	cc.Sessions.Save(r.Context(), state)

	cc.respond(w, state)
}

// GetCart returns the session cart lines and aggregates
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	cc.respond(w, state)
}

// UpdateQuantity sets a cart line's quantity; zero removes the line
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	lineID := params["line_id"]

	var input struct {
		Quantity int `json:"quantity"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	state.Cart.UpdateQuantity(lineID, input.Quantity)
	cc.Sessions.Save(r.Context(), state)

	cc.respond(w, state)
}

// RemoveItem deletes a cart line
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	lineID := params["line_id"]

	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	state.Cart.RemoveItem(lineID)
	cc.Sessions.Save(r.Context(), state)

	cc.respond(w, state)
}

// ClearCart empties the session cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	state.Cart.Clear()
	cc.Sessions.Save(r.Context(), state)

	cc.respond(w, state)
}

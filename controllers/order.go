// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"go-dispensary/compliance"
	"go-dispensary/middleware"
	"go-dispensary/models"
	"go-dispensary/session"
	"go-dispensary/utils"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderController turns a session cart into an order. Checkout is
// gated on the eligibility engine: the session must have passed the
// age gate and the destination state must not be denylisted.
type OrderController struct {
	OrderCollection   *mongo.Collection
	ProductCollection *mongo.Collection
	UserCollection    *mongo.Collection
	Sessions          *session.Manager
	Compliance        *compliance.Engine
	EmailService      *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(client *mongo.Client, sessions *session.Manager, eng *compliance.Engine, emailService *utils.EmailService) *OrderController {
	db := client.Database("dispensary")
	return &OrderController{
		OrderCollection:   db.Collection("orders"),
		ProductCollection: db.Collection("products"),
		UserCollection:    db.Collection("users"),
		Sessions:          sessions,
		Compliance:        eng,
		EmailService:      emailService,
	}
}

// CreateOrder creates a new order from the session cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Find the user in the database
	var user models.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := oc.UserCollection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	sessionID := middleware.SessionID(r.Context())
	state := oc.Sessions.Get(r.Context(), sessionID)

	if !state.Session().AgeVerified {
		http.Error(w, "Age verification required before checkout", http.StatusForbidden)
		return
	}

	// The shipping destination is the session's selected state, falling
	// back to the user's address.
	shippingState := state.Session().SelectedState
	if shippingState == "" {
		shippingState = user.Address.State
	}
	decision := oc.Compliance.CheckStateCompliance(shippingState, clientIP(r))
	if !decision.IsValid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(decision)
		return
	}

	lines := state.Cart.Lines()
	if len(lines) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	var paymentRequest struct {
		PaymentMethod string `json:"payment_method"`
	}
	err = json.NewDecoder(r.Body).Decode(&paymentRequest)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	paymentMethod := strings.ToLower(paymentRequest.PaymentMethod)
	if paymentMethod != "card" && paymentMethod != "ach" {
		http.Error(w, "Invalid payment method", http.StatusBadRequest)
		return
	}

	// Check stock for every line before touching anything
	for _, line := range lines {
		productID, err := primitive.ObjectIDFromHex(line.Product.ID)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid product reference %s", line.Product.ID), http.StatusBadRequest)
			return
		}
		var product models.Product
		err = oc.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err != nil {
			http.Error(w, fmt.Sprintf("Product with ID %s not found", line.Product.ID), http.StatusNotFound)
			return
		}
		if product.Stock < line.Quantity {
			http.Error(w, fmt.Sprintf("Insufficient stock for product: %s", product.Name), http.StatusBadRequest)
			return
		}
	}

	// Deduct stock for each line
	for _, line := range lines {
		productID, _ := primitive.ObjectIDFromHex(line.Product.ID)
		_, err := oc.ProductCollection.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{
			"$inc": bson.M{"stock": -line.Quantity},
		})
		if err != nil {
			http.Error(w, "Failed to update product stock", http.StatusInternalServerError)
			return
		}
	}

	// Order totals come from the cart engine, tax included
	stats := state.Cart.Stats()
	order := models.Order{
		UserID:        user.ID,
		SessionID:     sessionID,
		Lines:         lines,
		Subtotal:      stats.Subtotal,
		Tax:           stats.Tax,
		TotalAmount:   stats.Total,
		ShippingState: shippingState,
		Address:       user.Address,
		PaymentMethod: paymentMethod,
		Status:        "Pending",
		CreatedAt:     time.Now().UTC(),
		DeliveryDate:  stats.EstimatedDelivery,
	}

	orderResult, err := oc.OrderCollection.InsertOne(ctx, order)
	if err != nil {
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}
	order.ID = orderResult.InsertedID.(primitive.ObjectID)

	// Send confirmation email without blocking the response
	go func(email string, order models.Order) {
		if err := oc.EmailService.SendOrderConfirmationEmail(email, order); err != nil {
			log.Printf("Failed to send email to %s: %v", email, err)
		}
	}(user.Email, order)

	// Clear the session cart
	state.Cart.Clear()
	oc.Sessions.Save(r.Context(), state)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":      order.ID,
		"subtotal":      order.Subtotal,
		"tax":           order.Tax,
		"total_amount":  order.TotalAmount,
		"delivery_date": order.DeliveryDate,
		"message":       "Order created successfully.",
	})
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := oc.UserCollection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	cursor, err := oc.OrderCollection.Find(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	for cursor.Next(ctx) {
		var order models.Order
		cursor.Decode(&order)
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		http.Error(w, "Error reading orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// UpdateOrderStatus updates an order's fulfilment status (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil || input.Status == "" {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := oc.OrderCollection.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{
		"$set": bson.M{"status": input.Status},
	})
	if err != nil {
		http.Error(w, "Error updating order", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode("Order status updated")
}

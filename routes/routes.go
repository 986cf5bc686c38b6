// routes/routes.go
package routes

import (
	"go-dispensary/controllers"
	"go-dispensary/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	cartController *controllers.CartController,
	wishlistController *controllers.WishlistController,
	complianceController *controllers.ComplianceController,
	orderController *controllers.OrderController,
) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	// Compliance routes
	router.HandleFunc("/compliance/age", complianceController.VerifyAge).Methods("POST")
	router.HandleFunc("/compliance/state/{code}", complianceController.CheckState).Methods("GET")
	router.HandleFunc("/compliance/state", complianceController.CheckStateFallback).Methods("POST")

	// Product routes
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Cart routes (session-scoped, no login required)
	router.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	router.HandleFunc("/cart", cartController.ClearCart).Methods("DELETE")
	router.HandleFunc("/cart/items", cartController.AddItem).Methods("POST")
	router.HandleFunc("/cart/items/{line_id}", cartController.UpdateQuantity).Methods("PUT")
	router.HandleFunc("/cart/items/{line_id}", cartController.RemoveItem).Methods("DELETE")

	// Wishlist routes
	router.HandleFunc("/wishlist", wishlistController.GetWishlist).Methods("GET")
	router.HandleFunc("/wishlist/{product_id}", wishlistController.SaveProduct).Methods("POST")
	router.HandleFunc("/wishlist/{product_id}", wishlistController.RemoveProduct).Methods("DELETE")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/order", orderController.CreateOrder).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders/{id}", orderController.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/compliance/fraud-log", complianceController.GetFraudLog).Methods("GET")
}

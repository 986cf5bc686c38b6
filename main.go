// main.go
package main

import (
	"context"
	"fmt"
	"go-dispensary/analytics"
	"go-dispensary/cache"
	"go-dispensary/cart"
	"go-dispensary/compliance"
	"go-dispensary/controllers"
	"go-dispensary/middleware"
	"go-dispensary/routes"
	"go-dispensary/session"
	"go-dispensary/store"
	"go-dispensary/utils"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Load compliance rules (denylist of record); falls back to the
	// compiled-in default when COMPLIANCE_CONFIG is unset.
	complianceCfg, err := compliance.LoadConfig(os.Getenv("COMPLIANCE_CONFIG"))
	if err != nil {
		log.Fatalf("Error loading compliance config: %v", err)
	}
	eligibility := compliance.NewEngine(complianceCfg)

	// Cart add limiter: Redis-backed when REDIS_URL is set so the
	// window holds across instances, in-memory otherwise.
	var limiter cart.AttemptLimiter = cart.NewMemoryLimiter(cart.DefaultAddLimit, cart.DefaultAddWindow)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient, err := cache.Connect(redisURL)
		if err != nil {
			log.Fatalf("Error connecting to Redis: %v", err)
		}
		limiter = cache.NewRedisAttemptLimiter(redisClient, cart.DefaultAddLimit, cart.DefaultAddWindow)
	}

	// Analytics sink: Kafka when brokers are configured, dropped
	// otherwise.
	var tracker analytics.Tracker = analytics.NoopTracker{}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaTracker, err := analytics.NewKafkaTracker(strings.Split(brokers, ","))
		if err != nil {
			log.Fatalf("Error creating Kafka tracker: %v", err)
		}
		defer kafkaTracker.Close()
		tracker = kafkaTracker
	}

	// Session manager with Mongo-backed snapshots
	sessions := session.NewManager(
		store.NewMongoStore(client),
		session.WithLimiter(limiter),
		session.WithTracker(tracker),
	)

	// Initialize controllers
	userController := controllers.NewUserController(client, emailService, eligibility)
	productController := controllers.NewProductController(client)
	cartController := controllers.NewCartController(client, sessions)
	wishlistController := controllers.NewWishlistController(client, sessions)
	complianceController := controllers.NewComplianceController(eligibility, sessions)
	orderController := controllers.NewOrderController(client, sessions, eligibility, emailService)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.SessionMiddleware)

	// Register routes
	routes.RegisterRoutes(router, userController, productController, cartController,
		wishlistController, complianceController, orderController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/ninesib/backend/internal/auth"
	"github.com/ninesib/backend/internal/database"
	"github.com/ninesib/backend/internal/history"
	"github.com/ninesib/backend/internal/middleware"
	"github.com/ninesib/backend/internal/payments"
	"github.com/ninesib/backend/internal/questions"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[server] no .env file, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores
	questionStore := questions.NewStore(db)
	attemptStore := history.NewPostgresStore(db)
	paymentStore := payments.NewStore(db)

	// Services
	questionService := questions.NewService(questionStore)
	historyService := history.NewService(attemptStore)
	paymentService := payments.NewService(paymentStore, payments.NewGateway(), os.Getenv("PAYMENT_WEBHOOK_SECRET"))

	// Handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionService, paymentStore)
	historyHandler := history.NewHandler(historyService, questionService, paymentStore)
	paymentHandler := payments.NewHandler(paymentService, paymentStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	paymentHandler.RegisterWebhook(api)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	questionHandler.RegisterRoutes(protected)
	historyHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Payment-Signature"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

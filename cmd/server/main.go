package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitplan/workout-app/internal/api"
	"fitplan/workout-app/internal/config"
	"fitplan/workout-app/internal/openai"
	"fitplan/workout-app/internal/repository/mongo"
	"fitplan/workout-app/internal/security"
	"fitplan/workout-app/internal/service"
	"fitplan/workout-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Workout App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing snapshot storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Provider-Key Cipher ---
	keyCipher, err := security.NewKeyCipher(cfg.Crypto.EncryptionKey)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize key cipher: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	openaiClient := openai.NewClient(cfg.OpenAI.BaseURL, &http.Client{Timeout: cfg.OpenAI.Timeout})
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	workoutService := service.NewWorkoutService(workoutRepo, fileStorage)
	generationService := service.NewGenerationService(userRepo, openaiClient, keyCipher, cfg.OpenAI.APIKey)
	settingsService := service.NewSettingsService(userRepo, keyCipher)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, workoutService, generationService, settingsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

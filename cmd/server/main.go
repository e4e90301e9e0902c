package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyvid-backend/internal/config"
	"storyvid-backend/internal/database"
	"storyvid-backend/internal/handlers"
	"storyvid-backend/internal/middleware"
	"storyvid-backend/internal/repository"
	"storyvid-backend/internal/router"
	"storyvid-backend/internal/services"
	"storyvid-backend/internal/websocket"
	"storyvid-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting StoryVid Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	assetRepo := repository.NewVideoAssetRepo(pool)
	storyRepo := repository.NewStoryPromptRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	renderService := services.NewRenderService(cfg.StoragePath)

	// ──── Initialize Handlers ────
	assetHandler := handlers.NewVideoAssetHandler(assetRepo)
	storyHandler := handlers.NewStoryPromptHandler(storyRepo)
	promptHandler := handlers.NewPromptHandler(geminiService)
	renderHandler := handlers.NewRenderHandler(assetRepo, jobRepo, redisClients.Queue)

	// ──── Step 6: Start Render Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		renderService,
		jobRepo,
		assetRepo,
		cfg.RenderWorkers,
	)
	workerPool.Start()
	log.Printf("✓ Render worker pool started (%d goroutines)", cfg.RenderWorkers)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		assetHandler,
		storyHandler,
		promptHandler,
		renderHandler,
		wsHub,
		cfg.FrontendURL,
		cfg.StoragePath,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StoryVid Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  WS: ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

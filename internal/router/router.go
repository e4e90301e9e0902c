package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"storyvid-backend/internal/handlers"
	"storyvid-backend/internal/middleware"
	"storyvid-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	assetHandler *handlers.VideoAssetHandler,
	storyHandler *handlers.StoryPromptHandler,
	promptHandler *handlers.PromptHandler,
	renderHandler *handlers.RenderHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	storagePath string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Gemini-backed endpoints get a per-IP limiter (10 req/min)
	aiLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Asset & Story Reads (public, lookup by query params) ────
	r.Get("/video-assets", assetHandler.GetByScene)
	r.Get("/get-promptstory-by-id", storyHandler.GetByID)

	// ──── Prompt AI Routes ────
	r.Group(func(r chi.Router) {
		r.Use(aiLimiter.Middleware)
		r.Post("/prompt-cleanerai", promptHandler.Clean)
		r.Post("/analyze-prompt", promptHandler.Analyze)
	})

	// ──── Authenticated Routes ────
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.Middleware)
		r.Post("/video-assets", assetHandler.Create)
		r.Get("/all-video-assets", assetHandler.ListByUser)
		r.Get("/get-promptstory-by-userId", storyHandler.GetByUser)
		r.Post("/save-promptstory", storyHandler.Save)
		r.Post("/video-assets/{id}/render", renderHandler.Render)
		r.Get("/jobs/{id}", renderHandler.GetJob)
	})

	// ──── WebSocket ────
	r.Get("/ws", wsHub.HandleWebSocket)

	// ──── Rendered Video Files ────
	fileServer := http.FileServer(http.Dir(storagePath))
	r.Handle("/videos/*", http.StripPrefix("/videos/", fileServer))

	return r
}

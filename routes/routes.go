package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/ai-docs-prompt/app"
	"github.com/upb/ai-docs-prompt/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.SQLDB(), deps.VectorStore, deps.Logger)
	documentHandler := handlers.NewDocumentHandler(deps.Documents, deps.Config.Upload.MaxSize, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// API routes. StripSlashes keeps the trailing-slash URLs working.
	r.Route("/api/documents", func(r chi.Router) {
		r.Use(middleware.StripSlashes)

		r.Post("/", documentHandler.HandleUpload)
		r.Get("/", documentHandler.HandleList)
		r.Post("/generate-response", documentHandler.HandleGenerateResponse)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", documentHandler.HandleGet)
			r.Put("/", documentHandler.HandleUpdate)
			r.Patch("/", documentHandler.HandlePatch)
			r.Delete("/", documentHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

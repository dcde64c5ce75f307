package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/umccanna/regulation-summarization/internal/api/handlers"
	appMiddleware "github.com/umccanna/regulation-summarization/internal/api/middlewares"
	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, regulationService *services.RegulationService) *Server {
	summarizeHandler := handlers.NewSummarizeHandler(regulationService)
	regulationHandler := handlers.NewRegulationHandler(regulationService)
	conversationHandler := handlers.NewConversationHandler(regulationService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

		api.Post("/summarize", summarizeHandler.Summarize)
		api.Get("/regulations", regulationHandler.GetRegulations)
		api.Post("/conversations/list", conversationHandler.ListConversations)
		api.Post("/conversations/load", conversationHandler.LoadConversation)
		api.Post("/conversations/migrate", conversationHandler.MigrateConversations)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

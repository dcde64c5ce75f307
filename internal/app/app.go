package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/umccanna/regulation-summarization/internal/config"
	db "github.com/umccanna/regulation-summarization/internal/core/database"
	"github.com/umccanna/regulation-summarization/internal/core/llm"
	"github.com/umccanna/regulation-summarization/internal/services"
)

// App holds the API process's long-lived resources.
type App struct {
	DBClient *db.DatabaseClient
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the chat model: %w", err)
	}

	regulationService := services.NewRegulationService(dbClient, dbClient, embedder, llmProvider, cfg)
	server := NewServer(cfg, regulationService)

	return &App{
		DBClient: dbClient,
		Embedder: embedder,
		LLM:      llmProvider,
		Server:   server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
}

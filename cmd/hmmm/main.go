package main

import (
	"log"
	"log/slog"

	"github.com/TheSylus/Hmmm/internal/config"
	"github.com/TheSylus/Hmmm/internal/db"
	"github.com/TheSylus/Hmmm/internal/enrich"
	"github.com/TheSylus/Hmmm/internal/imagestore/local"
	"github.com/TheSylus/Hmmm/internal/localstore/sqlite"
	"github.com/TheSylus/Hmmm/internal/logging"
	"github.com/TheSylus/Hmmm/internal/lookup"
	claudelookup "github.com/TheSylus/Hmmm/internal/lookup/claude"
	ollamalookup "github.com/TheSylus/Hmmm/internal/lookup/ollama"
	"github.com/TheSylus/Hmmm/internal/lookup/openfoodfacts"
	"github.com/TheSylus/Hmmm/internal/service"
	"github.com/TheSylus/Hmmm/internal/store"
	"github.com/TheSylus/Hmmm/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	items := store.NewItemRepository(sqlite.New(database), logger)

	images, err := local.New(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	analyzer, translator := newAIBackend(cfg, logger)
	products := openfoodfacts.New(cfg.OpenFoodFactsURL)

	pipeline := enrich.NewPipeline(analyzer, products, translator, logger)
	catalog := service.NewCatalogService(items, pipeline, images, logger)
	server := web.NewServer(catalog, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newAIBackend wires the configured image analyzer and, where the backend
// supports it, the translator. "off" disables both; the enrichment pipeline
// skips stages whose collaborator is nil.
func newAIBackend(cfg *config.Config, logger *slog.Logger) (lookup.ImageAnalyzer, lookup.Translator) {
	switch cfg.AIBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when AI_BACKEND=claude")
			return nil, nil
		}
		logger.Info("using Claude AI backend")
		client := claudelookup.New(cfg.ClaudeAPIKey, cfg.ClaudeModel)
		return client, client
	case "ollama":
		logger.Info("using Ollama AI backend", "model", cfg.OllamaModel)
		return ollamalookup.New(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		logger.Info("AI backend disabled")
		return nil, nil
	}
}

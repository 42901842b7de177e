package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/joho/godotenv"

	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"github.com/nmorales-dev/localchat-backend/pkg/ollama"
)

// Queries the local runtime for its installed models and writes the catalog
// file the API loads at startup. Run after pulling or removing models.
func main() {
	logg := logger.New(logger.Options{ServiceName: "get-models"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	client := ollama.New(cfg.Ollama)
	installed, err := client.ListModels(ctx)
	if err != nil {
		logg.Error(ctx, "failed to list runtime models", err)
		os.Exit(1)
	}

	models := make([]catalog.Model, 0, len(installed))
	for _, m := range installed {
		models = append(models, catalog.Model{Name: m.Name})
	}

	payload, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		logg.Error(ctx, "failed to encode catalog", err)
		os.Exit(1)
	}
	if err := os.WriteFile(cfg.Catalog.Path, payload, 0o644); err != nil {
		logg.Error(ctx, "failed to write catalog", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"path":   cfg.Catalog.Path,
		"models": len(models),
	}), "model catalog written")
}

// Command generate_embeddings fills in missing site embeddings for the
// configured catalogue backend and exits.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/go-itinerary-builder/config"
	"github.com/FACorreiaa/go-itinerary-builder/internal/container"
)

func main() {
	batchSize := flag.Int("batch", 20, "sites embedded per batch")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.NewContainer(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("Failed to initialise dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	logger.Info("Generating embeddings for sites without one",
		slog.String("backend", cfg.Repositories.Backend),
		slog.String("provider", cfg.LLM.Provider),
		slog.Int("batch_size", *batchSize))

	start := time.Now()
	updated, err := c.SitesService.BackfillEmbeddings(ctx, *batchSize)
	if err != nil {
		logger.Error("Embedding generation failed", slog.Any("error", err), slog.Int("updated", updated))
		os.Exit(1)
	}
	logger.Info("Embedding generation complete", slog.Int("updated", updated), slog.Duration("took", time.Since(start)))
}

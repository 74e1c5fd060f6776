package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	database "github.com/FACorreiaa/go-itinerary-builder/app/db"
	"github.com/FACorreiaa/go-itinerary-builder/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-builder/config"
	generativeAI "github.com/FACorreiaa/go-itinerary-builder/internal/api/generative_ai"
	"github.com/FACorreiaa/go-itinerary-builder/internal/api/planner"
	"github.com/FACorreiaa/go-itinerary-builder/internal/api/sites"
)

// Catalogue backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderLocal  = "local"
)

const backfillBatchSize = 50

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Pool  *pgxpool.Pool
	Mongo *mongo.Client
	Redis *redis.Client

	SitesService   sites.Service
	PlannerService planner.Service
	SitesHandler   *sites.HandlerImpl
	PlannerHandler *planner.HandlerImpl
}

// NewContainer connects the configured backends and wires services and handlers.
// On error, anything already opened is closed.
func NewContainer(ctx context.Context, cfg *config.Config, appMetrics *metrics.AppMetrics, logger *slog.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	repo, err := c.siteRepository(ctx, appMetrics)
	if err != nil {
		return nil, err
	}

	embedder, narrator := c.languageModel(ctx)
	cachedEmbedder := generativeAI.NewCachedEmbedder(embedder, cfg.Cache.EmbeddingTTL, logger)

	c.Redis, err = database.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	var store planner.Store
	if c.Redis != nil {
		store = planner.NewRedisStore(c.Redis, cfg.Cache.TripTTL, logger)
	} else {
		store = planner.NewMemoryStore(cfg.Cache.TripTTL)
	}

	sitesService := sites.NewServiceImpl(repo, cachedEmbedder, logger)
	plannerService := planner.NewServiceImpl(repo, cachedEmbedder, narrator, store, appMetrics,
		planner.OptionsFromConfig(cfg), logger)

	c.SitesService = sitesService
	c.PlannerService = plannerService
	c.SitesHandler = sites.NewHandlerImpl(sitesService, logger)
	c.PlannerHandler = planner.NewHandlerImpl(plannerService, logger)
	return c, nil
}

func (c *Container) siteRepository(ctx context.Context, appMetrics *metrics.AppMetrics) (sites.Repository, error) {
	cfg := c.Config
	backend := strings.ToLower(cfg.Repositories.Backend)
	if backend == "" {
		backend = BackendMemory
	}
	c.Logger.Info("Initialising site catalogue", slog.String("backend", backend))

	switch backend {
	case BackendMemory:
		catalog, err := sites.LoadCatalog(cfg.Repositories.Memory.SeedFile)
		if err != nil {
			return nil, err
		}
		return sites.NewMemoryRepository(catalog, c.Logger), nil

	case BackendPostgres:
		dbConfig, err := database.NewDatabaseConfig(cfg, c.Logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
			return nil, err
		}
		maxWait := time.Duration(cfg.Repositories.Postgres.MAXCONWAITINGTIME) * time.Second
		c.Pool, err = database.Init(ctx, dbConfig.ConnectionURL, maxWait, c.Logger)
		if err != nil {
			return nil, err
		}
		if !database.WaitForDB(ctx, c.Pool, c.Logger) {
			return nil, errors.New("database not ready after waiting")
		}
		return sites.NewPostgresRepository(c.Pool, appMetrics, c.Logger), nil

	case BackendMongo:
		client, db, err := database.ConnectMongo(ctx, cfg, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Mongo = client
		repo := sites.NewMongoRepository(db, c.Logger)
		catalog, err := sites.LoadCatalog(cfg.Repositories.Memory.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := repo.SeedIfEmpty(ctx, catalog); err != nil {
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown repository backend %q", cfg.Repositories.Backend)
	}
}

// languageModel returns the configured provider. A provider that cannot be
// built falls back to the offline hashing embedder with no narratives.
func (c *Container) languageModel(ctx context.Context) (generativeAI.Embedder, planner.NarrativeGenerator) {
	llm := c.Config.LLM
	provider := strings.ToLower(llm.Provider)

	var (
		embedder generativeAI.Embedder
		narrator planner.NarrativeGenerator
		err      error
	)
	switch provider {
	case ProviderGemini:
		var client *generativeAI.GeminiClient
		if client, err = generativeAI.NewGeminiClient(ctx, llm.Model, llm.EmbeddingModel, llm.RequestsPerMinute, c.Logger); err == nil {
			embedder, narrator = client, client
		}
	case ProviderOpenAI, ProviderGroq:
		apiKey, baseURL := os.Getenv("OPENAI_API_KEY"), llm.BaseURL
		if provider == ProviderGroq {
			apiKey = os.Getenv("GROQ_API_KEY")
			if baseURL == "" {
				baseURL = generativeAI.GroqBaseURL
			}
		}
		var client *generativeAI.OpenAIClient
		if client, err = generativeAI.NewOpenAIClient(apiKey, baseURL, llm.Model, llm.EmbeddingModel, llm.RequestsPerMinute, c.Logger); err == nil {
			embedder, narrator = client, client
		}
	case ProviderLocal, "":
	default:
		err = fmt.Errorf("unknown llm provider %q", llm.Provider)
	}

	if err != nil {
		c.Logger.Warn("LLM provider unavailable, using local embeddings without narratives",
			slog.String("provider", llm.Provider), slog.Any("error", err))
	}
	if embedder == nil {
		return generativeAI.NewHashingEmbedder(generativeAI.DefaultHashingDimensions), nil
	}
	if !llm.Narrative {
		narrator = nil
	}
	return embedder, narrator
}

// BackfillEmbeddings embeds every catalogue site that has no vector yet.
func (c *Container) BackfillEmbeddings(ctx context.Context) (int, error) {
	return c.SitesService.BackfillEmbeddings(ctx, backfillBatchSize)
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.Logger.Warn("Failed to disconnect from MongoDB", slog.Any("error", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close Redis client", slog.Any("error", err))
		}
	}
}

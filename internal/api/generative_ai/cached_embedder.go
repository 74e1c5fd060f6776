package generativeAI

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder memoises embeddings by normalised text. Trip builds embed the
// same interest list for every day, so most calls are cache hits.
type CachedEmbedder struct {
	next   Embedder
	cache  *cache.Cache
	logger *slog.Logger
}

func NewCachedEmbedder(next Embedder, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedEmbedder{
		next:   next,
		cache:  cache.New(ttl, 1*time.Hour),
		logger: logger,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if v, found := c.cache.Get(key); found {
		c.logger.DebugContext(ctx, "Embedding cache hit", slog.Int("text.length", len(text)))
		return slices.Clone(v.([]float32)), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, slices.Clone(vec), cache.DefaultExpiration)
	return vec, nil
}

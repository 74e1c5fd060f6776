package sites

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-itinerary-builder/internal/geo"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Service interface {
	// ListSitesWithDistances annotates each located site with distances to
	// every other located site and restaurant, nearest first.
	ListSitesWithDistances(ctx context.Context) ([]types.SiteWithDistances, error)
	// BackfillEmbeddings embeds sites that have no vector yet and returns how
	// many were updated.
	BackfillEmbeddings(ctx context.Context, batchSize int) (int, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	embedder    Embedder
	concurrency int
}

func NewServiceImpl(repo Repository, embedder Embedder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		embedder:    embedder,
		concurrency: 4,
	}
}

func (s *ServiceImpl) ListSitesWithDistances(ctx context.Context) ([]types.SiteWithDistances, error) {
	ctx, span := otel.Tracer("SitesService").Start(ctx, "ListSitesWithDistances")
	defer span.End()

	var (
		siteRecords []types.SiteRecord
		restaurants []types.RestaurantRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		siteRecords, err = s.repo.ListSites(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		restaurants, err = s.repo.ListRestaurants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load catalogue")
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	out := make([]types.SiteWithDistances, 0, len(siteRecords))
	for i, site := range siteRecords {
		origin := site.Location()
		if origin == nil {
			continue
		}
		entry := types.SiteWithDistances{
			SiteRecord:             site,
			DistancesToSites:       []types.SiteDistance{},
			DistancesToRestaurants: []types.SiteDistance{},
		}
		entry.Embedding = nil
		for j, other := range siteRecords {
			if i == j {
				continue
			}
			if loc := other.Location(); loc != nil {
				entry.DistancesToSites = append(entry.DistancesToSites, types.SiteDistance{
					ID: other.ID, Name: other.Name, DistanceKm: geo.Distance(*origin, *loc),
				})
			}
		}
		for _, rest := range restaurants {
			if loc := rest.Location(); loc != nil {
				entry.DistancesToRestaurants = append(entry.DistancesToRestaurants, types.SiteDistance{
					ID: rest.ID, Name: rest.Name, DistanceKm: geo.Distance(*origin, *loc),
				})
			}
		}
		sortByDistance(entry.DistancesToSites)
		sortByDistance(entry.DistancesToRestaurants)
		out = append(out, entry)
	}

	span.SetAttributes(
		attribute.Int("sites.count", len(out)),
		attribute.Int("restaurants.count", len(restaurants)),
	)
	span.SetStatus(codes.Ok, "Distances computed")
	return out, nil
}

func sortByDistance(d []types.SiteDistance) {
	sort.SliceStable(d, func(i, j int) bool { return d[i].DistanceKm < d[j].DistanceKm })
}

func (s *ServiceImpl) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	ctx, span := otel.Tracer("SitesService").Start(ctx, "BackfillEmbeddings", trace.WithAttributes(
		attribute.Int("batch_size", batchSize),
	))
	defer span.End()

	if s.embedder == nil {
		return 0, fmt.Errorf("no embedder configured")
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	total := 0
	for {
		batch, err := s.repo.SitesWithoutEmbeddings(ctx, batchSize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to load backlog")
			return total, fmt.Errorf("failed to load sites without embeddings: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		var updated atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for _, site := range batch {
			g.Go(func() error {
				vec, err := s.embedder.Embed(gctx, EmbeddingText(site))
				if err != nil {
					s.logger.WarnContext(gctx, "Failed to embed site",
						slog.String("site", site.Name), slog.Any("error", err))
					return nil
				}
				if err := s.repo.UpdateSiteEmbedding(gctx, site.ID, vec); err != nil {
					s.logger.WarnContext(gctx, "Failed to store site embedding",
						slog.String("site", site.Name), slog.Any("error", err))
					return nil
				}
				updated.Add(1)
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n := int(updated.Load())
		total += n
		s.logger.InfoContext(ctx, "Embedded site batch", slog.Int("batch", len(batch)), slog.Int("updated", n))
		// A batch with no successes would be served again unchanged.
		if n == 0 || len(batch) < batchSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("updated.count", total))
	span.SetStatus(codes.Ok, "Backfill complete")
	return total, nil
}

// EmbeddingText is the text a site is embedded from.
func EmbeddingText(site types.SiteRecord) string {
	var b strings.Builder
	b.WriteString(site.Name)
	if site.City != "" {
		b.WriteString(", ")
		b.WriteString(site.City)
	}
	if site.Description != "" {
		b.WriteString(". ")
		b.WriteString(site.Description)
	}
	if len(site.Activities) > 0 {
		b.WriteString(" Activities: ")
		b.WriteString(strings.Join(site.Activities, ", "))
	}
	return b.String()
}

package sites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var _ Repository = (*MongoRepository)(nil)

const (
	sitesCollection       = "sites"
	restaurantsCollection = "restaurants"
)

type mongoSite struct {
	ObjectID         primitive.ObjectID `bson:"_id,omitempty"`
	types.SiteRecord `bson:",inline"`
}

func (m mongoSite) record() types.SiteRecord {
	rec := m.SiteRecord
	rec.ID = m.ObjectID.Hex()
	return rec
}

type mongoRestaurant struct {
	ObjectID               primitive.ObjectID `bson:"_id,omitempty"`
	types.RestaurantRecord `bson:",inline"`
}

func (m mongoRestaurant) record() types.RestaurantRecord {
	rec := m.RestaurantRecord
	rec.ID = m.ObjectID.Hex()
	return rec
}

// MongoRepository keeps sites and restaurants in two collections. Similarity
// is computed in process since the collections carry raw embedding arrays.
type MongoRepository struct {
	logger      *slog.Logger
	sites       *mongo.Collection
	restaurants *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, logger *slog.Logger) *MongoRepository {
	return &MongoRepository{
		logger:      logger,
		sites:       db.Collection(sitesCollection),
		restaurants: db.Collection(restaurantsCollection),
	}
}

var catalogueOrder = bson.D{{Key: "_id", Value: 1}}

func caseInsensitiveEquals(v string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(v) + "$", "$options": "i"}
}

func siteSearchFilter(search types.SiteSearch) bson.M {
	clauses := []bson.M{
		{"embedding": bson.M{"$exists": true, "$type": "array"}},
	}
	if search.City != "" {
		clauses = append(clauses, bson.M{"city": caseInsensitiveEquals(search.City)})
	}
	if search.MaxCost > 0 {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"budget_egp": nil},
			{"budget_egp": bson.M{"$lte": search.MaxCost}},
		}})
	}
	if search.Age != nil {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"min_age": nil},
			{"min_age": bson.M{"$lte": *search.Age}},
		}})
	}
	return bson.M{"$and": clauses}
}

func namePatternFilter(patterns []string) bson.M {
	alternatives := make([]bson.M, len(patterns))
	for i, p := range patterns {
		alternatives[i] = bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(p), Options: "i"}}
	}
	return bson.M{"$or": alternatives}
}

func restaurantFilter(q types.RestaurantQuery) bson.M {
	filter := bson.M{
		"latitude":  bson.M{"$ne": nil},
		"longitude": bson.M{"$ne": nil},
	}
	if q.City != "" {
		filter["city"] = caseInsensitiveEquals(q.City)
	}
	if q.MaxCost > 0 {
		filter["average_budget_egp"] = bson.M{"$lte": q.MaxCost}
	}
	return filter
}

func (r *MongoRepository) SearchTopSites(ctx context.Context, search types.SiteSearch) ([]types.SiteRecord, error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "MongoSearchTopSites", trace.WithAttributes(
		attribute.String("city", search.City),
		attribute.Int("limit", search.Limit),
	))
	defer span.End()

	candidates, err := r.findSites(ctx, siteSearchFilter(search), options.Find().SetSort(catalogueOrder))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Find failed")
		return nil, fmt.Errorf("failed to search sites: %w", err)
	}

	ranked := rankBySimilarity(candidates, search.Vector, search.Limit)
	span.SetAttributes(attribute.Int("results.count", len(ranked)))
	span.SetStatus(codes.Ok, "Sites found")
	return ranked, nil
}

func (r *MongoRepository) FindSiteByNamePattern(ctx context.Context, patterns ...string) (*types.SiteRecord, error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "MongoFindSiteByNamePattern", trace.WithAttributes(
		attribute.StringSlice("patterns", patterns),
	))
	defer span.End()

	if len(patterns) == 0 {
		return nil, nil
	}

	var doc mongoSite
	err := r.sites.FindOne(ctx, namePatternFilter(patterns), options.FindOne().SetSort(catalogueOrder)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetStatus(codes.Ok, "No site matched")
		return nil, nil
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to find site by name", slog.Any("patterns", patterns), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "FindOne failed")
		return nil, fmt.Errorf("failed to find site by name pattern: %w", err)
	}

	rec := doc.record()
	span.SetStatus(codes.Ok, "Site found")
	return &rec, nil
}

func (r *MongoRepository) QueryRestaurants(ctx context.Context, q types.RestaurantQuery) ([]types.RestaurantRecord, error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "MongoQueryRestaurants", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.Float64("max_cost", q.MaxCost),
	))
	defer span.End()

	opts := options.Find().SetSort(catalogueOrder)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	restaurants, err := r.findRestaurants(ctx, restaurantFilter(q), opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Find failed")
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	span.SetStatus(codes.Ok, "Restaurants found")
	return restaurants, nil
}

func (r *MongoRepository) ListSites(ctx context.Context) ([]types.SiteRecord, error) {
	records, err := r.findSites(ctx, bson.M{}, options.Find().SetSort(catalogueOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return records, nil
}

func (r *MongoRepository) ListRestaurants(ctx context.Context) ([]types.RestaurantRecord, error) {
	restaurants, err := r.findRestaurants(ctx, bson.M{}, options.Find().SetSort(catalogueOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *MongoRepository) SitesWithoutEmbeddings(ctx context.Context, limit int) ([]types.SiteRecord, error) {
	filter := bson.M{"$or": []bson.M{
		{"embedding": bson.M{"$exists": false}},
		{"embedding": nil},
		{"embedding": bson.M{"$size": 0}},
	}}
	opts := options.Find().SetSort(catalogueOrder)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	records, err := r.findSites(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding backlog: %w", err)
	}
	return records, nil
}

func (r *MongoRepository) UpdateSiteEmbedding(ctx context.Context, siteID string, embedding []float32) error {
	oid, err := primitive.ObjectIDFromHex(siteID)
	if err != nil {
		return fmt.Errorf("invalid site id %q: %w", siteID, types.ErrNotFound)
	}
	res, err := r.sites.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"embedding":            embedding,
		"embedding_updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update site embedding: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("site %s: %w", siteID, types.ErrNotFound)
	}
	return nil
}

// SeedIfEmpty loads the catalogue into empty collections.
func (r *MongoRepository) SeedIfEmpty(ctx context.Context, catalog *Catalog) error {
	count, err := r.sites.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count sites: %w", err)
	}
	if count > 0 {
		r.logger.InfoContext(ctx, "Site collection already populated", slog.Int64("count", count))
		return nil
	}

	siteDocs := make([]interface{}, len(catalog.Sites))
	for i, s := range catalog.Sites {
		siteDocs[i] = mongoSite{SiteRecord: s}
	}
	restaurantDocs := make([]interface{}, len(catalog.Restaurants))
	for i, rest := range catalog.Restaurants {
		restaurantDocs[i] = mongoRestaurant{RestaurantRecord: rest}
	}

	if len(siteDocs) > 0 {
		if _, err := r.sites.InsertMany(ctx, siteDocs); err != nil {
			return fmt.Errorf("failed to seed sites: %w", err)
		}
	}
	if len(restaurantDocs) > 0 {
		if _, err := r.restaurants.InsertMany(ctx, restaurantDocs); err != nil {
			return fmt.Errorf("failed to seed restaurants: %w", err)
		}
	}
	r.logger.InfoContext(ctx, "Seeded catalogue",
		slog.Int("sites", len(siteDocs)),
		slog.Int("restaurants", len(restaurantDocs)))
	return nil
}

func (r *MongoRepository) findSites(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]types.SiteRecord, error) {
	cursor, err := r.sites.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoSite
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]types.SiteRecord, len(docs))
	for i, d := range docs {
		records[i] = d.record()
	}
	return records, nil
}

func (r *MongoRepository) findRestaurants(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]types.RestaurantRecord, error) {
	cursor, err := r.restaurants.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoRestaurant
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	restaurants := make([]types.RestaurantRecord, len(docs))
	for i, d := range docs {
		restaurants[i] = d.record()
	}
	return restaurants, nil
}

package sites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-builder/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var siteColumns = []string{
	"id::text",
	"name",
	"COALESCE(city, '')",
	"COALESCE(governorate, '')",
	"COALESCE(description, '')",
	"latitude",
	"longitude",
	"budget_egp",
	"COALESCE(opening_time, '')",
	"COALESCE(closing_time, '')",
	"average_time_spent_hours",
	"COALESCE(activities, '{}')",
	"min_age",
}

var restaurantColumns = []string{
	"id::text",
	"name",
	"COALESCE(city, '')",
	"COALESCE(description, '')",
	"latitude",
	"longitude",
	"average_budget_egp",
	"COALESCE(opening_hours, '')",
	"COALESCE(closing_hours, '')",
}

type PostgresRepository struct {
	logger  *slog.Logger
	db      DBTX
	metrics *metrics.AppMetrics
}

func NewPostgresRepository(db DBTX, appMetrics *metrics.AppMetrics, logger *slog.Logger) *PostgresRepository {
	if appMetrics == nil {
		appMetrics = metrics.NewNoop()
	}
	return &PostgresRepository{
		logger:  logger,
		db:      db,
		metrics: appMetrics,
	}
}

func (r *PostgresRepository) observe(ctx context.Context, operation string, start time.Time, errp *error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	r.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if *errp != nil {
		r.metrics.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *PostgresRepository) SearchTopSites(ctx context.Context, search types.SiteSearch) (_ []types.SiteRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "SearchTopSites", trace.WithAttributes(
		attribute.Int("embedding.dimension", len(search.Vector)),
		attribute.String("city", search.City),
		attribute.Int("limit", search.Limit),
	))
	defer span.End()
	defer r.observe(ctx, "search_top_sites", time.Now(), &err)

	vec := pgvector.NewVector(search.Vector)
	query := psql.Select(siteColumns...).
		Column(squirrel.Expr("GREATEST(0, LEAST(1, 1 - (embedding <=> ?::vector)))", vec)).
		From("sites").
		Where("embedding IS NOT NULL").
		Where("vector_dims(embedding) = ?", len(search.Vector))
	if search.City != "" {
		query = query.Where(squirrel.ILike{"city": search.City})
	}
	if search.MaxCost > 0 {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"budget_egp": nil},
			squirrel.LtOrEq{"budget_egp": search.MaxCost},
		})
	}
	if search.Age != nil {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"min_age": nil},
			squirrel.LtOrEq{"min_age": *search.Age},
		})
	}
	query = query.OrderByClause("embedding <=> ?::vector", vec)
	if search.Limit > 0 {
		query = query.Limit(uint64(search.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build query")
		return nil, fmt.Errorf("failed to build site search query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to search sites", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to search sites: %w", err)
	}
	defer rows.Close()

	var records []types.SiteRecord
	for rows.Next() {
		var rec types.SiteRecord
		if err = rows.Scan(append(siteScanTargets(&rec), &rec.SimilarityScore)...); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(records)))
	span.SetStatus(codes.Ok, "Sites found")
	return records, nil
}

func (r *PostgresRepository) FindSiteByNamePattern(ctx context.Context, patterns ...string) (_ *types.SiteRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "FindSiteByNamePattern", trace.WithAttributes(
		attribute.StringSlice("patterns", patterns),
	))
	defer span.End()
	defer r.observe(ctx, "find_site_by_name_pattern", time.Now(), &err)

	if len(patterns) == 0 {
		return nil, nil
	}
	likes := make([]string, len(patterns))
	for i, p := range patterns {
		likes[i] = "%" + escapeLike(p) + "%"
	}

	sqlStr, args, err := psql.Select(siteColumns...).
		From("sites").
		Where(squirrel.Expr("name ILIKE ANY(?)", likes)).
		OrderBy("seq").
		Limit(1).
		ToSql()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build query")
		return nil, fmt.Errorf("failed to build name pattern query: %w", err)
	}

	var rec types.SiteRecord
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(siteScanTargets(&rec)...)
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetStatus(codes.Ok, "No site matched")
		return nil, nil
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to find site by name", slog.Any("patterns", patterns), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to find site by name pattern: %w", err)
	}

	span.SetStatus(codes.Ok, "Site found")
	return &rec, nil
}

func (r *PostgresRepository) QueryRestaurants(ctx context.Context, q types.RestaurantQuery) (_ []types.RestaurantRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "QueryRestaurants", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.Float64("max_cost", q.MaxCost),
		attribute.Int("limit", q.Limit),
	))
	defer span.End()
	defer r.observe(ctx, "query_restaurants", time.Now(), &err)

	query := psql.Select(restaurantColumns...).
		From("restaurants").
		Where(squirrel.NotEq{"latitude": nil, "longitude": nil})
	if q.City != "" {
		query = query.Where(squirrel.ILike{"city": q.City})
	}
	if q.MaxCost > 0 {
		query = query.Where(squirrel.LtOrEq{"average_budget_egp": q.MaxCost})
	}
	query = query.OrderBy("seq")
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build query")
		return nil, fmt.Errorf("failed to build restaurant query: %w", err)
	}

	restaurants, err := r.queryRestaurants(ctx, sqlStr, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results.count", len(restaurants)))
	span.SetStatus(codes.Ok, "Restaurants found")
	return restaurants, nil
}

func (r *PostgresRepository) ListSites(ctx context.Context) (_ []types.SiteRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "ListSites")
	defer span.End()
	defer r.observe(ctx, "list_sites", time.Now(), &err)

	sqlStr, args, err := psql.Select(siteColumns...).From("sites").OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build site list query: %w", err)
	}
	records, err := r.querySites(ctx, sqlStr, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Sites listed")
	return records, nil
}

func (r *PostgresRepository) ListRestaurants(ctx context.Context) (_ []types.RestaurantRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "ListRestaurants")
	defer span.End()
	defer r.observe(ctx, "list_restaurants", time.Now(), &err)

	sqlStr, args, err := psql.Select(restaurantColumns...).From("restaurants").OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build restaurant list query: %w", err)
	}
	restaurants, err := r.queryRestaurants(ctx, sqlStr, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Restaurants listed")
	return restaurants, nil
}

func (r *PostgresRepository) SitesWithoutEmbeddings(ctx context.Context, limit int) (_ []types.SiteRecord, err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "SitesWithoutEmbeddings", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()
	defer r.observe(ctx, "sites_without_embeddings", time.Now(), &err)

	query := psql.Select(siteColumns...).
		From("sites").
		Where(squirrel.Eq{"embedding": nil}).
		OrderBy("seq")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding backlog query: %w", err)
	}
	records, err := r.querySites(ctx, sqlStr, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results.count", len(records)))
	span.SetStatus(codes.Ok, "Backlog loaded")
	return records, nil
}

func (r *PostgresRepository) UpdateSiteEmbedding(ctx context.Context, siteID string, embedding []float32) (err error) {
	ctx, span := otel.Tracer("SitesRepository").Start(ctx, "UpdateSiteEmbedding", trace.WithAttributes(
		attribute.String("site.id", siteID),
		attribute.Int("embedding.dimension", len(embedding)),
	))
	defer span.End()
	defer r.observe(ctx, "update_site_embedding", time.Now(), &err)

	sqlStr, args, err := psql.Update("sites").
		Set("embedding", squirrel.Expr("?::vector", pgvector.NewVector(embedding))).
		Set("embedding_updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": siteID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build embedding update: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update site embedding", slog.String("site_id", siteID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to update site embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("site %s: %w", siteID, types.ErrNotFound)
		span.SetStatus(codes.Error, "Site not found")
		return err
	}

	span.SetStatus(codes.Ok, "Embedding updated")
	return nil
}

func (r *PostgresRepository) querySites(ctx context.Context, sqlStr string, args ...any) ([]types.SiteRecord, error) {
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query sites", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var records []types.SiteRecord
	for rows.Next() {
		var rec types.SiteRecord
		if err := rows.Scan(siteScanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}
	return records, nil
}

func (r *PostgresRepository) queryRestaurants(ctx context.Context, sqlStr string, args ...any) ([]types.RestaurantRecord, error) {
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query restaurants", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []types.RestaurantRecord
	for rows.Next() {
		var rec types.RestaurantRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.City, &rec.Description,
			&rec.Latitude, &rec.Longitude, &rec.AverageBudgetEGP,
			&rec.OpeningHours, &rec.ClosingHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}
	return restaurants, nil
}

// siteScanTargets matches siteColumns.
func siteScanTargets(rec *types.SiteRecord) []any {
	return []any{
		&rec.ID, &rec.Name, &rec.City, &rec.Governorate, &rec.Description,
		&rec.Latitude, &rec.Longitude, &rec.BudgetEGP,
		&rec.OpeningTime, &rec.ClosingTime, &rec.AverageTimeSpentHours,
		&rec.Activities, &rec.MinAge,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

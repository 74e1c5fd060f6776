package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-builder/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-builder/internal/geo"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// SiteCatalog is the query side of the site and restaurant catalogue.
type SiteCatalog interface {
	SearchTopSites(ctx context.Context, search types.SiteSearch) ([]types.SiteRecord, error)
	// FindSiteByNamePattern returns the first site whose name contains any of
	// the patterns, ignoring case, or nil when nothing matches.
	FindSiteByNamePattern(ctx context.Context, patterns ...string) (*types.SiteRecord, error)
	QueryRestaurants(ctx context.Context, query types.RestaurantQuery) ([]types.RestaurantRecord, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, input types.NarrativeInput) (string, error)
}

// Service builds trip plans day by day.
type Service interface {
	BuildTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error)
	BuildDailyPlan(ctx context.Context, req types.TripRequest, dayIndex int, used *UsedSites) (types.DayPlan, error)
	CreateTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error)
	GetTripPlan(ctx context.Context, tripID uuid.UUID) (*types.TripPlan, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	catalog  SiteCatalog
	embedder Embedder
	narrator NarrativeGenerator
	store    Store
	metrics  *metrics.AppMetrics
	opts     Options
	place    CoordinatePlacer
}

// NewServiceImpl wires the planner. narrator and store may be nil: narratives
// are then skipped and plans are not persisted.
func NewServiceImpl(catalog SiteCatalog, embedder Embedder, narrator NarrativeGenerator, store Store,
	appMetrics *metrics.AppMetrics, opts Options, logger *slog.Logger) *ServiceImpl {
	place := HashedPlacement
	if opts.RandomFallbackCoordinates {
		place = RandomPlacement
	}
	if appMetrics == nil {
		appMetrics = metrics.NewNoop()
	}
	return &ServiceImpl{
		logger:   logger,
		catalog:  catalog,
		embedder: embedder,
		narrator: narrator,
		store:    store,
		metrics:  appMetrics,
		opts:     opts.withDefaults(),
		place:    place,
	}
}

func (s *ServiceImpl) BuildTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "BuildTripPlan", trace.WithAttributes(
		attribute.Int("trip.days", req.Days),
		attribute.Float64("trip.budget", req.Budget),
		attribute.StringSlice("trip.cities", req.Cities),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "BuildTripPlan"))
	start := time.Now()

	if err := s.validate(req); err != nil {
		l.WarnContext(ctx, "Rejected trip request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid trip request")
		return nil, err
	}

	plan := &types.TripPlan{
		ID:              uuid.New(),
		UserPreferences: preferencesOf(req),
		Days:            make([]types.DayPlan, 0, req.Days),
		CreatedAt:       time.Now().UTC(),
	}

	used := NewUsedSites()
	degraded := 0
	for day := 0; day < req.Days; day++ {
		dayPlan, err := s.buildDayIsolated(ctx, req, day, used)
		if err != nil {
			l.ErrorContext(ctx, "Day failed, using an empty plan", slog.Int("day", day+1), slog.Any("error", err))
			span.RecordError(err)
			s.metrics.DegradedDaysTotal.Add(ctx, 1)
			dayPlan = degradedDay(day)
			degraded++
		}
		plan.Days = append(plan.Days, dayPlan)
	}

	var total float64
	for _, day := range plan.Days {
		total += day.DailyCostEGP
	}
	plan.TripSummary = types.TripSummary{
		TotalTripCostEGP:   total,
		RemainingBudgetEGP: req.Budget - total,
	}

	s.metrics.TripsBuiltTotal.Add(ctx, 1)
	s.metrics.TripBuildDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Int("trip.days", req.Days)))

	span.SetAttributes(
		attribute.Float64("trip.total_cost", total),
		attribute.Int("trip.degraded_days", degraded),
	)
	span.SetStatus(codes.Ok, "Trip plan built")
	l.InfoContext(ctx, "Trip plan built",
		slog.String("trip_id", plan.ID.String()),
		slog.Int("days", req.Days),
		slog.Int("degraded_days", degraded),
		slog.Float64("total_cost_egp", total))
	return plan, nil
}

// buildDayIsolated converts a panic inside one day into an error so the trip
// loop can continue.
func (s *ServiceImpl) buildDayIsolated(ctx context.Context, req types.TripRequest, dayIndex int, used *UsedSites) (plan types.DayPlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while building day %d: %v", dayIndex+1, r)
		}
	}()
	return s.BuildDailyPlan(ctx, req, dayIndex, used)
}

// BuildDailyPlan selects the sites for one day, records them in used, and
// assigns meals around them. dayIndex is zero based.
func (s *ServiceImpl) BuildDailyPlan(ctx context.Context, req types.TripRequest, dayIndex int, used *UsedSites) (types.DayPlan, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "BuildDailyPlan", trace.WithAttributes(
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "BuildDailyPlan"), slog.Int("day", dayIndex+1))

	if req.Days < 1 {
		return types.DayPlan{}, fmt.Errorf("%w: days must be at least 1", types.ErrBadRequest)
	}
	if used == nil {
		used = NewUsedSites()
	}

	dailyBudget := req.Budget / float64(req.Days)
	sitesBudget := dailyBudget * s.opts.SitesShare
	foodBudget := dailyBudget * (1 - s.opts.SitesShare)

	var selected []types.Site
	if dayIndex == 0 {
		selected = s.dayOneSites(ctx, sitesBudget)
	} else {
		var err error
		selected, err = s.selectSites(ctx, req, dayIndex, sitesBudget, used)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "site selection failed")
			return types.DayPlan{}, err
		}
		if len(selected) < 2 {
			l.WarnContext(ctx, "Not enough candidate sites, using fallback table", slog.Int("candidates", len(selected)))
			s.metrics.FallbackSitesTotal.Add(ctx, 1)
			selected = fallbackSites(dayIndex, sitesBudget, used, s.place)
		}
	}
	used.Add(selected...)

	plan := types.DayPlan{
		Day:   dayIndex + 1,
		Sites: selected,
	}
	if plan.Sites == nil {
		plan.Sites = []types.Site{}
	}
	if len(selected) == 2 && selected[0].Location != nil && selected[1].Location != nil {
		plan.DistanceBetweenSitesKm = geo.Distance(*selected[0].Location, *selected[1].Location)
	}

	var cost float64
	for _, site := range selected {
		cost += site.CostEGP
	}

	if len(selected) > 0 {
		restaurants, err := s.catalog.QueryRestaurants(ctx, types.RestaurantQuery{
			City:    selected[0].City,
			MaxCost: foodBudget,
			Limit:   s.opts.RestaurantLimit,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "restaurant query failed")
			return types.DayPlan{}, fmt.Errorf("failed to query restaurants: %w", err)
		}
		if len(restaurants) == 0 {
			l.WarnContext(ctx, "No restaurants found for day", slog.String("city", selected[0].City))
		}
		plan.Restaurants = AssignMeals(selected, restaurants)
		cost += plan.Restaurants.Cost()
	}
	plan.DailyCostEGP = cost

	plan.ComprehensiveItinerary = s.narrate(ctx, types.NarrativeInput{
		Day:         dayIndex + 1,
		Sites:       plan.Sites,
		Meals:       plan.Restaurants,
		Preferences: preferencesOf(req),
	})

	span.SetAttributes(attribute.Int("day.sites", len(selected)), attribute.Float64("day.cost", cost))
	span.SetStatus(codes.Ok, "Day plan built")
	return plan, nil
}

func (s *ServiceImpl) selectSites(ctx context.Context, req types.TripRequest, dayIndex int, sitesBudget float64, used *UsedSites) ([]types.Site, error) {
	vector, err := s.embedder.Embed(ctx, interestText(req.Interests))
	if err != nil {
		return nil, fmt.Errorf("failed to embed interests: %w", err)
	}

	records, err := s.catalog.SearchTopSites(ctx, types.SiteSearch{
		Vector:  vector,
		City:    targetCity(req.Cities, dayIndex),
		Limit:   s.opts.SiteSearchLimit,
		MaxCost: sitesBudget,
		Age:     req.Age,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search sites: %w", err)
	}

	pool := formatSites(records)
	switch s.opts.PairStrategy {
	case PairClosest:
		return ClosestPair(pool, used), nil
	case PairColocated:
		return BestColocatedPair(pool, used, s.opts.MaxPairDistanceKm), nil
	default:
		return SelectByGovernorate(pool, used), nil
	}
}

// narrate returns nil when no generator is configured or generation fails.
func (s *ServiceImpl) narrate(ctx context.Context, input types.NarrativeInput) *string {
	if s.narrator == nil {
		return nil
	}
	text, err := s.narrator.GenerateNarrative(ctx, input)
	if err != nil {
		s.logger.WarnContext(ctx, "Narrative generation failed", slog.Int("day", input.Day), slog.Any("error", err))
		s.metrics.NarrativeFailuresTotal.Add(ctx, 1)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &text
}

func (s *ServiceImpl) CreateTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	plan, err := s.BuildTripPlan(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return plan, nil
	}
	if err := s.store.Save(ctx, plan); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store trip plan", slog.String("trip_id", plan.ID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to store trip plan: %w", err)
	}
	return plan, nil
}

func (s *ServiceImpl) GetTripPlan(ctx context.Context, tripID uuid.UUID) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "GetTripPlan", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("trip %s: %w", tripID, types.ErrNotFound)
	}
	plan, err := s.store.Get(ctx, tripID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store lookup failed")
		}
		return nil, err
	}
	span.SetStatus(codes.Ok, "Trip plan retrieved")
	return plan, nil
}

func (s *ServiceImpl) validate(req types.TripRequest) error {
	switch {
	case req.Days < 1:
		return fmt.Errorf("%w: days must be at least 1", types.ErrBadRequest)
	case req.Days > s.opts.MaxDays:
		return fmt.Errorf("%w: days must be at most %d", types.ErrBadRequest, s.opts.MaxDays)
	case math.IsNaN(req.Budget) || math.IsInf(req.Budget, 0) || req.Budget <= 0:
		return fmt.Errorf("%w: budget must be a positive amount", types.ErrBadRequest)
	case req.Age != nil && *req.Age < 0:
		return fmt.Errorf("%w: age must not be negative", types.ErrBadRequest)
	case len(req.Interests) == 0:
		return fmt.Errorf("%w: at least one interest is required", types.ErrBadRequest)
	}
	return nil
}

func preferencesOf(req types.TripRequest) types.UserPreferences {
	city := nationwideCityFallback
	if len(req.Cities) > 0 {
		city = req.Cities[0]
	}
	return types.UserPreferences{
		Age:            req.Age,
		TotalBudgetEGP: req.Budget,
		DailyBudgetEGP: req.Budget / float64(req.Days),
		Interests:      req.Interests,
		DurationDays:   req.Days,
		City:           city,
	}
}

// targetCity cycles through the requested cities by day index.
func targetCity(cities []string, dayIndex int) string {
	if len(cities) == 0 {
		return ""
	}
	return cities[dayIndex%len(cities)]
}

func interestText(interests []string) string {
	return strings.Join(interests, " ")
}

func degradedDay(dayIndex int) types.DayPlan {
	return types.DayPlan{
		Day:      dayIndex + 1,
		Sites:    []types.Site{},
		Degraded: true,
	}
}

package metrics

import (
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TripsBuiltTotal          metric.Int64Counter
	TripBuildDurationSeconds metric.Float64Histogram
	DegradedDaysTotal        metric.Int64Counter
	FallbackSitesTotal       metric.Int64Counter
	NarrativeFailuresTotal   metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates every instrument on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	if m.TripsBuiltTotal, err = meter.Int64Counter(
		"trips_built_total",
		metric.WithDescription("Total number of trip plans built"),
		metric.WithUnit("{trip}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create trips_built_total: %w", err)
	}

	if m.TripBuildDurationSeconds, err = meter.Float64Histogram(
		"trip_build_duration_seconds",
		metric.WithDescription("Duration of trip plan builds in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create trip_build_duration_seconds: %w", err)
	}

	if m.DegradedDaysTotal, err = meter.Int64Counter(
		"degraded_days_total",
		metric.WithDescription("Days replaced by an empty plan after a failure"),
		metric.WithUnit("{day}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create degraded_days_total: %w", err)
	}

	if m.FallbackSitesTotal, err = meter.Int64Counter(
		"fallback_sites_total",
		metric.WithDescription("Days whose sites came from the fallback table"),
		metric.WithUnit("{day}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create fallback_sites_total: %w", err)
	}

	if m.NarrativeFailuresTotal, err = meter.Int64Counter(
		"narrative_failures_total",
		metric.WithDescription("Narrative generations that failed and were skipped"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create narrative_failures_total: %w", err)
	}

	if m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of catalogue queries in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db_query_duration_seconds: %w", err)
	}

	if m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of catalogue query errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db_query_errors_total: %w", err)
	}

	return m, nil
}

// NewNoop returns instruments that record nothing.
func NewNoop() *AppMetrics {
	m, err := New(noop.NewMeterProvider().Meter("noop"))
	if err != nil {
		panic(err)
	}
	return m
}

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("go-itinerary-builder"))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

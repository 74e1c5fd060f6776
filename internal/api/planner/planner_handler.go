package planner

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-builder/internal/api"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

type HandlerImpl struct {
	plannerService Service
	logger         *slog.Logger
}

func NewHandlerImpl(plannerService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		plannerService: plannerService,
		logger:         logger,
	}
}

// CreateTrip builds a trip plan from the request body and stores it.
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "CreateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTrip"))

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.plannerService.CreateTripPlan(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to build trip plan", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build trip plan")
		return
	}

	span.SetAttributes(attribute.String("trip.id", plan.ID.String()))
	l.InfoContext(ctx, "Trip plan created", slog.String("trip_id", plan.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, plan)
}

// GetTrip returns a stored trip plan.
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTrip"))

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	plan, err := h.plannerService.GetTripPlan(ctx, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip plan not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load trip plan", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load trip plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

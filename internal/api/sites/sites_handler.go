package sites

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-builder/internal/api"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

type HandlerImpl struct {
	sitesService Service
	logger       *slog.Logger
}

func NewHandlerImpl(sitesService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		sitesService: sitesService,
		logger:       logger,
	}
}

// ListSites returns the catalogue sites with their distances. An optional
// city query parameter narrows the listing.
func (h *HandlerImpl) ListSites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SitesHandler").Start(r.Context(), "ListSites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/sites"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListSites"))

	listing, err := h.sitesService.ListSitesWithDistances(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list sites", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list sites")
		return
	}

	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		filtered := make([]types.SiteWithDistances, 0, len(listing))
		for _, s := range listing {
			if strings.EqualFold(s.City, city) {
				filtered = append(filtered, s)
			}
		}
		listing = filtered
		span.SetAttributes(attribute.String("city", city))
	}

	span.SetAttributes(attribute.Int("sites.count", len(listing)))
	api.WriteJSONResponse(w, r, http.StatusOK, listing)
}

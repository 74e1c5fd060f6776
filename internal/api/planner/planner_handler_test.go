package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

type MockPlannerService struct {
	mock.Mock
}

func (m *MockPlannerService) BuildTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripPlan), args.Error(1)
}

func (m *MockPlannerService) BuildDailyPlan(ctx context.Context, req types.TripRequest, dayIndex int, used *UsedSites) (types.DayPlan, error) {
	args := m.Called(ctx, req, dayIndex, used)
	return args.Get(0).(types.DayPlan), args.Error(1)
}

func (m *MockPlannerService) CreateTripPlan(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripPlan), args.Error(1)
}

func (m *MockPlannerService) GetTripPlan(ctx context.Context, tripID uuid.UUID) (*types.TripPlan, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripPlan), args.Error(1)
}

func setupPlannerHandlerTest() (*MockPlannerService, http.Handler) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := new(MockPlannerService)
	handler := NewHandlerImpl(service, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/trips", handler.CreateTrip)
	r.Get("/api/v1/trips/{tripID}", handler.GetTrip)
	return service, r
}

func TestCreateTripHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()
		plan := &types.TripPlan{ID: uuid.New(), Days: []types.DayPlan{{Day: 1, Sites: []types.Site{}}}}
		want := types.TripRequest{Budget: 3000, Days: 1, Interests: []string{"history"}}
		service.On("CreateTripPlan", mock.Anything, want).Return(plan, nil).Once()

		body := `{"budget": 3000, "days": 1, "interests": ["history"]}`
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trips", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got types.TripPlan
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, plan.ID, got.ID)
		service.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()
		service.On("CreateTripPlan", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: days must be at least 1", types.ErrBadRequest)).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trips",
			strings.NewReader(`{"budget": 3000, "days": 0, "interests": ["history"]}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "days must be at least 1")
	})

	t.Run("malformed body", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trips", strings.NewReader(`{"budget": "lots"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "CreateTripPlan", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()
		service.On("CreateTripPlan", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trips",
			strings.NewReader(`{"budget": 3000, "days": 1, "interests": ["history"]}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestGetTripHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()
		plan := &types.TripPlan{ID: uuid.New()}
		service.On("GetTripPlan", mock.Anything, plan.ID).Return(plan, nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+plan.ID.String(), nil))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		service, router := setupPlannerHandlerTest()
		id := uuid.New()
		service.On("GetTripPlan", mock.Anything, id).Return(nil, fmt.Errorf("trip %s: %w", id, types.ErrNotFound)).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, router := setupPlannerHandlerTest()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

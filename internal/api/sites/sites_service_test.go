package sites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SearchTopSites(ctx context.Context, search types.SiteSearch) ([]types.SiteRecord, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SiteRecord), args.Error(1)
}

func (m *MockRepository) FindSiteByNamePattern(ctx context.Context, patterns ...string) (*types.SiteRecord, error) {
	args := m.Called(ctx, patterns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SiteRecord), args.Error(1)
}

func (m *MockRepository) QueryRestaurants(ctx context.Context, query types.RestaurantQuery) ([]types.RestaurantRecord, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RestaurantRecord), args.Error(1)
}

func (m *MockRepository) ListSites(ctx context.Context) ([]types.SiteRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SiteRecord), args.Error(1)
}

func (m *MockRepository) ListRestaurants(ctx context.Context) ([]types.RestaurantRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RestaurantRecord), args.Error(1)
}

func (m *MockRepository) SitesWithoutEmbeddings(ctx context.Context, limit int) ([]types.SiteRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SiteRecord), args.Error(1)
}

func (m *MockRepository) UpdateSiteEmbedding(ctx context.Context, siteID string, embedding []float32) error {
	args := m.Called(ctx, siteID, embedding)
	return args.Error(0)
}

type stubEmbedder struct {
	fail map[string]bool
}

func (s stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.fail[text] {
		return nil, errors.New("quota exceeded")
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestServiceImpl_ListSitesWithDistances(t *testing.T) {
	ctx := context.Background()

	t.Run("distances sorted nearest first", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListSites", mock.Anything).Return([]types.SiteRecord{
			{ID: "giza", Name: "Pyramids of Giza", City: "Giza", Latitude: ptr(29.9792), Longitude: ptr(31.1342), Embedding: []float32{1}},
			{ID: "museum", Name: "Egyptian Museum", City: "Cairo", Latitude: ptr(30.0478), Longitude: ptr(31.2336)},
			{ID: "sphinx", Name: "Great Sphinx", City: "Giza", Latitude: ptr(29.9753), Longitude: ptr(31.1376)},
			{ID: "nowhere", Name: "Unlocated"},
		}, nil)
		repo.On("ListRestaurants", mock.Anything).Return([]types.RestaurantRecord{
			{ID: "felfela", Name: "Felfela", Latitude: ptr(30.046), Longitude: ptr(31.239)},
			{ID: "lounge", Name: "9 Pyramids Lounge", Latitude: ptr(29.977), Longitude: ptr(31.131)},
			{ID: "ghost", Name: "Ghost Kitchen"},
		}, nil)

		svc := NewServiceImpl(repo, nil, testLogger())
		got, err := svc.ListSitesWithDistances(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)

		pyramids := got[0]
		assert.Equal(t, "Pyramids of Giza", pyramids.Name)
		assert.Nil(t, pyramids.Embedding)
		require.Len(t, pyramids.DistancesToSites, 2)
		assert.Equal(t, "Great Sphinx", pyramids.DistancesToSites[0].Name)
		assert.Equal(t, "Egyptian Museum", pyramids.DistancesToSites[1].Name)
		assert.InDelta(t, 12.2386, pyramids.DistancesToSites[1].DistanceKm, 0.01)
		require.Len(t, pyramids.DistancesToRestaurants, 2)
		assert.Equal(t, "9 Pyramids Lounge", pyramids.DistancesToRestaurants[0].Name)
		repo.AssertExpectations(t)
	})

	t.Run("catalogue failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListSites", mock.Anything).Return(nil, errors.New("db down"))
		repo.On("ListRestaurants", mock.Anything).Return([]types.RestaurantRecord{}, nil).Maybe()

		svc := NewServiceImpl(repo, nil, testLogger())
		_, err := svc.ListSitesWithDistances(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load catalogue")
	})
}

func TestServiceImpl_BackfillEmbeddings(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds every site in the backlog", func(t *testing.T) {
		repo := NewMemoryRepository(&Catalog{Sites: []types.SiteRecord{
			{Name: "Karnak Temple", City: "Luxor"},
			{Name: "Philae Temple", City: "Aswan"},
			{Name: "Citadel of Qaitbay", City: "Alexandria", Embedding: []float32{1, 1}},
		}}, testLogger())
		svc := NewServiceImpl(repo, stubEmbedder{}, testLogger())

		n, err := svc.BackfillEmbeddings(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		backlog, err := repo.SitesWithoutEmbeddings(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, backlog)
	})

	t.Run("stops when a batch makes no progress", func(t *testing.T) {
		failing := types.SiteRecord{Name: "Abu Simbel Temples", City: "Aswan"}
		repo := NewMemoryRepository(&Catalog{Sites: []types.SiteRecord{failing}}, testLogger())
		svc := NewServiceImpl(repo, stubEmbedder{fail: map[string]bool{EmbeddingText(failing): true}}, testLogger())

		n, err := svc.BackfillEmbeddings(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("backlog error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("SitesWithoutEmbeddings", mock.Anything, 50).Return(nil, errors.New("timeout"))
		svc := NewServiceImpl(repo, stubEmbedder{}, testLogger())

		_, err := svc.BackfillEmbeddings(ctx, 0)
		assert.Error(t, err)
	})

	t.Run("no embedder", func(t *testing.T) {
		svc := NewServiceImpl(new(MockRepository), nil, testLogger())
		_, err := svc.BackfillEmbeddings(ctx, 10)
		assert.Error(t, err)
	})
}

func TestEmbeddingText(t *testing.T) {
	text := EmbeddingText(types.SiteRecord{
		Name:        "Karnak Temple",
		City:        "Luxor",
		Description: "Temple complex of Amun-Ra.",
		Activities:  []string{"Exploring", "Photography"},
	})
	assert.Equal(t, "Karnak Temple, Luxor. Temple complex of Amun-Ra. Activities: Exploring, Photography", text)
	assert.Equal(t, "Sphinx", EmbeddingText(types.SiteRecord{Name: "Sphinx"}))
}

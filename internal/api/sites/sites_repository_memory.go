package sites

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	a "github.com/petar-dambovaliev/aho-corasick"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var _ Repository = (*MemoryRepository)(nil)

//go:embed seed/egypt.json
var defaultCatalog []byte

// Catalog is the seed format shared by the in-memory and MongoDB backends.
type Catalog struct {
	Sites       []types.SiteRecord       `json:"sites"`
	Restaurants []types.RestaurantRecord `json:"restaurants"`
}

// LoadCatalog reads a catalogue file, or the bundled Egypt catalogue when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
		}
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	return &c, nil
}

// MemoryRepository serves a catalogue held in process. Records without an ID
// get a stable one derived from their name.
type MemoryRepository struct {
	logger      *slog.Logger
	mu          sync.RWMutex
	sites       []types.SiteRecord
	restaurants []types.RestaurantRecord
}

func NewMemoryRepository(catalog *Catalog, logger *slog.Logger) *MemoryRepository {
	repo := &MemoryRepository{logger: logger}
	if catalog == nil {
		return repo
	}
	repo.sites = slices.Clone(catalog.Sites)
	for i := range repo.sites {
		if repo.sites[i].ID == "" {
			repo.sites[i].ID = stableID("site", repo.sites[i].Name)
		}
	}
	repo.restaurants = slices.Clone(catalog.Restaurants)
	for i := range repo.restaurants {
		if repo.restaurants[i].ID == "" {
			repo.restaurants[i].ID = stableID("restaurant", repo.restaurants[i].Name)
		}
	}
	return repo
}

func stableID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(kind+":"+name)).String()
}

func (r *MemoryRepository) SearchTopSites(_ context.Context, search types.SiteSearch) ([]types.SiteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]types.SiteRecord, 0, len(r.sites))
	for _, s := range r.sites {
		if siteMatches(s, search) {
			candidates = append(candidates, s)
		}
	}
	return rankBySimilarity(candidates, search.Vector, search.Limit), nil
}

func (r *MemoryRepository) FindSiteByNamePattern(_ context.Context, patterns ...string) (*types.SiteRecord, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	builder := a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
	})
	matcher := builder.Build(patterns)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sites {
		if len(matcher.FindAll(s.Name)) > 0 {
			rec := s
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) QueryRestaurants(_ context.Context, q types.RestaurantQuery) ([]types.RestaurantRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []types.RestaurantRecord
	for _, rest := range r.restaurants {
		if !restaurantMatches(rest, q) {
			continue
		}
		out = append(out, rest)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListSites(_ context.Context) ([]types.SiteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sites), nil
}

func (r *MemoryRepository) ListRestaurants(_ context.Context) ([]types.RestaurantRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.restaurants), nil
}

func (r *MemoryRepository) SitesWithoutEmbeddings(_ context.Context, limit int) ([]types.SiteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []types.SiteRecord
	for _, s := range r.sites {
		if len(s.Embedding) > 0 {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateSiteEmbedding(_ context.Context, siteID string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sites {
		if r.sites[i].ID == siteID {
			r.sites[i].Embedding = slices.Clone(embedding)
			return nil
		}
	}
	return fmt.Errorf("site %s: %w", siteID, types.ErrNotFound)
}

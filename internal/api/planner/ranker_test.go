package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

func TestRankByScoreIsStable(t *testing.T) {
	pool := []types.Site{
		site("first", "Cairo", 0.5),
		site("best", "Cairo", 0.9),
		site("second", "Cairo", 0.5),
	}

	got := rankByScore(pool)

	assert.Equal(t, []string{"best", "first", "second"}, names(got))
	assert.Equal(t, "first", pool[0].Name, "input must not be reordered")
}

func TestBestSite(t *testing.T) {
	pool := []types.Site{
		site("Karnak", "Luxor", 0.8),
		site("Philae", "Aswan", 0.95),
	}

	best, ok := BestSite(pool, nil)
	require.True(t, ok)
	assert.Equal(t, "Philae", best.Name)

	used := NewUsedSites()
	used.Add(pool...)
	_, ok = BestSite(pool, used)
	assert.False(t, ok)
}

func TestClosestPair(t *testing.T) {
	pool := []types.Site{
		locatedSite("Karnak", "Luxor", 0.9, 25.7188, 32.6573),
		locatedSite("Valley of the Kings", "Luxor", 0.8, 25.7402, 32.6014),
		locatedSite("Luxor Temple", "Luxor", 0.7, 25.6995, 32.6391),
		locatedSite("Philae", "Aswan", 0.95, 24.0254, 32.8844),
		site("Floating", "Luxor", 0.99),
	}

	t.Run("nearest located pair", func(t *testing.T) {
		assert.Equal(t, []string{"Karnak", "Luxor Temple"}, names(ClosestPair(pool, nil)))
	})

	t.Run("used sites are skipped", func(t *testing.T) {
		used := NewUsedSites()
		used.Add(pool[2])
		assert.Equal(t, []string{"Karnak", "Valley of the Kings"}, names(ClosestPair(pool, used)))
	})

	t.Run("fewer than two located sites", func(t *testing.T) {
		assert.Nil(t, ClosestPair(pool[3:], nil))
	})
}

func TestBestColocatedPair(t *testing.T) {
	pool := []types.Site{
		locatedSite("Philae", "Aswan", 0.95, 24.0254, 32.8844),
		locatedSite("Karnak", "Luxor", 0.7, 25.7188, 32.6573),
		locatedSite("Valley of the Kings", "Luxor", 0.9, 25.7402, 32.6014),
	}

	t.Run("best pair within radius ordered by score", func(t *testing.T) {
		got := BestColocatedPair(pool, nil, 50)
		assert.Equal(t, []string{"Valley of the Kings", "Karnak"}, names(got))
	})

	t.Run("radius too small", func(t *testing.T) {
		assert.Nil(t, BestColocatedPair(pool, nil, 1))
	})
}

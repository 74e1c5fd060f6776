package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

func TestSelectByGovernorate(t *testing.T) {
	t.Run("highest mean region wins", func(t *testing.T) {
		pool := []types.Site{
			site("Aswan A", "Aswan", 0.6),
			site("Luxor Low", "Luxor", 0.5),
			site("Luxor Mid", "Luxor", 0.8),
			site("Aswan B", "Aswan", 0.6),
			site("Luxor Top", "Luxor", 0.9),
		}

		got := SelectByGovernorate(pool, NewUsedSites())

		require.Len(t, got, 2)
		assert.Equal(t, []string{"Luxor Top", "Luxor Mid"}, names(got))
		assert.Equal(t, []float64{0.9, 0.8}, []float64{got[0].SimilarityScore, got[1].SimilarityScore})
	})

	t.Run("used sites are removed before grouping", func(t *testing.T) {
		pool := []types.Site{
			site("Luxor Top", "Luxor", 0.9),
			site("Luxor Mid", "Luxor", 0.8),
			site("Aswan A", "Aswan", 0.6),
			site("Aswan B", "Aswan", 0.6),
		}
		used := NewUsedSites()
		used.Add(pool[0])

		got := SelectByGovernorate(pool, used)

		assert.Equal(t, []string{"Aswan A", "Aswan B"}, names(got))
	})

	t.Run("all used returns empty", func(t *testing.T) {
		pool := []types.Site{site("Karnak", "Luxor", 0.9)}
		used := NewUsedSites()
		used.Add(pool...)

		assert.Empty(t, SelectByGovernorate(pool, used))
	})

	t.Run("no region with two candidates takes best overall", func(t *testing.T) {
		pool := []types.Site{
			site("Siwa", "Matrouh", 0.4),
			site("Karnak", "Luxor", 0.7),
			site("Philae", "Aswan", 0.9),
		}

		got := SelectByGovernorate(pool, nil)

		assert.Equal(t, []string{"Philae", "Karnak"}, names(got))
	})

	t.Run("single candidate", func(t *testing.T) {
		got := SelectByGovernorate([]types.Site{site("Karnak", "Luxor", 0.7)}, nil)
		assert.Equal(t, []string{"Karnak"}, names(got))
	})

	t.Run("equal means keep the first region", func(t *testing.T) {
		pool := []types.Site{
			site("Aswan A", "Aswan", 0.5),
			site("Luxor A", "Luxor", 0.5),
			site("Aswan B", "Aswan", 0.5),
			site("Luxor B", "Luxor", 0.5),
		}

		got := SelectByGovernorate(pool, nil)

		assert.Equal(t, []string{"Aswan A", "Aswan B"}, names(got))
	})

	t.Run("zero scores never qualify a region", func(t *testing.T) {
		pool := []types.Site{
			site("A", "Giza", 0),
			site("B", "Giza", 0),
			site("C", "Cairo", 0),
		}

		got := SelectByGovernorate(pool, nil)

		assert.Equal(t, []string{"A", "B"}, names(got))
	})

	t.Run("region label falls back to city then unknown", func(t *testing.T) {
		pool := []types.Site{
			{Name: "No Region 1", SimilarityScore: 0.3},
			{Name: "City Only", City: "Luxor", SimilarityScore: 0.9},
			{Name: "No Region 2", SimilarityScore: 0.4},
		}

		got := SelectByGovernorate(pool, nil)

		assert.Equal(t, []string{"No Region 2", "No Region 1"}, names(got))
	})
}

package planner

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

const (
	fallbackScore         = 0.7
	fallbackOpeningTime   = "08:00"
	fallbackClosingTime   = "17:00"
	fallbackDurationHours = 2.5
	fallbackBoxLatitude   = 30.0
	fallbackBoxLongitude  = 31.0
	fallbackBoxSpan       = 2.0
)

type fallbackEntry struct {
	name string
	city string
}

// fallbackTable is indexed by day index minus one; later days reuse the last row.
var fallbackTable = [][2]fallbackEntry{
	{{"Karnak Temple", "Luxor"}, {"Valley of the Kings", "Luxor"}},
	{{"Bibliotheca Alexandrina", "Alexandria"}, {"Citadel of Qaitbay", "Alexandria"}},
	{{"Philae Temple", "Aswan"}, {"Aswan High Dam", "Aswan"}},
	{{"Citadel of Saladin", "Cairo"}, {"Khan el-Khalili", "Cairo"}},
}

// CoordinatePlacer synthesises a coordinate for a fallback site that has no
// catalogue record.
type CoordinatePlacer func(name string) types.Coordinate

// HashedPlacement maps the site name into the fallback box, so repeated builds
// place the same site at the same point.
func HashedPlacement(name string) types.Coordinate {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()

	latFrac := float64(sum>>32) / float64(1<<32)
	lonFrac := float64(sum&0xffffffff) / float64(1<<32)
	return types.Coordinate{
		Latitude:  fallbackBoxLatitude + latFrac*fallbackBoxSpan,
		Longitude: fallbackBoxLongitude + lonFrac*fallbackBoxSpan,
	}
}

// RandomPlacement draws a fresh point in the fallback box on every call.
func RandomPlacement(string) types.Coordinate {
	return types.Coordinate{
		Latitude:  fallbackBoxLatitude + rand.Float64()*fallbackBoxSpan,
		Longitude: fallbackBoxLongitude + rand.Float64()*fallbackBoxSpan,
	}
}

// fallbackSites returns the fixed pair for dayIndex, split 60/40 over the
// sites budget. Rows are tried starting at the clamped row and wrapping
// around; the first row with both names unused wins. When no complete row is
// left, single unused entries are taken in the same order. The result is
// empty only when every table entry has been scheduled.
func fallbackSites(dayIndex int, sitesBudget float64, used *UsedSites, place CoordinatePlacer) []types.Site {
	if place == nil {
		place = HashedPlacement
	}
	start := min(max(dayIndex-1, 0), len(fallbackTable)-1)

	var picked []fallbackEntry
	for offset := range fallbackTable {
		row := fallbackTable[(start+offset)%len(fallbackTable)]
		if !used.Has(row[0].name) && !used.Has(row[1].name) {
			picked = row[:]
			break
		}
	}
	if picked == nil {
		for offset := range fallbackTable {
			for _, entry := range fallbackTable[(start+offset)%len(fallbackTable)] {
				if len(picked) < 2 && !used.Has(entry.name) {
					picked = append(picked, entry)
				}
			}
		}
	}

	shares := [2]float64{0.6, 0.4}
	sites := make([]types.Site, 0, len(picked))
	for i, entry := range picked {
		loc := place(entry.name)
		sites = append(sites, types.Site{
			Name:                  entry.name,
			City:                  entry.city,
			Governorate:           entry.city,
			Region:                entry.city,
			Description:           fmt.Sprintf("Historic site in %s", entry.city),
			SimilarityScore:       fallbackScore,
			Activities:            defaultActivities(),
			OpeningTime:           fallbackOpeningTime,
			ClosingTime:           fallbackClosingTime,
			AverageTimeSpentHours: fallbackDurationHours,
			CostEGP:               sitesBudget * shares[i],
			Location:              &loc,
		})
	}
	return sites
}

package planner

import (
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

func ptr[T any](v T) *T {
	return &v
}

func site(name, region string, score float64) types.Site {
	return types.Site{Name: name, City: region, Region: region, SimilarityScore: score}
}

func locatedSite(name, region string, score, lat, lon float64) types.Site {
	s := site(name, region, score)
	s.Location = &types.Coordinate{Latitude: lat, Longitude: lon}
	return s
}

func restaurant(name string, lat, lon, budget float64) types.RestaurantRecord {
	return types.RestaurantRecord{
		Name:             name,
		City:             "Cairo",
		Latitude:         ptr(lat),
		Longitude:        ptr(lon),
		AverageBudgetEGP: ptr(budget),
	}
}

func names(sites []types.Site) []string {
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.Name)
	}
	return out
}

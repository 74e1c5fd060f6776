package planner

import (
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

// SelectByGovernorate picks up to two unused sites from the same region.
//
// Regions with at least two candidates compete on mean similarity; the first
// region (in order of first appearance in the pool) reaching a strictly higher
// mean wins. The winner's two best sites are returned. When no region has two
// candidates, the two best sites of the whole pool are returned instead.
func SelectByGovernorate(pool []types.Site, used *UsedSites) []types.Site {
	available := unusedSites(pool, used)
	if len(available) == 0 {
		return nil
	}

	var regions []string
	byRegion := make(map[string][]types.Site)
	for _, site := range available {
		region := regionLabel(site)
		if _, seen := byRegion[region]; !seen {
			regions = append(regions, region)
		}
		byRegion[region] = append(byRegion[region], site)
	}

	bestRegion := ""
	bestMean := 0.0
	for _, region := range regions {
		sites := byRegion[region]
		if len(sites) < 2 {
			continue
		}
		if mean := meanScore(sites); mean > bestMean {
			bestMean = mean
			bestRegion = region
		}
	}

	if bestRegion == "" {
		return topN(available, 2)
	}
	return topN(byRegion[bestRegion], 2)
}

func regionLabel(site types.Site) string {
	switch {
	case site.Region != "":
		return site.Region
	case site.Governorate != "":
		return site.Governorate
	case site.City != "":
		return site.City
	default:
		return unknownRegion
	}
}

func meanScore(sites []types.Site) float64 {
	var sum float64
	for _, site := range sites {
		sum += site.SimilarityScore
	}
	return sum / float64(len(sites))
}

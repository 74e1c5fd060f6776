package planner

import (
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

const (
	defaultSiteName        = "Unknown Site"
	defaultCity            = "Cairo"
	defaultDescription     = "No description available"
	defaultOpeningTime     = "08:00"
	defaultClosingTime     = "18:00"
	defaultDurationHours   = 2.0
	defaultRestaurantName  = "Unknown Restaurant"
	unknownRegion          = "Unknown"
	nationwideCityFallback = "Not specified (Nationwide)"
)

func defaultActivities() []string {
	return []string{"Exploring", "Photography"}
}

// formatSite applies the ingestion defaults to a catalogue record. The region
// label is derived from the raw record so a missing city falls through to
// "Unknown" rather than the display default.
func formatSite(rec types.SiteRecord) types.Site {
	site := types.Site{
		ID:                    rec.ID,
		Name:                  rec.Name,
		City:                  rec.City,
		Governorate:           rec.Governorate,
		Region:                regionOf(rec),
		Description:           rec.Description,
		SimilarityScore:       clampScore(rec.SimilarityScore),
		Activities:            rec.Activities,
		OpeningTime:           rec.OpeningTime,
		ClosingTime:           rec.ClosingTime,
		AverageTimeSpentHours: defaultDurationHours,
		BudgetEGP:             rec.BudgetEGP,
		Location:              rec.Location(),
	}
	if site.Name == "" {
		site.Name = defaultSiteName
	}
	if site.City == "" {
		site.City = defaultCity
	}
	if site.Description == "" {
		site.Description = defaultDescription
	}
	if len(site.Activities) == 0 {
		site.Activities = defaultActivities()
	}
	if site.OpeningTime == "" {
		site.OpeningTime = defaultOpeningTime
	}
	if site.ClosingTime == "" {
		site.ClosingTime = defaultClosingTime
	}
	if rec.AverageTimeSpentHours != nil && *rec.AverageTimeSpentHours > 0 {
		site.AverageTimeSpentHours = *rec.AverageTimeSpentHours
	}
	site.CostEGP = valueOr(rec.BudgetEGP, 0)
	return site
}

func formatSites(records []types.SiteRecord) []types.Site {
	sites := make([]types.Site, 0, len(records))
	for _, rec := range records {
		sites = append(sites, formatSite(rec))
	}
	return sites
}

func regionOf(rec types.SiteRecord) string {
	switch {
	case rec.Governorate != "":
		return rec.Governorate
	case rec.City != "":
		return rec.City
	default:
		return unknownRegion
	}
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// valueOr treats nil and zero as missing.
func valueOr(v *float64, fallback float64) float64 {
	if v == nil || *v == 0 {
		return fallback
	}
	return *v
}

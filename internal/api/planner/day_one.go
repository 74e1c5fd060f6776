package planner

import (
	"context"
	"log/slog"
	"math"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

const (
	pyramidsShare       = 0.6
	museumShare         = 0.4
	pyramidsDefaultCost = 200.0
	museumDefaultCost   = 100.0
)

var (
	pyramidsPatterns = []string{"pyramid", "giza"}
	museumPatterns   = []string{"egyptian museum", "museum"}
)

func pyramidsLandmark(description string) types.Site {
	return types.Site{
		Name:                  "Pyramids of Giza",
		City:                  "Giza",
		Governorate:           "Giza",
		Region:                "Giza",
		Description:           description,
		SimilarityScore:       1.0,
		Activities:            []string{"Exploring", "Photography", "Camel Riding"},
		OpeningTime:           "08:00",
		ClosingTime:           "17:00",
		AverageTimeSpentHours: 3,
		Location:              &types.Coordinate{Latitude: 29.9792, Longitude: 31.1342},
	}
}

func museumLandmark(description string) types.Site {
	return types.Site{
		Name:                  "Egyptian Museum",
		City:                  "Cairo",
		Governorate:           "Cairo",
		Region:                "Cairo",
		Description:           description,
		SimilarityScore:       1.0,
		Activities:            []string{"Museum Tour", "Photography", "Learning"},
		OpeningTime:           "09:00",
		ClosingTime:           "17:00",
		AverageTimeSpentHours: 2.5,
		Location:              &types.Coordinate{Latitude: 30.0478, Longitude: 31.2336},
	}
}

// dayOneSites anchors the first day on the pyramids and the Egyptian Museum.
// Catalogue matches are preferred; a missing match is replaced by the fixed
// landmark record. A failing lookup yields both fixed landmarks at 60/40 of
// the sites budget. It always returns exactly two sites and ignores the
// used-sites set.
func (s *ServiceImpl) dayOneSites(ctx context.Context, sitesBudget float64) []types.Site {
	l := s.logger.With(slog.String("method", "dayOneSites"))

	pyramids, err := s.catalog.FindSiteByNamePattern(ctx, pyramidsPatterns...)
	if err != nil {
		l.WarnContext(ctx, "Landmark lookup failed, using fixed day one sites", slog.Any("error", err))
		return dayOneFallback(sitesBudget)
	}
	museum, err := s.catalog.FindSiteByNamePattern(ctx, museumPatterns...)
	if err != nil {
		l.WarnContext(ctx, "Landmark lookup failed, using fixed day one sites", slog.Any("error", err))
		return dayOneFallback(sitesBudget)
	}

	var first, second types.Site
	if pyramids != nil {
		first = formatSite(*pyramids)
		first.CostEGP = math.Min(valueOr(pyramids.BudgetEGP, pyramidsDefaultCost), sitesBudget*pyramidsShare)
	} else {
		first = pyramidsLandmark("The last surviving wonder of the ancient world, these magnificent pyramids have stood for over 4,500 years.")
		first.CostEGP = math.Min(pyramidsDefaultCost, sitesBudget*pyramidsShare)
	}

	if museum != nil && museum.Name != first.Name {
		second = formatSite(*museum)
		second.CostEGP = math.Min(valueOr(museum.BudgetEGP, museumDefaultCost), sitesBudget*museumShare)
	} else {
		second = museumLandmark("Home to the world's most extensive collection of ancient Egyptian artifacts, including treasures from Tutankhamun's tomb.")
		second.CostEGP = math.Min(museumDefaultCost, sitesBudget*museumShare)
	}

	l.DebugContext(ctx, "Day one sites prepared", slog.String("first", first.Name), slog.String("second", second.Name))
	return []types.Site{first, second}
}

func dayOneFallback(sitesBudget float64) []types.Site {
	pyramids := pyramidsLandmark("The last surviving wonder of the ancient world.")
	pyramids.Activities = defaultActivities()
	pyramids.CostEGP = sitesBudget * pyramidsShare

	museum := museumLandmark("World's most extensive collection of ancient Egyptian artifacts.")
	museum.Activities = []string{"Museum Tour", "Learning"}
	museum.CostEGP = sitesBudget * museumShare

	return []types.Site{pyramids, museum}
}

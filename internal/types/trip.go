package types

import (
	"time"

	"github.com/google/uuid"
)

// TripRequest is the traveler input for a trip build.
type TripRequest struct {
	Age       *int     `json:"age,omitempty"`
	Budget    float64  `json:"budget"`
	Days      int      `json:"days"`
	Interests []string `json:"interests"`
	Cities    []string `json:"cities,omitempty"`
}

// Meal is a restaurant assigned to one meal slot of a day.
type Meal struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	Description  string  `json:"description"`
	BudgetEGP    float64 `json:"budget_egp"`
	OpeningHours string  `json:"opening_hours"`
	ClosingHours string  `json:"closing_hours"`
	DistanceKm   float64 `json:"distance_km"`
}

// Meals holds the three meal slots of a day. A nil slot had no eligible restaurant.
type Meals struct {
	Breakfast *Meal `json:"breakfast"`
	Lunch     *Meal `json:"lunch"`
	Dinner    *Meal `json:"dinner"`
}

// Cost sums the budgets of the assigned meals.
func (m Meals) Cost() float64 {
	var total float64
	for _, meal := range []*Meal{m.Breakfast, m.Lunch, m.Dinner} {
		if meal != nil {
			total += meal.BudgetEGP
		}
	}
	return total
}

type DayPlan struct {
	Day                    int     `json:"day"`
	Sites                  []Site  `json:"sites"`
	DistanceBetweenSitesKm float64 `json:"distance_between_sites_km"`
	Restaurants            Meals   `json:"restaurants"`
	DailyCostEGP           float64 `json:"daily_cost_egp"`
	// ComprehensiveItinerary is the generated narrative, nil when generation failed or is disabled.
	ComprehensiveItinerary *string `json:"comprehensive_itinerary"`
	Degraded               bool    `json:"degraded,omitempty"`
}

type UserPreferences struct {
	Age            *int     `json:"age"`
	TotalBudgetEGP float64  `json:"total_budget_egp"`
	DailyBudgetEGP float64  `json:"daily_budget_egp"`
	Interests      []string `json:"interests"`
	DurationDays   int      `json:"duration_days"`
	City           string   `json:"city"`
}

type TripSummary struct {
	TotalTripCostEGP   float64 `json:"total_trip_cost_egp"`
	RemainingBudgetEGP float64 `json:"remaining_budget_egp"`
}

type TripPlan struct {
	ID              uuid.UUID       `json:"id"`
	UserPreferences UserPreferences `json:"user_preferences"`
	Days            []DayPlan       `json:"days"`
	TripSummary     TripSummary     `json:"trip_summary"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NarrativeInput is everything the narrative generator sees for one day.
type NarrativeInput struct {
	Day         int
	Sites       []Site
	Meals       Meals
	Preferences UserPreferences
}

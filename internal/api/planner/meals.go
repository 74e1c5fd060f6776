package planner

import (
	"github.com/FACorreiaa/go-itinerary-builder/internal/geo"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

type mealSlot struct {
	openingHours string
	closingHours string
}

var (
	breakfastSlot = mealSlot{openingHours: "08:00", closingHours: "16:00"}
	lunchSlot     = mealSlot{openingHours: "11:00", closingHours: "20:00"}
	dinnerSlot    = mealSlot{openingHours: "14:00", closingHours: "23:00"}
)

// AssignMeals places breakfast next to the first site, lunch next to the
// midpoint of both sites and dinner next to the last site. A restaurant is
// used at most once per day, identified by its position in the pool.
// Restaurants without coordinates are never assigned. Slots with nothing left
// stay nil.
func AssignMeals(sites []types.Site, pool []types.RestaurantRecord) types.Meals {
	var meals types.Meals
	if len(sites) == 0 {
		return meals
	}

	taken := make(map[int]bool, 3)
	first := sites[0].Location

	meals.Breakfast = nearestMeal(first, pool, taken, breakfastSlot)

	dinnerAnchor := first
	if len(sites) >= 2 {
		second := sites[1].Location
		var mid *types.Coordinate
		if first != nil && second != nil {
			m := geo.Midpoint(*first, *second)
			mid = &m
		}
		meals.Lunch = nearestMeal(mid, pool, taken, lunchSlot)
		dinnerAnchor = second
	}

	meals.Dinner = nearestMeal(dinnerAnchor, pool, taken, dinnerSlot)
	return meals
}

// nearestMeal picks the untaken restaurant closest to anchor; the first
// minimal distance in pool order wins. With no anchor the first eligible
// restaurant is taken.
func nearestMeal(anchor *types.Coordinate, pool []types.RestaurantRecord, taken map[int]bool, slot mealSlot) *types.Meal {
	best := -1
	bestDist := 0.0
	for i, r := range pool {
		if taken[i] {
			continue
		}
		loc := r.Location()
		if loc == nil {
			continue
		}
		if anchor == nil {
			best = i
			break
		}
		if d := geo.Distance(*anchor, *loc); best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return nil
	}

	taken[best] = true
	return newMeal(pool[best], bestDist, slot)
}

func newMeal(r types.RestaurantRecord, distanceKm float64, slot mealSlot) *types.Meal {
	meal := &types.Meal{
		ID:           r.ID,
		Name:         r.Name,
		City:         r.City,
		Description:  r.Description,
		BudgetEGP:    valueOr(r.AverageBudgetEGP, 0),
		OpeningHours: r.OpeningHours,
		ClosingHours: r.ClosingHours,
		DistanceKm:   distanceKm,
	}
	if meal.Name == "" {
		meal.Name = defaultRestaurantName
	}
	if meal.City == "" {
		meal.City = defaultCity
	}
	if meal.Description == "" {
		meal.Description = defaultDescription
	}
	if meal.OpeningHours == "" {
		meal.OpeningHours = slot.openingHours
	}
	if meal.ClosingHours == "" {
		meal.ClosingHours = slot.closingHours
	}
	return meal
}

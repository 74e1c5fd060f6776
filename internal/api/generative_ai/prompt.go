package generativeAI

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

const narrativeSystemInstruction = `You are an experienced Egypt travel guide.
Write a warm, practical plan for a single day of a trip in plain prose.
Only mention the sites and restaurants you are given. Keep it under 250 words.`

// BuildNarrativePrompt renders one day of a trip into the text sent to the model.
func BuildNarrativePrompt(input types.NarrativeInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %d of a %d-day trip in Egypt.\n", input.Day, input.Preferences.DurationDays)

	prefs := input.Preferences
	if len(prefs.Interests) > 0 {
		fmt.Fprintf(&b, "Traveler interests: %s.\n", strings.Join(prefs.Interests, ", "))
	}
	if prefs.Age != nil {
		fmt.Fprintf(&b, "Traveler age: %d.\n", *prefs.Age)
	}
	fmt.Fprintf(&b, "Daily budget: %.0f EGP.\n", prefs.DailyBudgetEGP)

	b.WriteString("\nSites:\n")
	for i, s := range input.Sites {
		fmt.Fprintf(&b, "%d. %s (%s), open %s-%s, about %.1f hours, %.0f EGP",
			i+1, s.Name, s.City, s.OpeningTime, s.ClosingTime, s.AverageTimeSpentHours, s.CostEGP)
		if len(s.Activities) > 0 {
			fmt.Fprintf(&b, ", activities: %s", strings.Join(s.Activities, ", "))
		}
		if s.Description != "" {
			fmt.Fprintf(&b, ". %s", s.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nMeals:\n")
	writeMeal(&b, "Breakfast", input.Meals.Breakfast)
	writeMeal(&b, "Lunch", input.Meals.Lunch)
	writeMeal(&b, "Dinner", input.Meals.Dinner)

	b.WriteString("\nDescribe the day in order: morning visit, lunch, afternoon visit, dinner.")
	return b.String()
}

func writeMeal(b *strings.Builder, slot string, meal *types.Meal) {
	if meal == nil {
		fmt.Fprintf(b, "- %s: traveler's choice\n", slot)
		return
	}
	fmt.Fprintf(b, "- %s: %s, %.1f km away, around %.0f EGP\n", slot, meal.Name, meal.DistanceKm, meal.BudgetEGP)
}

package types

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SiteRecord is a touristic site as the catalogue returns it. Optional
// columns are pointers; nil means the catalogue has no value.
type SiteRecord struct {
	ID                    string    `json:"id,omitempty" bson:"-"`
	Name                  string    `json:"name" bson:"name"`
	City                  string    `json:"city" bson:"city"`
	Governorate           string    `json:"governorate" bson:"governorate"`
	Description           string    `json:"description" bson:"description"`
	Latitude              *float64  `json:"latitude" bson:"latitude"`
	Longitude             *float64  `json:"longitude" bson:"longitude"`
	BudgetEGP             *float64  `json:"budget_egp" bson:"budget_egp"`
	OpeningTime           string    `json:"opening_time" bson:"opening_time"`
	ClosingTime           string    `json:"closing_time" bson:"closing_time"`
	AverageTimeSpentHours *float64  `json:"average_time_spent_hours" bson:"average_time_spent_hours"`
	Activities            []string  `json:"activities" bson:"activities"`
	MinAge                *int      `json:"min_age,omitempty" bson:"min_age"`
	Embedding             []float32 `json:"embedding,omitempty" bson:"embedding"`
	// SimilarityScore is filled by the search, never stored.
	SimilarityScore float64 `json:"similarity_score,omitempty" bson:"-"`
}

// Location returns the record coordinate, or nil when either component is missing.
func (s SiteRecord) Location() *Coordinate {
	if s.Latitude == nil || s.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *s.Latitude, Longitude: *s.Longitude}
}

// Site is a formatted site as it appears in a day plan.
type Site struct {
	ID                    string      `json:"id,omitempty"`
	Name                  string      `json:"name"`
	City                  string      `json:"city"`
	Governorate           string      `json:"governorate,omitempty"`
	Region                string      `json:"-"`
	Description           string      `json:"description"`
	SimilarityScore       float64     `json:"similarity_score"`
	Activities            []string    `json:"activities"`
	OpeningTime           string      `json:"opening_time"`
	ClosingTime           string      `json:"closing_time"`
	AverageTimeSpentHours float64     `json:"average_time_spent_hours"`
	CostEGP               float64     `json:"cost_egp"`
	BudgetEGP             *float64    `json:"-"`
	Location              *Coordinate `json:"location,omitempty"`
}

// RestaurantRecord is a restaurant as the catalogue returns it.
type RestaurantRecord struct {
	ID               string   `json:"id,omitempty" bson:"-"`
	Name             string   `json:"name" bson:"name"`
	City             string   `json:"city" bson:"city"`
	Description      string   `json:"description" bson:"description"`
	Latitude         *float64 `json:"latitude" bson:"latitude"`
	Longitude        *float64 `json:"longitude" bson:"longitude"`
	AverageBudgetEGP *float64 `json:"average_budget_egp" bson:"average_budget_egp"`
	OpeningHours     string   `json:"opening_hours" bson:"opening_hours"`
	ClosingHours     string   `json:"closing_hours" bson:"closing_hours"`
}

// Location returns the record coordinate, or nil when either component is missing.
func (r RestaurantRecord) Location() *Coordinate {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// SiteSearch parameterises a semantic nearest-neighbour search over sites.
type SiteSearch struct {
	Vector []float32
	// City restricts results to one city when not empty.
	City  string
	Limit int
	// MaxCost drops sites whose recorded budget exceeds it. Zero disables the ceiling.
	MaxCost float64
	// Age drops sites whose minimum age is above it when set.
	Age *int
}

// RestaurantQuery filters restaurants by city and average budget.
type RestaurantQuery struct {
	City    string
	MaxCost float64
	Limit   int
}

// SiteDistance is the distance from a site to another catalogue entry.
type SiteDistance struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}

// SiteWithDistances is a site annotated with distances to every other site and restaurant.
type SiteWithDistances struct {
	SiteRecord
	DistancesToSites       []SiteDistance `json:"distances_to_sites"`
	DistancesToRestaurants []SiteDistance `json:"distances_to_restaurants"`
}

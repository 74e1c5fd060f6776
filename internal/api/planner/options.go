package planner

import "github.com/FACorreiaa/go-itinerary-builder/config"

// Pair strategies for days after the first.
const (
	PairGovernorate = "governorate"
	PairClosest     = "closest"
	PairColocated   = "colocated"
)

type Options struct {
	// SitesShare is the part of the daily budget reserved for sites; the rest goes to food.
	SitesShare      float64
	SiteSearchLimit int
	RestaurantLimit int
	MaxDays         int
	PairStrategy    string
	// MaxPairDistanceKm bounds the colocated strategy.
	MaxPairDistanceKm         float64
	RandomFallbackCoordinates bool
}

func DefaultOptions() Options {
	return Options{
		SitesShare:        0.7,
		SiteSearchLimit:   10,
		RestaurantLimit:   10,
		MaxDays:           30,
		PairStrategy:      PairGovernorate,
		MaxPairDistanceKm: 50,
	}
}

// OptionsFromConfig reads the planner section; unset values keep their defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		SitesShare:                cfg.Planner.SitesShare,
		SiteSearchLimit:           cfg.Planner.SiteSearchLimit,
		RestaurantLimit:           cfg.Planner.RestaurantLimit,
		MaxDays:                   cfg.Planner.MaxDays,
		PairStrategy:              cfg.Planner.PairStrategy,
		MaxPairDistanceKm:         cfg.Planner.MaxPairDistanceKm,
		RandomFallbackCoordinates: cfg.Planner.RandomFallbackCoordinates,
	}
	return opts.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SitesShare <= 0 || o.SitesShare >= 1 {
		o.SitesShare = d.SitesShare
	}
	if o.SiteSearchLimit <= 0 {
		o.SiteSearchLimit = d.SiteSearchLimit
	}
	if o.RestaurantLimit <= 0 {
		o.RestaurantLimit = d.RestaurantLimit
	}
	if o.MaxDays <= 0 {
		o.MaxDays = d.MaxDays
	}
	switch o.PairStrategy {
	case PairGovernorate, PairClosest, PairColocated:
	default:
		o.PairStrategy = d.PairStrategy
	}
	if o.MaxPairDistanceKm <= 0 {
		o.MaxPairDistanceKm = d.MaxPairDistanceKm
	}
	return o
}

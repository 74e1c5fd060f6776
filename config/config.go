package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port    string `mapstructure:"port"`
			Enabled bool   `mapstructure:"enabled"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		// Backend selects the site catalogue: postgres, mongo or memory.
		Backend  string `mapstructure:"backend"`
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Mongo struct {
			URI      string `mapstructure:"uri"`
			Database string `mapstructure:"database"`
		} `mapstructure:"mongo"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
		Memory struct {
			SeedFile string `mapstructure:"seedFile"`
		} `mapstructure:"memory"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort           string        `mapstructure:"HTTPPort"`
		Timeout            time.Duration `mapstructure:"HTTPTimeout"`
		RateLimitPerSecond float64       `mapstructure:"rateLimitPerSecond"`
		RateLimitBurst     int           `mapstructure:"rateLimitBurst"`
	} `mapstructure:"server"`
	LLM struct {
		// Provider is gemini, openai, groq or local. A provider without an API key falls back to local.
		Provider          string `mapstructure:"provider"`
		Model             string `mapstructure:"model"`
		EmbeddingModel    string `mapstructure:"embeddingModel"`
		BaseURL           string `mapstructure:"baseURL"`
		Narrative         bool   `mapstructure:"narrative"`
		RequestsPerMinute int    `mapstructure:"requestsPerMinute"`
	} `mapstructure:"llm"`
	Planner struct {
		SitesShare                float64 `mapstructure:"sitesShare"`
		SiteSearchLimit           int     `mapstructure:"siteSearchLimit"`
		RestaurantLimit           int     `mapstructure:"restaurantLimit"`
		MaxDays                   int     `mapstructure:"maxDays"`
		PairStrategy              string  `mapstructure:"pairStrategy"`
		MaxPairDistanceKm         float64 `mapstructure:"maxPairDistanceKm"`
		RandomFallbackCoordinates bool    `mapstructure:"randomFallbackCoordinates"`
	} `mapstructure:"planner"`
	Cache struct {
		EmbeddingTTL time.Duration `mapstructure:"embeddingTTL"`
		TripTTL      time.Duration `mapstructure:"tripTTL"`
	} `mapstructure:"cache"`
}

func InitConfig() (*Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return nil, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return &config, nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaults(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Repositories.Backend)
	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 0.7, cfg.Planner.SitesShare)
	assert.Equal(t, 10, cfg.Planner.SiteSearchLimit)
	assert.Equal(t, "governorate", cfg.Planner.PairStrategy)
	assert.False(t, cfg.Planner.RandomFallbackCoordinates)
	assert.Equal(t, 24*time.Hour, cfg.Cache.EmbeddingTTL)
}

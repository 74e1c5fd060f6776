//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("GOOGLE_GEMINI_API_KEY") == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func newIntegrationClient(t *testing.T) *GeminiClient {
	t.Helper()
	client, err := NewGeminiClient(context.Background(), "gemini-2.0-flash", "text-embedding-004", 0, testLogger())
	require.NoError(t, err)
	return client
}

func TestGeminiClient_Embed_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := newIntegrationClient(t)

	t.Run("related texts are closer than unrelated ones", func(t *testing.T) {
		temples, err := client.Embed(ctx, "ancient Egyptian temples and pharaoh tombs")
		require.NoError(t, err)
		karnak, err := client.Embed(ctx, "Karnak Temple, a vast complex dedicated to Amun-Ra in Luxor")
		require.NoError(t, err)
		diving, err := client.Embed(ctx, "scuba diving over coral reefs in the Red Sea")
		require.NoError(t, err)

		require.Len(t, karnak, len(temples))
		assert.Greater(t, dot(temples, karnak), dot(temples, diving))
	})

	t.Run("cached embedder serves repeats", func(t *testing.T) {
		cached := NewCachedEmbedder(client, time.Minute, testLogger())
		first, err := cached.Embed(ctx, "Nile felucca ride")
		require.NoError(t, err)
		second, err := cached.Embed(ctx, "nile FELUCCA ride")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestGeminiClient_GenerateNarrative_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	client := newIntegrationClient(t)

	text, err := client.GenerateNarrative(ctx, narrativeInput())
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.True(t, strings.Contains(strings.ToLower(text), "karnak"),
		"Narrative should mention the first site of the day")
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

// GeminiClient embeds text and writes day narratives through the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// NewGeminiClient reads the key from GOOGLE_GEMINI_API_KEY.
func NewGeminiClient(ctx context.Context, model, embeddingModel string, requestsPerMinute int, logger *slog.Logger) (*GeminiClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewGeminiClient")
	defer span.End()

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		err := errors.New("GOOGLE_GEMINI_API_KEY environment variable is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	span.SetStatus(codes.Ok, "Gemini client created")
	return &GeminiClient{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		limiter:        newLimiter(requestsPerMinute),
		logger:         logger,
	}, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GeminiEmbed", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
		attribute.String("model", g.embeddingModel),
	))
	defer span.End()

	if err := wait(ctx, g.limiter); err != nil {
		return nil, err
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding request failed")
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		err := errors.New("empty embedding response")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding")
		return nil, err
	}

	span.SetAttributes(attribute.Int("embedding.dimension", len(resp.Embeddings[0].Values)))
	span.SetStatus(codes.Ok, "Text embedded")
	return resp.Embeddings[0].Values, nil
}

func (g *GeminiClient) GenerateNarrative(ctx context.Context, input types.NarrativeInput) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GeminiGenerateNarrative", trace.WithAttributes(
		attribute.Int("day", input.Day),
		attribute.String("model", g.model),
	))
	defer span.End()

	if err := wait(ctx, g.limiter); err != nil {
		return "", err
	}

	prompt := BuildNarrativePrompt(input)
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: narrativeSystemInstruction}}},
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		g.logger.WarnContext(ctx, "Narrative generation failed", slog.Int("day", input.Day), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Narrative generated")
	return text, nil
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 1)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}
	return nil
}

package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

// GroqBaseURL is the OpenAI-compatible endpoint of Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIClient talks to any OpenAI-compatible API: OpenAI itself, Groq or a
// local server, depending on the base URL.
type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
	limiter        *rate.Limiter
	logger         *slog.Logger
}

func NewOpenAIClient(apiKey, baseURL, model, embeddingModel string, requestsPerMinute int, logger *slog.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai-compatible API key is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: embeddingModel,
		limiter:        newLimiter(requestsPerMinute),
		logger:         logger,
	}, nil
}

func (o *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "OpenAIEmbed", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
		attribute.String("model", o.embeddingModel),
	))
	defer span.End()

	if err := wait(ctx, o.limiter); err != nil {
		return nil, err
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.embeddingModel),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding request failed")
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		err := errors.New("empty embedding response")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding")
		return nil, err
	}

	span.SetAttributes(attribute.Int("embedding.dimension", len(resp.Data[0].Embedding)))
	span.SetStatus(codes.Ok, "Text embedded")
	return resp.Data[0].Embedding, nil
}

func (o *OpenAIClient) GenerateNarrative(ctx context.Context, input types.NarrativeInput) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "OpenAIGenerateNarrative", trace.WithAttributes(
		attribute.Int("day", input.Day),
		attribute.String("model", o.model),
	))
	defer span.End()

	if err := wait(ctx, o.limiter); err != nil {
		return "", err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narrativeSystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: BuildNarrativePrompt(input)},
		},
	})
	if err != nil {
		o.logger.WarnContext(ctx, "Narrative generation failed", slog.Int("day", input.Day), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Chat completion failed")
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("chat completion returned no choices")
		span.RecordError(err)
		span.SetStatus(codes.Error, "No choices")
		return "", err
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Narrative generated")
	return text, nil
}

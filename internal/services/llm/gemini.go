package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// GeminiService implements the embedding, generative, and vision
// contracts against the Google Gemini API. A single rate limiter covers
// all calls to respect free-tier quotas.
type GeminiService struct {
	config  *common.GeminiConfig
	client  *genai.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
	timeout time.Duration
}

// Compile-time assertions
var (
	_ interfaces.EmbeddingService  = (*GeminiService)(nil)
	_ interfaces.GenerativeService = (*GeminiService)(nil)
	_ interfaces.VisionService     = (*GeminiService)(nil)
)

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	if config.EmbedModel == "" {
		config.EmbedModel = "gemini-embedding-001"
	}
	if config.EmbedDimension <= 0 {
		config.EmbedDimension = 768
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil || interval <= 0 {
		interval = 4 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info().
		Str("embed_model", config.EmbedModel).
		Int("embed_dimension", config.EmbedDimension).
		Str("model", config.Model).
		Dur("rate_limit", interval).
		Msg("Gemini service initialized")

	return &GeminiService{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
		timeout: timeout,
	}, nil
}

// EmbedBatch embeds the texts in one API call, preserving input order.
// Any upstream failure fails the whole batch; there are no partial
// results and no retries.
func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", models.ErrProvider)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	start := time.Now()
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel, contents, embeddingConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding generation failed: %v", models.ErrProvider, err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("%w: embedding count mismatch: sent %d texts, got %d vectors", models.ErrProvider, len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) != s.config.EmbedDimension {
			return nil, fmt.Errorf("%w: embedding %d has wrong dimension", models.ErrProvider, i)
		}
		vectors[i] = embedding.Values
	}

	s.logger.Debug().
		Int("texts", len(texts)).
		Int("dimension", s.config.EmbedDimension).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding batch")

	return vectors, nil
}

// EmbedQuery embeds a search query.
func (s *GeminiService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// ModelName returns the embedding model identifier.
func (s *GeminiService) ModelName() string {
	return s.config.EmbedModel
}

// Dimension returns the configured embedding dimension.
func (s *GeminiService) Dimension() int {
	return s.config.EmbedDimension
}

// Chat generates a completion for the conversation.
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: Gemini API call failed: %v", models.ErrProvider, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini API", models.ErrProvider)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty text in Gemini response", models.ErrProvider)
	}
	return text, nil
}

// DescribeImage asks the vision model for a concise description of the
// image content, including any visible text and key data points.
func (s *GeminiService) DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(imageDescriptionPrompt),
		},
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.visionModel(), []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: image analysis failed: %v", models.ErrProvider, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Text() == "" {
		return "", fmt.Errorf("%w: empty vision response", models.ErrProvider)
	}

	return strings.TrimSpace(resp.Text()), nil
}

// RecoverTables asks the vision model to return every table in the
// document as structured JSON. The response schema forces JSON output, so
// the reply parses directly.
func (s *GeminiService) RecoverTables(ctx context.Context, data []byte, mimeType string) ([]interfaces.RecoveredTable, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(tableRecoveryPrompt),
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   tableResponseSchema(),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.visionModel(), []*genai.Content{content}, config)
	if err != nil {
		return nil, fmt.Errorf("%w: table recovery failed: %v", models.ErrProvider, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty vision response", models.ErrProvider)
	}

	var tables []interfaces.RecoveredTable
	if err := json.Unmarshal([]byte(resp.Text()), &tables); err != nil {
		return nil, fmt.Errorf("%w: unparseable table response: %v", models.ErrProvider, err)
	}
	return tables, nil
}

// Close releases the client reference; genai.Client needs no explicit
// cleanup beyond this.
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}

func (s *GeminiService) visionModel() string {
	if s.config.VisionModel != "" {
		return s.config.VisionModel
	}
	return s.config.Model
}

const imageDescriptionPrompt = `Analyze this image and provide:
1. A detailed description of what's shown
2. Any text visible in the image
3. Key elements or data points
Be concise but comprehensive.`

const tableRecoveryPrompt = `Find every table in this document. For each table return the 1-based page number it appears on, its contents as CSV, the same contents as an HTML table, and its row and column counts. Return an empty array if there are no tables.`

// tableResponseSchema describes the structured output: an array of table
// objects matching interfaces.RecoveredTable.
func tableResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"page_number": {Type: genai.TypeInteger, Description: "1-based page the table appears on"},
				"csv":         {Type: genai.TypeString, Description: "table contents as CSV"},
				"html":        {Type: genai.TypeString, Description: "table contents as an HTML table"},
				"rows":        {Type: genai.TypeInteger},
				"cols":        {Type: genai.TypeInteger},
			},
			Required: []string{"page_number", "csv", "html", "rows", "cols"},
		},
	}
}

// convertMessagesToGemini converts []interfaces.Message to Gemini Content
// format, extracting the first system message for SystemInstruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

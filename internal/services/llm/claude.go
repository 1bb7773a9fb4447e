package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// ClaudeService implements the generative contract against the Anthropic
// Messages API. Embeddings stay on Gemini regardless of the chat
// provider.
type ClaudeService struct {
	config  *common.ClaudeConfig
	client  anthropic.Client
	logger  arbor.ILogger
	timeout time.Duration
}

var _ interfaces.GenerativeService = (*ClaudeService)(nil)

// NewClaudeService creates a new Claude service instance.
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Claude API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	client := anthropic.NewClient(option.WithAPIKey(config.APIKey))

	logger.Info().
		Str("model", config.Model).
		Int("max_tokens", config.MaxTokens).
		Msg("Claude service initialized")

	return &ClaudeService{
		config:  config,
		client:  client,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Chat generates a completion for the conversation.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	claudeMessages, systemPrompt, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Model),
		MaxTokens:   int64(s.config.MaxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(s.config.Temperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	start := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("%w: Claude API call failed: %v", models.ErrProvider, err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: empty response from Claude API", models.ErrProvider)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text content in Claude response", models.ErrProvider)
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Dur("duration", time.Since(start)).
		Msg("Claude chat completed")

	return text, nil
}

// Close is a no-op; the Anthropic client holds no connections to release.
func (s *ClaudeService) Close() error {
	return nil
}

// convertMessagesToClaude converts []interfaces.Message to Anthropic
// format, pulling the first system message out into the system prompt.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	var systemPrompt string
	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	hasUserMessage := false

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemPrompt == "" {
				systemPrompt = msg.Content
			}
		case "user":
			hasUserMessage = true
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return nil, "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return claudeMessages, systemPrompt, nil
}

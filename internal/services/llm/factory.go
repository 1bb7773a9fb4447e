package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
)

// NewGenerativeService creates the answer-generation provider selected by
// configuration. Gemini doubles as the generative provider when selected;
// the embedding and vision paths always run on the supplied Gemini
// service either way.
func NewGenerativeService(
	cfg *common.Config,
	gemini *GeminiService,
	logger arbor.ILogger,
) (interfaces.GenerativeService, error) {
	logger.Info().Str("provider", cfg.LLM.DefaultProvider).Msg("Initializing generative service")

	switch cfg.LLM.DefaultProvider {
	case "claude":
		return NewClaudeService(&cfg.Claude, logger)

	case "gemini":
		if gemini == nil {
			return nil, fmt.Errorf("gemini service not initialized")
		}
		return gemini, nil

	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'claude' or 'gemini'", cfg.LLM.DefaultProvider)
	}
}

// -----------------------------------------------------------------------
// Answer Assembler - Build grounded answers from retrieved chunks
// -----------------------------------------------------------------------

package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

const systemPrompt = `You are a helpful assistant that answers questions based only on the provided document context.
Rules:
- Answer using only the information in the context below.
- If the context does not contain the answer, say "I don't have enough information to answer that question."
- Never fabricate facts or cite information that is not in the context.
- When helpful, quote short phrases from the context to support the answer.`

const userPromptTemplate = "Context:\n%s\n\nQuestion: %s\n\nAnswer:"

const fallbackPreamble = "I couldn't generate an answer, but here are the most relevant passages from your documents:\n\n"

// noAnswerSentences are model replies that mean "the context did not
// help". A reply consisting solely of one of these triggers the
// passage-list fallback so the user still sees what was retrieved.
var noAnswerSentences = map[string]struct{}{
	"I don't have enough information to answer that question.":       {},
	"No relevant information found in the uploaded documents.":       {},
	"The provided context does not contain relevant information.":    {},
	"I cannot answer this question based on the provided documents.": {},
}

// Assembler turns retrieved chunks into an answer via the generative
// provider, falling back to a verbatim passage list when the provider
// declines to answer.
type Assembler struct {
	llm    interfaces.GenerativeService
	logger arbor.ILogger
}

// NewAssembler creates a new answer assembler.
func NewAssembler(llm interfaces.GenerativeService, logger arbor.ILogger) *Assembler {
	return &Assembler{
		llm:    llm,
		logger: logger,
	}
}

// Answer generates a grounded answer to question from chunks. Chunks are
// joined in rank order; the caller has already selected and ordered them.
func (a *Assembler) Answer(ctx context.Context, question string, chunks []string) (string, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no context chunks provided", models.ErrValidation)
	}

	contextBlock := strings.Join(chunks, "\n\n")
	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, contextBlock, question)},
	}

	reply, err := a.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: answer generation failed: %v", models.ErrProvider, err)
	}

	reply = strings.TrimSpace(reply)
	if _, declined := noAnswerSentences[reply]; declined || reply == "" {
		a.logger.Debug().Str("reply", reply).Msg("Model declined to answer, returning passages")
		return fallback(chunks), nil
	}

	return reply, nil
}

// fallback lists the retrieved passages verbatim.
func fallback(chunks []string) string {
	var builder strings.Builder
	builder.WriteString(fallbackPreamble)
	for _, chunk := range chunks {
		builder.WriteString("- ")
		builder.WriteString(chunk)
		builder.WriteString("\n")
	}
	return builder.String()
}

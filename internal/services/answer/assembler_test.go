package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// stubLLM implements interfaces.GenerativeService with a canned reply.
type stubLLM struct {
	reply    string
	err      error
	messages []interfaces.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

func (s *stubLLM) Close() error { return nil }

func TestAnswerReturnsGeneratedReply(t *testing.T) {
	llm := &stubLLM{reply: "The revenue grew 12% in Q3."}
	assembler := NewAssembler(llm, arbor.NewLogger())

	got, err := assembler.Answer(context.Background(), "How did revenue change?", []string{"chunk one", "chunk two"})
	require.NoError(t, err)
	assert.Equal(t, "The revenue grew 12% in Q3.", got)

	// Prompt carries the system instruction and the joined context.
	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[1].Content, "chunk one\n\nchunk two")
	assert.Contains(t, llm.messages[1].Content, "How did revenue change?")
}

func TestAnswerFallbackOnDecline(t *testing.T) {
	llm := &stubLLM{reply: "I don't have enough information to answer that question."}
	assembler := NewAssembler(llm, arbor.NewLogger())

	got, err := assembler.Answer(context.Background(), "question here", []string{"c1", "c2"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, fallbackPreamble))
	assert.Contains(t, got, "- c1\n")
	assert.Contains(t, got, "- c2\n")
}

func TestAnswerFallbackOnEmptyReply(t *testing.T) {
	llm := &stubLLM{reply: "   "}
	assembler := NewAssembler(llm, arbor.NewLogger())

	got, err := assembler.Answer(context.Background(), "question here", []string{"c1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, fallbackPreamble))
}

func TestAnswerProviderFailure(t *testing.T) {
	llm := &stubLLM{err: errors.New("boom")}
	assembler := NewAssembler(llm, arbor.NewLogger())

	_, err := assembler.Answer(context.Background(), "question here", []string{"c1"})
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestAnswerRequiresChunks(t *testing.T) {
	assembler := NewAssembler(&stubLLM{}, arbor.NewLogger())

	_, err := assembler.Answer(context.Background(), "question here", nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

package interfaces

import "context"

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// GenerativeService produces text completions. Implementations are
// prompt-in/text-out; no streaming is required by the pipeline.
type GenerativeService interface {
	// Chat generates a completion for the conversation. The messages
	// slice contains the full context including system prompts in
	// chronological order.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Close releases provider resources.
	Close() error
}

// VisionService analyzes binary media through a multimodal model.
type VisionService interface {
	// DescribeImage returns a text description of the image content.
	DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error)

	// RecoverTables extracts tabular data from a document (typically a
	// PDF). Each result carries the 1-based page it was found on.
	RecoverTables(ctx context.Context, data []byte, mimeType string) ([]RecoveredTable, error)
}

// RecoveredTable is one table recovered by the vision provider.
type RecoveredTable struct {
	PageNumber int    `json:"page_number"`
	CSV        string `json:"csv"`
	HTML       string `json:"html"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
}

package models

import "time"

// User-visible sentinel messages. These are answers, not errors: the query
// pipeline returns them in place of a generated answer when there is
// nothing to retrieve. Hard failures surface generically instead.
const (
	MsgNoDocuments        = "You haven't uploaded any documents yet."
	MsgNoRelevantPassages = "No relevant information found in your documents."
)

// QueryRequest is a knowledge-base question. Bounds mirror the upload API:
// questions shorter than 5 or longer than 500 characters are rejected
// before any provider call.
type QueryRequest struct {
	Question string `json:"question" validate:"required,min=5,max=500"`
	TopK     int    `json:"top_k" validate:"min=1,max=10"`
}

// SourceInfo identifies one retrieved chunk and where it came from.
type SourceInfo struct {
	Document string  `json:"document"` // original filename of the source document
	Chunk    string  `json:"chunk"`
	Distance float64 `json:"distance"` // squared Euclidean, lower is more similar
}

// ScoredMedia is a media item with its query relevance score.
type ScoredMedia struct {
	Item  *MediaItem `json:"item"`
	Score float64    `json:"score"`
}

// QueryResponse is the assembled result of one query.
type QueryResponse struct {
	Question    string        `json:"question"`
	Answer      string        `json:"answer"`
	Sources     []SourceInfo  `json:"sources"`
	ContextUsed []string      `json:"context_used"`
	Media       []ScoredMedia `json:"media,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

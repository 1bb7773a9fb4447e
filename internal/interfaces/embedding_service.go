package interfaces

import "context"

// EmbeddingService generates fixed-dimension vector embeddings.
//
// EmbedBatch is all-or-nothing: the returned slice has the same length and
// order as the input, or the call fails as a whole. Partial results are
// never returned because a partially embedded document would desync chunk
// ordinals from index ordinals.
type EmbeddingService interface {
	// EmbedBatch embeds the texts in order. Output[i] corresponds to
	// texts[i] and every vector has Dimension() entries.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Dimension returns the provider's fixed vector dimension.
	Dimension() int
}

// -----------------------------------------------------------------------
// Query Service - Question answering over the owner's document set
// -----------------------------------------------------------------------

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/services/answer"
	"github.com/docuchat/docuchat/internal/services/media"
	"github.com/docuchat/docuchat/internal/services/retrieval"
)

// Service answers questions against a single owner's documents.
type Service struct {
	config    *common.Config
	storage   interfaces.StorageManager
	embedder  interfaces.EmbeddingService
	engine    *retrieval.Engine
	assembler *answer.Assembler
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewService creates a new query service.
func NewService(
	config *common.Config,
	storage interfaces.StorageManager,
	embedder interfaces.EmbeddingService,
	engine *retrieval.Engine,
	assembler *answer.Assembler,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		storage:   storage,
		embedder:  embedder,
		engine:    engine,
		assembler: assembler,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Ask answers the request against ownerID's documents. An owner with no
// documents, or no relevant passages, gets a sentinel answer rather than
// an error.
func (s *Service) Ask(ctx context.Context, ownerID string, req *models.QueryRequest) (*models.QueryResponse, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", models.ErrValidation)
	}
	if req.TopK == 0 {
		req.TopK = s.config.Retrieval.TopK
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	docs, err := s.storage.DocumentStorage().ListDocumentsByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return sentinelResponse(req.Question, models.MsgNoDocuments), nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Retrieve(ctx, queryVector, docs, req.TopK)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case retrieval.StatusNoDocuments:
		return sentinelResponse(req.Question, models.MsgNoDocuments), nil
	case retrieval.StatusNoResults:
		return sentinelResponse(req.Question, models.MsgNoRelevantPassages), nil
	}

	chunks := make([]string, len(result.Hits))
	sources := make([]models.SourceInfo, len(result.Hits))
	for i, hit := range result.Hits {
		chunks[i] = hit.Chunk
		sources[i] = models.SourceInfo{
			Document: hit.Document.OriginalFilename,
			Chunk:    hit.Chunk,
			Distance: hit.Distance,
		}
	}

	scoredMedia := s.relevantMedia(req.Question, result.Hits)

	generated, err := s.assembler.Answer(ctx, req.Question, chunks)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("owner_id", ownerID).
		Int("sources", len(sources)).
		Int("media", len(scoredMedia)).
		Msg("Query answered")

	return &models.QueryResponse{
		Question:    req.Question,
		Answer:      generated,
		Sources:     sources,
		ContextUsed: chunks,
		Media:       scoredMedia,
		Timestamp:   time.Now(),
	}, nil
}

// relevantMedia scores the media of the documents that contributed hits,
// keeping at most MediaPerDocument items per contributing document.
func (s *Service) relevantMedia(question string, hits []retrieval.Hit) []models.ScoredMedia {
	limit := s.config.Retrieval.MediaPerDocument
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var scored []models.ScoredMedia
	for _, hit := range hits {
		if seen[hit.Document.ID] {
			continue
		}
		seen[hit.Document.ID] = true

		items, err := s.storage.MediaStorage().GetMediaByDocument(hit.Document.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("document_id", hit.Document.ID).Msg("Skipping media for document")
			continue
		}
		scored = append(scored, media.ScoreItems(question, items, limit)...)
	}
	return scored
}

func sentinelResponse(question, message string) *models.QueryResponse {
	return &models.QueryResponse{
		Question:  question,
		Answer:    message,
		Sources:   []models.SourceInfo{},
		Timestamp: time.Now(),
	}
}

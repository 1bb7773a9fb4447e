// -----------------------------------------------------------------------
// Document Service - Upload ingestion pipeline and document lifecycle
// -----------------------------------------------------------------------

package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/chunker"
	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/normalize"
	"github.com/docuchat/docuchat/internal/services/media"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// previewLength is how much of the normalized text is kept on the
// document row for listings.
const previewLength = 500

// Service runs the ingestion pipeline and owns the document lifecycle.
type Service struct {
	config     *common.Config
	storage    interfaces.StorageManager
	files      interfaces.FileStorage
	extractor  interfaces.TextExtractor
	mediaExtr  interfaces.MediaExtractor
	embedder   interfaces.EmbeddingService
	chunker    *chunker.Chunker
	linker     media.Linker
	indexStore *vectorindex.Store
	logger     arbor.ILogger
}

// NewService creates a new document service.
func NewService(
	config *common.Config,
	storage interfaces.StorageManager,
	files interfaces.FileStorage,
	extractor interfaces.TextExtractor,
	mediaExtr interfaces.MediaExtractor,
	embedder interfaces.EmbeddingService,
	indexStore *vectorindex.Store,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:     config,
		storage:    storage,
		files:      files,
		extractor:  extractor,
		mediaExtr:  mediaExtr,
		embedder:   embedder,
		chunker:    chunker.New(config.Chunking.Size, config.Chunking.Overlap),
		linker:     media.NewLinker(config.Retrieval.LinkPolicy),
		indexStore: indexStore,
		logger:     logger,
	}
}

// Ingest runs the full pipeline for one upload: validate, persist the
// upload file, extract and normalize text, extract media, chunk, embed,
// persist the index artifacts, and finally commit the document row.
// ChunkCount and IndexPath are written strictly last, so a document is
// never searchable with half-written artifacts.
func (s *Service) Ingest(ctx context.Context, ownerID, originalFilename string, content []byte) (*models.Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", models.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: file type %q not allowed (accepted: %s)", models.ErrValidation, ext, strings.Join(s.config.Uploads.AllowedExtensions, ", "))
	}
	if int64(len(content)) > s.config.Uploads.MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds maximum size of %d bytes", models.ErrValidation, s.config.Uploads.MaxFileSize)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", models.ErrValidation)
	}

	// Persist the upload under a unique name before anything else so a
	// failed ingestion still leaves the original bytes recoverable.
	storedName := uuid.New().String() + ext
	uploadPath := filepath.Join(s.config.Uploads.Dir, ownerID, storedName)
	if err := s.files.WriteFile(uploadPath, content); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	doc := &models.Document{
		ID:               common.NewDocumentID(),
		OwnerID:          ownerID,
		Filename:         storedName,
		OriginalFilename: originalFilename,
		FilePath:         uploadPath,
		FileType:         strings.TrimPrefix(ext, "."),
		FileSize:         int64(len(content)),
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("owner_id", ownerID).
		Str("filename", originalFilename).
		Int64("size", doc.FileSize).
		Msg("Starting document ingestion")

	rawText, pages, err := s.extractor.Extract(ctx, uploadPath, doc.FileType)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}

	text := normalize.Normalize(rawText)
	doc.TextLength = len([]rune(text))
	doc.ContentPreview = preview(text, previewLength)

	if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	// Media extraction is independent of the text pipeline. A total
	// failure here degrades the document to text-only rather than
	// failing ingestion.
	mediaItems := s.extractMedia(ctx, doc, pages)

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s has no extractable text", models.ErrEmptyContent, doc.ID)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	ix, err := vectorindex.Build(vectors)
	if err != nil {
		return nil, err
	}

	indexPath := filepath.Join(s.config.Uploads.IndexDir, ownerID, doc.ID+".index")
	if err := s.indexStore.Persist(ix, chunks, indexPath); err != nil {
		return nil, err
	}

	if err := s.saveChunks(doc, chunks, mediaItems); err != nil {
		return nil, err
	}

	// Commit point: the document only becomes searchable here.
	doc.ChunkCount = len(chunks)
	doc.IndexPath = indexPath
	if err := s.storage.DocumentStorage().UpdateDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to commit document index: %w", err)
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Int("chunks", doc.ChunkCount).
		Int("media_items", len(mediaItems)).
		Msg("Document ingestion completed")

	return doc, nil
}

// List returns the owner's documents in stable enumeration order.
func (s *Service) List(ownerID string) ([]*models.Document, error) {
	return s.storage.DocumentStorage().ListDocumentsByOwner(ownerID)
}

// Get returns a document after checking ownership.
func (s *Service) Get(id, ownerID string) (*models.Document, error) {
	doc, err := s.storage.DocumentStorage().GetDocument(id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: document %s does not belong to %s", models.ErrUnauthorized, id, ownerID)
	}
	return doc, nil
}

// Delete removes a document and everything derived from it: chunk and
// media rows, index artifacts, the upload file, and media binaries.
// Missing files are tolerated so a partially ingested document can still
// be deleted.
func (s *Service) Delete(id, ownerID string) error {
	doc, err := s.Get(id, ownerID)
	if err != nil {
		return err
	}

	mediaItems, err := s.storage.MediaStorage().GetMediaByDocument(id)
	if err != nil {
		return err
	}

	if err := s.storage.ChunkStorage().DeleteChunksByDocument(id); err != nil {
		return err
	}
	if err := s.storage.MediaStorage().DeleteMediaByDocument(id); err != nil {
		return err
	}
	if err := s.storage.DocumentStorage().DeleteDocument(id); err != nil {
		return err
	}

	if doc.IndexPath != "" {
		s.removeFile(doc.IndexPath)
		s.removeFile(vectorindex.ChunksPath(doc.IndexPath))
	}
	s.removeFile(doc.FilePath)
	for _, item := range mediaItems {
		if item.Image != nil {
			s.removeFile(item.Image.Path)
		}
	}

	s.logger.Info().
		Str("document_id", id).
		Str("owner_id", ownerID).
		Msg("Document deleted")

	return nil
}

// extractMedia runs media extraction and persists the resulting rows.
// Failures are logged and swallowed.
func (s *Service) extractMedia(ctx context.Context, doc *models.Document, pages []models.PageText) []*models.MediaItem {
	items, err := s.mediaExtr.Extract(ctx, doc, pages)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Media extraction failed, continuing without media")
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.storage.MediaStorage().SaveMediaItems(items); err != nil {
		s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to save media items, continuing without media")
		return nil
	}
	return items
}

// saveChunks builds chunk rows with media references from the configured
// linking policy and bulk-inserts them.
func (s *Service) saveChunks(doc *models.Document, texts []string, mediaItems []*models.MediaItem) error {
	now := time.Now()
	rows := make([]*models.Chunk, len(texts))
	for i, text := range texts {
		rows[i] = &models.Chunk{
			DocumentID: doc.ID,
			Ordinal:    i,
			Text:       text,
			CreatedAt:  now,
		}
	}

	refs := s.linker.Link(rows, mediaItems)
	for i := range rows {
		rows[i].MediaRefs = refs[i]
	}

	if err := s.storage.ChunkStorage().SaveChunks(rows); err != nil {
		return fmt.Errorf("failed to save chunks: %w", err)
	}
	return nil
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.Uploads.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *Service) removeFile(path string) {
	if path == "" {
		return
	}
	if err := s.files.Remove(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove file")
	}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

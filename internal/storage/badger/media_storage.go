package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// MediaStorage implements the MediaStorage interface for Badger
type MediaStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMediaStorage creates a new MediaStorage instance
func NewMediaStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MediaStorage {
	return &MediaStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MediaStorage) SaveMediaItems(items []*models.MediaItem) error {
	now := time.Now()
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("media item ID is required")
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if err := s.db.Store().Upsert(item.ID, item); err != nil {
			return fmt.Errorf("failed to save media item %s: %w", item.ID, err)
		}
	}
	return nil
}

func (s *MediaStorage) GetMediaItem(id string) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: media item %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}
	return &item, nil
}

// GetMediaByDocument returns a document's media ordered by page then
// creation, giving the "first N" link policy a stable notion of first.
func (s *MediaStorage) GetMediaByDocument(documentID string) ([]*models.MediaItem, error) {
	var items []models.MediaItem
	err := s.db.Store().Find(&items, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return nil, fmt.Errorf("failed to get media items: %w", err)
	}

	sort.Slice(items, func(a, b int) bool {
		if items[a].PageNumber != items[b].PageNumber {
			return items[a].PageNumber < items[b].PageNumber
		}
		return items[a].ID < items[b].ID
	})

	result := make([]*models.MediaItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

func (s *MediaStorage) DeleteMediaByDocument(documentID string) error {
	err := s.db.Store().DeleteMatching(&models.MediaItem{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return fmt.Errorf("failed to delete media for document %s: %w", documentID, err)
	}
	return nil
}

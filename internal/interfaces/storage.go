package interfaces

import "github.com/docuchat/docuchat/internal/models"

// DocumentStorage persists document metadata rows.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocumentsByOwner(ownerID string) ([]*models.Document, error)
	UpdateDocument(doc *models.Document) error
	DeleteDocument(id string) error
}

// ChunkStorage persists chunk rows. Chunks are bulk-inserted once per
// ingestion and only ever deleted together with their document.
type ChunkStorage interface {
	SaveChunks(chunks []*models.Chunk) error
	GetChunksByDocument(documentID string) ([]*models.Chunk, error)
	DeleteChunksByDocument(documentID string) error
}

// MediaStorage persists media item rows.
type MediaStorage interface {
	SaveMediaItems(items []*models.MediaItem) error
	GetMediaItem(id string) (*models.MediaItem, error)
	GetMediaByDocument(documentID string) ([]*models.MediaItem, error)
	DeleteMediaByDocument(documentID string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	DocumentStorage() DocumentStorage
	ChunkStorage() ChunkStorage
	MediaStorage() MediaStorage
	Close() error
}

// FileStorage abstracts byte-level file persistence, used for upload
// files, index artifact pairs, and raw media binaries.
type FileStorage interface {
	WriteFile(path string, data []byte) error
	ReadFile(path string) ([]byte, error)
	MkdirAll(path string) error
	Remove(path string) error
	Exists(path string) bool
}

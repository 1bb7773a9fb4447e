package models

import "time"

// Document represents an uploaded file owned by a single user. ChunkCount
// and IndexPath start empty and are set only after the full ingestion
// pipeline has persisted both index artifacts; a document with an empty
// IndexPath has no searchable index yet.
type Document struct {
	// Identity
	ID      string `json:"id"`       // doc_{uuid}
	OwnerID string `json:"owner_id"` // owning user, 1 owner : many documents

	// Upload metadata
	Filename         string `json:"filename"`          // stored unique filename
	OriginalFilename string `json:"original_filename"` // name as uploaded
	FilePath         string `json:"file_path"`
	FileType         string `json:"file_type"` // extension without the dot, e.g. "pdf"
	FileSize         int64  `json:"file_size"`

	// Extraction results
	ContentPreview string `json:"content_preview"` // first 500 chars of normalized text
	TextLength     int    `json:"text_length"`     // length of normalized text

	// Index commit point. Set together, strictly after both artifacts are
	// fully persisted.
	ChunkCount int    `json:"chunk_count"`
	IndexPath  string `json:"index_path"` // path to the binary index artifact

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Indexed reports whether the document has a committed, searchable index.
func (d *Document) Indexed() bool {
	return d.IndexPath != "" && d.ChunkCount > 0
}

// Chunk is a bounded contiguous span of a document's normalized text, the
// atomic unit indexed and retrieved. Chunks are created in bulk during
// ingestion and are immutable thereafter.
type Chunk struct {
	ID         string `json:"id"` // {document_id}:{ordinal}
	DocumentID string `json:"document_id"`

	// Ordinal is the zero-based position of the chunk within its document.
	// It is dense, unique per document, and doubles as the index key.
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`

	// MediaRefs holds up to MaxMediaRefs media item IDs attached by the
	// configured linking policy. Heuristic only, not guaranteed relevant.
	MediaRefs []string `json:"media_refs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MaxMediaRefs is the maximum number of media references a chunk carries.
const MaxMediaRefs = 3

// PageText is the extracted text of a single source page, used to derive
// the associated text of media items found on that page.
type PageText struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

package models

import (
	"fmt"
	"time"
)

// MediaType identifies the variant of a media item.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeTable MediaType = "table"
)

// ImageData holds the image variant of a media item. The binary lives in
// file storage at Path; Format is the image format (png, jpeg, ...).
type ImageData struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// TableData holds the table variant of a media item.
type TableData struct {
	CSV  string `json:"csv"`
	HTML string `json:"html"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// MediaItem is a tagged variant: exactly one of Image or Table is set.
// Items belong to exactly one document, are created during media extraction
// and immutable thereafter, and are destroyed with the owning document.
type MediaItem struct {
	ID         string `json:"id"` // media_{uuid}
	DocumentID string `json:"document_id"`

	PageNumber     int    `json:"page_number"` // 1-based source page
	Description    string `json:"description"`
	AssociatedText string `json:"associated_text"`

	Image *ImageData `json:"image,omitempty"`
	Table *TableData `json:"table,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Type returns the variant of the media item.
func (m *MediaItem) Type() MediaType {
	if m.Table != nil {
		return MediaTypeTable
	}
	return MediaTypeImage
}

// Validate checks the tagged-variant invariant: exactly one of the Image
// and Table fields is set.
func (m *MediaItem) Validate() error {
	if (m.Image == nil) == (m.Table == nil) {
		return fmt.Errorf("%w: media item %s must have exactly one of image or table set", ErrValidation, m.ID)
	}
	return nil
}

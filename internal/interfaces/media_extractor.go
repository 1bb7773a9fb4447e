// -----------------------------------------------------------------------
// Media Extractor Interface - Extract images and tables from documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/docuchat/docuchat/internal/models"
)

// MediaExtractor produces image and table records for a document.
//
// Per-item failures are tolerated (the item is skipped); a total
// extraction failure is reported as an error but is non-fatal to the rest
// of ingestion. Sources without extractable media return an empty slice.
type MediaExtractor interface {
	Extract(ctx context.Context, doc *models.Document, pages []models.PageText) ([]*models.MediaItem, error)
}

// TextExtractor extracts the raw text of an uploaded file. Page contents
// are returned when the source format has pages (PDF); otherwise the
// slice is empty.
type TextExtractor interface {
	Extract(ctx context.Context, path string, fileType string) (string, []models.PageText, error)
}

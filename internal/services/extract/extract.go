// -----------------------------------------------------------------------
// Text Extraction Service - Extract raw text from uploaded documents
// Dispatches on file type: PDF (pdfcpu), Markdown (goldmark), plain text
// -----------------------------------------------------------------------

package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// Service extracts text from uploaded files by format.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new text extraction service.
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Extract returns the raw text of the file at path. fileType is the
// lowercase extension without the dot ("pdf", "txt", "md"). Page contents
// are only populated for PDFs.
func (s *Service) Extract(ctx context.Context, path string, fileType string) (string, []models.PageText, error) {
	switch strings.ToLower(fileType) {
	case "pdf":
		return s.extractPDF(ctx, path)

	case "md":
		text, err := s.extractMarkdown(path)
		if err != nil {
			return "", nil, err
		}
		return text, nil, nil

	case "txt":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("%w: failed to read text file: %v", models.ErrExtraction, err)
		}
		return string(content), nil, nil

	default:
		return "", nil, fmt.Errorf("%w: unsupported file type: %s", models.ErrValidation, fileType)
	}
}

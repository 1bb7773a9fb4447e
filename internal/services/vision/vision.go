// -----------------------------------------------------------------------
// Vision Media Service - Extract images and tables from PDF documents
// Images come from pdfcpu extraction, descriptions and table recovery
// from the multimodal model
// -----------------------------------------------------------------------

package vision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// associatedTextLimit caps how much page text is carried on a media item.
const associatedTextLimit = 500

// Service extracts media from uploaded documents. Only PDFs carry
// extractable media; other formats yield nothing.
type Service struct {
	vision   interfaces.VisionService
	files    interfaces.FileStorage
	mediaDir string
	logger   arbor.ILogger
}

var _ interfaces.MediaExtractor = (*Service)(nil)

// NewService creates a new media extraction service.
func NewService(vision interfaces.VisionService, files interfaces.FileStorage, cfg *common.UploadConfig, logger arbor.ILogger) *Service {
	return &Service{
		vision:   vision,
		files:    files,
		mediaDir: cfg.MediaDir,
		logger:   logger,
	}
}

// Extract returns image and table media items for the document. Failures
// on individual items are logged and skipped; the image and table passes
// fail independently of each other.
func (s *Service) Extract(ctx context.Context, doc *models.Document, pages []models.PageText) ([]*models.MediaItem, error) {
	if doc.FileType != "pdf" {
		return nil, nil
	}

	var items []*models.MediaItem

	images, err := s.extractImages(ctx, doc, pages)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Image extraction failed")
	} else {
		items = append(items, images...)
	}

	tables, err := s.extractTables(ctx, doc, pages)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Table recovery failed")
	} else {
		items = append(items, tables...)
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Int("media_items", len(items)).
		Msg("Media extraction completed")

	return items, nil
}

// extractImages pulls embedded images out of the PDF with pdfcpu, copies
// each binary into the media directory, and asks the vision model for a
// description. An item whose description call fails is skipped.
func (s *Service) extractImages(ctx context.Context, doc *models.Document, pages []models.PageText) ([]*models.MediaItem, error) {
	outDir, err := os.MkdirTemp("", "docuchat-img-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(doc.FilePath, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}

	var items []*models.MediaItem
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Skipping unreadable image")
			continue
		}

		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Name())), ".")
		pageNum := pageNumberFromFilename(file.Name())

		description, err := s.vision.DescribeImage(ctx, data, mimeTypeForFormat(format))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Skipping image, description failed")
			continue
		}

		id := common.NewMediaID()
		storedPath := filepath.Join(s.mediaDir, doc.ID, id+"."+format)
		if err := s.files.WriteFile(storedPath, data); err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Skipping image, storage write failed")
			continue
		}

		items = append(items, &models.MediaItem{
			ID:             id,
			DocumentID:     doc.ID,
			PageNumber:     pageNum,
			Description:    description,
			AssociatedText: truncateRunes(pageText(pages, pageNum), associatedTextLimit),
			Image: &models.ImageData{
				Path:   storedPath,
				Format: format,
			},
			CreatedAt: time.Now(),
		})
	}

	return items, nil
}

// extractTables sends the whole PDF to the vision model and records each
// recovered table. The table's CSV doubles as its associated text so the
// relevance scorer can match on cell contents.
func (s *Service) extractTables(ctx context.Context, doc *models.Document, pages []models.PageText) ([]*models.MediaItem, error) {
	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	tables, err := s.vision.RecoverTables(ctx, data, "application/pdf")
	if err != nil {
		return nil, err
	}

	items := make([]*models.MediaItem, 0, len(tables))
	for _, table := range tables {
		if table.CSV == "" {
			continue
		}
		items = append(items, &models.MediaItem{
			ID:             common.NewMediaID(),
			DocumentID:     doc.ID,
			PageNumber:     table.PageNumber,
			Description:    fmt.Sprintf("Table with %d rows and %d columns on page %d", table.Rows, table.Cols, table.PageNumber),
			AssociatedText: truncateRunes(table.CSV, associatedTextLimit),
			Table: &models.TableData{
				CSV:  table.CSV,
				HTML: table.HTML,
				Rows: table.Rows,
				Cols: table.Cols,
			},
			CreatedAt: time.Now(),
		})
	}

	return items, nil
}

// pageNumberFromFilename parses the 1-based page number out of pdfcpu's
// extracted image filenames (e.g. "report_1_Im0.png"). Returns 0 when the
// page is unknown.
func pageNumberFromFilename(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	for i := len(parts) - 2; i >= 0; i-- {
		var pageNum int
		if _, err := fmt.Sscanf(parts[i], "%d", &pageNum); err == nil && pageNum > 0 {
			return pageNum
		}
	}
	return 0
}

func pageText(pages []models.PageText, pageNum int) string {
	for _, page := range pages {
		if page.Number == pageNum {
			return page.Text
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func mimeTypeForFormat(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

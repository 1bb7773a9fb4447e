package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docuchat/docuchat/internal/models"
)

// extractPDF extracts text from a PDF file page by page.
//
// pdfcpu has no direct text extraction API, so page content streams are
// extracted to a temp directory and read back in page order.
func (s *Service) extractPDF(ctx context.Context, path string) (string, []models.PageText, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to read PDF: %v", models.ErrExtraction, err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp("", "docuchat-pdf-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to create temp dir: %v", models.ErrExtraction, err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", nil, fmt.Errorf("%w: failed to extract PDF content: %v", models.ErrExtraction, err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	pages := make([]models.PageText, 0, pageCount)
	var fullText strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := pageTexts[pageNum]
		pages = append(pages, models.PageText{
			Number: pageNum,
			Text:   text,
		})
		if text != "" {
			if fullText.Len() > 0 {
				fullText.WriteString("\n\n")
			}
			fullText.WriteString(text)
		}
	}

	s.logger.Debug().
		Str("path", path).
		Int("pages", pageCount).
		Int("text_length", fullText.Len()).
		Msg("Extracted PDF text")

	return fullText.String(), pages, nil
}

package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTemp(t, "notes.txt", "plain text body")

	text, pages, err := service.Extract(context.Background(), path, "txt")
	require.NoError(t, err)
	assert.Equal(t, "plain text body", text)
	assert.Nil(t, pages)
}

func TestExtractMarkdownStripsMarkup(t *testing.T) {
	service := NewService(arbor.NewLogger())
	source := `# Quarterly Report

Revenue grew **12%** compared to [last year](https://example.com).

- First item
- Second item
`
	path := writeTemp(t, "report.md", source)

	text, pages, err := service.Extract(context.Background(), path, "md")
	require.NoError(t, err)
	assert.Nil(t, pages)

	assert.Contains(t, text, "Quarterly Report")
	assert.Contains(t, text, "Revenue grew 12% compared to last year.")
	assert.Contains(t, text, "First item")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
}

func TestExtractMarkdownKeepsCodeBlocks(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTemp(t, "howto.md", "Run this:\n\n```\ndocuchat list\n```\n")

	text, _, err := service.Extract(context.Background(), path, "md")
	require.NoError(t, err)
	assert.Contains(t, text, "docuchat list")
}

func TestExtractUnsupportedType(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTemp(t, "archive.zip", "binary")

	_, _, err := service.Extract(context.Background(), path, "zip")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestExtractMissingFile(t *testing.T) {
	service := NewService(arbor.NewLogger())

	_, _, err := service.Extract(context.Background(), "/nonexistent/file.txt", "txt")
	assert.ErrorIs(t, err, models.ErrExtraction)
}

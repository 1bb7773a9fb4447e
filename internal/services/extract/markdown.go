package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docuchat/docuchat/internal/models"
)

// extractMarkdown parses the file with goldmark and collects the plain
// text of every text node, so markup syntax never leaks into chunks.
// Block boundaries become newlines.
func (s *Service) extractMarkdown(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read markdown file: %v", models.ErrExtraction, err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var builder strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && builder.Len() > 0 {
				builder.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteString(" ")
			}
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				builder.Write(seg.Value(source))
			}
		case *ast.AutoLink:
			builder.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to walk markdown AST: %v", models.ErrExtraction, err)
	}

	s.logger.Debug().
		Str("path", path).
		Int("text_length", builder.Len()).
		Msg("Extracted markdown text")

	return builder.String(), nil
}

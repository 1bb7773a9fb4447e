// Package normalize cleans raw extracted text into a canonical string.
//
// Extraction output (PDF text in particular) arrives with layout
// artifacts: hard-wrapped lines, trailing spaces, tab runs, non-breaking
// space variants. Normalization deliberately favors continuous prose over
// layout fidelity: wrapped lines are joined into paragraphs and only a
// single newline survives between paragraphs.
package normalize

import (
	"regexp"
	"strings"
)

var (
	spaceRuns      = regexp.MustCompile(` {2,}`)
	blankLines     = regexp.MustCompile(`(?:\n[ \t]*){2,}`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
	wrappedLine    = regexp.MustCompile(`\n[^\S\n]+`)
	tabRuns        = regexp.MustCompile(`\t+`)
	oddSpaces      = regexp.MustCompile(`[\x{00a0}\x{2000}-\x{200a}\x{202f}\x{205f}\x{3000}]+`)
	horizontalRuns = regexp.MustCompile(`[^\S\n]{2,}`)
)

// Normalize applies the cleanup rules in order and trims the result.
// It is idempotent: Normalize(Normalize(t)) == Normalize(t). Empty input
// yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = stripControls(text)

	// Unicode space variants become ordinary spaces up front: Go's regexp
	// \s class is ASCII-only, so every later rule would miss them.
	text = oddSpaces.ReplaceAllString(text, " ")

	// Collapse runs of plain spaces first so later rules see at most one
	// space between words.
	text = spaceRuns.ReplaceAllString(text, " ")

	// Multiple blank lines become a single paragraph newline.
	text = blankLines.ReplaceAllString(text, "\n")

	text = trailingSpaces.ReplaceAllString(text, "\n")

	// A newline followed by leading whitespace is a wrapped line: join it
	// into the paragraph with a single space.
	text = wrappedLine.ReplaceAllString(text, " ")

	text = tabRuns.ReplaceAllString(text, " ")

	// Any remaining horizontal whitespace run between two characters
	// collapses to one space. Paragraph newlines survive.
	text = horizontalRuns.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripControls converts CR/CRLF to LF and drops other control characters
// that PDF extraction leaves behind. Tabs are kept for the tab rule.
func stripControls(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

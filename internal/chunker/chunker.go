// Package chunker splits normalized text into overlapping chunks, the
// unit of embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/docuchat/docuchat/internal/normalize"
)

const (
	DefaultChunkSize = 500 // characters per chunk
	DefaultOverlap   = 50  // characters carried over from the previous chunk
)

// Chunker is a pure function of its input: the same text always produces
// the same chunk sequence.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker. Non-positive size or negative overlap fall back
// to the defaults.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into an ordered sequence of chunk strings. Empty text
// yields an empty sequence; callers must treat that as a fatal no-content
// condition rather than proceeding to embedding.
//
// Sentences are accumulated until appending the next one would exceed the
// chunk size, then overlap is applied as a second pass. A single sentence
// longer than the chunk size is never split further, so chunks may exceed
// the configured size in that case.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chunks := c.accumulate(splitSentences(text))

	// Pathological inputs with no sentence punctuation (unbroken technical
	// text) collapse into one oversized chunk; fall back to fixed-width
	// windows in that case.
	if len(chunks) == 1 && len([]rune(text)) > 2*c.chunkSize {
		return c.windows(text)
	}

	return c.applyOverlap(chunks)
}

// accumulate packs sentences into chunks of at most chunkSize characters.
func (c *Chunker) accumulate(sentences []string) []string {
	var chunks []string
	var current string

	for _, sentence := range sentences {
		if current == "" {
			current = sentence
			continue
		}
		if len([]rune(current))+1+len([]rune(sentence)) > c.chunkSize {
			chunks = append(chunks, current)
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// applyOverlap prepends the tail of each chunk's predecessor. Chunk 0 is
// unchanged; chunk i>0 gets the last overlap characters of the original
// chunk i-1 (or all of it if shorter), joined with a space.
func (c *Chunker) applyOverlap(chunks []string) []string {
	if c.overlap <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := prev
		if len(prev) > c.overlap {
			tail = prev[len(prev)-c.overlap:]
		}
		out[i] = strings.TrimSpace(string(tail) + " " + chunks[i])
	}
	return out
}

// windows slides a fixed-width window of chunkSize characters with stride
// chunkSize-overlap, cleaning each window and dropping empty results.
func (c *Chunker) windows(text string) []string {
	stride := c.chunkSize - c.overlap
	if stride <= 0 {
		stride = c.chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := normalize.Normalize(string(runes[start:end]))
		if window != "" {
			chunks = append(chunks, window)
		}
	}
	return chunks
}

// splitSentences splits on sentence-terminal punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation ("?!", "...").
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && isWhitespace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

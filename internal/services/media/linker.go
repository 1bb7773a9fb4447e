package media

import (
	"github.com/docuchat/docuchat/internal/models"
)

// Linker decides which media items each chunk references. The result has
// one entry per chunk, holding the media IDs to record on that chunk.
type Linker interface {
	Link(chunks []*models.Chunk, items []*models.MediaItem) [][]string
}

// FirstNLinker links the first N media items of the document to every
// chunk. Crude but cheap: with media association data unavailable at
// chunking time, the leading items (typically from the earliest pages)
// are the best guess.
type FirstNLinker struct {
	N int
}

var _ Linker = (*FirstNLinker)(nil)

func (l *FirstNLinker) Link(chunks []*models.Chunk, items []*models.MediaItem) [][]string {
	n := l.N
	if n > len(items) {
		n = len(items)
	}

	ids := make([]string, 0, n)
	for _, item := range items[:n] {
		ids = append(ids, item.ID)
	}

	refs := make([][]string, len(chunks))
	for i := range chunks {
		refs[i] = append([]string(nil), ids...)
	}
	return refs
}

// NoneLinker records no media references on any chunk.
type NoneLinker struct{}

var _ Linker = (*NoneLinker)(nil)

func (l *NoneLinker) Link(chunks []*models.Chunk, items []*models.MediaItem) [][]string {
	return make([][]string, len(chunks))
}

// NewLinker returns the linker for the configured policy. Unknown
// policies fall back to linking nothing.
func NewLinker(policy string) Linker {
	switch policy {
	case "first":
		return &FirstNLinker{N: models.MaxMediaRefs}
	default:
		return &NoneLinker{}
	}
}

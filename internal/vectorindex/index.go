// Package vectorindex provides a flat (exhaustive) nearest-neighbor index
// over embedding vectors, keyed by chunk ordinal, with on-disk
// persistence of the artifact pair.
//
// Exhaustive squared-Euclidean search is deliberate: correctness and
// simplicity are favored over scale at current document sizes.
package vectorindex

import (
	"fmt"
	"sort"

	"github.com/docuchat/docuchat/internal/models"
)

// Index is an immutable in-memory nearest-neighbor index. The vector at
// position i corresponds to chunk ordinal i.
type Index struct {
	dimension int
	vectors   [][]float32
}

// Hit is one search result: a chunk ordinal and its squared Euclidean
// distance to the query. Lower is more similar.
type Hit struct {
	Ordinal  int
	Distance float64
}

// Build constructs an index from the given vectors. All vectors must
// share one dimension and at least one vector is required.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: cannot build index from zero vectors", models.ErrIndexIO)
	}

	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, fmt.Errorf("%w: zero-dimension vector at ordinal 0", models.ErrIndexIO)
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: vector at ordinal %d has dimension %d, want %d", models.ErrIndexIO, i, len(v), dimension)
		}
	}

	return &Index{dimension: dimension, vectors: vectors}, nil
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Dimension returns the vector dimension.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Search returns the min(k, Len()) nearest vectors to query, ascending by
// distance. Equal distances resolve by ordinal, so results are fully
// deterministic.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Ordinal: i, Distance: squaredDistance(query, v)}
	}

	// Stable sort on a slice built in ordinal order keeps ties ordered by
	// ordinal.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

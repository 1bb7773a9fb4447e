// -----------------------------------------------------------------------
// Retrieval Engine - Per-document index search merged into a global
// nearest-chunk ranking
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"sort"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// Status classifies a retrieval outcome. Both non-OK statuses are normal
// results, not errors.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoDocuments Status = "no_documents"
	StatusNoResults   Status = "no_results"
)

// Hit is one retrieved chunk with its provenance.
type Hit struct {
	Chunk    string
	Ordinal  int
	Distance float64
	Document *models.Document
}

// Result is the outcome of a retrieval pass.
type Result struct {
	Status Status
	Hits   []Hit
}

// Engine searches every indexed document the caller owns and merges the
// per-document nearest chunks into a single ranking.
type Engine struct {
	store  *vectorindex.Store
	logger arbor.ILogger
}

// NewEngine creates a new retrieval engine.
func NewEngine(store *vectorindex.Store, logger arbor.ILogger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// Retrieve searches the indexes of docs for the k nearest chunks to
// queryVector. Documents without a usable index are skipped with a
// warning rather than failing the whole query. Ties on distance keep the
// caller's document order, then chunk ordinal.
func (e *Engine) Retrieve(ctx context.Context, queryVector []float32, docs []*models.Document, k int) (*Result, error) {
	if len(docs) == 0 {
		return &Result{Status: StatusNoDocuments}, nil
	}
	if k <= 0 {
		k = 1
	}

	indexed := make([]*models.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Indexed() {
			indexed = append(indexed, doc)
		}
	}
	if len(indexed) == 0 {
		return &Result{Status: StatusNoResults}, nil
	}

	// Per-document result slots keep the caller's enumeration order so
	// the distance tie-break below is deterministic.
	perDoc := make([][]Hit, len(indexed))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(indexed))
	for i, doc := range indexed {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			ix, chunks, err := e.store.Load(doc.IndexPath)
			if err != nil {
				e.logger.Warn().Err(err).
					Str("document_id", doc.ID).
					Str("index_path", doc.IndexPath).
					Msg("Skipping document with unusable index")
				return nil
			}

			found, err := ix.Search(queryVector, k)
			if err != nil {
				e.logger.Warn().Err(err).
					Str("document_id", doc.ID).
					Msg("Skipping document, search failed")
				return nil
			}

			hits := make([]Hit, 0, len(found))
			for _, hit := range found {
				hits = append(hits, Hit{
					Chunk:    chunks[hit.Ordinal],
					Ordinal:  hit.Ordinal,
					Distance: hit.Distance,
					Document: doc,
				})
			}
			perDoc[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []Hit
	for _, hits := range perDoc {
		merged = append(merged, hits...)
	}
	if len(merged) == 0 {
		return &Result{Status: StatusNoResults}, nil
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Distance < merged[b].Distance
	})
	if len(merged) > k {
		merged = merged[:k]
	}

	e.logger.Debug().
		Int("documents_searched", len(indexed)).
		Int("hits", len(merged)).
		Msg("Retrieval completed")

	return &Result{Status: StatusOK, Hits: merged}, nil
}

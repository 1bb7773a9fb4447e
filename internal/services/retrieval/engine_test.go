package retrieval

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/storage/filesystem"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

func newTestEngine(t *testing.T) (*Engine, *vectorindex.Store, string) {
	t.Helper()
	logger := arbor.NewLogger()
	store := vectorindex.NewStore(filesystem.NewStorage(logger), logger)
	return NewEngine(store, logger), store, t.TempDir()
}

func indexDoc(t *testing.T, store *vectorindex.Store, dir, id string, vectors [][]float32, chunks []string) *models.Document {
	t.Helper()
	ix, err := vectorindex.Build(vectors)
	require.NoError(t, err)

	pathBase := filepath.Join(dir, id+".index")
	require.NoError(t, store.Persist(ix, chunks, pathBase))

	return &models.Document{
		ID:         id,
		OwnerID:    "alice",
		ChunkCount: len(chunks),
		IndexPath:  pathBase,
	}
}

func TestRetrieveNoDocuments(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.Retrieve(context.Background(), []float32{0}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusNoDocuments, result.Status)
	assert.Empty(t, result.Hits)
}

func TestRetrieveOnlyUnindexedDocuments(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	docs := []*models.Document{{ID: "doc_pending", OwnerID: "alice"}}
	result, err := engine.Retrieve(context.Background(), []float32{0}, docs, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusNoResults, result.Status)
}

func TestRetrieveMergesAcrossDocuments(t *testing.T) {
	engine, store, dir := newTestEngine(t)

	// Distances to the origin query: docA holds 1 and 9, docB holds 4.
	docA := indexDoc(t, store, dir, "doc_a", [][]float32{{1}, {3}}, []string{"a0", "a1"})
	docB := indexDoc(t, store, dir, "doc_b", [][]float32{{2}}, []string{"b0"})

	result, err := engine.Retrieve(context.Background(), []float32{0}, []*models.Document{docA, docB}, 2)
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	require.Len(t, result.Hits, 2)

	assert.Equal(t, "a0", result.Hits[0].Chunk)
	assert.Equal(t, docA.ID, result.Hits[0].Document.ID)
	assert.Equal(t, 1.0, result.Hits[0].Distance)

	assert.Equal(t, "b0", result.Hits[1].Chunk)
	assert.Equal(t, docB.ID, result.Hits[1].Document.ID)
	assert.Equal(t, 4.0, result.Hits[1].Distance)
}

func TestRetrieveTiesKeepDocumentOrder(t *testing.T) {
	engine, store, dir := newTestEngine(t)

	// Same distance everywhere: caller document order, then ordinal.
	docA := indexDoc(t, store, dir, "doc_a", [][]float32{{1}, {1}}, []string{"a0", "a1"})
	docB := indexDoc(t, store, dir, "doc_b", [][]float32{{1}}, []string{"b0"})

	result, err := engine.Retrieve(context.Background(), []float32{0}, []*models.Document{docA, docB}, 3)
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "a0", result.Hits[0].Chunk)
	assert.Equal(t, "a1", result.Hits[1].Chunk)
	assert.Equal(t, "b0", result.Hits[2].Chunk)
}

func TestRetrieveSkipsUnusableIndex(t *testing.T) {
	engine, store, dir := newTestEngine(t)

	good := indexDoc(t, store, dir, "doc_good", [][]float32{{1}}, []string{"g0"})
	broken := &models.Document{
		ID:         "doc_broken",
		OwnerID:    "alice",
		ChunkCount: 5,
		IndexPath:  filepath.Join(dir, "missing.index"),
	}

	result, err := engine.Retrieve(context.Background(), []float32{0}, []*models.Document{broken, good}, 3)
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "g0", result.Hits[0].Chunk)
}

func TestRetrieveAllIndexesUnusable(t *testing.T) {
	engine, _, dir := newTestEngine(t)

	broken := &models.Document{
		ID:         "doc_broken",
		OwnerID:    "alice",
		ChunkCount: 5,
		IndexPath:  filepath.Join(dir, "missing.index"),
	}

	result, err := engine.Retrieve(context.Background(), []float32{0}, []*models.Document{broken}, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusNoResults, result.Status)
}

package vectorindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/storage/filesystem"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	logger := arbor.NewLogger()
	return NewStore(filesystem.NewStorage(logger), logger), t.TempDir()
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	pathBase := filepath.Join(dir, "doc_abc.index")

	vectors := [][]float32{
		{1.5, -2.25, 0},
		{0.125, 3, -1},
	}
	chunks := []string{"first chunk text", "second chunk text"}

	ix, err := Build(vectors)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ix, chunks, pathBase))

	loaded, loadedChunks, err := store.Load(pathBase)
	require.NoError(t, err)
	assert.Equal(t, chunks, loadedChunks)
	assert.Equal(t, 3, loaded.Dimension())
	assert.Equal(t, 2, loaded.Len())

	// Ordinal correspondence survives the round trip.
	hits, err := loaded.Search([]float32{1.5, -2.25, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, hits[0].Ordinal)
	assert.Equal(t, 0.0, hits[0].Distance)
}

func TestChunksPathDerivation(t *testing.T) {
	assert.Equal(t, "/data/doc_1_chunks.txt", ChunksPath("/data/doc_1.index"))
}

func TestPersistRejectsCountMismatch(t *testing.T) {
	store, dir := newTestStore(t)
	ix, err := Build([][]float32{{1}, {2}})
	require.NoError(t, err)

	err = store.Persist(ix, []string{"only one"}, filepath.Join(dir, "d.index"))
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

func TestPersistRejectsDelimiterCollision(t *testing.T) {
	store, dir := newTestStore(t)
	ix, err := Build([][]float32{{1}})
	require.NoError(t, err)

	err = store.Persist(ix, []string{"bad" + ChunkDelimiter + "chunk"}, filepath.Join(dir, "d.index"))
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

func TestPersistRejectsEmptyChunk(t *testing.T) {
	store, dir := newTestStore(t)
	ix, err := Build([][]float32{{1}})
	require.NoError(t, err)

	err = store.Persist(ix, []string{""}, filepath.Join(dir, "d.index"))
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

func TestLoadMissingArtifact(t *testing.T) {
	store, dir := newTestStore(t)

	_, _, err := store.Load(filepath.Join(dir, "nope.index"))
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

func TestLoadDetectsChunkCountCorruption(t *testing.T) {
	store, dir := newTestStore(t)
	pathBase := filepath.Join(dir, "doc.index")

	ix, err := Build([][]float32{{1}, {2}})
	require.NoError(t, err)
	require.NoError(t, store.Persist(ix, []string{"one", "two"}, pathBase))

	// Drop a chunk from the sidecar so the counts disagree.
	require.NoError(t, os.WriteFile(ChunksPath(pathBase), []byte("one"), 0644))

	_, _, err = store.Load(pathBase)
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

func TestLoadDetectsTruncatedIndex(t *testing.T) {
	store, dir := newTestStore(t)
	pathBase := filepath.Join(dir, "doc.index")

	ix, err := Build([][]float32{{1, 2}})
	require.NoError(t, err)
	require.NoError(t, store.Persist(ix, []string{"one"}, pathBase))

	data, err := os.ReadFile(pathBase)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pathBase, data[:len(data)-2], 0644))

	_, _, err = store.Load(pathBase)
	assert.ErrorIs(t, err, models.ErrIndexIO)
}

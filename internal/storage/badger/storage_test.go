package badger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestDocumentRoundTrip(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	doc := &models.Document{
		ID:               "doc_1",
		OwnerID:          "alice",
		OriginalFilename: "report.pdf",
		FileType:         "pdf",
		FileSize:         1024,
	}
	require.NoError(t, storage.SaveDocument(doc))
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := storage.GetDocument("doc_1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.OriginalFilename)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestDocumentSaveRequiresIdentity(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	assert.Error(t, storage.SaveDocument(&models.Document{OwnerID: "alice"}))
	assert.Error(t, storage.SaveDocument(&models.Document{ID: "doc_1"}))
}

func TestGetDocumentNotFound(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	_, err := storage.GetDocument("doc_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListDocumentsByOwnerIsolation(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	require.NoError(t, storage.SaveDocument(&models.Document{ID: "doc_a", OwnerID: "alice"}))
	require.NoError(t, storage.SaveDocument(&models.Document{ID: "doc_b", OwnerID: "alice"}))
	require.NoError(t, storage.SaveDocument(&models.Document{ID: "doc_c", OwnerID: "bob"}))

	docs, err := storage.ListDocumentsByOwner("alice")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "alice", doc.OwnerID)
	}

	empty, err := storage.ListDocumentsByOwner("carol")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateDocumentCommitsIndexFields(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	doc := &models.Document{ID: "doc_1", OwnerID: "alice"}
	require.NoError(t, storage.SaveDocument(doc))

	doc.ChunkCount = 7
	doc.IndexPath = "/indexes/alice/doc_1.index"
	require.NoError(t, storage.UpdateDocument(doc))

	got, err := storage.GetDocument("doc_1")
	require.NoError(t, err)
	assert.True(t, got.Indexed())
	assert.Equal(t, 7, got.ChunkCount)
}

func TestDeleteDocumentTolerated(t *testing.T) {
	storage := newTestManager(t).DocumentStorage()

	require.NoError(t, storage.SaveDocument(&models.Document{ID: "doc_1", OwnerID: "alice"}))
	require.NoError(t, storage.DeleteDocument("doc_1"))

	_, err := storage.GetDocument("doc_1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, storage.DeleteDocument("doc_1"))
}

func TestChunksOrderedByOrdinal(t *testing.T) {
	storage := newTestManager(t).ChunkStorage()

	chunks := []*models.Chunk{
		{DocumentID: "doc_1", Ordinal: 2, Text: "third"},
		{DocumentID: "doc_1", Ordinal: 0, Text: "first"},
		{DocumentID: "doc_1", Ordinal: 1, Text: "second"},
	}
	require.NoError(t, storage.SaveChunks(chunks))

	// IDs are derived from document and ordinal.
	assert.Equal(t, "doc_1:00000", chunks[1].ID)

	got, err := storage.GetChunksByDocument("doc_1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "third", got[2].Text)
}

func TestDeleteChunksByDocumentScoped(t *testing.T) {
	storage := newTestManager(t).ChunkStorage()

	require.NoError(t, storage.SaveChunks([]*models.Chunk{
		{DocumentID: "doc_1", Ordinal: 0, Text: "keep me not"},
		{DocumentID: "doc_2", Ordinal: 0, Text: "survivor"},
	}))

	require.NoError(t, storage.DeleteChunksByDocument("doc_1"))

	gone, err := storage.GetChunksByDocument("doc_1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := storage.GetChunksByDocument("doc_2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestMediaItemsValidatedOnSave(t *testing.T) {
	storage := newTestManager(t).MediaStorage()

	// Neither variant set.
	err := storage.SaveMediaItems([]*models.MediaItem{{ID: "media_1", DocumentID: "doc_1"}})
	assert.ErrorIs(t, err, models.ErrValidation)

	// Both variants set.
	err = storage.SaveMediaItems([]*models.MediaItem{{
		ID:         "media_2",
		DocumentID: "doc_1",
		Image:      &models.ImageData{Path: "/m/a.png", Format: "png"},
		Table:      &models.TableData{CSV: "a,b"},
	}})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMediaByDocumentOrderedByPage(t *testing.T) {
	storage := newTestManager(t).MediaStorage()

	require.NoError(t, storage.SaveMediaItems([]*models.MediaItem{
		{ID: "media_b", DocumentID: "doc_1", PageNumber: 3, Image: &models.ImageData{Path: "/m/b.png", Format: "png"}},
		{ID: "media_a", DocumentID: "doc_1", PageNumber: 1, Table: &models.TableData{CSV: "x,y", Rows: 1, Cols: 2}},
	}))

	got, err := storage.GetMediaByDocument("doc_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "media_a", got[0].ID)
	assert.Equal(t, models.MediaTypeTable, got[0].Type())
	assert.Equal(t, "media_b", got[1].ID)
	assert.Equal(t, models.MediaTypeImage, got[1].Type())
}

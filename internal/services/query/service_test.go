package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/services/answer"
	"github.com/docuchat/docuchat/internal/services/retrieval"
	"github.com/docuchat/docuchat/internal/storage/badger"
	"github.com/docuchat/docuchat/internal/storage/filesystem"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// stubEmbedder maps every query to the origin so distances equal the
// squared norms of the indexed vectors.
type stubEmbedder struct{}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{0, 0}, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }
func (s *stubEmbedder) Dimension() int    { return 2 }

type stubGenerative struct {
	reply string
}

func (s *stubGenerative) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.reply, nil
}

func (s *stubGenerative) Close() error { return nil }

type fixture struct {
	service *Service
	storage interfaces.StorageManager
	store   *vectorindex.Store
	dir     string
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	logger := arbor.NewLogger()
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "db")
	cfg.Uploads.IndexDir = filepath.Join(dir, "indexes")

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { storageManager.Close() })

	files := filesystem.NewStorage(logger)
	store := vectorindex.NewStore(files, logger)
	engine := retrieval.NewEngine(store, logger)
	assembler := answer.NewAssembler(&stubGenerative{reply: reply}, logger)

	return &fixture{
		service: NewService(cfg, storageManager, &stubEmbedder{}, engine, assembler, logger),
		storage: storageManager,
		store:   store,
		dir:     dir,
	}
}

// addIndexedDoc persists a document row plus its index artifacts.
func (f *fixture) addIndexedDoc(t *testing.T, id, owner string, vectors [][]float32, chunks []string) {
	t.Helper()

	ix, err := vectorindex.Build(vectors)
	require.NoError(t, err)

	pathBase := filepath.Join(f.dir, "indexes", owner, id+".index")
	require.NoError(t, f.store.Persist(ix, chunks, pathBase))

	require.NoError(t, f.storage.DocumentStorage().SaveDocument(&models.Document{
		ID:               id,
		OwnerID:          owner,
		OriginalFilename: id + ".txt",
		FileType:         "txt",
		ChunkCount:       len(chunks),
		IndexPath:        pathBase,
	}))
}

func TestAskValidatesRequest(t *testing.T) {
	f := newFixture(t, "answer")

	_, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "hi"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "valid question?", TopK: 99})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.service.Ask(context.Background(), "", &models.QueryRequest{Question: "valid question?"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAskNoDocuments(t *testing.T) {
	f := newFixture(t, "answer")

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "anything at all?"})
	require.NoError(t, err)
	assert.Equal(t, models.MsgNoDocuments, resp.Answer)
	assert.Empty(t, resp.Sources)
}

func TestAskNoUsableIndexes(t *testing.T) {
	f := newFixture(t, "answer")

	// A document that never finished ingestion.
	require.NoError(t, f.storage.DocumentStorage().SaveDocument(&models.Document{
		ID:      "doc_pending",
		OwnerID: "alice",
	}))

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "anything at all?"})
	require.NoError(t, err)
	assert.Equal(t, models.MsgNoRelevantPassages, resp.Answer)
}

func TestAskAnswersFromOwnedDocuments(t *testing.T) {
	f := newFixture(t, "Grounded answer text.")
	f.addIndexedDoc(t, "doc_a", "alice", [][]float32{{1, 0}, {3, 0}}, []string{"near chunk", "far chunk"})
	f.addIndexedDoc(t, "doc_b", "alice", [][]float32{{2, 0}}, []string{"middle chunk"})

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "what does it say?", TopK: 2})
	require.NoError(t, err)

	assert.Equal(t, "Grounded answer text.", resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "near chunk", resp.Sources[0].Chunk)
	assert.Equal(t, "doc_a.txt", resp.Sources[0].Document)
	assert.Equal(t, "middle chunk", resp.Sources[1].Chunk)
	assert.Equal(t, []string{"near chunk", "middle chunk"}, resp.ContextUsed)
}

func TestAskDefaultsTopK(t *testing.T) {
	f := newFixture(t, "answer text here")
	f.addIndexedDoc(t, "doc_a", "alice", [][]float32{{1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}}, []string{"c0", "c1", "c2", "c3", "c4"})

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "what does it say?"})
	require.NoError(t, err)
	assert.Len(t, resp.Sources, common.NewDefaultConfig().Retrieval.TopK)
}

func TestAskIgnoresOtherOwnersDocuments(t *testing.T) {
	f := newFixture(t, "answer text here")
	f.addIndexedDoc(t, "doc_bob", "bob", [][]float32{{1, 0}}, []string{"bob's secret"})

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "what does bob have?"})
	require.NoError(t, err)
	assert.Equal(t, models.MsgNoDocuments, resp.Answer)
}

func TestAskIncludesRelevantMedia(t *testing.T) {
	f := newFixture(t, "answer text here")
	f.addIndexedDoc(t, "doc_a", "alice", [][]float32{{1, 0}}, []string{"revenue discussion"})

	require.NoError(t, f.storage.MediaStorage().SaveMediaItems([]*models.MediaItem{
		{
			ID:          "media_chart",
			DocumentID:  "doc_a",
			PageNumber:  1,
			Description: "revenue growth chart",
			Image:       &models.ImageData{Path: "/m/chart.png", Format: "png"},
		},
		{
			ID:          "media_noise",
			DocumentID:  "doc_a",
			PageNumber:  2,
			Description: "unrelated picture",
			Image:       &models.ImageData{Path: "/m/noise.png", Format: "png"},
		},
	}))

	resp, err := f.service.Ask(context.Background(), "alice", &models.QueryRequest{Question: "show revenue growth"})
	require.NoError(t, err)
	require.Len(t, resp.Media, 1)
	assert.Equal(t, "media_chart", resp.Media[0].Item.ID)
	assert.Greater(t, resp.Media[0].Score, 0.1)
}

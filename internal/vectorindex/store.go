package vectorindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/models"
)

// ChunkDelimiter separates chunk texts inside the persisted chunk
// artifact. The ordinal-th segment of the file is the text of the chunk
// at ordinal.
const ChunkDelimiter = "\n---CHUNK---\n"

const (
	indexMagic   = "DCIX"
	indexVersion = uint32(1)
)

// Store persists and restores index artifact pairs: the binary index at
// pathBase and the delimited chunk texts at a sibling path. Artifacts are
// written once and never updated in place; re-ingestion rebuilds and
// overwrites both.
type Store struct {
	files  interfaces.FileStorage
	logger arbor.ILogger
}

// NewStore creates a new artifact store
func NewStore(files interfaces.FileStorage, logger arbor.ILogger) *Store {
	return &Store{
		files:  files,
		logger: logger,
	}
}

// ChunksPath derives the chunk artifact path from the index path.
func ChunksPath(pathBase string) string {
	return strings.TrimSuffix(pathBase, ".index") + "_chunks.txt"
}

// Persist writes both artifacts. The vector count must equal the chunk
// count, and no chunk may contain the delimiter sequence: the delimited
// format has no escaping, so a colliding chunk is rejected here instead
// of corrupting the file.
func (s *Store) Persist(ix *Index, chunks []string, pathBase string) error {
	if ix.Len() != len(chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunks", models.ErrIndexIO, ix.Len(), len(chunks))
	}
	for i, chunk := range chunks {
		if chunk == "" {
			return fmt.Errorf("%w: empty chunk at ordinal %d", models.ErrIndexIO, i)
		}
		if strings.Contains(chunk, ChunkDelimiter) {
			return fmt.Errorf("%w: chunk at ordinal %d contains the reserved delimiter", models.ErrIndexIO, i)
		}
	}

	encoded, err := encodeIndex(ix)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrIndexIO, err)
	}

	if err := s.files.WriteFile(pathBase, encoded); err != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrIndexIO, pathBase, err)
	}

	chunksPath := ChunksPath(pathBase)
	if err := s.files.WriteFile(chunksPath, []byte(strings.Join(chunks, ChunkDelimiter))); err != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrIndexIO, chunksPath, err)
	}

	s.logger.Debug().
		Str("path", pathBase).
		Int("vectors", ix.Len()).
		Int("dimension", ix.Dimension()).
		Msg("Persisted index artifacts")

	return nil
}

// Load restores the artifact pair, preserving the exact ordinal
// correspondence. A vector/chunk count mismatch is a detectable
// corruption and fails loudly rather than silently mis-indexing.
func (s *Store) Load(pathBase string) (*Index, []string, error) {
	encoded, err := s.files.ReadFile(pathBase)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %v", models.ErrIndexIO, pathBase, err)
	}

	ix, err := decodeIndex(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decoding %s: %v", models.ErrIndexIO, pathBase, err)
	}

	chunksPath := ChunksPath(pathBase)
	raw, err := s.files.ReadFile(chunksPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %v", models.ErrIndexIO, chunksPath, err)
	}

	chunks := strings.Split(string(raw), ChunkDelimiter)
	if len(chunks) != ix.Len() {
		return nil, nil, fmt.Errorf("%w: %s holds %d vectors but %s holds %d chunks", models.ErrIndexIO, pathBase, ix.Len(), chunksPath, len(chunks))
	}

	return ix, chunks, nil
}

// encodeIndex serializes an index: magic, version, dimension, vector
// count, then row-major float32 little-endian values.
func encodeIndex(ix *Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(indexMagic)

	header := []uint32{indexVersion, uint32(ix.dimension), uint32(len(ix.vectors))}
	for _, v := range header {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	for _, vector := range ix.vectors {
		for _, value := range vector {
			if err := binary.Write(&buf, binary.LittleEndian, math.Float32bits(value)); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

func decodeIndex(data []byte) (*Index, error) {
	headerSize := len(indexMagic) + 3*4
	if len(data) < headerSize {
		return nil, fmt.Errorf("artifact truncated: %d bytes", len(data))
	}
	if string(data[:len(indexMagic)]) != indexMagic {
		return nil, fmt.Errorf("bad magic %q", data[:len(indexMagic)])
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != indexVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", version)
	}

	dimension := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if dimension <= 0 || count <= 0 {
		return nil, fmt.Errorf("invalid header: dimension %d, count %d", dimension, count)
	}

	want := headerSize + count*dimension*4
	if len(data) != want {
		return nil, fmt.Errorf("artifact size %d does not match header (want %d)", len(data), want)
	}

	vectors := make([][]float32, count)
	offset := headerSize
	for i := 0; i < count; i++ {
		vector := make([]float32, dimension)
		for j := 0; j < dimension; j++ {
			vector[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4
		}
		vectors[i] = vector
	}

	return &Index{dimension: dimension, vectors: vectors}, nil
}

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/models"
)

func TestFirstNLinker(t *testing.T) {
	chunks := []*models.Chunk{{Ordinal: 0}, {Ordinal: 1}}
	items := []*models.MediaItem{
		imageItem("media_a", "", ""),
		imageItem("media_b", "", ""),
		imageItem("media_c", "", ""),
		imageItem("media_d", "", ""),
	}

	linker := &FirstNLinker{N: 3}
	refs := linker.Link(chunks, items)
	require.Len(t, refs, 2)
	assert.Equal(t, []string{"media_a", "media_b", "media_c"}, refs[0])
	assert.Equal(t, []string{"media_a", "media_b", "media_c"}, refs[1])
}

func TestFirstNLinkerFewerItemsThanN(t *testing.T) {
	chunks := []*models.Chunk{{Ordinal: 0}}
	items := []*models.MediaItem{imageItem("media_a", "", "")}

	refs := (&FirstNLinker{N: 3}).Link(chunks, items)
	require.Len(t, refs, 1)
	assert.Equal(t, []string{"media_a"}, refs[0])
}

func TestNoneLinker(t *testing.T) {
	chunks := []*models.Chunk{{Ordinal: 0}, {Ordinal: 1}}
	items := []*models.MediaItem{imageItem("media_a", "", "")}

	refs := (&NoneLinker{}).Link(chunks, items)
	require.Len(t, refs, 2)
	assert.Empty(t, refs[0])
	assert.Empty(t, refs[1])
}

func TestNewLinkerPolicySelection(t *testing.T) {
	assert.IsType(t, &FirstNLinker{}, NewLinker("first"))
	assert.IsType(t, &NoneLinker{}, NewLinker("none"))
	assert.IsType(t, &NoneLinker{}, NewLinker("bogus"))
}

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type rec struct {
		ID string `json:"id"`
	}

	got, err := ParseJSON[rec]([]byte("  {\"id\":\"CHEBI:1\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, "CHEBI:1", got.ID)

	_, err = ParseJSON[rec]([]byte("   "))
	assert.Error(t, err)

	_, err = ParseJSON[rec]([]byte("{broken"))
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunk(items, 10))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunk(items, 0))
	assert.Nil(t, Chunk([]int{}, 3))

	var total int
	for _, c := range Chunk(items, 3) {
		assert.LessOrEqual(t, len(c), 3)
		total += len(c)
	}
	assert.Equal(t, len(items), total)
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"A:1", "B:2"}, UniqueSorted([]string{"B:2", "", "A:1", "B:2"}))
	assert.Empty(t, UniqueSorted(nil))
}

package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

func TestRecommendCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "recommend")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRecommendCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.recommend.recs = []domain.Recommendation{
		{Key: "b", Title: "Post B"},
		{Key: "c", Title: ""},
	}

	out, err := execute(t, "recommend", "a")

	require.NoError(t, err)
	assert.Contains(t, out, "Related to a")
	assert.Contains(t, out, "[1] Post B")
	assert.Contains(t, out, "[2] c")
}

func TestRecommendCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "recommend", "a")

	require.NoError(t, err)
	assert.Contains(t, out, "No related posts found.")
}

func TestRecommendCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.recommend.recs = []domain.Recommendation{{Key: "b", Title: "Post B"}}

	out, err := execute(t, "recommend", "--json", "a")

	require.NoError(t, err)
	var got []domain.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ts.recommend.recs, got)
}

func TestRecommendCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.recommend.err = domain.ErrNotFound

	_, err := execute(t, "recommend", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

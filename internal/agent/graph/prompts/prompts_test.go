package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRelevanceGrader(t *testing.T) {
	msgs, err := RenderRelevanceGrader(context.Background(), "what is raft?", "raft is a consensus algorithm")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "what is raft?")
	assert.Contains(t, msgs[0].Content, "raft is a consensus algorithm")
	// the JSON output instruction survives formatting
	assert.Contains(t, msgs[0].Content, `"score"`)
}

func TestRenderGroundingGrader(t *testing.T) {
	msgs, err := RenderGroundingGrader(context.Background(), "doc text", "the answer")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "doc text")
	assert.Contains(t, msgs[0].Content, "the answer")
}

func TestRenderUsefulnessGrader(t *testing.T) {
	msgs, err := RenderUsefulnessGrader(context.Background(), "q", "a")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "q")
}

func TestRenderQueryRewriter(t *testing.T) {
	msgs, err := RenderQueryRewriter(context.Background(), "how raft work")
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "how raft work")
}

func TestRenderWebSearchQuery(t *testing.T) {
	msgs, err := RenderWebSearchQuery(context.Background(), "what changed in the latest release?")
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "what changed in the latest release?")
}

func TestVariants(t *testing.T) {
	got := Variants()
	assert.Equal(t, []string{"baseline", "bullets", "detailed", "reasoning"}, got)
}

func TestRenderGeneration(t *testing.T) {
	ctx := context.Background()

	t.Run("every known variant renders", func(t *testing.T) {
		for _, variant := range Variants() {
			msgs, err := RenderGeneration(ctx, variant, "what is raft?", "raft context")
			require.NoError(t, err, "variant %s", variant)
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0].Content, "what is raft?")
			assert.Contains(t, msgs[0].Content, "raft context")
		}
	})

	t.Run("unknown variant falls back to baseline", func(t *testing.T) {
		want, err := RenderGeneration(ctx, DefaultVariant, "q", "c")
		require.NoError(t, err)
		got, err := RenderGeneration(ctx, "no-such-variant", "q", "c")
		require.NoError(t, err)
		assert.Equal(t, want[0].Content, got[0].Content)
	})

	t.Run("variants produce distinct prompts", func(t *testing.T) {
		baseline, err := RenderGeneration(ctx, "baseline", "q", "c")
		require.NoError(t, err)
		bullets, err := RenderGeneration(ctx, "bullets", "q", "c")
		require.NoError(t, err)
		assert.NotEqual(t, baseline[0].Content, bullets[0].Content)
	})
}

package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-rag/server/internal/agent/model"
)

func scores(vals ...model.RelevanceScore) []model.RelevanceScore { return vals }

func TestGenerateOrSearchCondition(t *testing.T) {
	ctx := context.Background()
	cond := NewGenerateOrSearchCondition(0.5)

	tests := []struct {
		name   string
		scores []model.RelevanceScore
		want   string
	}{
		{
			name:   "all relevant routes to generate",
			scores: scores(model.ScoreRelevant, model.ScoreRelevant),
			want:   NodeGenerate,
		},
		{
			name:   "exactly half relevant meets the threshold",
			scores: scores(model.ScoreRelevant, model.ScoreIrrelevant),
			want:   NodeGenerate,
		},
		{
			name:   "minority relevant routes to web search",
			scores: scores(model.ScoreRelevant, model.ScoreIrrelevant, model.ScoreIrrelevant),
			want:   NodeWebSearch,
		},
		{
			name:   "no relevant documents routes to web search",
			scores: scores(model.ScoreIrrelevant, model.ScoreIrrelevant),
			want:   NodeWebSearch,
		},
		{
			name:   "no scores at all routes to web search",
			scores: nil,
			want:   NodeWebSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cond(ctx, model.RAGState{RelevanceScores: tt.scores})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateOrSearchCondition_ZeroThreshold(t *testing.T) {
	// Threshold zero never falls back to web search, even with no scores.
	cond := NewGenerateOrSearchCondition(0)
	got, err := cond(context.Background(), model.RAGState{})
	require.NoError(t, err)
	assert.Equal(t, NodeGenerate, got)
}

func TestSelfCorrectionCondition(t *testing.T) {
	ctx := context.Background()
	cond := NewSelfCorrectionCondition(3, 3)

	tests := []struct {
		name string
		st   model.RAGState
		want string
	}{
		{
			name: "grounded and useful ends the run",
			st: model.RAGState{
				HallucinationCheck: model.GroundingGrounded,
				UsefulnessCheck:    model.UsefulnessUseful,
			},
			want: compose.END,
		},
		{
			name: "not grounded regenerates while budget remains",
			st: model.RAGState{
				HallucinationCheck: model.GroundingNotGrounded,
				UsefulnessCheck:    model.UsefulnessUseful,
				RegenerationCount:  2,
			},
			want: NodeGenerate,
		},
		{
			name: "grounding is checked before usefulness",
			st: model.RAGState{
				HallucinationCheck: model.GroundingNotGrounded,
				UsefulnessCheck:    model.UsefulnessNotUseful,
			},
			want: NodeGenerate,
		},
		{
			name: "regeneration budget exhausted ends the run",
			st: model.RAGState{
				HallucinationCheck: model.GroundingNotGrounded,
				RegenerationCount:  3,
			},
			want: compose.END,
		},
		{
			name: "not useful rewrites the query while budget remains",
			st: model.RAGState{
				HallucinationCheck: model.GroundingGrounded,
				UsefulnessCheck:    model.UsefulnessNotUseful,
				RetryCount:         2,
			},
			want: NodeTransformQuery,
		},
		{
			name: "retry budget exhausted ends the run",
			st: model.RAGState{
				HallucinationCheck: model.GroundingGrounded,
				UsefulnessCheck:    model.UsefulnessNotUseful,
				RetryCount:         3,
			},
			want: compose.END,
		},
		{
			name: "grounding error is terminal",
			st: model.RAGState{
				HallucinationCheck: model.GroundingError,
				UsefulnessCheck:    model.UsefulnessUseful,
			},
			want: compose.END,
		},
		{
			name: "usefulness error is terminal",
			st: model.RAGState{
				HallucinationCheck: model.GroundingGrounded,
				UsefulnessCheck:    model.UsefulnessError,
			},
			want: compose.END,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cond(ctx, tt.st)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelfCorrectionCondition_IsPure(t *testing.T) {
	cond := NewSelfCorrectionCondition(3, 3)
	st := model.RAGState{
		HallucinationCheck: model.GroundingNotGrounded,
		RegenerationCount:  1,
	}
	for i := 0; i < 5; i++ {
		got, err := cond(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, NodeGenerate, got)
	}
	// the router never mutates the state it inspects
	assert.Equal(t, 1, st.RegenerationCount)
}

package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/agentic-rag/server/internal/agent/model"
	logx "github.com/agentic-rag/server/pkg/logger"
)

// Routers are pure: they inspect the state and name exactly one transition.
// They never call external collaborators, and the two loop budgets are
// enforced here and nowhere else.

// NewGenerateOrSearchCondition routes after document grading: when fewer
// than threshold of the documents are relevant the workflow falls back to
// web search, otherwise it proceeds to generation. An empty score set counts
// as ratio zero.
func NewGenerateOrSearchCondition(threshold float64) func(context.Context, model.RAGState) (string, error) {
	return func(ctx context.Context, st model.RAGState) (string, error) {
		ratio := st.RelevantRatio()
		if ratio < threshold {
			logx.Debug().
				Float64("relevant_ratio", ratio).
				Float64("threshold", threshold).
				Msg("Insufficient local relevance, routing to web search")
			return NodeWebSearch, nil
		}
		logx.Debug().
			Float64("relevant_ratio", ratio).
			Float64("threshold", threshold).
			Msg("Routing to generate")
		return NodeGenerate, nil
	}
}

// NewSelfCorrectionCondition routes after the usefulness check. Grounding is
// evaluated strictly before usefulness: an ungrounded answer is regenerated
// even when it is useful. When a budget is exhausted the workflow ends with
// the failing check value intact rather than looping forever.
func NewSelfCorrectionCondition(maxRegenerations, maxRetries int) func(context.Context, model.RAGState) (string, error) {
	return func(ctx context.Context, st model.RAGState) (string, error) {
		if st.HallucinationCheck == model.GroundingNotGrounded {
			if st.RegenerationCount < maxRegenerations {
				logx.Debug().
					Int("regeneration_count", st.RegenerationCount).
					Int("max_regenerations", maxRegenerations).
					Msg("Answer not grounded, regenerating")
				return NodeGenerate, nil
			}
			logx.Warn().
				Int("regeneration_count", st.RegenerationCount).
				Msg("Regeneration budget exhausted, returning best-effort answer")
			return compose.END, nil
		}

		if st.UsefulnessCheck == model.UsefulnessNotUseful {
			if st.RetryCount < maxRetries {
				logx.Debug().
					Int("retry_count", st.RetryCount).
					Int("max_retries", maxRetries).
					Msg("Answer not useful, rewriting query")
				return NodeTransformQuery, nil
			}
			logx.Warn().
				Int("retry_count", st.RetryCount).
				Msg("Retry budget exhausted, returning best-effort answer")
			return compose.END, nil
		}

		logx.Debug().Msg("Answer accepted, ending workflow")
		return compose.END, nil
	}
}

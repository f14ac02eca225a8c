package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/agentic-rag/server/internal/agent/model"
)

// Node keys of the workflow graph. Routing happens exclusively over these
// constants; there is no runtime name lookup.
const (
	NodeInit               = "init"
	NodeRetrieve           = "retrieve"
	NodeGradeDocuments     = "grade_documents"
	NodeGenerate           = "generate"
	NodeTransformQuery     = "transform_query"
	NodeWebSearch          = "web_search"
	NodeCheckHallucination = "check_hallucination"
	NodeCheckUsefulness    = "check_usefulness"
)

// Defaults applied when a config value is missing or invalid.
const (
	DefaultRetrievalK          = 4
	DefaultWebSearchMaxResults = 3
)

// NoContextMessage is returned when generation runs without any documents.
const NoContextMessage = "I apologize, but I don't have enough relevant information to answer this question."

// Step is a pure node function: it inspects the state and returns the
// partial update to merge into it. Steps never fail on recoverable
// collaborator errors; those degrade into state values.
type Step func(ctx context.Context, st model.RAGState) (model.Update, error)

// newNodeLambda wraps a Step into an eino lambda that applies the update.
func newNodeLambda(step Step) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.RAGState) (model.RAGState, error) {
		upd, err := step(ctx, st)
		if err != nil {
			return st, err
		}
		return st.Apply(upd), nil
	})
}

// ref returns a pointer to v, for building partial updates.
func ref[T any](v T) *T {
	return &v
}

func normalizeRetrievalK(k int) int {
	if k <= 0 {
		return DefaultRetrievalK
	}
	return k
}

func normalizeMaxResults(n int) int {
	if n <= 0 {
		return DefaultWebSearchMaxResults
	}
	return n
}

package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/agentic-rag/server/internal/agent/graph/prompts"
	"github.com/agentic-rag/server/internal/agent/model"
)

// Rewriter rephrases under-performing questions for better retrieval.
// Failures are surfaced as errors; the transform_query node falls back to
// the original question.
type Rewriter struct {
	cm einomodel.BaseChatModel
}

var _ model.QueryRewriter = (*Rewriter)(nil)

func NewRewriter(models *ChatModels) *Rewriter {
	return &Rewriter{cm: models.Generation}
}

func (r *Rewriter) RewriteQuery(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	msgs, err := prompts.RenderQueryRewriter(ctx, question)
	if err != nil {
		return "", err
	}
	out, err := r.cm.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("rewrite query: empty model response")
	}
	return strings.TrimSpace(out.Content), nil
}

// SearchQueryOptimizer condenses a question into a short search-engine
// query. Used by the web search fallback; optional there, and fail-soft.
type SearchQueryOptimizer struct {
	cm einomodel.BaseChatModel
}

func NewSearchQueryOptimizer(models *ChatModels) *SearchQueryOptimizer {
	return &SearchQueryOptimizer{cm: models.Generation}
}

func (o *SearchQueryOptimizer) OptimizeQuery(ctx context.Context, question string) (string, error) {
	msgs, err := prompts.RenderWebSearchQuery(ctx, question)
	if err != nil {
		return "", err
	}
	out, err := o.cm.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("optimize search query: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("optimize search query: empty model response")
	}
	return strings.TrimSpace(out.Content), nil
}

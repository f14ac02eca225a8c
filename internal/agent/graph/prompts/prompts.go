package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/relevance_grader.txt
var relevanceGraderPrompt string

//go:embed template/hallucination_grader.txt
var hallucinationGraderPrompt string

//go:embed template/answer_grader.txt
var answerGraderPrompt string

//go:embed template/query_rewriter.txt
var queryRewriterPrompt string

//go:embed template/web_search_query.txt
var webSearchQueryPrompt string

// render formats a single-message template via the Eino prompt component so
// prompt callbacks fire for every grader/generator call.
func render(ctx context.Context, tpl string, vars map[string]any) ([]*schema.Message, error) {
	t := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(tpl),
	)
	msgs, err := t.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("prompt render: empty result")
	}
	return msgs, nil
}

// RenderRelevanceGrader builds the messages for a document relevance check.
func RenderRelevanceGrader(ctx context.Context, question, document string) ([]*schema.Message, error) {
	return render(ctx, relevanceGraderPrompt, map[string]any{
		"question": question,
		"document": document,
	})
}

// RenderGroundingGrader builds the messages for a hallucination check.
func RenderGroundingGrader(ctx context.Context, documents, generation string) ([]*schema.Message, error) {
	return render(ctx, hallucinationGraderPrompt, map[string]any{
		"documents":  documents,
		"generation": generation,
	})
}

// RenderUsefulnessGrader builds the messages for an answer usefulness check.
func RenderUsefulnessGrader(ctx context.Context, question, generation string) ([]*schema.Message, error) {
	return render(ctx, answerGraderPrompt, map[string]any{
		"question":   question,
		"generation": generation,
	})
}

// RenderQueryRewriter builds the messages for a query rewrite.
func RenderQueryRewriter(ctx context.Context, question string) ([]*schema.Message, error) {
	return render(ctx, queryRewriterPrompt, map[string]any{
		"question": question,
	})
}

// RenderWebSearchQuery builds the messages that condense a question into a
// short search-engine query.
func RenderWebSearchQuery(ctx context.Context, question string) ([]*schema.Message, error) {
	return render(ctx, webSearchQueryPrompt, map[string]any{
		"question": question,
	})
}

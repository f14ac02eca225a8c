package prompts

import (
	"context"
	_ "embed"
	"sort"

	"github.com/cloudwego/eino/schema"

	logx "github.com/agentic-rag/server/pkg/logger"
)

// DefaultVariant is used when an unknown generation variant is requested.
const DefaultVariant = "baseline"

//go:embed template/rag_baseline.txt
var ragBaselinePrompt string

//go:embed template/rag_detailed.txt
var ragDetailedPrompt string

//go:embed template/rag_bullets.txt
var ragBulletsPrompt string

//go:embed template/rag_reasoning.txt
var ragReasoningPrompt string

// generationVariants maps a variant name to its answer-generation template.
var generationVariants = map[string]string{
	"baseline":  ragBaselinePrompt,
	"detailed":  ragDetailedPrompt,
	"bullets":   ragBulletsPrompt,
	"reasoning": ragReasoningPrompt,
}

// Variants lists the known generation prompt variants, sorted.
func Variants() []string {
	names := make([]string, 0, len(generationVariants))
	for name := range generationVariants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderGeneration builds the answer-generation messages for the given
// variant. Unknown variants fall back to the baseline template.
func RenderGeneration(ctx context.Context, variant, question, context_ string) ([]*schema.Message, error) {
	tpl, ok := generationVariants[variant]
	if !ok {
		logx.Warn().Str("variant", variant).Msg("Unknown prompt variant, using baseline")
		tpl = generationVariants[DefaultVariant]
	}
	return render(ctx, tpl, map[string]any{
		"question": question,
		"context":  context_,
	})
}

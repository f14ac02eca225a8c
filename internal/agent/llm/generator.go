package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/agentic-rag/server/internal/agent/graph/prompts"
	"github.com/agentic-rag/server/internal/agent/model"
)

// Generator produces answers from a question and its context set, using the
// prompt variant the caller selects.
type Generator struct {
	cm einomodel.BaseChatModel
}

var _ model.AnswerGenerator = (*Generator)(nil)

func NewGenerator(models *ChatModels) *Generator {
	return &Generator{cm: models.Generation}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, docs []model.Document, variant string) (string, error) {
	msgs, err := prompts.RenderGeneration(ctx, variant, question, FormatContext(docs))
	if err != nil {
		return "", err
	}

	out, err := g.cm.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("generate answer: empty model response")
	}
	return strings.TrimSpace(out.Content), nil
}

// FormatContext joins document contents into the context block handed to
// prompts, separating passages with blank lines.
func FormatContext(docs []model.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}

package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agentic-rag/server/internal/agent/graph/parsers"
	"github.com/agentic-rag/server/internal/agent/graph/prompts"
	"github.com/agentic-rag/server/internal/agent/model"
)

// The three graders share one deterministic grading model. Each issues a
// single binary classification call and parses the yes/no verdict; transport
// or parse failures surface as errors so the workflow nodes can apply their
// degradation policies.

// RelevanceGrader classifies (question, document) pairs.
type RelevanceGrader struct {
	cm einomodel.BaseChatModel
}

var _ model.RelevanceGrader = (*RelevanceGrader)(nil)

func NewRelevanceGrader(models *ChatModels) *RelevanceGrader {
	return &RelevanceGrader{cm: models.Grading}
}

func (g *RelevanceGrader) GradeRelevance(ctx context.Context, question string, doc model.Document) (model.RelevanceScore, error) {
	if question == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	if doc.Content == "" {
		return "", fmt.Errorf("document cannot be empty")
	}

	msgs, err := prompts.RenderRelevanceGrader(ctx, question, doc.Content)
	if err != nil {
		return "", err
	}
	yes, err := g.judge(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("relevance grading: %w", err)
	}
	if yes {
		return model.ScoreRelevant, nil
	}
	return model.ScoreIrrelevant, nil
}

func (g *RelevanceGrader) judge(ctx context.Context, msgs []*schema.Message) (bool, error) {
	return judge(ctx, g.cm, msgs)
}

// GroundingGrader verifies that a generation is supported by its documents.
type GroundingGrader struct {
	cm einomodel.BaseChatModel
}

var _ model.GroundingGrader = (*GroundingGrader)(nil)

func NewGroundingGrader(models *ChatModels) *GroundingGrader {
	return &GroundingGrader{cm: models.Grading}
}

func (g *GroundingGrader) GradeGrounding(ctx context.Context, generation string, docs []model.Document) (bool, error) {
	if generation == "" {
		return false, fmt.Errorf("generation cannot be empty")
	}
	if len(docs) == 0 {
		return false, fmt.Errorf("at least one document must be provided")
	}

	msgs, err := prompts.RenderGroundingGrader(ctx, FormatContext(docs), generation)
	if err != nil {
		return false, err
	}
	yes, err := judge(ctx, g.cm, msgs)
	if err != nil {
		return false, fmt.Errorf("grounding grading: %w", err)
	}
	return yes, nil
}

// UsefulnessGrader verifies that a generation addresses the question.
type UsefulnessGrader struct {
	cm einomodel.BaseChatModel
}

var _ model.UsefulnessGrader = (*UsefulnessGrader)(nil)

func NewUsefulnessGrader(models *ChatModels) *UsefulnessGrader {
	return &UsefulnessGrader{cm: models.Grading}
}

func (g *UsefulnessGrader) GradeUsefulness(ctx context.Context, question, generation string) (bool, error) {
	if question == "" {
		return false, fmt.Errorf("question cannot be empty")
	}
	if generation == "" {
		return false, fmt.Errorf("generation cannot be empty")
	}

	msgs, err := prompts.RenderUsefulnessGrader(ctx, question, generation)
	if err != nil {
		return false, err
	}
	yes, err := judge(ctx, g.cm, msgs)
	if err != nil {
		return false, fmt.Errorf("usefulness grading: %w", err)
	}
	return yes, nil
}

// judge runs one grading call and parses the binary score.
func judge(ctx context.Context, cm einomodel.BaseChatModel, msgs []*schema.Message) (bool, error) {
	out, err := cm.Generate(ctx, msgs)
	if err != nil {
		return false, err
	}
	if out == nil {
		return false, fmt.Errorf("empty model response")
	}
	return parsers.ParseBinaryScore(out.Content)
}

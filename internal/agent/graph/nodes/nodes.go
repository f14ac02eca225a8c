package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/agentic-rag/server/internal/agent/model"
	logx "github.com/agentic-rag/server/pkg/logger"
)

// NewInitNode converts the public query input into the initial workflow
// state: all counters zero, all checks unset.
func NewInitNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (model.RAGState, error) {
		return model.RAGState{
			Question:      in.Question,
			PromptVariant: in.PromptVariant,
		}, nil
	})
}

// NewRetrieveNode creates the retrieval node. A failing retriever degrades
// to an empty document set; the run keeps going.
func NewRetrieveNode(retriever model.Retriever, k int) *compose.Lambda {
	return newNodeLambda(retrieveStep(retriever, k))
}

func retrieveStep(retriever model.Retriever, k int) Step {
	k = normalizeRetrievalK(k)
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		docs, err := retriever.RetrieveSimilar(ctx, st.Question, k)
		if err != nil {
			logx.Warn().Err(err).Str("node", NodeRetrieve).Msg("Retrieval failed, continuing with empty documents")
			return model.Update{Documents: ref([]model.Document{})}, nil
		}
		if docs == nil {
			docs = []model.Document{}
		}
		logx.Debug().Str("node", NodeRetrieve).Int("documents", len(docs)).Msg("Documents retrieved")
		return model.Update{Documents: ref(docs)}, nil
	}
}

// NewGradeDocumentsNode creates the relevance grading node. Each document is
// graded once, in order. Any grader error mid-batch grades the whole batch
// relevant; availability over precision, so a flaky grader cannot stall the
// pipeline.
func NewGradeDocumentsNode(grader model.RelevanceGrader) *compose.Lambda {
	return newNodeLambda(gradeDocumentsStep(grader))
}

func gradeDocumentsStep(grader model.RelevanceGrader) Step {
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		if len(st.Documents) == 0 {
			logx.Warn().Str("node", NodeGradeDocuments).Msg("No documents to grade")
			return model.Update{RelevanceScores: ref([]model.RelevanceScore{})}, nil
		}

		scores := make([]model.RelevanceScore, 0, len(st.Documents))
		for i, doc := range st.Documents {
			score, err := grader.GradeRelevance(ctx, st.Question, doc)
			if err != nil {
				logx.Warn().Err(err).Str("node", NodeGradeDocuments).Int("document", i).
					Msg("Grading failed, falling back to all-relevant")
				all := make([]model.RelevanceScore, len(st.Documents))
				for j := range all {
					all[j] = model.ScoreRelevant
				}
				return model.Update{RelevanceScores: ref(all)}, nil
			}
			scores = append(scores, score)
		}

		logx.Debug().Str("node", NodeGradeDocuments).
			Int("relevant", relevantCount(scores)).
			Int("total", len(scores)).
			Msg("Grading complete")
		return model.Update{RelevanceScores: ref(scores)}, nil
	}
}

func relevantCount(scores []model.RelevanceScore) int {
	n := 0
	for _, s := range scores {
		if s == model.ScoreRelevant {
			n++
		}
	}
	return n
}

// NewGenerateNode creates the answer generation node.
//
// The regeneration counter is keyed off the grounding check at the moment
// generation runs: a prior not_grounded verdict means this is a regeneration
// and the counter increments; anything else (unset, grounded, error) means a
// fresh generation and the counter resets to zero.
func NewGenerateNode(generator model.AnswerGenerator) *compose.Lambda {
	return newNodeLambda(generateStep(generator))
}

func generateStep(generator model.AnswerGenerator) Step {
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		regen := 0
		if st.HallucinationCheck == model.GroundingNotGrounded {
			regen = st.RegenerationCount + 1
			logx.Debug().Str("node", NodeGenerate).Int("regeneration_count", regen).Msg("Regenerating answer")
		}

		if len(st.Documents) == 0 {
			logx.Warn().Str("node", NodeGenerate).Msg("No documents available for generation")
			return model.Update{
				Generation:        ref(NoContextMessage),
				RegenerationCount: ref(regen),
			}, nil
		}

		answer, err := generator.GenerateAnswer(ctx, st.Question, st.Documents, st.PromptVariant)
		if err != nil {
			logx.Error().Err(err).Str("node", NodeGenerate).Msg("Generation failed")
			return model.Update{
				Generation:        ref(fmt.Sprintf("I encountered an error while generating the answer: %v", err)),
				RegenerationCount: ref(regen),
			}, nil
		}

		return model.Update{
			Generation:        ref(strings.TrimSpace(answer)),
			RegenerationCount: ref(regen),
		}, nil
	}
}

// NewTransformQueryNode creates the query rewrite node. The retry counter
// increments even when the rewriter fails, so the retrieval-retry loop stays
// bounded under a persistently broken rewriter.
func NewTransformQueryNode(rewriter model.QueryRewriter) *compose.Lambda {
	return newNodeLambda(transformQueryStep(rewriter))
}

func transformQueryStep(rewriter model.QueryRewriter) Step {
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		question := st.Question
		improved, err := rewriter.RewriteQuery(ctx, st.Question)
		if err != nil || strings.TrimSpace(improved) == "" {
			logx.Warn().Err(err).Str("node", NodeTransformQuery).Msg("Rewrite failed, keeping original question")
		} else {
			question = strings.TrimSpace(improved)
			logx.Debug().Str("node", NodeTransformQuery).Str("question", question).Msg("Question rewritten")
		}
		return model.Update{
			Question:   ref(question),
			RetryCount: ref(st.RetryCount + 1),
		}, nil
	}
}

// NewWebSearchNode creates the web search fallback node. Search results
// replace the document set wholesale; an unavailable backend degrades to an
// empty set.
func NewWebSearchNode(searcher model.WebSearcher, maxResults int) *compose.Lambda {
	return newNodeLambda(webSearchStep(searcher, maxResults))
}

func webSearchStep(searcher model.WebSearcher, maxResults int) Step {
	maxResults = normalizeMaxResults(maxResults)
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		docs, err := searcher.SearchWeb(ctx, st.Question, maxResults)
		if err != nil {
			logx.Warn().Err(err).Str("node", NodeWebSearch).Msg("Web search failed, continuing with empty documents")
			docs = nil
		}
		if docs == nil {
			docs = []model.Document{}
		}
		logx.Debug().Str("node", NodeWebSearch).Int("documents", len(docs)).Msg("Web search complete")
		return model.Update{
			Documents:       ref(docs),
			WebSearchNeeded: ref(true),
		}, nil
	}
}

// NewCheckHallucinationNode creates the grounding check node. With no
// documents there is no evidence, so the check can never report grounded.
func NewCheckHallucinationNode(grader model.GroundingGrader) *compose.Lambda {
	return newNodeLambda(checkHallucinationStep(grader))
}

func checkHallucinationStep(grader model.GroundingGrader) Step {
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		if len(st.Documents) == 0 {
			logx.Warn().Str("node", NodeCheckHallucination).Msg("No documents, generation cannot be grounded")
			return model.Update{HallucinationCheck: ref(model.GroundingNotGrounded)}, nil
		}

		grounded, err := grader.GradeGrounding(ctx, st.Generation, st.Documents)
		if err != nil {
			logx.Error().Err(err).Str("node", NodeCheckHallucination).Msg("Grounding check failed")
			return model.Update{HallucinationCheck: ref(model.GroundingError)}, nil
		}
		result := model.GroundingNotGrounded
		if grounded {
			result = model.GroundingGrounded
		}
		logx.Debug().Str("node", NodeCheckHallucination).Str("result", string(result)).Msg("Grounding check complete")
		return model.Update{HallucinationCheck: ref(result)}, nil
	}
}

// NewCheckUsefulnessNode creates the usefulness check node.
func NewCheckUsefulnessNode(grader model.UsefulnessGrader) *compose.Lambda {
	return newNodeLambda(checkUsefulnessStep(grader))
}

func checkUsefulnessStep(grader model.UsefulnessGrader) Step {
	return func(ctx context.Context, st model.RAGState) (model.Update, error) {
		useful, err := grader.GradeUsefulness(ctx, st.Question, st.Generation)
		if err != nil {
			logx.Error().Err(err).Str("node", NodeCheckUsefulness).Msg("Usefulness check failed")
			return model.Update{UsefulnessCheck: ref(model.UsefulnessError)}, nil
		}
		result := model.UsefulnessNotUseful
		if useful {
			result = model.UsefulnessUseful
		}
		logx.Debug().Str("node", NodeCheckUsefulness).Str("result", string(result)).Msg("Usefulness check complete")
		return model.Update{UsefulnessCheck: ref(result)}, nil
	}
}

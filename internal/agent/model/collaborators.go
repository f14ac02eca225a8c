package model

import (
	"context"
)

// The workflow engine consumes its external collaborators through these
// narrow contracts. Implementations must be safe for concurrent use across
// runs; the engine never issues concurrent calls within one run.

// Retriever performs similarity search over the vector index.
type Retriever interface {
	// RetrieveSimilar returns up to k passages for the query, ordered by
	// similarity. "No results" is an empty slice, not an error.
	RetrieveSimilar(ctx context.Context, query string, k int) ([]Document, error)
}

// RelevanceGrader classifies a (question, document) pair.
type RelevanceGrader interface {
	GradeRelevance(ctx context.Context, question string, doc Document) (RelevanceScore, error)
}

// AnswerGenerator produces a free-text answer from the question and its
// context set. The prompt variant only affects formatting of the external
// call, never orchestration.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, docs []Document, variant string) (string, error)
}

// QueryRewriter returns an improved phrasing of an under-performing question.
type QueryRewriter interface {
	RewriteQuery(ctx context.Context, question string) (string, error)
}

// WebSearcher returns supplementary passages from an external search engine.
type WebSearcher interface {
	SearchWeb(ctx context.Context, query string, maxResults int) ([]Document, error)
}

// GroundingGrader reports whether a generation is supported by its documents.
type GroundingGrader interface {
	GradeGrounding(ctx context.Context, generation string, docs []Document) (bool, error)
}

// UsefulnessGrader reports whether a generation addresses the question.
type UsefulnessGrader interface {
	GradeUsefulness(ctx context.Context, question, generation string) (bool, error)
}

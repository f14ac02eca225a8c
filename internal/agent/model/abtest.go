package model

import (
	"context"
	"time"
)

// ABRunRecord captures the outcome of one workflow run for prompt variant
// comparison.
type ABRunRecord struct {
	Question           string           `json:"question"`
	PromptVariant      string           `json:"prompt_variant"`
	Generation         string           `json:"generation"`
	HallucinationCheck GroundingResult  `json:"hallucination_check"`
	UsefulnessCheck    UsefulnessResult `json:"usefulness_check"`
	RetryCount         int              `json:"retry_count"`
	RegenerationCount  int              `json:"regeneration_count"`
	WebSearchNeeded    bool             `json:"web_search_needed"`
	DurationMS         int64            `json:"duration_ms"`
	CreatedAt          time.Time        `json:"created_at"`
}

// NewABRunRecord builds a record from a final workflow state.
func NewABRunRecord(st RAGState, took time.Duration) ABRunRecord {
	return ABRunRecord{
		Question:           st.Question,
		PromptVariant:      st.PromptVariant,
		Generation:         st.Generation,
		HallucinationCheck: st.HallucinationCheck,
		UsefulnessCheck:    st.UsefulnessCheck,
		RetryCount:         st.RetryCount,
		RegenerationCount:  st.RegenerationCount,
		WebSearchNeeded:    st.WebSearchNeeded,
		DurationMS:         took.Milliseconds(),
		CreatedAt:          time.Now().UTC(),
	}
}

// Succeeded reports whether the run ended with a grounded and useful answer.
func (r ABRunRecord) Succeeded() bool {
	return r.HallucinationCheck == GroundingGrounded && r.UsefulnessCheck == UsefulnessUseful
}

// ABVariantSummary aggregates run outcomes for a single prompt variant.
type ABVariantSummary struct {
	Variant       string  `json:"variant"`
	Runs          int     `json:"runs"`
	SuccessRate   float64 `json:"success_rate"`
	GroundedRate  float64 `json:"grounded_rate"`
	UsefulRate    float64 `json:"useful_rate"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	AvgRetries    float64 `json:"avg_retries"`
}

// ABResultRepository persists run outcomes keyed by prompt variant.
type ABResultRepository interface {
	RecordRun(ctx context.Context, rec ABRunRecord) error
	LoadRuns(ctx context.Context, variant string) ([]ABRunRecord, error)
	Summary(ctx context.Context, variant string) (*ABVariantSummary, error)
	Variants(ctx context.Context) ([]string, error)
	ClearRuns(ctx context.Context, variant string) error
}

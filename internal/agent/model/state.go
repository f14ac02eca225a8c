package model

// RelevanceScore is the binary judgment of a document against a question.
type RelevanceScore string

const (
	ScoreRelevant   RelevanceScore = "relevant"
	ScoreIrrelevant RelevanceScore = "irrelevant"
)

// GroundingResult is the outcome of the hallucination check on a generation.
// The zero value means the check has not run for the current generation.
type GroundingResult string

const (
	GroundingUnset       GroundingResult = ""
	GroundingGrounded    GroundingResult = "grounded"
	GroundingNotGrounded GroundingResult = "not_grounded"
	GroundingError       GroundingResult = "error"
)

// UsefulnessResult is the outcome of the usefulness check on a generation.
type UsefulnessResult string

const (
	UsefulnessUnset     UsefulnessResult = ""
	UsefulnessUseful    UsefulnessResult = "useful"
	UsefulnessNotUseful UsefulnessResult = "not_useful"
	UsefulnessError     UsefulnessResult = "error"
)

// Document is a retrieved context passage with its source metadata.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Source returns the document's source metadata, or "unknown" when absent.
func (d Document) Source() string {
	if s, ok := d.Metadata["source"]; ok && s != "" {
		return s
	}
	return "unknown"
}

// RAGState is the single record threaded through every workflow node.
// It is created once per run, owned by that run, and never shared.
// Nodes do not mutate it directly; they return an Update that the graph
// merges via Apply, so every transition is an explicit value copy.
type RAGState struct {
	Question          string           `json:"question"`
	Generation        string           `json:"generation"`
	Documents         []Document       `json:"documents"`
	RelevanceScores   []RelevanceScore `json:"relevance_scores"`
	RetryCount        int              `json:"retry_count"`
	RegenerationCount int              `json:"regeneration_count"`

	HallucinationCheck GroundingResult  `json:"hallucination_check"`
	UsefulnessCheck    UsefulnessResult `json:"usefulness_check"`

	WebSearchNeeded bool   `json:"web_search_needed"`
	PromptVariant   string `json:"prompt_variant"`
}

// Update is a partial state: nil fields are left untouched by Apply.
// Slices are replaced wholesale, never appended to.
type Update struct {
	Question          *string
	Generation        *string
	Documents         *[]Document
	RelevanceScores   *[]RelevanceScore
	RetryCount        *int
	RegenerationCount *int

	HallucinationCheck *GroundingResult
	UsefulnessCheck    *UsefulnessResult

	WebSearchNeeded *bool
}

// Apply merges u into a copy of s and returns the copy.
func (s RAGState) Apply(u Update) RAGState {
	if u.Question != nil {
		s.Question = *u.Question
	}
	if u.Generation != nil {
		s.Generation = *u.Generation
	}
	if u.Documents != nil {
		s.Documents = *u.Documents
	}
	if u.RelevanceScores != nil {
		s.RelevanceScores = *u.RelevanceScores
	}
	if u.RetryCount != nil {
		s.RetryCount = *u.RetryCount
	}
	if u.RegenerationCount != nil {
		s.RegenerationCount = *u.RegenerationCount
	}
	if u.HallucinationCheck != nil {
		s.HallucinationCheck = *u.HallucinationCheck
	}
	if u.UsefulnessCheck != nil {
		s.UsefulnessCheck = *u.UsefulnessCheck
	}
	if u.WebSearchNeeded != nil {
		s.WebSearchNeeded = *u.WebSearchNeeded
	}
	return s
}

// RelevantRatio returns the share of documents graded relevant, or 0 when
// no scores have been produced yet.
func (s RAGState) RelevantRatio() float64 {
	if len(s.RelevanceScores) == 0 {
		return 0
	}
	relevant := 0
	for _, score := range s.RelevanceScores {
		if score == ScoreRelevant {
			relevant++
		}
	}
	return float64(relevant) / float64(len(s.RelevanceScores))
}

// QueryInput is the public input of a workflow run.
type QueryInput struct {
	Question      string `json:"question"`
	PromptVariant string `json:"prompt_variant"`
}

// RunTrace is the graph-local bookkeeping for one run: the node execution
// order as observed by the state post-handlers. It is only touched inside
// eino state handlers, which serialize access.
type RunTrace struct {
	Steps []string
}

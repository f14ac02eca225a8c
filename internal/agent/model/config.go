package model

// ================ Config ================

// WorkflowConfig holds every budget the workflow engine enforces.
type WorkflowConfig struct {
	RetrievalK                  int     `envconfig:"RETRIEVAL_K" default:"4"`
	MaxRetries                  int     `envconfig:"MAX_RETRIES" default:"3"`
	MaxRegenerations            int     `envconfig:"MAX_REGENERATIONS" default:"3"`
	StepLimit                   int     `envconfig:"WORKFLOW_STEP_LIMIT" default:"50"`
	WebSearchRelevanceThreshold float64 `envconfig:"WEB_SEARCH_RELEVANCE_THRESHOLD" default:"0.5"`
	WebSearchMaxResults         int     `envconfig:"WEB_SEARCH_MAX_RESULTS" default:"3"`
}

type GenerationModelConfig struct {
	Model       string  `envconfig:"GENERATION_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"GENERATION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GENERATION_TEMPERATURE" default:"0"`
}

type GradingModelConfig struct {
	Model       string  `envconfig:"GRADING_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"GRADING_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"GRADING_TEMPERATURE" default:"0"`
}

package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/agentic-rag/server/internal/agent/graph/nodes"
	"github.com/agentic-rag/server/internal/agent/graph/observers"
	"github.com/agentic-rag/server/internal/agent/model"
	logx "github.com/agentic-rag/server/pkg/logger"
)

// DefaultStepLimit caps total node executions per run when no limit is
// configured. It is a safety net independent of the retry/regeneration
// budgets.
const DefaultStepLimit = 50

// StepLimitMessage is the user-visible answer when a run hits the step
// ceiling.
const StepLimitMessage = "I apologize, but I could not produce a reliable answer within the allowed number of workflow steps. " +
	"Try rephrasing your question or breaking it into simpler parts."

// Runner executes the compiled workflow graph.
type Runner interface {
	// Run executes the workflow to completion and returns the final state.
	// The returned Generation is never empty on a nil error.
	Run(ctx context.Context, question, promptVariant string) (model.RAGState, error)

	// Stream executes the same sequential workflow while yielding an event
	// after every node execution.
	Stream(ctx context.Context, question, promptVariant string) (*Stream, error)
}

// Config holds every collaborator and budget needed to compose the workflow.
type Config struct {
	Retriever        model.Retriever
	RelevanceGrader  model.RelevanceGrader
	Generator        model.AnswerGenerator
	Rewriter         model.QueryRewriter
	WebSearcher      model.WebSearcher
	GroundingGrader  model.GroundingGrader
	UsefulnessGrader model.UsefulnessGrader

	Workflow model.WorkflowConfig
}

func (c *Config) validate() error {
	switch {
	case c.Retriever == nil:
		return fmt.Errorf("retriever is nil")
	case c.RelevanceGrader == nil:
		return fmt.Errorf("relevance grader is nil")
	case c.Generator == nil:
		return fmt.Errorf("generator is nil")
	case c.Rewriter == nil:
		return fmt.Errorf("rewriter is nil")
	case c.WebSearcher == nil:
		return fmt.Errorf("web searcher is nil")
	case c.GroundingGrader == nil:
		return fmt.Errorf("grounding grader is nil")
	case c.UsefulnessGrader == nil:
		return fmt.Errorf("usefulness grader is nil")
	}
	return nil
}

// GraphBuilder handles the construction of the workflow graph.
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.QueryInput, model.RAGState]
}

type workflowRunner struct {
	runnable compose.Runnable[model.QueryInput, model.RAGState]
}

// BuildWorkflow composes the corrective-RAG graph and returns a Runner.
func BuildWorkflow(ctx context.Context, cfg *Config) (Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workflow config is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	builder := &GraphBuilder{
		config: cfg,
		graph: compose.NewGraph[model.QueryInput, model.RAGState](
			compose.WithGenLocalState(func(ctx context.Context) *model.RunTrace {
				return &model.RunTrace{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph. Every workflow node gets
// a trace post-handler so run order is recorded and stream events fire.
func (b *GraphBuilder) addNodes() {
	wf := b.config.Workflow

	b.graph.AddLambdaNode(nodes.NodeInit, nodes.NewInitNode())

	b.graph.AddLambdaNode(nodes.NodeRetrieve,
		nodes.NewRetrieveNode(b.config.Retriever, wf.RetrievalK),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeRetrieve)),
	)

	b.graph.AddLambdaNode(nodes.NodeGradeDocuments,
		nodes.NewGradeDocumentsNode(b.config.RelevanceGrader),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeGradeDocuments)),
	)

	b.graph.AddLambdaNode(nodes.NodeGenerate,
		nodes.NewGenerateNode(b.config.Generator),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeGenerate)),
	)

	b.graph.AddLambdaNode(nodes.NodeTransformQuery,
		nodes.NewTransformQueryNode(b.config.Rewriter),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeTransformQuery)),
	)

	b.graph.AddLambdaNode(nodes.NodeWebSearch,
		nodes.NewWebSearchNode(b.config.WebSearcher, wf.WebSearchMaxResults),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeWebSearch)),
	)

	b.graph.AddLambdaNode(nodes.NodeCheckHallucination,
		nodes.NewCheckHallucinationNode(b.config.GroundingGrader),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeCheckHallucination)),
	)

	b.graph.AddLambdaNode(nodes.NodeCheckUsefulness,
		nodes.NewCheckUsefulnessNode(b.config.UsefulnessGrader),
		compose.WithStatePostHandler(newTracePostHandler(nodes.NodeCheckUsefulness)),
	)
}

// addEdges creates the unconditional flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInit},
		{nodes.NodeInit, nodes.NodeRetrieve},
		{nodes.NodeRetrieve, nodes.NodeGradeDocuments},
		{nodes.NodeWebSearch, nodes.NodeGenerate},
		{nodes.NodeTransformQuery, nodes.NodeRetrieve}, // retrieval-retry loop
		{nodes.NodeGenerate, nodes.NodeCheckHallucination},
		{nodes.NodeCheckHallucination, nodes.NodeCheckUsefulness},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the two conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	wf := b.config.Workflow

	relevanceBranch := compose.NewGraphBranch(
		nodes.NewGenerateOrSearchCondition(wf.WebSearchRelevanceThreshold),
		map[string]bool{
			nodes.NodeWebSearch: true,
			nodes.NodeGenerate:  true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeGradeDocuments, relevanceBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding relevance branch")
		return fmt.Errorf("error adding relevance branch: %w", err)
	}

	correctionBranch := compose.NewGraphBranch(
		nodes.NewSelfCorrectionCondition(wf.MaxRegenerations, wf.MaxRetries),
		map[string]bool{
			nodes.NodeGenerate:       true, // regeneration loop
			nodes.NodeTransformQuery: true,
			compose.END:              true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeCheckUsefulness, correctionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding self-correction branch")
		return fmt.Errorf("error adding self-correction branch: %w", err)
	}

	return nil
}

// compile finalizes the graph with the hard step ceiling.
func (b *GraphBuilder) compile(ctx context.Context) (Runner, error) {
	stepLimit := b.config.Workflow.StepLimit
	if stepLimit <= 0 {
		stepLimit = DefaultStepLimit
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(stepLimit))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling workflow graph")
		return nil, fmt.Errorf("error compiling workflow graph: %w", err)
	}

	logx.Debug().Int("step_limit", stepLimit).Msg("Workflow graph compiled")
	return &workflowRunner{runnable: runnable}, nil
}

// newTracePostHandler records node completion order in the run trace and
// publishes stream events.
func newTracePostHandler(node string) func(context.Context, model.RAGState, *model.RunTrace) (model.RAGState, error) {
	return func(ctx context.Context, out model.RAGState, trace *model.RunTrace) (model.RAGState, error) {
		trace.Steps = append(trace.Steps, node)
		logx.Debug().Str("node", node).Int("step", len(trace.Steps)).Msg("Node completed")
		emit(ctx, node, out)
		return out, nil
	}
}

func (r *workflowRunner) Run(ctx context.Context, question, promptVariant string) (model.RAGState, error) {
	return r.invoke(ctx, question, promptVariant)
}

func (r *workflowRunner) Stream(ctx context.Context, question, promptVariant string) (*Stream, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	s := newStream()
	go func() {
		final, err := r.invoke(withStream(ctx, s), question, promptVariant)
		s.finish(final, err)
	}()
	return s, nil
}

// invoke runs the compiled graph once. Only the step-ceiling condition is
// recoverable: it yields a terminal fallback state. Everything else
// propagates to the caller unchanged.
func (r *workflowRunner) invoke(ctx context.Context, question, promptVariant string) (model.RAGState, error) {
	if strings.TrimSpace(question) == "" {
		return model.RAGState{}, fmt.Errorf("question cannot be empty")
	}

	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		Question:      question,
		PromptVariant: promptVariant,
	}, compose.WithCallbacks(observers.NewWorkflowCallbacks()))
	if err != nil {
		if errors.Is(err, compose.ErrExceedMaxSteps) {
			logx.Warn().Err(err).Str("question", question).Msg("Step ceiling hit, returning fallback state")
			return stepLimitFallback(question, promptVariant), nil
		}
		return model.RAGState{}, err
	}
	return out, nil
}

// stepLimitFallback is the terminal state produced when a run exceeds the
// step ceiling: checks marked as errored, initial question and variant
// preserved, counters at their initial zero.
func stepLimitFallback(question, promptVariant string) model.RAGState {
	return model.RAGState{
		Question:           question,
		PromptVariant:      promptVariant,
		Generation:         StepLimitMessage,
		HallucinationCheck: model.GroundingError,
		UsefulnessCheck:    model.UsefulnessError,
	}
}

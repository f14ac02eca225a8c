package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/agentic-rag/server/internal/agent/graph"
	"github.com/agentic-rag/server/internal/agent/graph/prompts"
	"github.com/agentic-rag/server/internal/agent/ingest"
	"github.com/agentic-rag/server/internal/agent/llm"
	"github.com/agentic-rag/server/internal/agent/model"
	"github.com/agentic-rag/server/internal/agent/repo"
	"github.com/agentic-rag/server/internal/agent/retriever"
	"github.com/agentic-rag/server/internal/agent/search"
	"github.com/agentic-rag/server/internal/core"
	logx "github.com/agentic-rag/server/pkg/logger"
	pkgredis "github.com/agentic-rag/server/pkg/redis"
	pkgweaviate "github.com/agentic-rag/server/pkg/weaviate"
)

// AppConfig defines all configurable parameters for the workflow,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis    pkgredis.Config
	Weaviate pkgweaviate.Config
	Tavily   search.TavilyConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Workflow configs
	Generation model.GenerationModelConfig
	Grading    model.GradingModelConfig
	Workflow   model.WorkflowConfig
	Ingest     ingest.Config

	Environment   string `envconfig:"APP_ENV" default:"development"`
	PromptVariant string `envconfig:"PROMPT_VARIANT" default:"baseline"`
	ABResultTTL   string `envconfig:"ABTEST_TTL" default:"720h"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	mode := "ask"
	args := os.Args[1:]
	if len(args) > 0 {
		mode = args[0]
		args = args[1:]
	}

	switch mode {
	case "ask", "stream":
		if len(args) == 0 {
			log.Fatalf("Usage: server %s <question>", mode)
		}
		runWorkflow(ctx, cfg, mode, args[0])
	case "ingest":
		if len(args) == 0 {
			log.Fatal("Usage: server ingest <directory>")
		}
		runIngest(ctx, cfg, args[0])
	case "ab-report":
		runABReport(ctx, cfg)
	default:
		log.Fatalf("Unknown mode %q (expected ask, stream, ingest or ab-report)", mode)
	}
}

func runWorkflow(ctx context.Context, cfg AppConfig, mode, question string) {
	models, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Generation: cfg.Generation,
		Grading:    cfg.Grading,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	weaviateClient, err := cfg.Weaviate.New()
	if err != nil {
		log.Fatalf("Failed to initialise Weaviate client: %v", err)
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.ABResultTTL)
	if err != nil {
		log.Fatalf("Invalid ABTEST_TTL '%s': %v", cfg.ABResultTTL, err)
	}
	abRepo := repo.NewRedisABResultRepository(rdb, ttl)

	runner, err := graph.BuildWorkflow(ctx, &graph.Config{
		Retriever:        retriever.NewWeaviateRetriever(weaviateClient),
		RelevanceGrader:  llm.NewRelevanceGrader(models),
		Generator:        llm.NewGenerator(models),
		Rewriter:         llm.NewRewriter(models),
		WebSearcher:      search.NewTavilyClient(cfg.Tavily, llm.NewSearchQueryOptimizer(models)),
		GroundingGrader:  llm.NewGroundingGrader(models),
		UsefulnessGrader: llm.NewUsefulnessGrader(models),
		Workflow:         cfg.Workflow,
	})
	if err != nil {
		log.Fatalf("Failed to build workflow: %v", err)
	}

	variant := cfg.PromptVariant
	if variant == "" {
		variant = prompts.DefaultVariant
	}

	started := time.Now()
	var final model.RAGState

	if mode == "stream" {
		stream, err := runner.Stream(ctx, question, variant)
		if err != nil {
			log.Fatalf("Failed to start workflow: %v", err)
		}
		for ev := range stream.Events() {
			fmt.Printf("--- %s\n", ev.Node)
		}
		final, err = stream.Wait()
		if err != nil {
			log.Fatalf("Workflow failed: %v", err)
		}
	} else {
		final, err = runner.Run(ctx, question, variant)
		if err != nil {
			log.Fatalf("Workflow failed: %v", err)
		}
	}
	took := time.Since(started)

	fmt.Printf("\nQuestion: %s\n", final.Question)
	fmt.Printf("Answer:   %s\n", final.Generation)
	fmt.Printf("Grounded: %s | Useful: %s | Retries: %d | Regenerations: %d | Web search: %t\n",
		final.HallucinationCheck, final.UsefulnessCheck,
		final.RetryCount, final.RegenerationCount, final.WebSearchNeeded)

	if err := abRepo.RecordRun(ctx, model.NewABRunRecord(final, took)); err != nil {
		logx.Warn().Err(err).Msg("Failed to record run for variant comparison")
	}
}

func runIngest(ctx context.Context, cfg AppConfig, dir string) {
	weaviateClient, err := cfg.Weaviate.New()
	if err != nil {
		log.Fatalf("Failed to initialise Weaviate client: %v", err)
	}

	loader := ingest.NewLoader(weaviateClient, cfg.Ingest)
	if err := loader.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	stored, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	fmt.Printf("Ingested %d chunks from %s\n", stored, dir)
}

func runABReport(ctx context.Context, cfg AppConfig) {
	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	abRepo := repo.NewRedisABResultRepository(rdb, 0)
	variants, err := abRepo.Variants(ctx)
	if err != nil {
		log.Fatalf("Failed to list variants: %v", err)
	}
	if len(variants) == 0 {
		fmt.Println("No recorded runs yet.")
		return
	}

	for _, variant := range variants {
		s, err := abRepo.Summary(ctx, variant)
		if err != nil {
			log.Fatalf("Failed to summarise variant %q: %v", variant, err)
		}
		fmt.Printf("%-12s runs=%-4d success=%.0f%% grounded=%.0f%% useful=%.0f%% avg=%.0fms retries=%.2f\n",
			s.Variant, s.Runs,
			s.SuccessRate*100, s.GroundedRate*100, s.UsefulRate*100,
			s.AvgDurationMS, s.AvgRetries)
	}
}

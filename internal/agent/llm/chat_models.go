package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/agentic-rag/server/internal/agent/model"
	logx "github.com/agentic-rag/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey     string
	BaseURL    string
	Generation model.GenerationModelConfig
	Grading    model.GradingModelConfig
}

// ChatModels holds the generation model and the deterministic grading model.
// Both are safe for concurrent use across workflow runs.
type ChatModels struct {
	Generation einomodel.BaseChatModel
	Grading    einomodel.BaseChatModel

	GenerationModelName string
	GradingModelName    string
}

// NewChatModels creates both chat models over one shared Gemini client.
// The client is constructed here and injected everywhere; there is no lazy
// package-level singleton.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	generationModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Generation.Model,
		Temperature: &config.Generation.Temperature,
		MaxTokens:   &config.Generation.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating generation model")
		return nil, fmt.Errorf("error creating generation model: %w", err)
	}

	gradingModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Grading.Model,
		Temperature: &config.Grading.Temperature,
		MaxTokens:   &config.Grading.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating grading model")
		return nil, fmt.Errorf("error creating grading model: %w", err)
	}

	return &ChatModels{
		Generation:          generationModel,
		Grading:             gradingModel,
		GenerationModelName: config.Generation.Model,
		GradingModelName:    config.Grading.Model,
	}, nil
}

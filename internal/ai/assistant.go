package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/adaptive-interviewer/internal/ai/gemini"
	"github.com/spigell/adaptive-interviewer/internal/interview"
	"github.com/spigell/adaptive-interviewer/internal/logger"
	"github.com/spigell/adaptive-interviewer/internal/secrets"
	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"

	geminiAPIKeyEnv = "GEMINI_API_KEY"
)

// Interviewer is everything an interview needs from a language model.
type Interviewer interface {
	interview.QuestionGenerator
	interview.AnswerEvaluator
	interview.ClosingGenerator

	SummarizeKnowledge(ctx context.Context, topic string, outline []string, knowledge string) (string, error)
}

type Config struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string   `mapstructure:"api-key"`
	APIKeyFile   string   `mapstructure:"api-key-file"`
	Model        string   `mapstructure:"model"`
	MaxRetries   int      `mapstructure:"max-retries"`
	MaxLogLength int      `mapstructure:"max-log-length"`
	Temperature  *float32 `mapstructure:"temperature"`
}

// New builds the interviewer for the configured provider.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Interviewer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		return newGemini(ctx, cfg.Gemini, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

func newGemini(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (Interviewer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:       cfg.Model,
		MaxRetries:  cfg.MaxRetries,
		Temperature: cfg.Temperature,
	}, log)
	if err != nil {
		return nil, err
	}

	log = logger.WithCommonFields(log, ProviderGemini, generator.Model())
	log.Debug("ai interviewer configured")

	return gemini.NewInterviewer(generator, log, cfg.MaxLogLength), nil
}

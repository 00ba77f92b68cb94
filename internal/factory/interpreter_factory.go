package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/adapters/bedrock"
	"github.com/mikey/luca-assistant/internal/adapters/gemini"
	"github.com/mikey/luca-assistant/internal/adapters/openai"
	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
)

// InterpreterFactory creates AI fallback interpreters
type InterpreterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewInterpreterFactory creates a new interpreter factory
func NewInterpreterFactory(cfg *config.Config, logger *zap.Logger) *InterpreterFactory {
	return &InterpreterFactory{cfg: cfg, logger: logger}
}

// CreateInterpreter creates an interpreter based on the configuration. An
// empty provider disables the AI fallback entirely; low-confidence
// utterances then stay unknown.
func (f *InterpreterFactory) CreateInterpreter() (core.Interpreter, error) {
	provider := f.cfg.GetString("nlu.fallback_provider")

	switch provider {
	case "":
		f.logger.Info("AI fallback disabled")
		return nil, nil
	case "gemini":
		return gemini.NewGeminiInterpreter(
			f.cfg.GetString("gemini.api_key"),
			f.cfg.GetString("gemini.model_name"),
			f.cfg.GetInt("gemini.max_tokens"),
			float32(f.cfg.GetFloat64("gemini.temperature")),
			float32(f.cfg.GetFloat64("gemini.top_p")),
			f.logger,
		)
	case "openai":
		return openai.NewOpenAIInterpreter(
			f.cfg.GetString("openai.api_key"),
			f.cfg.GetString("openai.model_name"),
			f.cfg.GetInt("openai.max_tokens"),
			float32(f.cfg.GetFloat64("openai.temperature")),
			float32(f.cfg.GetFloat64("openai.top_p")),
			f.logger,
		), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(f.cfg.GetString("bedrock.region")))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewBedrockInterpreter(
			bedrockruntime.NewFromConfig(awsCfg),
			f.cfg.GetString("bedrock.model_id"),
			f.cfg.GetInt("bedrock.max_tokens"),
			float32(f.cfg.GetFloat64("bedrock.temperature")),
			float32(f.cfg.GetFloat64("bedrock.top_p")),
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported fallback provider: %s", provider)
	}
}

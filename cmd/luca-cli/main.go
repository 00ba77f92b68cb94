package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/factory"
	"github.com/mikey/luca-assistant/internal/lexicon"
	"github.com/mikey/luca-assistant/internal/logging"
	"github.com/mikey/luca-assistant/internal/nlu"
	"github.com/mikey/luca-assistant/internal/respond"
)

var (
	// Utterance flags
	language  = flag.String("lang", "tn", "Utterance language (en, ar, tn)")
	threshold = flag.Float64("threshold", 0.5, "Intent confidence threshold")

	// AI fallback flags
	fallbackProvider = flag.String("fallback", "", "AI fallback provider (gemini, openai, bedrock; empty disables)")
	geminiAPIKey     = flag.String("gemini-api-key", "", "API key for Google Gemini")
	openaiAPIKey     = flag.String("openai-api-key", "", "API key for OpenAI")
	bedrockRegion    = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")

	// Memory flags
	store      = flag.String("store", "memory", "Memory store (memory, sqlite, mysql, redis)")
	sqlitePath = flag.String("sqlite-path", "luca_memory.db", "SQLite database path")

	// Output flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		fmt.Println("Usage: luca-cli [flags] <utterance>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the pipeline
	lex := lexicon.Default()
	classifier := nlu.NewClassifier(lex,
		cfg.GetFloat64("nlu.threshold"),
		cfg.GetBool("nlu.cross_language"),
		logger)
	formatter := respond.NewFormatter()

	memFactory := factory.NewMemoryFactory(cfg, logger)
	memRepo, err := memFactory.CreateMemoryRepository()
	if err != nil {
		logger.Fatal("Failed to create memory repository", zap.Error(err))
	}

	emailFactory := factory.NewEmailFactory(cfg, logger)
	emailProvider, err := emailFactory.CreateEmailProvider()
	if err != nil {
		logger.Fatal("Failed to create email provider", zap.Error(err))
	}

	interpreterFactory := factory.NewInterpreterFactory(cfg, logger)
	interpreter, err := interpreterFactory.CreateInterpreter()
	if err != nil {
		logger.Fatal("Failed to create interpreter", zap.Error(err))
	}

	weatherProvider := factory.NewWeatherFactory(cfg, logger).CreateWeatherProvider()

	timeout, err := cfg.GetDuration("assistant.collaborator_timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	dispatcher := core.NewDispatcher(emailProvider, weatherProvider, interpreter,
		core.SystemClock{}, memRepo, lex, timeout,
		cfg.GetString("assistant.default_city"), logger)

	// One-shot turn: classify, dispatch, format
	utt := core.Utterance{
		Text:      text,
		Language:  core.Language(*language),
		Origin:    core.OriginText,
		Timestamp: time.Now(),
	}

	ctx := context.Background()
	snapshot, err := memRepo.Snapshot(ctx)
	if err != nil {
		logger.Fatal("Failed to snapshot memory", zap.Error(err))
	}

	startTime := time.Now()
	intent := classifier.Classify(utt, snapshot)

	// Low-confidence utterances go through the same AI fallback the session
	// uses, so the -fallback flag affects classification too.
	if intent.NeedsFallback && interpreter != nil {
		fallbackTimeout, err := cfg.GetDuration("nlu.fallback_timeout")
		if err != nil {
			fallbackTimeout = 10 * time.Second
		}
		fbCtx, cancel := context.WithTimeout(ctx, fallbackTimeout)
		interpreted, err := interpreter.Interpret(fbCtx, utt)
		cancel()
		switch {
		case err != nil:
			logger.Debug("AI fallback unavailable, keeping unknown", zap.Error(err))
		case interpreted == nil || interpreted.Name == core.IntentUnknown:
		case interpreted.Confidence < cfg.GetFloat64("nlu.threshold"):
			logger.Debug("AI fallback below threshold, keeping unknown",
				zap.Float64("confidence", interpreted.Confidence))
		default:
			interpreted.Utterance = utt
			if interpreted.Entities == nil {
				interpreted.Entities = map[string]string{}
			}
			intent = *interpreted
		}
	}

	state := core.NewDialogueState()
	result, dispatchErr := dispatcher.Dispatch(ctx, &intent, state)
	response, prosody := formatter.Format(result, utt.Language)
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Classification ===\n")
	fmt.Printf("Intent: %s\n", intent.Name)
	fmt.Printf("Confidence: %.2f\n", intent.Confidence)
	for key, value := range intent.Entities {
		fmt.Printf("Entity %s: %s\n", key, value)
	}

	fmt.Printf("\n=== Dispatch ===\n")
	fmt.Printf("Success: %t\n", result.OK)
	if dispatchErr != nil {
		fmt.Printf("Error: %v\n", dispatchErr)
	}
	fmt.Printf("New topic: %s\n", state.Topic)
	fmt.Printf("Response: %s\n", response)
	fmt.Printf("Prosody: rate %+d, volume %+.2f, pitch %+d\n", prosody.Rate, prosody.Volume, prosody.Pitch)
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := interpreter.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close interpreter", zap.Error(err))
		}
	}
	if closer, ok := memRepo.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close memory store", zap.Error(err))
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("assistant.language", *language)
	v.Set("nlu.threshold", *threshold)
	v.Set("nlu.fallback_provider", *fallbackProvider)

	switch *fallbackProvider {
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
	}

	v.Set("memory.store", *store)
	v.Set("memory.sqlite_path", *sqlitePath)

	return config.NewFromViper(v)
}

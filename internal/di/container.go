package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/factory"
	"github.com/mikey/luca-assistant/internal/lexicon"
	"github.com/mikey/luca-assistant/internal/logging"
	"github.com/mikey/luca-assistant/internal/nlu"
	"github.com/mikey/luca-assistant/internal/respond"
	"github.com/mikey/luca-assistant/internal/wake"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewInterpreterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMemoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEmailFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewWeatherFactory); err != nil {
		return nil, err
	}

	// Register lexicon
	if err := container.Provide(lexicon.Default); err != nil {
		return nil, err
	}

	// Register collaborators
	if err := container.Provide(func(f *factory.InterpreterFactory) (core.Interpreter, error) {
		return f.CreateInterpreter()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.MemoryFactory) (core.MemoryRepository, error) {
		return f.CreateMemoryRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EmailFactory) (core.EmailProvider, error) {
		return f.CreateEmailProvider()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.WeatherFactory) core.WeatherProvider {
		return f.CreateWeatherProvider()
	}); err != nil {
		return nil, err
	}

	// Register pipeline stages
	if err := container.Provide(func(lex *lexicon.Lexicon, cfg *config.Config) core.WakeDetector {
		return wake.NewDetector(lex, cfg.GetFloat64("wake.confidence"))
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(lex *lexicon.Lexicon, cfg *config.Config, logger *zap.Logger) core.IntentClassifier {
		return nlu.NewClassifier(lex,
			cfg.GetFloat64("nlu.threshold"),
			cfg.GetBool("nlu.cross_language"),
			logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func() core.ResponseFormatter {
		return respond.NewFormatter()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func() core.Clock {
		return core.SystemClock{}
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(func(
		email core.EmailProvider,
		weather core.WeatherProvider,
		interpreter core.Interpreter,
		clock core.Clock,
		mem core.MemoryRepository,
		lex *lexicon.Lexicon,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.Dispatcher, error) {
		timeout, err := cfg.GetDuration("assistant.collaborator_timeout")
		if err != nil {
			timeout = 10 * time.Second
		}
		return core.NewDispatcher(email, weather, interpreter, clock, mem, lex,
			timeout, cfg.GetString("assistant.default_city"), logger), nil
	}); err != nil {
		return nil, err
	}

	// Register session
	if err := container.Provide(func(
		detector core.WakeDetector,
		classifier core.IntentClassifier,
		dispatcher *core.Dispatcher,
		interpreter core.Interpreter,
		mem core.MemoryRepository,
		formatter core.ResponseFormatter,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.Session, error) {
		fallbackTimeout, err := cfg.GetDuration("nlu.fallback_timeout")
		if err != nil {
			fallbackTimeout = 10 * time.Second
		}
		return core.NewSession(
			detector,
			classifier,
			dispatcher,
			interpreter,
			mem,
			formatter,
			nil, // speech output is wired by the voice shell, not the core
			cfg.GetBool("assistant.continuous"),
			cfg.GetFloat64("nlu.threshold"),
			fallbackTimeout,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

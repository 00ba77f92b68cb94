package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/di"
	"github.com/mikey/luca-assistant/internal/factory"
)

func main() {
	// Load .env for API keys; absence is fine
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	session *core.Session,
	memRepo core.MemoryRepository,
	interpreter core.Interpreter,
	memFactory *factory.MemoryFactory,
) error {
	defer logger.Sync()

	lang := core.Language(cfg.GetString("assistant.language"))
	logger.Info("assistant ready",
		zap.String("language", string(lang)),
		zap.String("memory_store", cfg.GetString("memory.store")))

	// Start the background memory decay loop
	frequency, err := memFactory.GetCleanupFrequency()
	if err != nil {
		frequency = time.Hour
	}
	session.StartCleanup(frequency, memFactory.GetCleanupAge())

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("Luca is listening. Type your request, or say goodbye to end the session.")
	fmt.Print("> ")

loop:
	for {
		select {
		case <-sigCh:
			logger.Info("Shutting down...")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			line = strings.TrimSpace(line)
			if line == "" {
				fmt.Print("> ")
				continue
			}

			utt := core.Utterance{
				Text:      line,
				Language:  lang,
				Origin:    core.OriginText,
				Timestamp: time.Now(),
			}
			out, err := session.ProcessTurn(context.Background(), utt)
			if err != nil {
				if errors.Is(err, core.ErrSessionEnded) {
					break loop
				}
				logger.Error("turn failed", zap.Error(err))
				fmt.Print("> ")
				continue
			}

			fmt.Println(out.Response)
			if session.State().Topic == core.TopicEnded {
				break loop
			}
			fmt.Print("> ")
		}
	}

	// Stop the session and its cleanup loop
	session.Stop()

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

	logger.Info("Shutdown complete")
	return nil
}

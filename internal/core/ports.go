package core

import (
	"context"
	"time"
)

// EmailProvider is the email collaborator. All calls are possibly-failing
// remote calls and must be invoked with a deadline.
type EmailProvider interface {
	// ListInbox returns up to max messages, newest first.
	ListInbox(ctx context.Context, max int) ([]EmailMessage, error)

	// Get retrieves a single message by id.
	Get(ctx context.Context, id string) (*EmailMessage, error)

	// Move files a message into a folder/label.
	Move(ctx context.Context, id string, folder string) error

	// Send delivers a buffered draft.
	Send(ctx context.Context, draft *Draft) error
}

// Interpreter is the AI-fallback collaborator consulted for low-confidence
// utterances and for generating reply drafts. Unavailability keeps the
// original classification.
type Interpreter interface {
	// Interpret maps an utterance to an intent when pattern rules failed.
	Interpret(ctx context.Context, utt Utterance) (*Intent, error)

	// DraftReply writes a reply body for the given email.
	DraftReply(ctx context.Context, email *EmailMessage, lang Language) (string, error)
}

// WeatherProvider is the weather collaborator.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*WeatherReport, error)
}

// Speaker is the TTS collaborator. Speak is fire-and-forget from the
// pipeline's perspective; Stop halts output without touching dialogue state.
type Speaker interface {
	Speak(ctx context.Context, text string, lang Language, prosody Prosody) error
	Stop()
}

// Clock abstracts time for the get_time action and for tests.
type Clock interface {
	Now() time.Time
}

// MemoryRepository owns all MemoryItems. Items are appended, never mutated;
// conversation items are ring-buffer bounded and everything decays via
// Cleanup.
type MemoryRepository interface {
	// Add appends an item, evicting the oldest conversation items beyond
	// the configured short-term capacity.
	Add(ctx context.Context, item MemoryItem) error

	// Recent returns the last n items of a kind, most recent first.
	Recent(ctx context.Context, kind MemoryKind, n int) ([]MemoryItem, error)

	// Cleanup removes items older than the cutoff. Idempotent.
	Cleanup(ctx context.Context, olderThan time.Duration) error

	// Snapshot returns the read-only view for one turn.
	Snapshot(ctx context.Context) (MemorySnapshot, error)
}

// WakeDetector gates continuous-listening input on a wake phrase.
type WakeDetector interface {
	// Detect reports activation and returns the utterance with the wake
	// phrase removed.
	Detect(text string, lang Language) (bool, string)
}

// IntentClassifier resolves utterances to intents. Total: always returns a
// defined intent, unknown included.
type IntentClassifier interface {
	Classify(utt Utterance, snapshot MemorySnapshot) Intent
}

// ResponseFormatter renders an action result into the target language and
// derives prosody hints from the result's emotion.
type ResponseFormatter interface {
	Format(result ActionResult, lang Language) (string, Prosody)
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

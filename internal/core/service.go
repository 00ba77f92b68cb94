package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TurnOutput is what one processed utterance produced for the caller.
// Activated is false when continuous-listening mode heard no wake phrase and
// the turn was skipped entirely.
type TurnOutput struct {
	Activated bool
	Result    ActionResult
	Response  string
	Prosody   Prosody
}

// Session is the per-conversation pipeline: wake gate, classify, AI fallback,
// dispatch, format, speak. Turns are serialized; an utterance arriving while
// a turn is in flight waits rather than interleaving.
type Session struct {
	mu sync.Mutex

	wake        WakeDetector
	classifier  IntentClassifier
	dispatcher  *Dispatcher
	interpreter Interpreter
	memory      MemoryRepository
	formatter   ResponseFormatter
	speaker     Speaker
	logger      *zap.Logger

	state           *DialogueState
	continuous      bool
	threshold       float64
	fallbackTimeout time.Duration

	cleanupStop chan struct{}
	cleanupOnce sync.Once
}

// NewSession builds a session with fresh dialogue state. speaker may be nil
// for text-only sessions; continuous enables the wake gate for voice input.
// threshold gates AI-fallback verdicts the same way it gates rule matches.
func NewSession(
	wake WakeDetector,
	classifier IntentClassifier,
	dispatcher *Dispatcher,
	interpreter Interpreter,
	memory MemoryRepository,
	formatter ResponseFormatter,
	speaker Speaker,
	continuous bool,
	threshold float64,
	fallbackTimeout time.Duration,
	logger *zap.Logger,
) *Session {
	return &Session{
		wake:            wake,
		classifier:      classifier,
		dispatcher:      dispatcher,
		interpreter:     interpreter,
		memory:          memory,
		formatter:       formatter,
		speaker:         speaker,
		continuous:      continuous,
		threshold:       threshold,
		fallbackTimeout: fallbackTimeout,
		logger:          logger,
		state:           NewDialogueState(),
		cleanupStop:     make(chan struct{}),
	}
}

// ProcessTurn runs one utterance end-to-end. Returns ErrSessionEnded once
// goodbye has been dispatched.
func (s *Session) ProcessTurn(ctx context.Context, utt Utterance) (*TurnOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Topic == TopicEnded {
		return nil, ErrSessionEnded
	}

	if s.continuous && utt.Origin == OriginVoice {
		activated, remainder := s.wake.Detect(utt.Text, utt.Language)
		if !activated {
			return &TurnOutput{Activated: false}, nil
		}
		utt.Text = remainder
	}

	snapshot, err := s.memory.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot memory: %w", err)
	}

	intent := s.classifier.Classify(utt, snapshot)
	if intent.NeedsFallback {
		intent = s.fallback(ctx, intent)
	}

	result, err := s.dispatcher.Dispatch(ctx, &intent, s.state)
	if err != nil {
		s.logger.Warn("dispatch failed",
			zap.String("intent", string(intent.Name)),
			zap.Error(err))
	}

	text, prosody := s.formatter.Format(result, utt.Language)
	if s.speaker != nil && utt.Origin == OriginVoice {
		if err := s.speaker.Speak(ctx, text, utt.Language, prosody); err != nil {
			s.logger.Warn("speech output failed", zap.Error(err))
		}
	}

	return &TurnOutput{Activated: true, Result: result, Response: text, Prosody: prosody}, nil
}

// fallback consults the AI interpreter for a low-confidence utterance with a
// hard deadline. Unavailability keeps the unknown classification.
func (s *Session) fallback(ctx context.Context, original Intent) Intent {
	if s.interpreter == nil {
		return original
	}

	callCtx, cancel := context.WithTimeout(ctx, s.fallbackTimeout)
	defer cancel()

	interpreted, err := s.interpreter.Interpret(callCtx, original.Utterance)
	if err != nil {
		s.logger.Debug("AI fallback unavailable, keeping unknown", zap.Error(err))
		return original
	}
	if interpreted == nil || interpreted.Name == IntentUnknown {
		return original
	}
	if interpreted.Confidence < s.threshold {
		s.logger.Debug("AI fallback below threshold, keeping unknown",
			zap.String("intent", string(interpreted.Name)),
			zap.Float64("confidence", interpreted.Confidence),
			zap.Float64("threshold", s.threshold))
		return original
	}

	s.logger.Debug("AI fallback resolved intent",
		zap.String("intent", string(interpreted.Name)),
		zap.Float64("confidence", interpreted.Confidence))

	interpreted.Utterance = original.Utterance
	if interpreted.Entities == nil {
		interpreted.Entities = map[string]string{}
	}
	return *interpreted
}

// Interrupt halts speech output only. Committed state transitions and memory
// writes are never rolled back.
func (s *Session) Interrupt() {
	if s.speaker != nil {
		s.speaker.Stop()
	}
}

// State returns a copy of the dialogue state for display and tests.
func (s *Session) State() DialogueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state
}

// StartCleanup launches the background memory decay loop.
func (s *Session) StartCleanup(interval, olderThan time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.memory.Cleanup(context.Background(), olderThan); err != nil {
					s.logger.Warn("memory cleanup failed", zap.Error(err))
				}
			case <-s.cleanupStop:
				return
			}
		}
	}()
}

// Stop terminates the cleanup loop and any ongoing speech.
func (s *Session) Stop() {
	s.cleanupOnce.Do(func() { close(s.cleanupStop) })
	s.Interrupt()
}

package core

import (
	"errors"
)

var (
	// ErrNoDraftPending is returned when send_reply arrives without a
	// buffered draft. The dispatcher leaves state untouched.
	ErrNoDraftPending = errors.New("no draft pending")

	// ErrLowConfidence marks an intent that fell below the configured
	// threshold and was downgraded to unknown.
	ErrLowConfidence = errors.New("intent confidence below threshold")

	// ErrCollaboratorTimeout is returned when an external collaborator call
	// exceeded its deadline.
	ErrCollaboratorTimeout = errors.New("collaborator call timed out")

	// ErrCollaboratorUnavailable is returned when an external collaborator
	// is not configured or unreachable.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrCorruptedMemoryStore is reported when a persisted memory store
	// cannot be loaded at startup. The store degrades to empty.
	ErrCorruptedMemoryStore = errors.New("corrupted memory store")

	// ErrSessionEnded is returned when an utterance arrives after goodbye.
	ErrSessionEnded = errors.New("session ended")
)

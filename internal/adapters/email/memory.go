package email

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/luca-assistant/internal/core"
)

// MemoryProvider is an in-process mailbox for offline mode and tests.
type MemoryProvider struct {
	mu       sync.Mutex
	messages []core.EmailMessage
	sent     []core.Draft
}

// NewMemoryProvider seeds the mailbox with the given messages.
func NewMemoryProvider(messages []core.EmailMessage) *MemoryProvider {
	return &MemoryProvider{messages: messages}
}

// ListInbox returns up to max seeded messages.
func (p *MemoryProvider) ListInbox(ctx context.Context, max int) ([]core.EmailMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.messages)
	if max > 0 && max < n {
		n = max
	}
	out := make([]core.EmailMessage, n)
	copy(out, p.messages[:n])
	return out, nil
}

// Get retrieves a seeded message by id.
func (p *MemoryProvider) Get(ctx context.Context, id string) (*core.EmailMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range p.messages {
		if msg.ID == id {
			m := msg
			return &m, nil
		}
	}
	return nil, fmt.Errorf("message %s not found", id)
}

// Move drops the message from the mailbox.
func (p *MemoryProvider) Move(ctx context.Context, id string, folder string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, msg := range p.messages {
		if msg.ID == id {
			p.messages = append(p.messages[:i], p.messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("message %s not found", id)
}

// Send records the draft.
func (p *MemoryProvider) Send(ctx context.Context, draft *core.Draft) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, *draft)
	return nil
}

// Sent returns everything delivered so far, for inspection.
func (p *MemoryProvider) Sent() []core.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.Draft, len(p.sent))
	copy(out, p.sent)
	return out
}

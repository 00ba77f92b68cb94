package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/adapters/email"
	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
)

// EmailFactory creates email providers
type EmailFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEmailFactory creates a new email factory
func NewEmailFactory(cfg *config.Config, logger *zap.Logger) *EmailFactory {
	return &EmailFactory{cfg: cfg, logger: logger}
}

// CreateEmailProvider creates an email provider based on the configuration
func (f *EmailFactory) CreateEmailProvider() (core.EmailProvider, error) {
	provider := f.cfg.GetString("email.provider")

	switch provider {
	case "gmail":
		return email.NewGmailProvider(
			context.Background(),
			f.cfg.GetString("email.gmail_credentials"),
			f.logger,
		)
	case "smtp":
		return email.NewSMTPProvider(
			f.cfg.GetString("email.smtp_addr"),
			f.cfg.GetString("email.smtp_from"),
			f.cfg.GetString("email.smtp_username"),
			f.cfg.GetString("email.smtp_password"),
			f.logger,
		), nil
	case "memory":
		f.logger.Info("using in-memory mailbox")
		return email.NewMemoryProvider(sampleInbox()), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}
}

// sampleInbox seeds the offline mailbox so email flows are usable without
// any account configured.
func sampleInbox() []core.EmailMessage {
	return []core.EmailMessage{
		{
			ID:      "msg-1",
			From:    "sami@example.tn",
			Subject: "Meeting tomorrow",
			Body:    "Salut, are we still on for the 10am meeting tomorrow?",
			Unread:  true,
		},
		{
			ID:      "msg-2",
			From:    "fatma@example.tn",
			Subject: "Invoice March",
			Body:    "Please find attached the invoice for March.",
			Unread:  true,
		},
		{
			ID:      "msg-3",
			From:    "newsletter@example.com",
			Subject: "Weekly digest",
			Body:    "Here is what happened this week.",
		},
	}
}

package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// SMTPProvider is a send-only transport for setups without Gmail API access.
// Inbox operations report the collaborator as unavailable; replies still go
// out as long as the draft carries an explicit recipient.
type SMTPProvider struct {
	addr     string
	from     string
	username string
	password string
	logger   *zap.Logger
}

// NewSMTPProvider configures the transport. addr is host:port of a server
// accepting STARTTLS.
func NewSMTPProvider(addr, from, username, password string, logger *zap.Logger) *SMTPProvider {
	return &SMTPProvider{
		addr:     addr,
		from:     from,
		username: username,
		password: password,
		logger:   logger,
	}
}

// ListInbox is not supported over SMTP.
func (p *SMTPProvider) ListInbox(ctx context.Context, max int) ([]core.EmailMessage, error) {
	return nil, fmt.Errorf("smtp transport is send-only: %w", core.ErrCollaboratorUnavailable)
}

// Get is not supported over SMTP.
func (p *SMTPProvider) Get(ctx context.Context, id string) (*core.EmailMessage, error) {
	return nil, fmt.Errorf("smtp transport is send-only: %w", core.ErrCollaboratorUnavailable)
}

// Move is not supported over SMTP.
func (p *SMTPProvider) Move(ctx context.Context, id string, folder string) error {
	return fmt.Errorf("smtp transport is send-only: %w", core.ErrCollaboratorUnavailable)
}

// Send delivers the draft over authenticated SMTP.
func (p *SMTPProvider) Send(ctx context.Context, draft *core.Draft) error {
	if draft.To == "" {
		return fmt.Errorf("draft has no recipient")
	}

	var auth sasl.Client
	if p.username != "" {
		auth = sasl.NewPlainClient("", p.username, p.password)
	}

	msg := strings.NewReader(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		p.from, draft.To, draft.Subject, draft.Body))

	if err := smtp.SendMail(p.addr, auth, p.from, []string{draft.To}, msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", p.addr, err)
	}

	p.logger.Debug("reply sent over smtp",
		zap.String("to", draft.To),
		zap.String("subject", draft.Subject))
	return nil
}

// Package email implements the EmailProvider port: Gmail for full inbox
// access, SMTP for send-only deployments, and an in-memory provider for
// offline use and tests.
package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mikey/luca-assistant/internal/core"
)

// GmailProvider talks to the Gmail API on behalf of a single account.
type GmailProvider struct {
	service *gmail.Service
	user    string
	logger  *zap.Logger
}

// NewGmailProvider builds the provider from a credentials file.
func NewGmailProvider(ctx context.Context, credentialsFile string, logger *zap.Logger) (*GmailProvider, error) {
	service, err := gmail.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gmail.GmailModifyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &GmailProvider{service: service, user: "me", logger: logger}, nil
}

// ListInbox returns up to max inbox messages, newest first.
func (p *GmailProvider) ListInbox(ctx context.Context, max int) ([]core.EmailMessage, error) {
	list, err := p.service.Users.Messages.List(p.user).
		LabelIds("INBOX").
		MaxResults(int64(max)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	messages := make([]core.EmailMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := p.Get(ctx, ref.Id)
		if err != nil {
			p.logger.Warn("skipping unreadable message", zap.String("id", ref.Id), zap.Error(err))
			continue
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// Get retrieves one message with headers and a decoded body.
func (p *GmailProvider) Get(ctx context.Context, id string) (*core.EmailMessage, error) {
	msg, err := p.service.Users.Messages.Get(p.user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	email := &core.EmailMessage{ID: msg.Id}
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			email.Unread = true
		}
	}
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				email.From = header.Value
			case "Subject":
				email.Subject = header.Value
			}
		}
		email.Body = extractBody(msg.Payload)
	}
	if email.Body == "" {
		email.Body = msg.Snippet
	}
	return email, nil
}

// Move relabels a message. "archive" removes it from the inbox; any other
// folder is applied as an uppercase Gmail label.
func (p *GmailProvider) Move(ctx context.Context, id string, folder string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"INBOX"}}
	if folder != "archive" {
		req.AddLabelIds = []string{strings.ToUpper(folder)}
	}
	if _, err := p.service.Users.Messages.Modify(p.user, id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to move message %s: %w", id, err)
	}
	return nil
}

// Send delivers a draft as an RFC 2822 message.
func (p *GmailProvider) Send(ctx context.Context, draft *core.Draft) error {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", draft.To, draft.Subject, draft.Body)
	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}
	if draft.InReplyTo != "" {
		msg.ThreadId = draft.InReplyTo
	}
	if _, err := p.service.Users.Messages.Send(p.user, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// extractBody decodes the first text/plain part, falling back to the
// top-level body.
func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
				return string(data)
			}
		}
	}
	return ""
}

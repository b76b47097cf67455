package service

import (
	"context"
	"fmt"
	"html/template"
)

// SendDirectMail resolves a free-form faculty name and emails that
// person directly, outside of any meeting.
func (s *MeetingService) SendDirectMail(ctx context.Context, recipientName, subject, message string) (string, error) {
	entry, err := s.resolver.Resolve(ctx, recipientName)
	if err != nil {
		return "", fmt.Errorf("SendDirectMail: %w", err)
	}
	body := fmt.Sprintf("<html><body><p>%s</p></body></html>", template.HTMLEscapeString(message))
	if err := s.mailer.SendDirect(ctx, entry.Email, subject, body); err != nil {
		return "", fmt.Errorf("SendDirectMail: %w", err)
	}
	return entry.Email, nil
}

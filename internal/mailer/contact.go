package mailer

import (
	"context"
	"fmt"
	"strings"

	"bookfinder/internal/logger"
)

// ContactForm is the About page's message to the site owners.
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,oneof='General Inquiry' 'Suggestion' 'Technical Support' 'Partnership Opportunity' 'Other'"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactService struct {
	sender Sender
	to     string
	log    logger.Logger
}

func NewContactService(sender Sender, to string, log logger.Logger) *ContactService {
	return &ContactService{sender: sender, to: to, log: log}
}

// Submit forwards f to the contact address with Reply-To set to the sender.
func (s *ContactService) Submit(ctx context.Context, f ContactForm) error {
	msg := Message{
		To:      []string{s.to},
		ReplyTo: strings.TrimSpace(f.Email),
		Subject: "[BookFinder] " + f.Subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", strings.TrimSpace(f.Name), strings.TrimSpace(f.Email), f.Message),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error("contact message failed", logger.String("subject", f.Subject), logger.Error(err))
		return err
	}
	return nil
}

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/carepulse/intake-platform/pkg/logging"
)

// Contact is the resolved destination for a recipient id.
type Contact struct {
	Name  string
	Phone string
	Email string
}

// Directory resolves an opaque recipient id (the requesting account's user
// id) to contact details. The patient registry implements this.
type Directory interface {
	Contact(ctx context.Context, userID string) (*Contact, error)
}

// Service is the notification gateway: a single-attempt send keyed by
// recipient id. Callers treat the result as best-effort.
type Service struct {
	sms       SMSSender
	email     EmailSender
	directory Directory
	logger    *logging.Logger
}

// NewService creates a notification service. email may be nil; sms and
// directory are required for SMS dispatch.
func NewService(sms SMSSender, email EmailSender, directory Directory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sms:       sms,
		email:     email,
		directory: directory,
		logger:    logger,
	}
}

// Notify sends content to the recipient's phone as a single SMS attempt and
// returns the provider receipt. The caller decides whether a failure matters.
func (s *Service) Notify(ctx context.Context, recipientID, content string) (*Receipt, error) {
	if s.sms == nil {
		return nil, errors.New("notify: sms sender not configured")
	}
	if s.directory == nil {
		return nil, errors.New("notify: recipient directory not configured")
	}

	contact, err := s.directory.Contact(ctx, recipientID)
	if err != nil {
		s.logger.Error("failed to resolve notification recipient", "error", err, "recipient_id", recipientID)
		return nil, fmt.Errorf("notify: resolve recipient: %w", err)
	}
	if contact.Phone == "" {
		return nil, fmt.Errorf("notify: recipient %s has no phone number", recipientID)
	}

	return s.sms.SendSMS(ctx, contact.Phone, content)
}

// SendRegistrationConfirmation emails a welcome message to a newly registered
// patient. Silently a no-op when no email sender is configured.
func (s *Service) SendRegistrationConfirmation(ctx context.Context, name, email string) error {
	if s.email == nil || email == "" {
		return nil
	}

	msg := EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Welcome to CarePulse",
		Body: fmt.Sprintf("Hi %s,\n\nYour CarePulse patient profile has been created. "+
			"You can now request appointments with our physicians.\n\nThe CarePulse team", name),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: registration confirmation: %w", err)
	}
	return nil
}

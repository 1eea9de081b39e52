// Package services – InboxService
//
// Newsletter signups and contact messages follow the same shape: validate,
// write the durable row, then fire two emails (operator alert, submitter
// confirmation) concurrently. The emails are best-effort; the submission
// succeeds once the row is stored, and send failures are only logged.
package services

import (
	"context"
	netmail "net/mail"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/mail"
)

// InboxRepo defines the repository contract required by InboxService.
type InboxRepo interface {
	// CreateSubscriber inserts a newsletter signup.
	CreateSubscriber(ctx context.Context, db *gorm.DB, name, email string) (*domain.Subscriber, error)

	// CreateContactMessage inserts a contact form submission.
	CreateContactMessage(ctx context.Context, db *gorm.DB, name, email, message string) (*domain.ContactMessage, error)
}

// InboxService handles the two write-side forms the site exposes.
type InboxService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the inbox repository used by this service.
	Repo InboxRepo
	// Mailer sends the side-channel emails. May be nil.
	Mailer mail.Mailer
}

// NewInboxService constructs an InboxService.
func NewInboxService(db *gorm.DB, r InboxRepo, m mail.Mailer) *InboxService {
	return &InboxService{DB: db, Repo: r, Mailer: m}
}

func validEmail(email string) bool {
	addr, err := netmail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// SubscribeNewsletter stores a signup and fires the notification emails.
func (s *InboxService) SubscribeNewsletter(ctx context.Context, name, email string) (*domain.Subscriber, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, ErrMissingField
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	sub, err := s.Repo.CreateSubscriber(ctx, s.DB, name, email)
	if err != nil {
		log.Error().Err(err).Msg("subscriber insert failed")
		return nil, err
	}

	s.notify(ctx, mail.Notification{Kind: mail.KindNewsletter, Name: name, Email: email})
	return sub, nil
}

// SubmitContact stores a contact message and fires the notification emails.
func (s *InboxService) SubmitContact(ctx context.Context, name, email, message string) (*domain.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return nil, ErrMissingField
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	msg, err := s.Repo.CreateContactMessage(ctx, s.DB, name, email, message)
	if err != nil {
		log.Error().Err(err).Msg("contact insert failed")
		return nil, err
	}

	s.notify(ctx, mail.Notification{Kind: mail.KindContact, Name: name, Email: email, Message: message})
	return msg, nil
}

// notify sends the operator alert and submitter confirmation concurrently
// and waits for both. Failures are logged, never propagated.
func (s *InboxService) notify(ctx context.Context, n mail.Notification) {
	if s.Mailer == nil {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Mailer.SendOperatorAlert(ctx, n); err != nil {
			log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("operator alert failed")
		}
		return nil
	})
	g.Go(func() error {
		if err := s.Mailer.SendConfirmation(ctx, n); err != nil {
			log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("confirmation mail failed")
		}
		return nil
	})
	_ = g.Wait()
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides inserts for the inbox collections:
// newsletter signups and contact-form submissions. Both are write-once rows
// created with UUID primary keys and UTC timestamps, mirroring the post
// repository's creation style.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// CreateSubscriber inserts a newsletter signup. The notification side
// channel runs independently of this write; a failed email never touches
// the stored row.
func CreateSubscriber(ctx context.Context, db *gorm.DB, name, email string) (*domain.Subscriber, error) {
	s := &domain.Subscriber{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// CreateContactMessage inserts a contact-form submission.
func CreateContactMessage(ctx context.Context, db *gorm.DB, name, email, message string) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		Message:     message,
		SubmittedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

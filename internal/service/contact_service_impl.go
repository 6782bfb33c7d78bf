package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/portfolio/backend/internal/mailer"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo       repository.ContactRepository
	sender     mailer.Sender
	ownerEmail string
}

// NewContactService creates a ContactService. ownerEmail receives a copy of
// every submission.
func NewContactService(repo repository.ContactRepository, sender mailer.Sender, ownerEmail string) ContactService {
	return &contactServiceImpl{repo: repo, sender: sender, ownerEmail: ownerEmail}
}

// Submit persists msg, then sends the owner notification and the submitter
// confirmation one after the other.
func (s *contactServiceImpl) Submit(ctx context.Context, msg *model.ContactSubmission) error {
	if err := s.repo.Save(ctx, msg); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}

	owner, err := mailer.OwnerNotification(s.ownerEmail, msg.Fields())
	if err != nil {
		return fmt.Errorf("%w: render owner notification: %v", ErrNotification, err)
	}
	if _, err := s.sender.Send(ctx, owner); err != nil {
		slog.Error("owner notification failed", "submission_id", msg.ID, "error", err)
		return fmt.Errorf("%w: owner notification: %w", ErrNotification, err)
	}

	confirm, err := mailer.SenderConfirmation(msg.Fields())
	if err != nil {
		return fmt.Errorf("%w: render confirmation: %v", ErrNotification, err)
	}
	if _, err := s.sender.Send(ctx, confirm); err != nil {
		slog.Error("sender confirmation failed", "submission_id", msg.ID, "error", err)
		return fmt.Errorf("%w: sender confirmation: %w", ErrNotification, err)
	}

	return nil
}

// List returns all submissions, newest first.
func (s *contactServiceImpl) List(ctx context.Context) ([]*model.ContactSubmission, error) {
	return s.repo.List(ctx)
}

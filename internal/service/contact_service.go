package service

import (
	"context"
	"errors"

	"github.com/portfolio/backend/internal/model"
)

// ErrNotification is returned by Submit when the submission was stored but an
// email could not be sent. The record is not rolled back.
var ErrNotification = errors.New("notification failed")

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit stores msg and then notifies the owner and the submitter, in
	// that order. msg.ID and timestamps are populated on success.
	Submit(ctx context.Context, msg *model.ContactSubmission) error

	// List returns every stored submission, newest first.
	List(ctx context.Context) ([]*model.ContactSubmission, error)
}

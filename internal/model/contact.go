package model

import (
	"time"

	"github.com/portfolio/backend/internal/validation"
)

// ContactSubmission is one message sent through the portfolio contact form.
// It is written once and never updated or deleted.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,contactemail"`
	Subject   string    `json:"subject" validate:"required"`
	Message   string    `json:"message" validate:"required,min=10"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewContactSubmission builds an unsaved submission from form fields.
func NewContactSubmission(f validation.Fields) *ContactSubmission {
	return &ContactSubmission{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
	}
}

// Fields returns the user-supplied part of the submission.
func (c *ContactSubmission) Fields() validation.Fields {
	return validation.Fields{
		Name:    c.Name,
		Email:   c.Email,
		Subject: c.Subject,
		Message: c.Message,
	}
}

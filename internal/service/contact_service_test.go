package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/mailer"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// mockContactRepository: in-memory stub for testing
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	saveFunc func(ctx context.Context, msg *model.ContactSubmission) error
	listFunc func(ctx context.Context) ([]*model.ContactSubmission, error)
	saved    []*model.ContactSubmission
}

func (m *mockContactRepository) Save(ctx context.Context, msg *model.ContactSubmission) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, msg); err != nil {
			return err
		}
	}
	if msg.ID == "" {
		msg.ID = "generated-id"
	}
	m.saved = append(m.saved, msg)
	return nil
}

func (m *mockContactRepository) List(ctx context.Context) ([]*model.ContactSubmission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return m.saved, nil
}

// ---------------------------------------------------------------------------
// recordingSender captures outbound mail, optionally failing the nth send
// ---------------------------------------------------------------------------

type recordingSender struct {
	sent   []mailer.Message
	failOn int // 1-based index of the send that fails; 0 never fails
	err    error
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) (*mailer.Receipt, error) {
	s.sent = append(s.sent, msg)
	if s.failOn == len(s.sent) {
		return nil, s.err
	}
	return &mailer.Receipt{MessageID: "<id>", Accepted: []string{msg.To}}, nil
}

func annSubmission() *model.ContactSubmission {
	return &model.ContactSubmission{
		Name:    "Ann",
		Email:   "ann@x.com",
		Subject: "Hi",
		Message: "Hello there, testing",
	}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestContactService_Submit_PersistsThenSendsTwoEmails(t *testing.T) {
	repo := &mockContactRepository{}
	sender := &recordingSender{}
	svc := NewContactService(repo, sender, "owner@example.com")

	msg := annSubmission()
	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(repo.saved))
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}

	owner, confirm := sender.sent[0], sender.sent[1]
	if owner.To != "owner@example.com" {
		t.Errorf("first email should go to owner, got %q", owner.To)
	}
	if owner.Subject != "New Contact: Hi" {
		t.Errorf("unexpected owner subject %q", owner.Subject)
	}
	if owner.ReplyTo != "ann@x.com" {
		t.Errorf("expected replyTo=ann@x.com, got %q", owner.ReplyTo)
	}
	if confirm.To != "ann@x.com" {
		t.Errorf("second email should go to submitter, got %q", confirm.To)
	}
	if confirm.Subject != mailer.ConfirmationSubject {
		t.Errorf("unexpected confirmation subject %q", confirm.Subject)
	}
}

// TestContactService_Submit_NoEmailOnSaveFailure verifies nothing is sent when persistence fails.
func TestContactService_Submit_NoEmailOnSaveFailure(t *testing.T) {
	repo := &mockContactRepository{
		saveFunc: func(ctx context.Context, msg *model.ContactSubmission) error {
			return repository.ErrSchema
		},
	}
	sender := &recordingSender{}
	svc := NewContactService(repo, sender, "owner@example.com")

	err := svc.Submit(context.Background(), annSubmission())
	if !errors.Is(err, repository.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	if errors.Is(err, ErrNotification) {
		t.Error("a storage error must not be reported as a notification error")
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no emails, got %d", len(sender.sent))
	}
}

// TestContactService_Submit_OwnerSendFails_RecordRetained verifies the record
// survives a relay failure and the confirmation is never attempted.
func TestContactService_Submit_OwnerSendFails_RecordRetained(t *testing.T) {
	relayErr := errors.New("dial tcp: connection refused")
	repo := &mockContactRepository{}
	sender := &recordingSender{failOn: 1, err: relayErr}
	svc := NewContactService(repo, sender, "owner@example.com")

	err := svc.Submit(context.Background(), annSubmission())
	if !errors.Is(err, ErrNotification) {
		t.Fatalf("expected ErrNotification, got %v", err)
	}
	if !errors.Is(err, relayErr) {
		t.Errorf("expected relay error to be wrapped, got %v", err)
	}
	if len(repo.saved) != 1 {
		t.Errorf("expected record to be retained, got %d", len(repo.saved))
	}
	if len(sender.sent) != 1 {
		t.Errorf("confirmation must not be attempted after owner failure, got %d sends", len(sender.sent))
	}
}

func TestContactService_Submit_ConfirmationFails(t *testing.T) {
	repo := &mockContactRepository{}
	sender := &recordingSender{failOn: 2, err: errors.New("535 auth failed")}
	svc := NewContactService(repo, sender, "owner@example.com")

	err := svc.Submit(context.Background(), annSubmission())
	if !errors.Is(err, ErrNotification) {
		t.Fatalf("expected ErrNotification, got %v", err)
	}
	if len(repo.saved) != 1 {
		t.Errorf("expected record to be retained, got %d", len(repo.saved))
	}
	if len(sender.sent) != 2 {
		t.Errorf("expected both sends attempted, got %d", len(sender.sent))
	}
}

// TestContactService_Submit_UsesStoredValues verifies the emails carry the normalised record.
func TestContactService_Submit_UsesStoredValues(t *testing.T) {
	repo := &mockContactRepository{
		saveFunc: func(ctx context.Context, msg *model.ContactSubmission) error {
			msg.Email = "ann@x.com"
			msg.CreatedAt = time.Now()
			return nil
		},
	}
	sender := &recordingSender{}
	svc := NewContactService(repo, sender, "owner@example.com")

	msg := annSubmission()
	msg.Email = "  ANN@X.COM "
	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.sent[1].To != "ann@x.com" {
		t.Errorf("expected normalised recipient, got %q", sender.sent[1].To)
	}
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func TestContactService_List_ReturnsMessages(t *testing.T) {
	now := time.Now()
	want := []*model.ContactSubmission{
		{ID: "2", Email: "b@b.com", CreatedAt: now},
		{ID: "1", Email: "a@b.com", CreatedAt: now.Add(-time.Minute)},
	}
	repo := &mockContactRepository{
		listFunc: func(ctx context.Context) ([]*model.ContactSubmission, error) {
			return want, nil
		},
	}
	svc := NewContactService(repo, &recordingSender{}, "owner@example.com")

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "2" {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestContactService_List_RepositoryError propagates repository errors.
func TestContactService_List_RepositoryError(t *testing.T) {
	repo := &mockContactRepository{
		listFunc: func(ctx context.Context) ([]*model.ContactSubmission, error) {
			return nil, errors.New("db read failed")
		},
	}
	svc := NewContactService(repo, &recordingSender{}, "owner@example.com")

	if _, err := svc.List(context.Background()); err == nil {
		t.Error("expected error from repository, got nil")
	}
}

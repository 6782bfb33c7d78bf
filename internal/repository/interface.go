package repository

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository persists contact submissions. Records are append-only.
type ContactRepository interface {
	// Save validates and inserts msg, filling in ID and timestamps.
	Save(ctx context.Context, msg *model.ContactSubmission) error
	// List returns every submission, newest first.
	List(ctx context.Context) ([]*model.ContactSubmission, error)
}

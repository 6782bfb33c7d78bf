package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portfolio/backend/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

var _ ContactRepository = (*PgContactRepository)(nil)

// Ping は DB 接続を確認する（DB インターフェース実装）
func (r *PgContactRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Save inserts a new contact_submissions row and populates msg.ID from the
// RETURNING clause.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactSubmission) error {
	if err := prepare(msg, time.Now().UTC()); err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_submissions (name, email, subject, message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt, msg.UpdatedAt,
	).Scan(&msg.ID)
}

// List returns all submissions ordered by created_at descending.
func (r *PgContactRepository) List(ctx context.Context) ([]*model.ContactSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, subject, message, created_at, updated_at
		 FROM contact_submissions
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.ContactSubmission
	for rows.Next() {
		var s model.ContactSubmission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/portfolio/backend/internal/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS contact_submissions (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contact_submissions_created_at_idx ON contact_submissions (created_at DESC);`

// SQLiteContactRepository stores submissions in an embedded SQLite file.
// Timestamps are kept as Unix nanoseconds so ordering is exact.
type SQLiteContactRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ContactRepository = (*SQLiteContactRepository)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteContactRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteContactRepository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Ping checks the database handle.
func (r *SQLiteContactRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *SQLiteContactRepository) Close() error {
	return r.db.Close()
}

// Save validates msg, assigns a UUID and inserts it.
func (r *SQLiteContactRepository) Save(ctx context.Context, msg *model.ContactSubmission) error {
	if err := prepare(msg, r.now()); err != nil {
		return err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, subject, message, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, msg.Name, msg.Email, msg.Subject, msg.Message,
		msg.CreatedAt.UnixNano(), msg.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// List returns all submissions ordered by created_at descending.
func (r *SQLiteContactRepository) List(ctx context.Context) ([]*model.ContactSubmission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at, updated_at
		 FROM contact_submissions
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.ContactSubmission
	for rows.Next() {
		var s model.ContactSubmission
		var created, updated int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message, &created, &updated); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		s.UpdatedAt = time.Unix(0, updated).UTC()
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

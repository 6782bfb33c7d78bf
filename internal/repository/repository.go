package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Store bundles the contact repository with its lifecycle.
type Store struct {
	Contacts ContactRepository
	DB       DB
	close    func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the database named by url and verifies the connection.
// postgres:// and postgresql:// URLs use pgx; sqlite:// and file: URLs use the
// embedded SQLite driver.
func Open(ctx context.Context, url string) (*Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pool, err := NewPool(ctx, url)
		if err != nil {
			return nil, err
		}
		repo := NewPgContactRepository(pool)
		return &Store{Contacts: repo, DB: repo, close: pool.Close}, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		repo, err := OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return &Store{Contacts: repo, DB: repo, close: func() { _ = repo.Close() }}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
	}
}

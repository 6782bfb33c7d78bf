package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations
  status      list migrations and whether they are applied
  down        roll back the most recently applied migration
  reset       drop every table and recreate from the consolidated schema
  fresh       drop every table and apply all migrations in order`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Development())

	if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") && !strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
		slog.Info("nothing to migrate; embedded stores create their schema on open")
		return
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: findMigrationDir()}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		err = m.up(ctx)
	case "status":
		err = m.status(ctx)
	case "down":
		err = m.down(ctx)
	case "reset":
		if err = m.dropAll(ctx); err == nil {
			err = m.consolidated(ctx)
		}
	case "fresh":
		if err = m.dropAll(ctx); err == nil {
			err = m.up(ctx)
		}
	default:
		usage()
	}
	if err != nil {
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectMigrations returns migration names (file name without the
// .up.sql suffix) in apply order.
func collectMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, strings.TrimSuffix(e.Name(), ".up.sql"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// pending returns the migrations in all that are not in applied, in order.
func pending(all, applied []string) []string {
	return lo.Without(all, applied...)
}

type migrator struct {
	pool *pgxpool.Pool
	dir  string
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.pool.Query(ctx, "SELECT name FROM schema_migrations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (m *migrator) exec(ctx context.Context, file string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, file))
	if err != nil {
		return err
	}
	_, err = m.pool.Exec(ctx, string(sql))
	return err
}

func (m *migrator) up(ctx context.Context) error {
	all, err := collectMigrations(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	todo := pending(all, done)
	for _, name := range todo {
		if err := m.exec(ctx, name+".up.sql"); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		slog.Info("migration completed", "migration", name)
	}
	if len(todo) == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", len(todo))
	}
	return nil
}

func (m *migrator) down(ctx context.Context) error {
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	if len(done) == 0 {
		slog.Info("nothing to roll back")
		return nil
	}
	last := done[len(done)-1]
	if err := m.exec(ctx, last+".down.sql"); err != nil {
		return fmt.Errorf("%s: %w", last, err)
	}
	if _, err := m.pool.Exec(ctx, "DELETE FROM schema_migrations WHERE name=$1", last); err != nil {
		return err
	}
	slog.Info("migration rolled back", "migration", last)
	return nil
}

func (m *migrator) status(ctx context.Context) error {
	all, err := collectMigrations(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for _, name := range all {
		slog.Info("migration", "name", name, "applied", lo.Contains(done, name))
	}
	return nil
}

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	if err := m.exec(ctx, "000_drop_all.sql"); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	return nil
}

// consolidated applies the single-file schema and marks every migration as
// applied.
func (m *migrator) consolidated(ctx context.Context) error {
	if err := m.exec(ctx, "000_consolidated.sql"); err != nil {
		return fmt.Errorf("consolidated schema: %w", err)
	}
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	all, err := collectMigrations(m.dir)
	if err != nil {
		return err
	}
	for _, name := range all {
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return err
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(all))
	return nil
}

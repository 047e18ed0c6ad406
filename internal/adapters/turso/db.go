package turso

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/xsvn/internal/migrate"
)

// Config locates the audit database. URL is either a local "file:" URL or a
// remote libsql/https URL, in which case AuthToken is appended.
type Config struct {
	URL       string
	AuthToken string
}

// DB wraps the audit database connection.
type DB struct {
	*sql.DB
}

// NewDB opens the audit database and applies pending migrations.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Open connects to the audit database without touching its schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("audit database URL not configured")
	}

	if path, ok := strings.CutPrefix(cfg.URL, "file:"); ok && !strings.HasPrefix(path, ":memory:") {
		path, _, _ = strings.Cut(path, "?")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connStr, err := connectionString(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A hook process issues a handful of statements and exits.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// connectionString adds the auth token to the URL's query, keeping any
// parameters already present.
func connectionString(cfg Config) (string, error) {
	if cfg.AuthToken == "" {
		return cfg.URL, nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	q := u.Query()
	q.Set("authToken", cfg.AuthToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

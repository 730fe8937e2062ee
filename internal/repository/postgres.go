// Package repository contains the database-backed link stores.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/storage"
)

const createLinksTable = `
	CREATE TABLE IF NOT EXISTS links (
		code TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

// connectTimeout bounds the startup ping.
const connectTimeout = 5 * time.Second

// InitDB opens a pgx-backed pool for dsn, checks that the server answers and
// makes sure the links table exists.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Database connected and table ready.")
	return db, nil
}

// Migrate creates the links table if it is missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createLinksTable); err != nil {
		return fmt.Errorf("create links table: %w", err)
	}
	return nil
}

// LinkRepository is the Postgres link store. The primary key on code is what
// guarantees uniqueness; callers may race freely.
type LinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateLinkRepository(db *sql.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM links WHERE code = $1);", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}

	return exists, nil
}

// Insert adds a link. A taken code yields storage.ErrConflict whether the
// server reports it through ON CONFLICT or as a unique violation.
func (r *LinkRepository) Insert(ctx context.Context, code, url string) (*storage.Link, error) {
	link := storage.Link{Code: code, URL: url}

	err := r.db.QueryRowContext(ctx,
		"INSERT INTO links (code, url) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING RETURNING created_at;",
		code, url,
	).Scan(&link.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrConflict
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, storage.ErrConflict
		}

		r.logger.Error("insert link failed", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("insert link: %w", err)
	}

	return &link, nil
}

func (r *LinkRepository) Lookup(ctx context.Context, code string) (*storage.Link, error) {
	var link storage.Link

	err := r.db.QueryRowContext(ctx, "SELECT code, url, created_at FROM links WHERE code = $1;", code).
		Scan(&link.Code, &link.URL, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("lookup link: %w", err)
	}

	return &link, nil
}

func (r *LinkRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

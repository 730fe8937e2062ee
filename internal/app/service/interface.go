package service

import (
	"context"

	"github.com/atinyakov/shortlink/internal/models"
	"github.com/atinyakov/shortlink/internal/storage"
)

//go:generate mockgen -destination=../../mocks/mocks.go -package=mocks github.com/atinyakov/shortlink/internal/app/service Store,LinkServiceIface

// Store persists links. Insert must be atomic and report a taken code with
// storage.ErrConflict; Lookup reports a missing code with storage.ErrNotFound.
type Store interface {
	Exists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, code, url string) (*storage.Link, error)
	Lookup(ctx context.Context, code string) (*storage.Link, error)
	PingContext(ctx context.Context) error
}

// LinkServiceIface is what the HTTP handlers need from the link service.
type LinkServiceIface interface {
	Shorten(ctx context.Context, rawURL, origin string) (*models.ShortenResponse, error)
	Resolve(ctx context.Context, code string) (*storage.Link, error)
	PingContext(ctx context.Context) error
}

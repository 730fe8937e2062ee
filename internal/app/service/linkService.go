// Package service implements URL shortening: validating input, generating
// codes and storing them with a bounded number of attempts.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/models"
	"github.com/atinyakov/shortlink/internal/storage"
)

// DefaultMaxAttempts bounds the number of codes tried per Shorten call.
const DefaultMaxAttempts = 10

var (
	// ErrInvalidURL is returned when the input is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrGenerationExhausted is returned when every attempted code was taken.
	ErrGenerationExhausted = errors.New("could not generate a free code")
)

// LinkService creates and resolves links.
type LinkService struct {
	store       Store
	codes       *CodeGenerator
	maxAttempts int
	logger      *zap.Logger
}

// NewLinkService wires the service. A non-positive maxAttempts falls back to DefaultMaxAttempts.
func NewLinkService(store Store, codes *CodeGenerator, maxAttempts int, logger *zap.Logger) *LinkService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &LinkService{
		store:       store,
		codes:       codes,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Shorten stores rawURL under a fresh code and builds the short URL from origin.
//
// The Exists check only saves an insert round trip; the store's uniqueness
// constraint decides. An insert rejected with storage.ErrConflict counts as
// a collision and the next code is tried.
func (s *LinkService) Shorten(ctx context.Context, rawURL, origin string) (*models.ShortenResponse, error) {
	long := strings.TrimSpace(rawURL)
	if !IsValidURL(long) {
		return nil, ErrInvalidURL
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, err
		}

		taken, err := s.store.Exists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check code %s: %w", code, err)
		}
		if taken {
			s.logger.Debug("code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}

		link, err := s.store.Insert(ctx, code, long)
		if errors.Is(err, storage.ErrConflict) {
			s.logger.Debug("code taken concurrently", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert code %s: %w", code, err)
		}

		return &models.ShortenResponse{
			Code:     link.Code,
			ShortURL: strings.TrimRight(origin, "/") + "/" + link.Code,
			URL:      link.URL,
		}, nil
	}

	s.logger.Warn("code generation exhausted", zap.Int("attempts", s.maxAttempts))
	return nil, ErrGenerationExhausted
}

// Resolve returns the link stored under code or storage.ErrNotFound.
func (s *LinkService) Resolve(ctx context.Context, code string) (*storage.Link, error) {
	return s.store.Lookup(ctx, code)
}

func (s *LinkService) PingContext(ctx context.Context) error {
	return s.store.PingContext(ctx)
}

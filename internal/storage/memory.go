// Package storage holds the link model shared by every backend and the
// in-process store used when no database is configured.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStorage keeps links in a map. When a journal is attached every
// successful insert is appended to it, and the map is rebuilt from the
// journal on startup.
type MemoryStorage struct {
	mu      sync.RWMutex
	links   map[string]Link
	journal *journal
	now     func() time.Time
}

// CreateMemoryStorage returns an empty store that lives only as long as the process.
func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		links: make(map[string]Link),
		now:   time.Now,
	}, nil
}

// NewFileStorage returns a memory store backed by the journal at p.
// Links already present in the journal are loaded before it returns.
func NewFileStorage(p string, logger *zap.Logger) (*MemoryStorage, error) {
	j, err := openJournal(p)
	if err != nil {
		return nil, err
	}

	links, err := j.Load(logger)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	m, _ := CreateMemoryStorage()
	m.journal = j
	for _, l := range links {
		m.links[l.Code] = l
	}

	logger.Info("file storage loaded", zap.String("path", p), zap.Int("links", len(links)))
	return m, nil
}

func (m *MemoryStorage) Exists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]
	return ok, nil
}

// Insert stores the link unless the code is taken, in which case ErrConflict is returned.
func (m *MemoryStorage) Insert(_ context.Context, code, url string) (*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[code]; ok {
		return nil, ErrConflict
	}

	l := Link{Code: code, URL: url, CreatedAt: m.now().UTC()}

	if m.journal != nil {
		if err := m.journal.Append(l); err != nil {
			return nil, fmt.Errorf("append to journal: %w", err)
		}
	}

	m.links[code] = l
	return &l, nil
}

func (m *MemoryStorage) Lookup(_ context.Context, code string) (*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.links[code]
	if !ok {
		return nil, ErrNotFound
	}

	return &l, nil
}

// Len reports how many links are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.links)
}

// PingContext always succeeds: the map cannot become unreachable.
func (m *MemoryStorage) PingContext(_ context.Context) error {
	return nil
}

// Close releases the journal file, if any.
func (m *MemoryStorage) Close() error {
	if m.journal == nil {
		return nil
	}
	return m.journal.Close()
}

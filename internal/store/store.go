// Package store persists the website collection and the account entries.
//
// The collection is read and written whole: every mutation loads all
// records, transforms them in memory, and replaces the collection. Writers
// in different processes are not coordinated; the last write wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"go.uber.org/zap"
)

// Entry names.
const (
	KeyWebsites     = "websites"
	KeyUser         = "user"
	KeySubscription = "subscription"
)

// Store is the single owner of persisted state.
type Store struct {
	backend Backend
	log     *zap.Logger
	// serializes Update within this process
	mu sync.Mutex
}

// New returns a store over backend. A nil logger disables logging.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log}
}

// Load returns every record. Missing or unreadable state yields an empty
// collection; the failure is logged, never returned.
func (s *Store) Load(ctx context.Context) []project.Record {
	data, err := s.backend.Read(ctx, KeyWebsites)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read websites failed; starting empty", zap.Error(err))
		}
		return []project.Record{}
	}
	var records []project.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("parse websites failed; starting empty", zap.Error(err))
		return []project.Record{}
	}
	if records == nil {
		records = []project.Record{}
	}
	return records
}

// ReplaceAll overwrites the whole collection.
func (s *Store) ReplaceAll(ctx context.Context, records []project.Record) error {
	if records == nil {
		records = []project.Record{}
	}
	data, err := utils.PrettyJSON(records)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, KeyWebsites, data); err != nil {
		return fmt.Errorf("write websites: %w", err)
	}
	s.log.Debug("websites saved", zap.Int("count", len(records)), zap.Int("bytes", len(data)))
	return nil
}

// Update loads all records, applies fn, and replaces the collection with the
// result. Nothing is written when fn fails.
func (s *Store) Update(ctx context.Context, fn func([]project.Record) ([]project.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.Load(ctx))
	if err != nil {
		return err
	}
	return s.ReplaceAll(ctx, next)
}

// LoadEntry decodes a named entry into v. It reports false when the entry is
// absent or unreadable.
func (s *Store) LoadEntry(ctx context.Context, key string, v any) bool {
	data, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read entry failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("parse entry failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SaveEntry encodes v as JSON under key.
func (s *Store) SaveEntry(ctx context.Context, key string, v any) error {
	data, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// DeleteEntry removes a named entry.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

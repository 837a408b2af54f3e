/*
Package store persists per-session preferences as JSON values behind a small
key/value backend. Reads fall back to a caller supplied default and writes
never fail the caller: problems are logged and the session carries on.
*/
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Stable entity keys.
const (
	KeyPlan          = "palavraCerta_plan"
	KeySavedVerses   = "palavraCerta_savedVerses"
	KeySearchHistory = "palavraCerta_searchHistory"
	KeyDailySearch   = "palavraCerta_dailySearch"
	KeyTheme         = "palavraCerta_theme"
	KeyDevotional    = "palavraCerta_devotional"
)

// Backend is the raw byte storage underneath a Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is a session-scoped view over a Backend.
type Store struct {
	backend   Backend
	namespace string
	log       *zerolog.Logger
}

// New wraps backend. A nil logger discards output.
func New(backend Backend, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Store{backend: backend, log: logger}
}

// Session returns a Store whose keys are prefixed with the session id.
func (s *Store) Session(id string) *Store {
	l := s.log.With().Str("session_id", id).Logger()
	return &Store{backend: s.backend, namespace: id, log: &l}
}

// Backend exposes the underlying backend (health checks).
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// Load reads key into a T. Absent keys, backend errors and undecodable
// values all yield def.
func Load[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("Error reading preference")
		}
		return def
	}
	if len(raw) == 0 {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Stored preference is not valid JSON, using default")
		return def
	}
	return v
}

// Save writes v under key. Failures are logged and swallowed.
func Save[T any](ctx context.Context, s *Store, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Error encoding preference")
		return
	}
	if err := s.backend.Set(ctx, s.key(key), raw); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Error writing preference")
	}
}

// Remove deletes key. Failures are logged and swallowed.
func Remove(ctx context.Context, s *Store, key string) {
	if err := s.backend.Delete(ctx, s.key(key)); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error().Err(err).Str("key", key).Msg("Error deleting preference")
	}
}

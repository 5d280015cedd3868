package durable

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/courtside/internal/domain/model"
)

// MemoryStore implements Store in process memory for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	rows    map[string]model.Aggregate
	players map[int64]string
	teams   map[int64]string

	reads   int
	upserts int
	failing bool
}

// NewMemory creates an empty in-memory durable store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		rows:    make(map[string]model.Aggregate),
		players: make(map[int64]string),
		teams:   make(map[int64]string),
	}
}

func rowKey(sub model.Subject, season string) string {
	return fmt.Sprintf("%s:%d:%s", sub.Type, sub.ID, season)
}

func (s *MemoryStore) ReadSeasonStats(_ context.Context, sub model.Subject, season string) (model.Aggregate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.failing {
		return model.Aggregate{}, false, fmt.Errorf("durable store unavailable")
	}
	agg, ok := s.rows[rowKey(sub, season)]
	return agg, ok, nil
}

func (s *MemoryStore) UpsertSeasonStats(_ context.Context, sub model.Subject, season string, agg model.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.failing {
		return fmt.Errorf("durable store unavailable")
	}
	s.rows[rowKey(sub, season)] = agg
	return nil
}

func (s *MemoryStore) PlayerNames(_ context.Context) (map[int64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, fmt.Errorf("durable store unavailable")
	}
	out := make(map[int64]string, len(s.players))
	for id, name := range s.players {
		out[id] = name
	}
	return out, nil
}

func (s *MemoryStore) TeamNames(_ context.Context) (map[int64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, fmt.Errorf("durable store unavailable")
	}
	out := make(map[int64]string, len(s.teams))
	for id, name := range s.teams {
		out[id] = name
	}
	return out, nil
}

// SetPlayerName seeds a roster entry.
func (s *MemoryStore) SetPlayerName(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id] = name
}

// SetTeamName seeds a roster entry.
func (s *MemoryStore) SetTeamName(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[id] = name
}

// SetFailing makes every subsequent call return an error, for exercising
// fallback and retry paths.
func (s *MemoryStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Reads returns how many ReadSeasonStats calls were made.
func (s *MemoryStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Upserts returns how many UpsertSeasonStats calls were made.
func (s *MemoryStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// Row returns the stored aggregate for a subject and season, if any.
func (s *MemoryStore) Row(sub model.Subject, season string) (model.Aggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.rows[rowKey(sub, season)]
	return agg, ok
}

package hotstore

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. It backs tests and
// single-instance deployments where running Redis is not worth it. Expiry
// is enforced lazily on access.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*entry
	now   func() time.Time
}

type entry struct {
	value     string
	hash      map[string]string
	set       map[string]struct{}
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source, letting tests drive expiry.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]*entry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// live returns the entry for key, dropping it first if expired.
func (s *MemoryStore) live(key string) *entry {
	e, ok := s.items[key]
	if !ok {
		return nil
	}
	if e.expired(s.now()) {
		delete(s.items, key)
		return nil
	}
	return e
}

func (s *MemoryStore) upsert(key string) *entry {
	e := s.live(key)
	if e == nil {
		e = &entry{}
		s.items[key] = e
	}
	return e
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key) != nil, nil
}

func (s *MemoryStore) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	out := make(map[string]string)
	if e == nil {
		return out, nil
	}
	for f, v := range e.hash {
		out[f] = v
	}
	return out, nil
}

func (s *MemoryStore) HashSetAll(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	for f, v := range fields {
		e.hash[f] = v
	}
	return nil
}

func (s *MemoryStore) HashSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	e.hash[field] = value
	return nil
}

func (s *MemoryStore) HashIncrBy(_ context.Context, key, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	cur, _ := strconv.ParseInt(e.hash[field], 10, 64)
	e.hash[field] = strconv.FormatInt(cur+delta, 10)
	return nil
}

func (s *MemoryStore) HashSetIfAbsent(_ context.Context, key, field, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	if _, ok := e.hash[field]; ok {
		return false, nil
	}
	e.hash[field] = value
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	e.value = value
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return nil
	}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	} else {
		e.expiresAt = time.Time{}
	}
	return nil
}

func (s *MemoryStore) SetAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.upsert(key)
	if e.set == nil {
		e.set = make(map[string]struct{})
	}
	for _, m := range members {
		e.set[m] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return nil, nil
	}
	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}
	return members, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var keys []string
	for k, e := range s.items {
		if e.expired(now) {
			delete(s.items, k)
			continue
		}
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

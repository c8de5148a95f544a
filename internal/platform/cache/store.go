package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Store is a process-local TTL cache. Keys are namespaced as "<ns>:...";
// the namespace labels the lookup metrics.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	flight     singleflight.Group
	now        func() time.Time
}

type Option func(*Store)

// WithMaxEntries caps the store. A full store first drops expired entries,
// then the one closest to expiry.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// NewStore builds a store; ttl <= 0 keeps entries until deleted.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store) evictLocked() {
	now := s.now()
	var victim string
	var victimEntry entry
	found := false
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			continue
		}
		if !found || expiresSooner(e, victimEntry) {
			victim, victimEntry, found = key, e, true
		}
	}
	if found && len(s.entries) >= s.maxEntries {
		delete(s.entries, victim)
	}
}

// expiresSooner treats a zero expiry as never.
func expiresSooner(a, b entry) bool {
	if a.expiresAt.IsZero() {
		return false
	}
	return b.expiresAt.IsZero() || a.expiresAt.Before(b.expiresAt)
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key under prefix, e.g. all "season:" entries after
// an activation.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once per key, sharing the
// result with concurrent callers. Errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	ns := namespace(key)
	if value, ok := s.Get(ctx, key); ok {
		metrics.CacheLookups.WithLabelValues(ns, "hit").Inc()
		return value, nil
	}
	metrics.CacheLookups.WithLabelValues(ns, "miss").Inc()

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	return value, err
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func namespace(key string) string {
	ns, _, found := strings.Cut(key, ":")
	if !found || ns == "" {
		return "default"
	}
	return ns
}

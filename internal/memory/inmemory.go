package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a process-local Store used for development and tests.
// It applies the same window and TTL semantics as the Redis store.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*inMemorySession
	window   int
	ttl      time.Duration
	now      func() time.Time
}

type inMemorySession struct {
	turns     []Turn
	expiresAt time.Time
}

// NewInMemoryStore creates an empty in-process store.
func NewInMemoryStore(window int, ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*inMemorySession),
		window:   window,
		ttl:      ttl,
		now:      time.Now,
	}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Load(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sessionID)
	if sess == nil {
		return "", nil
	}
	return FormatHistory(sess.turns), nil
}

func (s *InMemoryStore) Save(ctx context.Context, sessionID, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := DeriveKey(sessionID)
	if s.window == 0 {
		delete(s.sessions, key)
		return nil
	}

	sess := s.live(sessionID)
	if sess == nil {
		sess = &inMemorySession{}
		s.sessions[key] = sess
	}
	sess.turns = append(sess.turns, Turn{Question: question, Answer: answer})
	if len(sess.turns) > s.window {
		sess.turns = sess.turns[len(sess.turns)-s.window:]
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, DeriveKey(sessionID))
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

// live returns the session if present and unexpired, evicting it otherwise.
// Caller must hold the lock.
func (s *InMemoryStore) live(sessionID string) *inMemorySession {
	key := DeriveKey(sessionID)
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, key)
		return nil
	}
	return sess
}

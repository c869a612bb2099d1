package sessionstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[int64]*Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[int64]*Session),
	}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (*Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[chatID]
	if !ok || s.now().After(sess.ExpiresAt) {
		return nil, false, nil
	}
	cp := *sess
	return &cp, true, nil
}

func (s *MemoryStore) Set(_ context.Context, chatID int64, sess *Session) error {
	sess.ExpiresAt = s.now().Add(s.ttl)
	cp := *sess
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[chatID] = &cp
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.data {
		if s.now().After(sess.ExpiresAt) {
			delete(s.data, id)
			n++
		}
	}
	return n
}

package memory

import (
	"context"
	"sync"

	"quiz-assessment-engine/internal/domain"
)

// ResultStore keeps reported session results in memory.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.SessionResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) RecordResult(_ context.Context, result domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// Results returns a copy of everything recorded so far, oldest first.
func (s *ResultStore) Results() []domain.SessionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SessionResult(nil), s.results...)
}

// RecentResults returns up to limit results for a topic and difficulty, newest first.
func (s *ResultStore) RecentResults(_ context.Context, topic, difficulty string, limit int) ([]domain.SessionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SessionResult
	for i := len(s.results) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		r := s.results[i]
		if r.Topic == topic && r.Difficulty == difficulty {
			out = append(out, r)
		}
	}
	return out, nil
}

// ForSession returns the results recorded for one session.
func (s *ResultStore) ForSession(sessionID string) []domain.SessionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SessionResult
	for _, r := range s.results {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}

package app

import (
	"sync"
	"time"

	"quiz-assessment-engine/internal/domain"
	"quiz-assessment-engine/internal/engine"
)

// Session binds one engine controller to its question set and subscribers.
type Session struct {
	id         string
	set        domain.QuestionSet
	createdAt  time.Time
	now        func() time.Time
	controller *engine.Controller

	mu          sync.RWMutex
	subscribers map[chan domain.Event]struct{}
	closed      bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
// The session runs an idle controller with default engine settings.
func NewSession(id string, set domain.QuestionSet) *Session {
	s := newSession(id, set, time.Now)
	s.controller = engine.NewController()
	return s
}

func newSession(id string, set domain.QuestionSet, now func() time.Time) *Session {
	return &Session{
		id:          id,
		set:         set,
		createdAt:   now(),
		now:         now,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Topic returns the topic the question set was picked for.
func (s *Session) Topic() string {
	return s.questionSet().Topic
}

// Difficulty returns the difficulty the question set was picked for.
func (s *Session) Difficulty() string {
	return s.questionSet().Difficulty
}

// CreatedAt is when the session was first started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Snapshot returns the current engine view tagged with the session id.
func (s *Session) Snapshot() domain.Snapshot {
	snap := s.controller.Snapshot()
	snap.SessionID = s.id
	return snap
}

func (s *Session) setQuestionSet(set domain.QuestionSet) {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

func (s *Session) questionSet() domain.QuestionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

func (s *Session) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)

	registered := false
	// The initial state is buffered before ch is visible to broadcast.
	s.controller.Observe(func(snap domain.Snapshot) {
		snap.SessionID = s.id
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		ch <- domain.Event{Type: domain.EventState, SessionID: s.id, Snapshot: snap}
		s.subscribers[ch] = struct{}{}
		registered = true
	})
	if !registered {
		close(ch)
		return ch, func() {}
	}

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcast(ev domain.Event) {
	ev.SessionID = s.id
	ev.Snapshot.SessionID = s.id

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event so the newest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// closeSubscribers ends every subscription; later subscribe calls get a closed channel.
func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

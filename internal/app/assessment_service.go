package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"quiz-assessment-engine/internal/domain"
	"quiz-assessment-engine/internal/engine"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionBank supplies the ordered question set for a topic and difficulty.
type QuestionBank interface {
	GetQuestionSet(ctx context.Context, topic, difficulty string) (domain.QuestionSet, error)
}

// ResultRecorder receives final scores of completed sessions.
type ResultRecorder interface {
	RecordResult(ctx context.Context, result domain.SessionResult) error
}

// ResultQuerier lists reported results for a topic and difficulty, newest first.
type ResultQuerier interface {
	RecentResults(ctx context.Context, topic, difficulty string, limit int) ([]domain.SessionResult, error)
}

// ResultStore both records and lists session results.
type ResultStore interface {
	ResultRecorder
	ResultQuerier
}

// EngineSettings are applied to every controller the service creates.
type EngineSettings struct {
	AdvanceDelay  time.Duration
	HintThreshold int
	Scheduler     engine.Scheduler
}

// Navigation selects how Navigate moves the displayed question.
type Navigation string

const (
	NavigateNext     Navigation = "next"
	NavigatePrevious Navigation = "previous"
	NavigateTo       Navigation = "goto"
)

// recordTimeout bounds how long a completion waits on the result recorder.
const recordTimeout = 5 * time.Second

// AssessmentService hosts quiz sessions and forwards learner intents to their controllers.
type AssessmentService struct {
	sessions SessionRepository
	banks    QuestionBank
	results  ResultStore
	settings EngineSettings
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
}

// ServiceOption customizes an AssessmentService.
type ServiceOption func(*AssessmentService)

// WithLogger routes service and engine logs to l.
func WithLogger(l *log.Logger) ServiceOption {
	return func(s *AssessmentService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *AssessmentService) { s.now = now }
}

// WithIDGenerator overrides the UUID session ids.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *AssessmentService) { s.newID = newID }
}

func NewAssessmentService(sessions SessionRepository, banks QuestionBank, results ResultStore, settings EngineSettings, opts ...ServiceOption) *AssessmentService {
	s := &AssessmentService{
		sessions: sessions,
		banks:    banks,
		results:  results,
		settings: settings,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession loads the question set and starts a new session over it.
// Configuration errors are returned and no session is stored.
func (s *AssessmentService) StartSession(ctx context.Context, topic, difficulty string) (domain.Snapshot, error) {
	set, err := s.banks.GetQuestionSet(ctx, topic, difficulty)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session := newSession(s.newID(), set, s.now)
	session.controller = s.newController(session)
	if err := session.controller.StartSet(set); err != nil {
		return domain.Snapshot{}, fmt.Errorf("start session for %s/%s: %w", topic, difficulty, err)
	}

	s.sessions.Put(session)
	s.logger.Printf("session %s started: %s/%s, %d questions", session.id, topic, difficulty, len(set.Questions))
	return session.Snapshot(), nil
}

// RestartSession reloads the question set and starts over, clearing hint state.
func (s *AssessmentService) RestartSession(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	current := session.questionSet()
	set, err := s.banks.GetQuestionSet(ctx, current.Topic, current.Difficulty)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := session.controller.StartSet(set); err != nil {
		return domain.Snapshot{}, fmt.Errorf("restart session %s: %w", sessionID, err)
	}
	session.setQuestionSet(set)
	return s.publishState(session), nil
}

// SelectOption forwards a selection intent. Invalid intents are ignored.
func (s *AssessmentService) SelectOption(_ context.Context, sessionID, questionID, optionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	if session.controller.SelectOption(questionID, optionID) {
		return s.publishState(session), nil
	}
	return session.Snapshot(), nil
}

// SubmitAnswer forwards a submission intent. The evaluation is broadcast by the engine hook.
func (s *AssessmentService) SubmitAnswer(_ context.Context, sessionID, questionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	session.controller.SubmitAnswer(questionID)
	return session.Snapshot(), nil
}

// DismissHint hides the hint banner for the rest of the session.
func (s *AssessmentService) DismissHint(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	session.controller.DismissHint()
	return s.publishState(session), nil
}

// ToggleHint opens or closes the hint detail panel.
func (s *AssessmentService) ToggleHint(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	session.controller.ToggleHintExpanded()
	return s.publishState(session), nil
}

// Navigate moves the displayed question; index is only used with NavigateTo.
func (s *AssessmentService) Navigate(_ context.Context, sessionID string, nav Navigation, index int) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}

	var moved bool
	switch nav {
	case NavigateNext:
		moved = session.controller.Next()
	case NavigatePrevious:
		moved = session.controller.Previous()
	case NavigateTo:
		moved = session.controller.GoTo(index)
	}
	if moved {
		return s.publishState(session), nil
	}
	return session.Snapshot(), nil
}

// EndSession terminates the session early; the partial score is reported once.
func (s *AssessmentService) EndSession(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	session.controller.End()
	return session.Snapshot(), nil
}

// Abandon tears the session down without reporting and forgets it.
func (s *AssessmentService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.controller.Close()
	session.closeSubscribers()
	s.sessions.Delete(sessionID)
	s.logger.Printf("session %s abandoned", sessionID)
}

// Snapshot returns the current view of a session.
func (s *AssessmentService) Snapshot(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// RecentResults lists the latest reported runs for a topic and difficulty.
func (s *AssessmentService) RecentResults(ctx context.Context, topic, difficulty string, limit int) ([]domain.SessionResult, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.RecentResults(ctx, topic, difficulty, limit)
}

func (s *AssessmentService) publishState(session *Session) domain.Snapshot {
	snap := session.Snapshot()
	session.broadcast(domain.Event{Type: domain.EventState, Snapshot: snap})
	return snap
}

func (s *AssessmentService) newController(session *Session) *engine.Controller {
	opts := []engine.Option{
		engine.WithHintThreshold(s.settings.HintThreshold),
		engine.WithScheduler(s.settings.Scheduler),
		engine.WithLogger(s.logger),
		engine.WithHooks(engine.Hooks{
			OnAnswerEvaluated: func(eval domain.Evaluation, snap domain.Snapshot) {
				session.broadcast(domain.Event{Type: domain.EventAnswerEvaluated, Snapshot: snap, Evaluation: &eval})
			},
			OnAdvanced: func(snap domain.Snapshot) {
				session.broadcast(domain.Event{Type: domain.EventAdvanced, Snapshot: snap})
			},
			OnSessionCompleted: func(result domain.Result, snap domain.Snapshot) {
				session.broadcast(domain.Event{Type: domain.EventCompleted, Snapshot: snap, Result: &result})
				s.record(session, result, snap.Attempt)
			},
		}),
	}
	if s.settings.AdvanceDelay > 0 {
		opts = append(opts, engine.WithAdvanceDelay(s.settings.AdvanceDelay))
	}
	return engine.NewController(opts...)
}

// record hands the result to the reporting layer. Failures are logged only.
// A restarted session reports each run under its own attempt number.
func (s *AssessmentService) record(session *Session, result domain.Result, attempt int) {
	if s.results == nil {
		return
	}
	set := session.questionSet()
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	err := s.results.RecordResult(ctx, domain.SessionResult{
		SessionID:     session.id,
		Attempt:       attempt,
		QuestionSetID: set.ID,
		Topic:         set.Topic,
		Difficulty:    set.Difficulty,
		Result:        result,
		FinishedAt:    s.now(),
	})
	if err != nil {
		s.logger.Printf("record result for session %s: %v", session.id, err)
	}
}

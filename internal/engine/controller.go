package engine

import (
	"io"
	"log"
	"sync"
	"time"

	"quiz-assessment-engine/internal/domain"
)

// Controller owns one quiz session: question order, position, per-question
// trackers, the hint advisor and the auto-advance timers.
//
// Intents are serialized, so each one is applied atomically. The only
// asynchronous element is the advance timer armed by a successful submission.
type Controller struct {
	mu sync.Mutex
	// hookMu keeps hook delivery in the same order as the state changes.
	hookMu sync.Mutex

	delay         time.Duration
	hintThreshold int
	hints         []string
	scheduler     Scheduler
	hooks         Hooks
	logger        *log.Logger

	questions []domain.Question
	trackers  map[string]*Tracker
	position  int
	hint      *HintAdvisor

	started   bool
	attempt   int
	completed bool
	closed    bool
	result    *domain.Result

	// generation invalidates timers armed by earlier runs.
	generation uint64
	pending    map[string]Timer
}

// NewController builds an idle controller; call Start to begin a session.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		delay:         DefaultAdvanceDelay,
		hintThreshold: DefaultHintThreshold,
		scheduler:     SystemScheduler{},
		logger:        log.New(io.Discard, "", 0),
		trackers:      make(map[string]*Tracker),
		pending:       make(map[string]Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hint = NewHintAdvisor(c.hintThreshold, c.hints)
	return c
}

// Start begins a fresh session over questions. A rejected question set
// leaves any running session untouched.
func (c *Controller) Start(questions []domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(questions)
}

// StartSet starts a session and installs the set's hint strings.
func (c *Controller) StartSet(set domain.QuestionSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.startLocked(set.Questions); err != nil {
		return err
	}
	c.hint.SetHints(set.Hints)
	return nil
}

func (c *Controller) startLocked(questions []domain.Question) error {
	if c.closed {
		return domain.ErrSessionClosed
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return err
	}

	c.generation++
	c.cancelPendingLocked()

	c.questions = append([]domain.Question(nil), questions...)
	c.trackers = make(map[string]*Tracker, len(questions))
	for _, q := range c.questions {
		c.trackers[q.ID] = NewTracker(q)
	}
	c.position = 0
	c.hint.Reset()
	c.started = true
	c.attempt++
	c.completed = false
	c.result = nil
	return nil
}

// SelectOption changes the selection of the current question. Stale question
// ids, answered questions and foreign option ids are ignored.
func (c *Controller) SelectOption(questionID, optionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.currentLocked(questionID)
	if !ok {
		return false
	}
	return t.Select(optionID)
}

// SubmitAnswer locks in the current question's selection, records the
// outcome and arms the advance timer. Anything but a first submission of a
// selected current question is a no-op.
func (c *Controller) SubmitAnswer(questionID string) bool {
	c.mu.Lock()
	t, ok := c.currentLocked(questionID)
	if !ok {
		c.mu.Unlock()
		return false
	}
	eval, ok := t.Submit()
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.hint.RecordAnswer(eval.Correct)
	c.armAdvanceLocked(c.position, eval.QuestionID)

	hook := c.hooks.OnAnswerEvaluated
	snap := c.snapshotLocked()
	c.hookMu.Lock()
	c.mu.Unlock()
	defer c.hookMu.Unlock()
	if hook != nil {
		hook(eval, snap)
	}
	return true
}

func (c *Controller) armAdvanceLocked(index int, questionID string) {
	gen := c.generation
	c.pending[questionID] = c.scheduler.AfterFunc(c.delay, func() {
		c.advance(gen, index, questionID)
	})
}

// advance is the timer callback for the submission of questions[index].
func (c *Controller) advance(gen uint64, index int, questionID string) {
	c.mu.Lock()
	if gen != c.generation || c.closed || c.completed {
		c.mu.Unlock()
		c.logger.Printf("discarding stale advance for question %s", questionID)
		return
	}
	delete(c.pending, questionID)

	if index+1 < len(c.questions) {
		if c.position < index+1 {
			c.position = index + 1
		}
		hook := c.hooks.OnAdvanced
		snap := c.snapshotLocked()
		c.hookMu.Lock()
		c.mu.Unlock()
		defer c.hookMu.Unlock()
		if hook != nil {
			hook(snap)
		}
		return
	}

	result := c.completeLocked(domain.CompletionExhausted)
	c.emitCompletedAndUnlock(result)
}

// End terminates the session early and reports the partial score.
func (c *Controller) End() bool {
	c.mu.Lock()
	if !c.started || c.completed || c.closed {
		c.mu.Unlock()
		return false
	}
	result := c.completeLocked(domain.CompletionEnded)
	c.emitCompletedAndUnlock(result)
	return true
}

func (c *Controller) completeLocked(reason domain.CompletionReason) domain.Result {
	c.cancelPendingLocked()
	c.completed = true
	result := domain.Result{
		Score:        c.scoreLocked(),
		Total:        len(c.questions),
		WrongAnswers: c.hint.State().WrongAnswerCount,
		Reason:       reason,
	}
	c.result = &result
	c.logger.Printf("session completed (%s): %d/%d", reason, result.Score, result.Total)
	return result
}

func (c *Controller) emitCompletedAndUnlock(result domain.Result) {
	hook := c.hooks.OnSessionCompleted
	snap := c.snapshotLocked()
	c.hookMu.Lock()
	c.mu.Unlock()
	defer c.hookMu.Unlock()
	if hook != nil {
		hook(result, snap)
	}
}

// Close tears the session down without reporting. Pending timers are
// cancelled and any that still fire are discarded. Close is terminal.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.cancelPendingLocked()
}

func (c *Controller) cancelPendingLocked() {
	for id, timer := range c.pending {
		timer.Stop()
		delete(c.pending, id)
	}
}

// DismissHint hides the hint banner until the next session start.
func (c *Controller) DismissHint() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.hint.Dismiss()
}

// ToggleHintExpanded opens or closes the hint detail panel.
func (c *Controller) ToggleHintExpanded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.hint.ToggleExpanded()
}

// Next moves the displayed question forward. Navigation never reopens an
// answered question and never touches pending timers.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(c.position + 1)
}

// Previous moves the displayed question back.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(c.position - 1)
}

// GoTo displays the question at index.
func (c *Controller) GoTo(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(index)
}

func (c *Controller) goToLocked(index int) bool {
	if !c.started || c.closed || index < 0 || index >= len(c.questions) || index == c.position {
		return false
	}
	c.position = index
	return true
}

// currentLocked resolves the tracker an intent targets. Intents naming any
// question other than the displayed one are stale.
func (c *Controller) currentLocked(questionID string) (*Tracker, bool) {
	if !c.started || c.completed || c.closed {
		return nil, false
	}
	q := c.questions[c.position]
	if q.ID != questionID {
		return nil, false
	}
	return c.trackers[q.ID], true
}

// scoreLocked sums over the full question list in order.
func (c *Controller) scoreLocked() int {
	score := 0
	for _, q := range c.questions {
		if c.trackers[q.ID].State().AnsweredCorrectly() {
			score++
		}
	}
	return score
}

// Score is the number of questions answered correctly so far.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scoreLocked()
}

// Completed reports whether the session has finished.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Pending returns how many advance timers are armed.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HintState returns the session's hint bookkeeping.
func (c *Controller) HintState() domain.HintState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hint.State()
}

// QuestionState returns the state of the question with the given id.
func (c *Controller) QuestionState(questionID string) (domain.QuestionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.trackers[questionID]
	if !ok {
		return domain.QuestionState{}, false
	}
	return t.State(), true
}

// Snapshot returns a render-safe copy of the session.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Observe calls f with the current snapshot in hook order: hooks for any later
// change run after f returns. Like a hook, f must not call back into the Controller.
func (c *Controller) Observe(f func(domain.Snapshot)) {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.hookMu.Lock()
	c.mu.Unlock()
	defer c.hookMu.Unlock()
	f(snap)
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Started:   c.started,
		Attempt:   c.attempt,
		Position:  c.position,
		Total:     len(c.questions),
		Score:     c.scoreLocked(),
		Completed: c.completed,
		States:    make([]domain.QuestionState, 0, len(c.questions)),
		Hint:      c.hint.View(),
	}
	for _, q := range c.questions {
		snap.States = append(snap.States, c.trackers[q.ID].State())
	}
	if c.started && len(c.questions) > 0 {
		t := c.trackers[c.questions[c.position].ID]
		view := t.view()
		state := t.State()
		snap.Question = &view
		snap.State = &state
	}
	if c.result != nil {
		r := *c.result
		snap.Result = &r
	}
	return snap
}

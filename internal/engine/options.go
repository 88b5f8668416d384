package engine

import (
	"log"
	"time"

	"quiz-assessment-engine/internal/domain"
)

// DefaultAdvanceDelay is how long feedback stays on screen before auto-advance.
const DefaultAdvanceDelay = 3 * time.Second

// Hooks are the events a Controller emits to the presentation boundary.
// They run on the goroutine that caused them, after the Controller's lock is
// released and in the order the state changed. Each hook gets the snapshot
// taken together with the change; hooks must not call back into the Controller.
type Hooks struct {
	OnAnswerEvaluated  func(domain.Evaluation, domain.Snapshot)
	OnAdvanced         func(domain.Snapshot)
	OnSessionCompleted func(domain.Result, domain.Snapshot)
}

// Option configures a Controller.
type Option func(*Controller)

func WithAdvanceDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

func WithHintThreshold(n int) Option {
	return func(c *Controller) { c.hintThreshold = n }
}

func WithHints(hints []string) Option {
	return func(c *Controller) { c.hints = append([]string(nil), hints...) }
}

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

package engine

import "quiz-assessment-engine/internal/domain"

// DefaultHintThreshold is the number of wrong answers that makes hints eligible.
const DefaultHintThreshold = 2

// HintEligible is the eligibility rule. Negative counts are treated as zero.
func HintEligible(wrongAnswerCount int, dismissed bool, threshold int) bool {
	if wrongAnswerCount < 0 {
		wrongAnswerCount = 0
	}
	return wrongAnswerCount >= threshold && !dismissed
}

// HintAdvisor tracks the session-scoped hint banner. Dismissal and the wrong
// answer count are independent; only Reset clears both.
type HintAdvisor struct {
	threshold int
	hints     []string
	state     domain.HintState
}

// NewHintAdvisor returns an advisor; a non-positive threshold falls back to DefaultHintThreshold.
func NewHintAdvisor(threshold int, hints []string) *HintAdvisor {
	if threshold <= 0 {
		threshold = DefaultHintThreshold
	}
	return &HintAdvisor{
		threshold: threshold,
		hints:     append([]string(nil), hints...),
	}
}

// RecordAnswer counts wrong answers. Correct answers leave the state alone.
func (h *HintAdvisor) RecordAnswer(correct bool) {
	if !correct {
		h.state.WrongAnswerCount++
	}
}

// Dismiss hides the banner for the rest of the session.
func (h *HintAdvisor) Dismiss() {
	h.state.Dismissed = true
}

// ToggleExpanded flips the detail panel. It never changes eligibility.
func (h *HintAdvisor) ToggleExpanded() {
	h.state.Expanded = !h.state.Expanded
}

// Reset is called when a new session starts.
func (h *HintAdvisor) Reset() {
	h.state = domain.HintState{}
}

// SetHints replaces the externally supplied hint strings.
func (h *HintAdvisor) SetHints(hints []string) {
	h.hints = append([]string(nil), hints...)
}

// Eligible reports whether the hint affordance may be shown.
func (h *HintAdvisor) Eligible() bool {
	return HintEligible(h.state.WrongAnswerCount, h.state.Dismissed, h.threshold)
}

// State returns the raw hint state.
func (h *HintAdvisor) State() domain.HintState {
	s := h.state
	if s.WrongAnswerCount < 0 {
		s.WrongAnswerCount = 0
	}
	return s
}

// View renders the banner; hint strings are only included while expanded and eligible.
func (h *HintAdvisor) View() domain.HintView {
	s := h.State()
	v := domain.HintView{
		Eligible:         h.Eligible(),
		Expanded:         s.Expanded,
		Dismissed:        s.Dismissed,
		WrongAnswerCount: s.WrongAnswerCount,
	}
	if v.Eligible && v.Expanded {
		v.Hints = append([]string(nil), h.hints...)
	}
	return v
}

package engine

import "quiz-assessment-engine/internal/domain"

// Tracker is the per-question state machine:
//
//	UNANSWERED --select--> SELECTED --select--> SELECTED
//	SELECTED --submit--> ANSWERED (terminal)
//
// Submitting without a selection and any interaction after ANSWERED are no-ops.
type Tracker struct {
	question domain.Question
	state    domain.QuestionState
}

// NewTracker returns a tracker in the UNANSWERED state.
func NewTracker(q domain.Question) *Tracker {
	return &Tracker{
		question: q,
		state:    domain.QuestionState{QuestionID: q.ID},
	}
}

// Question returns the tracked question.
func (t *Tracker) Question() domain.Question {
	return t.question
}

// State returns a copy of the current state.
func (t *Tracker) State() domain.QuestionState {
	s := t.state
	if s.IsCorrect != nil {
		v := *s.IsCorrect
		s.IsCorrect = &v
	}
	return s
}

// Phase returns the current state machine position.
func (t *Tracker) Phase() domain.Phase {
	return t.state.Phase()
}

// Select records optionID as the current choice. It returns false when the
// question is already answered or the option is not part of the question.
func (t *Tracker) Select(optionID string) bool {
	if t.state.IsAnswered || !t.question.HasOption(optionID) {
		return false
	}
	t.state.SelectedOptionID = optionID
	return true
}

// Submit locks in the selection. It returns false, and changes nothing,
// unless the question is in the SELECTED state.
func (t *Tracker) Submit() (domain.Evaluation, bool) {
	if t.state.Phase() != domain.PhaseSelected {
		return domain.Evaluation{}, false
	}

	correct := Evaluate(t.question, t.state.SelectedOptionID)
	t.state.IsAnswered = true
	t.state.IsCorrect = &correct
	t.state.ShowExplanation = true

	return domain.Evaluation{
		QuestionID:       t.question.ID,
		SelectedOptionID: t.state.SelectedOptionID,
		Correct:          correct,
	}, true
}

// view renders the question without leaking the answer before submission.
func (t *Tracker) view() domain.QuestionView {
	v := domain.QuestionView{
		ID:      t.question.ID,
		Prompt:  t.question.Prompt,
		Options: make([]domain.OptionView, 0, len(t.question.Options)),
	}
	for _, opt := range t.question.Options {
		v.Options = append(v.Options, domain.OptionView{ID: opt.ID, Text: opt.Text})
	}
	if t.state.ShowExplanation {
		v.Explanation = t.question.Explanation
		if correct, ok := CorrectOption(t.question); ok {
			v.CorrectOptionID = correct.ID
		}
	}
	return v
}

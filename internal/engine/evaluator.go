package engine

import "quiz-assessment-engine/internal/domain"

// Evaluate reports whether optionID is the correct answer to q.
// Options that do not belong to q are incorrect. When a question carries
// more than one correct flag, the first flagged option wins.
func Evaluate(q domain.Question, optionID string) bool {
	if optionID == "" {
		return false
	}
	correct, ok := CorrectOption(q)
	return ok && correct.ID == optionID
}

// CorrectOption returns the first option flagged correct.
func CorrectOption(q domain.Question) (domain.Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return domain.Option{}, false
}

package domain

import "fmt"

// ValidateQuestions checks the input contract of a question set: non-empty,
// unique question ids, at least two options with unique ids, exactly one correct.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}

	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrMalformedQuestionSet, i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrMalformedQuestionSet, q.ID)
		}
		seen[q.ID] = struct{}{}

		if err := validateOptions(q); err != nil {
			return err
		}
	}
	return nil
}

func validateOptions(q Question) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %q needs at least 2 options, has %d", ErrMalformedQuestionSet, q.ID, len(q.Options))
	}

	optionIDs := make(map[string]struct{}, len(q.Options))
	correct := 0
	for _, opt := range q.Options {
		if opt.ID == "" {
			return fmt.Errorf("%w: question %q has an option without id", ErrMalformedQuestionSet, q.ID)
		}
		if _, dup := optionIDs[opt.ID]; dup {
			return fmt.Errorf("%w: question %q has duplicate option id %q", ErrMalformedQuestionSet, q.ID, opt.ID)
		}
		optionIDs[opt.ID] = struct{}{}
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("%w: question %q has %d correct options, want exactly 1", ErrMalformedQuestionSet, q.ID, correct)
	}
	return nil
}

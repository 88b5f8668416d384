package domain

import (
	"errors"
	"testing"
)

func TestValidateQuestionsAcceptsWellFormedSet(t *testing.T) {
	if err := ValidateQuestions([]Question{sampleQuestion("q1"), sampleQuestion("q2")}); err != nil {
		t.Fatalf("expected valid set, got %v", err)
	}
}

func TestValidateQuestionsRejectsEmpty(t *testing.T) {
	if err := ValidateQuestions(nil); !errors.Is(err, ErrEmptyQuestionSet) {
		t.Fatalf("expected empty set error, got %v", err)
	}
}

func TestValidateQuestionsRejectsMalformed(t *testing.T) {
	tooFew := sampleQuestion("q1")
	tooFew.Options = tooFew.Options[:1]

	twoCorrect := sampleQuestion("q1")
	twoCorrect.Options[0].Correct = true

	noCorrect := sampleQuestion("q1")
	noCorrect.Options[1].Correct = false

	dupOption := sampleQuestion("q1")
	dupOption.Options[1].ID = dupOption.Options[0].ID

	cases := map[string][]Question{
		"duplicate question id": {sampleQuestion("q1"), sampleQuestion("q1")},
		"missing question id":   {sampleQuestion("")},
		"single option":         {tooFew},
		"two correct options":   {twoCorrect},
		"no correct option":     {noCorrect},
		"duplicate option id":   {dupOption},
	}
	for name, questions := range cases {
		if err := ValidateQuestions(questions); !errors.Is(err, ErrMalformedQuestionSet) {
			t.Fatalf("%s: expected malformed error, got %v", name, err)
		}
	}
}

func TestQuestionStatePhase(t *testing.T) {
	var s QuestionState
	if s.Phase() != PhaseUnanswered {
		t.Fatalf("expected unanswered, got %s", s.Phase())
	}
	s.SelectedOptionID = "o1"
	if s.Phase() != PhaseSelected {
		t.Fatalf("expected selected, got %s", s.Phase())
	}
	correct := true
	s.IsAnswered = true
	s.IsCorrect = &correct
	if s.Phase() != PhaseAnswered || !s.AnsweredCorrectly() {
		t.Fatalf("expected answered correctly, got %+v", s)
	}
}

func sampleQuestion(id string) Question {
	return Question{
		ID:     id,
		Prompt: "What is 2 + 2?",
		Options: []Option{
			{ID: "o1", Text: "3", Correct: false},
			{ID: "o2", Text: "4", Correct: true},
		},
		Explanation: "Two pairs make four.",
	}
}

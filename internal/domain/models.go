package domain

import "time"

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionSet is what a question bank supplies for one topic and difficulty.
type QuestionSet struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Hints      []string   `json:"hints,omitempty"`
}

// Phase is the derived state of a single question.
type Phase int

const (
	PhaseUnanswered Phase = iota
	PhaseSelected
	PhaseAnswered
)

func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhaseAnswered:
		return "answered"
	default:
		return "unanswered"
	}
}

// QuestionState tracks the learner's interaction with one question.
// An empty SelectedOptionID means nothing is selected.
type QuestionState struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	IsAnswered       bool   `json:"isAnswered"`
	IsCorrect        *bool  `json:"isCorrect,omitempty"`
	ShowExplanation  bool   `json:"showExplanation"`
}

// Phase derives the state machine position from the stored fields.
func (s QuestionState) Phase() Phase {
	switch {
	case s.IsAnswered:
		return PhaseAnswered
	case s.SelectedOptionID != "":
		return PhaseSelected
	default:
		return PhaseUnanswered
	}
}

// AnsweredCorrectly is true only for answered questions scored as correct.
func (s QuestionState) AnsweredCorrectly() bool {
	return s.IsAnswered && s.IsCorrect != nil && *s.IsCorrect
}

// HintState is session scoped, not per question.
type HintState struct {
	WrongAnswerCount int  `json:"wrongAnswerCount"`
	Dismissed        bool `json:"dismissed"`
	Expanded         bool `json:"expanded"`
}

// Evaluation is emitted once per successful submission.
type Evaluation struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	Correct          bool   `json:"correct"`
}

// CompletionReason records how a session finished.
type CompletionReason string

const (
	// CompletionExhausted means the last question was submitted and its advance delay elapsed.
	CompletionExhausted CompletionReason = "exhausted"
	// CompletionEnded means the learner terminated the session early.
	CompletionEnded CompletionReason = "ended"
)

// Result is the final score reported when a session completes.
type Result struct {
	Score        int              `json:"score"`
	Total        int              `json:"total"`
	WrongAnswers int              `json:"wrongAnswers"`
	Reason       CompletionReason `json:"reason"`
}

// SessionResult is the record handed to the reporting layer.
type SessionResult struct {
	SessionID     string    `json:"sessionId"`
	Attempt       int       `json:"attempt"`
	QuestionSetID string    `json:"questionSetId"`
	Topic         string    `json:"topic"`
	Difficulty    string    `json:"difficulty"`
	Result        Result    `json:"result"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// OptionView hides the correctness flag from the presentation layer.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the render-safe form of a question. Explanation and
// CorrectOptionID are only filled once the question is answered.
type QuestionView struct {
	ID              string       `json:"id"`
	Prompt          string       `json:"prompt"`
	Options         []OptionView `json:"options"`
	Explanation     string       `json:"explanation,omitempty"`
	CorrectOptionID string       `json:"correctOptionId,omitempty"`
}

// HintView is what the hint banner needs to render.
type HintView struct {
	Eligible         bool     `json:"eligible"`
	Expanded         bool     `json:"expanded"`
	Dismissed        bool     `json:"dismissed"`
	WrongAnswerCount int      `json:"wrongAnswerCount"`
	Hints            []string `json:"hints,omitempty"`
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	SessionID string          `json:"sessionId,omitempty"`
	Started   bool            `json:"started"`
	Attempt   int             `json:"attempt"`
	Position  int             `json:"position"`
	Total     int             `json:"total"`
	Score     int             `json:"score"`
	Completed bool            `json:"completed"`
	Question  *QuestionView   `json:"question,omitempty"`
	State     *QuestionState  `json:"state,omitempty"`
	States    []QuestionState `json:"states"`
	Hint      HintView        `json:"hint"`
	Result    *Result         `json:"result,omitempty"`
}

// EventType names the events broadcast to subscribers of a session.
type EventType string

const (
	EventState           EventType = "state"
	EventAnswerEvaluated EventType = "answerEvaluated"
	EventAdvanced        EventType = "advanced"
	EventCompleted       EventType = "completed"
)

// Event is one update pushed to the presentation layer.
type Event struct {
	Type       EventType   `json:"type"`
	SessionID  string      `json:"sessionId"`
	Snapshot   Snapshot    `json:"snapshot"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Result     *Result     `json:"result,omitempty"`
}

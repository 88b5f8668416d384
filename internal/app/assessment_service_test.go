package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-assessment-engine/internal/app"
	"quiz-assessment-engine/internal/domain"
	"quiz-assessment-engine/internal/engine/enginetest"
	"quiz-assessment-engine/internal/infra/memory"
)

const advanceDelay = 3 * time.Second

func TestStartAndCompleteSession(t *testing.T) {
	ctx := context.Background()
	service, sched, results := newTestService()

	snap, err := service.StartSession(ctx, "math", "easy")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if snap.SessionID != "session-1" || snap.Total != 3 || snap.Question.ID != "q1" {
		t.Fatalf("unexpected start snapshot: %+v", snap)
	}

	for _, pick := range []string{"o2", "o1", "o2"} {
		current, _ := service.Snapshot(ctx, snap.SessionID)
		if _, err := service.SelectOption(ctx, snap.SessionID, current.Question.ID, pick); err != nil {
			t.Fatalf("select failed: %v", err)
		}
		if _, err := service.SubmitAnswer(ctx, snap.SessionID, current.Question.ID); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		sched.Advance(advanceDelay)
	}

	recorded := results.ForSession(snap.SessionID)
	if len(recorded) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(recorded))
	}
	got := recorded[0]
	if got.Result.Score != 2 || got.Result.Total != 3 || got.Topic != "math" || got.QuestionSetID != "math-easy" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got.FinishedAt.Equal(fixedNow) {
		t.Fatalf("expected finishedAt from clock, got %v", got.FinishedAt)
	}
}

func TestSubscribeReceivesEngineEvents(t *testing.T) {
	ctx := context.Background()
	service, sched, _ := newTestService()

	snap, err := service.StartSession(ctx, "math", "easy")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	ch, cancel, err := service.Subscribe(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	initial := <-ch
	if initial.Type != domain.EventState {
		t.Fatalf("expected initial state, got %s", initial.Type)
	}

	_, _ = service.SelectOption(ctx, snap.SessionID, "q1", "o1")
	if ev := <-ch; ev.Type != domain.EventState || ev.Snapshot.State.SelectedOptionID != "o1" {
		t.Fatalf("expected selection state, got %+v", ev)
	}

	_, _ = service.SubmitAnswer(ctx, snap.SessionID, "q1")
	ev := <-ch
	if ev.Type != domain.EventAnswerEvaluated || ev.Evaluation == nil || ev.Evaluation.Correct {
		t.Fatalf("expected wrong evaluation, got %+v", ev)
	}
	if ev.SessionID != snap.SessionID || ev.Snapshot.SessionID != snap.SessionID {
		t.Fatalf("expected events tagged with session id, got %+v", ev)
	}

	sched.Advance(advanceDelay)
	if ev := <-ch; ev.Type != domain.EventAdvanced || ev.Snapshot.Position != 1 {
		t.Fatalf("expected advance to 1, got %+v", ev)
	}
}

func TestEndSessionReportsPartialScore(t *testing.T) {
	ctx := context.Background()
	service, sched, results := newTestService()

	snap, _ := service.StartSession(ctx, "math", "easy")
	_, _ = service.SelectOption(ctx, snap.SessionID, "q1", "o2")
	_, _ = service.SubmitAnswer(ctx, snap.SessionID, "q1")

	ended, err := service.EndSession(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if !ended.Completed || ended.Result == nil || ended.Result.Reason != domain.CompletionEnded {
		t.Fatalf("expected ended snapshot, got %+v", ended)
	}

	sched.Advance(advanceDelay)
	_, _ = service.EndSession(ctx, snap.SessionID)

	recorded := results.ForSession(snap.SessionID)
	if len(recorded) != 1 || recorded[0].Result.Score != 1 || recorded[0].Result.Total != 3 {
		t.Fatalf("expected single partial result 1/3, got %+v", recorded)
	}
}

func TestRestartedSessionReportsEachAttempt(t *testing.T) {
	ctx := context.Background()
	service, _, results := newTestService()

	snap, _ := service.StartSession(ctx, "math", "easy")
	id := snap.SessionID
	if snap.Attempt != 1 {
		t.Fatalf("expected first attempt, got %d", snap.Attempt)
	}
	_, _ = service.SelectOption(ctx, id, "q1", "o2")
	_, _ = service.SubmitAnswer(ctx, id, "q1")
	_, _ = service.EndSession(ctx, id)

	restarted, err := service.RestartSession(ctx, id)
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if restarted.Attempt != 2 {
		t.Fatalf("expected second attempt, got %d", restarted.Attempt)
	}
	_, _ = service.EndSession(ctx, id)

	recorded := results.ForSession(id)
	if len(recorded) != 2 {
		t.Fatalf("expected one result per attempt, got %+v", recorded)
	}
	if recorded[0].Attempt != 1 || recorded[0].Result.Score != 1 || recorded[1].Attempt != 2 || recorded[1].Result.Score != 0 {
		t.Fatalf("unexpected attempts: %+v", recorded)
	}

	recent, err := service.RecentResults(ctx, "math", "easy", 1)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(recent) != 1 || recent[0].Attempt != 2 {
		t.Fatalf("expected latest attempt first, got %+v", recent)
	}
}

func TestHintFlowThroughService(t *testing.T) {
	ctx := context.Background()
	service, sched, _ := newTestService()
	snap, _ := service.StartSession(ctx, "math", "easy")
	id := snap.SessionID

	for _, q := range []string{"q1", "q2"} {
		_, _ = service.SelectOption(ctx, id, q, "o3")
		_, _ = service.SubmitAnswer(ctx, id, q)
		sched.Advance(advanceDelay)
	}

	snap, _ = service.ToggleHint(ctx, id)
	if !snap.Hint.Eligible || !snap.Hint.Expanded || len(snap.Hint.Hints) != 1 {
		t.Fatalf("expected expanded eligible hint, got %+v", snap.Hint)
	}

	snap, _ = service.DismissHint(ctx, id)
	if snap.Hint.Eligible || snap.Hint.WrongAnswerCount != 2 {
		t.Fatalf("expected dismissed hint keeping count, got %+v", snap.Hint)
	}

	snap, err := service.RestartSession(ctx, id)
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if snap.Hint.WrongAnswerCount != 0 || snap.Hint.Dismissed || snap.Position != 0 {
		t.Fatalf("expected fresh session after restart, got %+v", snap)
	}
}

func TestNavigateNeverReopens(t *testing.T) {
	ctx := context.Background()
	service, sched, _ := newTestService()
	snap, _ := service.StartSession(ctx, "math", "easy")
	id := snap.SessionID

	_, _ = service.SelectOption(ctx, id, "q1", "o1")
	_, _ = service.SubmitAnswer(ctx, id, "q1")
	sched.Advance(advanceDelay)

	snap, _ = service.Navigate(ctx, id, app.NavigatePrevious, 0)
	if snap.Position != 0 {
		t.Fatalf("expected position 0, got %d", snap.Position)
	}
	snap, _ = service.SelectOption(ctx, id, "q1", "o2")
	if snap.State.SelectedOptionID != "o1" || *snap.State.IsCorrect {
		t.Fatalf("answered question must stay locked, got %+v", snap.State)
	}

	snap, _ = service.Navigate(ctx, id, app.NavigateTo, 2)
	if snap.Position != 2 {
		t.Fatalf("expected position 2, got %d", snap.Position)
	}
}

func TestStartSessionConfigurationErrors(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	banks := memory.NewQuestionBankRepository(memory.NewStaticQuestionSetLoader(
		domain.QuestionSet{ID: "empty", Topic: "math", Difficulty: "none"},
	), time.Minute)
	service := app.NewAssessmentService(sessions, banks, memory.NewResultStore(), app.EngineSettings{})

	if _, err := service.StartSession(ctx, "math", "none"); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected empty set error, got %v", err)
	}
	if _, err := service.StartSession(ctx, "art", "hard"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected no sessions stored, got %d", sessions.Len())
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	if _, err := service.SubmitAnswer(ctx, "missing", "q1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session error, got %v", err)
	}
	if _, _, err := service.Subscribe(ctx, "missing"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session error, got %v", err)
	}
}

func TestAbandonCancelsTimersAndSubscriptions(t *testing.T) {
	ctx := context.Background()
	service, sched, results := newTestService()
	snap, _ := service.StartSession(ctx, "math", "easy")
	id := snap.SessionID

	ch, cancel, _ := service.Subscribe(ctx, id)
	defer cancel()
	<-ch

	_, _ = service.SelectOption(ctx, id, "q1", "o2")
	_, _ = service.SubmitAnswer(ctx, id, "q1")
	service.Abandon(ctx, id)

	if sched.Pending() != 0 {
		t.Fatalf("expected pending timers cancelled, got %d", sched.Pending())
	}
	sched.Advance(advanceDelay)

	for range ch {
		// drain buffered events until the channel is closed
	}
	if _, err := service.Snapshot(ctx, id); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session removed, got %v", err)
	}
	if len(results.Results()) != 0 {
		t.Fatalf("abandoned sessions must not report, got %+v", results.Results())
	}
}

var fixedNow = time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)

func newTestService() (*app.AssessmentService, *enginetest.Scheduler, *memory.ResultStore) {
	sched := enginetest.NewScheduler()
	results := memory.NewResultStore()
	banks := memory.NewQuestionBankRepository(memory.NewStaticQuestionSetLoader(sampleSet()), 5*time.Minute)

	n := 0
	service := app.NewAssessmentService(
		memory.NewSessionStore(),
		banks,
		results,
		app.EngineSettings{AdvanceDelay: advanceDelay, HintThreshold: 2, Scheduler: sched},
		app.WithClock(func() time.Time { return fixedNow }),
		app.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		}),
	)
	return service, sched, results
}

func sampleSet() domain.QuestionSet {
	question := func(id string) domain.Question {
		return domain.Question{
			ID:     id,
			Prompt: "Select the right option",
			Options: []domain.Option{
				{ID: "o1", Text: "Wrong", Correct: false},
				{ID: "o2", Text: "Right", Correct: true},
				{ID: "o3", Text: "Also wrong", Correct: false},
			},
			Explanation: "o2 is right",
		}
	}
	return domain.QuestionSet{
		ID:         "math-easy",
		Topic:      "math",
		Difficulty: "easy",
		Questions:  []domain.Question{question("q1"), question("q2"), question("q3")},
		Hints:      []string{"Read every option before choosing"},
	}
}

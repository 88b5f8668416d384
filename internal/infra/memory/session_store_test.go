package memory

import (
	"testing"

	"quiz-assessment-engine/internal/app"
	"quiz-assessment-engine/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Put(app.NewSession("s-1", domain.QuestionSet{ID: "set-1"}))
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}

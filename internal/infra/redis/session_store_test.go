package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-assessment-engine/internal/app"
	"quiz-assessment-engine/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	store.Put(app.NewSession("s-1", domain.QuestionSet{Topic: "math", Difficulty: "easy"}))
	if !mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("quiz:session:s-1"); got != "math:easy" {
		t.Fatalf("expected marker to hold topic, got %q", got)
	}

	mr.FastForward(50 * time.Second)
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session present")
	}
	mr.FastForward(50 * time.Second)
	if !mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected Get to refresh the marker ttl")
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

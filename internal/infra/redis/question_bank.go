package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-assessment-engine/internal/domain"
)

// QuestionSetLoader fetches question sets from a backing store (e.g., Postgres).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, topic, difficulty string) (domain.QuestionSet, error)
}

// QuestionBankRepository caches whole question sets in Redis and falls back to a loader on miss.
// Sets are stored as JSON: SET quiz:bank:{topic}:{difficulty} {json} EX ttl
type QuestionBankRepository struct {
	client *redis.Client
	loader QuestionSetLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionBankRepository(client *redis.Client, loader QuestionSetLoader, ttl time.Duration) *QuestionBankRepository {
	return &QuestionBankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionBankRepository) GetQuestionSet(ctx context.Context, topic, difficulty string) (domain.QuestionSet, error) {
	key := r.setKey(topic, difficulty)
	if set, ok := r.cached(ctx, key); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.cached(ctx, key); ok {
			return set, nil
		}

		set, err := r.loader.LoadQuestionSet(ctx, topic, difficulty)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		data, err := json.Marshal(set)
		if err != nil {
			return domain.QuestionSet{}, fmt.Errorf("marshal question set: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// Invalidate drops the cached copy so the next read goes to the loader.
func (r *QuestionBankRepository) Invalidate(ctx context.Context, topic, difficulty string) error {
	return r.client.Del(ctx, r.setKey(topic, difficulty)).Err()
}

func (r *QuestionBankRepository) cached(ctx context.Context, key string) (domain.QuestionSet, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if isMiss(err) {
		return domain.QuestionSet{}, false
	}
	if err != nil {
		log.Printf("read cached question set %s: %v", key, err)
		return domain.QuestionSet{}, false
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		// corrupt entry: drop it and reload
		_ = r.client.Del(ctx, key).Err()
		return domain.QuestionSet{}, false
	}
	return set, true
}

func (r *QuestionBankRepository) setKey(topic, difficulty string) string {
	return "quiz:bank:" + topic + ":" + difficulty
}

func (r *QuestionBankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// isMiss reports whether err is a plain cache miss.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

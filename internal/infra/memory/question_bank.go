package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-assessment-engine/internal/domain"
)

// QuestionSetLoader fetches question sets from a backing store (e.g., Postgres).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, topic, difficulty string) (domain.QuestionSet, error)
}

// QuestionBankRepository caches question sets with TTL to avoid repeated DB hits.
type QuestionBankRepository struct {
	loader QuestionSetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuestionBankRepository(loader QuestionSetLoader, ttl time.Duration) *QuestionBankRepository {
	return &QuestionBankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

// SetKey is the cache key for a topic and difficulty pair.
func SetKey(topic, difficulty string) string {
	return topic + "/" + difficulty
}

func (r *QuestionBankRepository) GetQuestionSet(ctx context.Context, topic, difficulty string) (domain.QuestionSet, error) {
	key := SetKey(topic, difficulty)
	if set, ok := r.cached(key, r.clock()); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		if set, ok := r.cached(key, now); ok {
			return set, nil
		}

		set, err := r.loader.LoadQuestionSet(ctx, topic, difficulty)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		r.mu.Lock()
		r.cache[key] = cachedSet{
			set:       set,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (r *QuestionBankRepository) cached(key string, now time.Time) (domain.QuestionSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuestionSet{}, false
	}
	return entry.set, true
}

func (r *QuestionBankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSetLoader is a simple loader backed by an in-memory list (useful for tests/demos).
type StaticQuestionSetLoader struct {
	sets map[string]domain.QuestionSet
}

func NewStaticQuestionSetLoader(sets ...domain.QuestionSet) *StaticQuestionSetLoader {
	l := &StaticQuestionSetLoader{sets: make(map[string]domain.QuestionSet, len(sets))}
	for _, set := range sets {
		l.sets[SetKey(set.Topic, set.Difficulty)] = set
	}
	return l
}

func (l *StaticQuestionSetLoader) LoadQuestionSet(_ context.Context, topic, difficulty string) (domain.QuestionSet, error) {
	if set, ok := l.sets[SetKey(topic, difficulty)]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrQuestionSetNotFound
}

// Sets lists the loaded question sets ordered by id.
func (l *StaticQuestionSetLoader) Sets() []domain.QuestionSet {
	out := make([]domain.QuestionSet, 0, len(l.sets))
	for _, set := range l.sets {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

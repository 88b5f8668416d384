package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-assessment-engine/internal/domain"
)

// recentLimit caps the per-topic list of recent runs.
const recentLimit = 100

// ResultStore reports session results to Redis. Every run of a session is its own entry.
// Results are stored as:  SET   quiz:result:{sessionID}:{attempt} {json}
// Recent runs are kept as: LPUSH quiz:results:{topic}:{difficulty} {sessionID}:{attempt}
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) RecordResult(ctx context.Context, result domain.SessionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	run := runID(result.SessionID, result.Attempt)
	key := s.resultKey(run)
	// SETNX keeps the first report of a run, matching the Postgres store.
	stored, err := s.client.SetNX(ctx, key, data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("record result %s: %w", run, err)
	}
	if !stored {
		return nil
	}

	recent := s.recentKey(result.Topic, result.Difficulty)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, recent, run)
	pipe.LTrim(ctx, recent, 0, recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("list result %s: %w", run, err)
	}
	return nil
}

// RecentResults returns up to limit results for a topic and difficulty, newest first.
// Runs whose result has expired are skipped.
func (s *ResultStore) RecentResults(ctx context.Context, topic, difficulty string, limit int) ([]domain.SessionResult, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	runs, err := s.client.LRange(ctx, s.recentKey(topic, difficulty), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent results: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(runs))
	for i, run := range runs {
		keys[i] = s.resultKey(run)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load recent results: %w", err)
	}

	results := make([]domain.SessionResult, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var result domain.SessionResult
		if err := json.Unmarshal([]byte(str), &result); err != nil {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func runID(sessionID string, attempt int) string {
	return sessionID + ":" + strconv.Itoa(attempt)
}

func (s *ResultStore) resultKey(run string) string {
	return "quiz:result:" + run
}

func (s *ResultStore) recentKey(topic, difficulty string) string {
	return "quiz:results:" + topic + ":" + difficulty
}

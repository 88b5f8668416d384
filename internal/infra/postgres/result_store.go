package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-assessment-engine/internal/domain"
)

// sessionResultRow is the bun model for the session_results table.
type sessionResultRow struct {
	bun.BaseModel `bun:"table:session_results,alias:sr"`

	SessionID     string    `bun:"session_id,pk"`
	Attempt       int       `bun:"attempt,pk"`
	QuestionSetID string    `bun:"question_set_id"`
	Topic         string    `bun:"topic"`
	Difficulty    string    `bun:"difficulty"`
	Score         int       `bun:"score"`
	Total         int       `bun:"total"`
	WrongAnswers  int       `bun:"wrong_answers"`
	Reason        string    `bun:"reason"`
	FinishedAt    time.Time `bun:"finished_at"`
}

// ResultStore persists completed session results with bun, one row per run of a session.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) RecordResult(ctx context.Context, result domain.SessionResult) error {
	row := &sessionResultRow{
		SessionID:     result.SessionID,
		Attempt:       result.Attempt,
		QuestionSetID: result.QuestionSetID,
		Topic:         result.Topic,
		Difficulty:    result.Difficulty,
		Score:         result.Result.Score,
		Total:         result.Result.Total,
		WrongAnswers:  result.Result.WrongAnswers,
		Reason:        string(result.Result.Reason),
		FinishedAt:    result.FinishedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id, attempt) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert session result %s attempt %d: %w", result.SessionID, result.Attempt, err)
	}
	return nil
}

// RecentResults returns up to limit results for a topic and difficulty, newest first.
func (s *ResultStore) RecentResults(ctx context.Context, topic, difficulty string, limit int) ([]domain.SessionResult, error) {
	var rows []sessionResultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("topic = ?", topic).
		Where("difficulty = ?", difficulty).
		Order("finished_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select session results: %w", err)
	}

	out := make([]domain.SessionResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SessionResult{
			SessionID:     row.SessionID,
			Attempt:       row.Attempt,
			QuestionSetID: row.QuestionSetID,
			Topic:         row.Topic,
			Difficulty:    row.Difficulty,
			Result: domain.Result{
				Score:        row.Score,
				Total:        row.Total,
				WrongAnswers: row.WrongAnswers,
				Reason:       domain.CompletionReason(row.Reason),
			},
			FinishedAt: row.FinishedAt,
		})
	}
	return out, nil
}

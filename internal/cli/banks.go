package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-assessment-engine/internal/config"
	"quiz-assessment-engine/internal/domain"
	"quiz-assessment-engine/internal/infra/memory"
	"quiz-assessment-engine/internal/infra/postgres"
	redisstore "quiz-assessment-engine/internal/infra/redis"
)

// NewBanksCmd lists the built-in question sets and optionally seeds them into Postgres.
func NewBanksCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List built-in question sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := memory.NewStaticQuestionSetLoader(sampleQuestionSets()...).Sets()
			for _, set := range sets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\t%d questions\t%d hints\n",
					set.ID, set.Topic, set.Difficulty, len(set.Questions), len(set.Hints))
			}
			if !seed {
				return nil
			}
			return seedQuestionSets(cmd.Context(), *configPath, sets)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "upsert the built-in sets into Postgres")
	return cmd
}

func seedQuestionSets(ctx context.Context, configPath string, sets []domain.QuestionSet) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := postgres.NewQuestionSetLoader(pool)
	var cache *redisstore.QuestionBankRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache = redisstore.NewQuestionBankRepository(client, loader, config.TTLDuration(cfg.QuestionBank.TTL, 10*time.Minute))
	}

	for _, set := range sets {
		if err := domain.ValidateQuestions(set.Questions); err != nil {
			return fmt.Errorf("question set %s: %w", set.ID, err)
		}
		if err := loader.SaveQuestionSet(ctx, set); err != nil {
			return err
		}
		// running servers must not keep serving the old copy
		if cache != nil {
			if err := cache.Invalidate(ctx, set.Topic, set.Difficulty); err != nil {
				log.Printf("invalidate cached set %s: %v", set.ID, err)
			}
		}
	}
	log.Printf("seeded %d question sets", len(sets))
	return nil
}

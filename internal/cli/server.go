package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"quiz-assessment-engine/internal/app"
	"quiz-assessment-engine/internal/config"
	"quiz-assessment-engine/internal/engine"
	"quiz-assessment-engine/internal/infra/memory"
	"quiz-assessment-engine/internal/infra/postgres"
	redisstore "quiz-assessment-engine/internal/infra/redis"
	transport "quiz-assessment-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var db *bun.DB
	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		db = openBunDB(cfg.Postgres.URL)
		defer db.Close()
		if err := migrateDB(ctx, db); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var loader memory.QuestionSetLoader = memory.NewStaticQuestionSetLoader(sampleQuestionSets()...)
	if pool != nil {
		loader = postgres.NewQuestionSetLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.QuestionBank.TTL, 10*time.Minute)
	var banks app.QuestionBank
	if redisClient != nil {
		banks = redisstore.NewQuestionBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewQuestionBankRepository(loader, bankTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		sessions = memory.NewSessionStore()
	}

	var results app.ResultStore
	switch {
	case db != nil:
		results = postgres.NewResultStore(db)
	case redisClient != nil:
		results = redisstore.NewResultStore(redisClient, config.TTLDuration(cfg.Redis.ResultTTL, 30*24*time.Hour))
	default:
		results = memory.NewResultStore()
	}

	logger := log.New(os.Stderr, "quiz-engine ", log.LstdFlags)
	service := app.NewAssessmentService(sessions, banks, results, app.EngineSettings{
		AdvanceDelay:  config.TTLDuration(cfg.Engine.AdvanceDelay, engine.DefaultAdvanceDelay),
		HintThreshold: cfg.Engine.HintThreshold,
	}, app.WithLogger(logger))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

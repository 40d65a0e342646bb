package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskfable/questlog-api/internal/config"
	"github.com/taskfable/questlog-api/internal/events"
	"github.com/taskfable/questlog-api/internal/job"
	"github.com/taskfable/questlog-api/internal/platform/gemini"
	"github.com/taskfable/questlog-api/internal/platform/postgres"
	"github.com/taskfable/questlog-api/internal/service"
	"github.com/taskfable/questlog-api/internal/service/auth"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	userService     service.UserService
	questLogService service.QuestLogService
	taskService     service.TaskService
	storyService    service.StoryService

	jobRunner        *job.Runner
	rescheduler      *job.Rescheduler
	cancelBackground context.CancelFunc
}

// newApplication wires stores, services, background workers and
// handlers from the loaded configuration.
func newApplication(cfg *config.Config) (*application, error) {
	log := slog.Default()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	// Stores
	userStore := postgres.NewPostgresUserStore(db, log)
	questLogStore := postgres.NewPostgresQuestLogStore(db, log)
	membershipStore := postgres.NewPostgresMembershipStore(db, log)
	inviteStore := postgres.NewPostgresInviteStore(db, log)
	activityStore := postgres.NewPostgresActivityStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)
	commentStore := postgres.NewPostgresCommentStore(db, log)
	storyStore := postgres.NewPostgresStoryStore(db, log)
	jobStore := postgres.NewPostgresJobStore(db)

	// Auth
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	hasher := auth.NewBcryptHasher(0)
	verifier := auth.NewBcryptVerifier()

	// Events
	eventEmitter := events.NewInMemoryEventEmitter(log)

	// Services
	userService := service.NewUserService(userStore, hasher, verifier, jwtService, db, log)
	questLogService := service.NewQuestLogService(
		questLogStore, membershipStore, inviteStore, activityStore, userStore, db, log)
	taskService := service.NewTaskService(
		taskStore, questLogStore, membershipStore, commentStore, storyStore, userStore,
		eventEmitter, db, log)
	storyService := service.NewStoryService(storyStore, taskStore, db, log)

	// Story generation pipeline
	generator, err := gemini.NewStoryGenerator(context.Background(), log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create story generator: %w", err)
	}

	factory, err := job.NewStoryGenerationJobFactory(storyService, generator, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create job factory: %w", err)
	}

	runnerConfig := job.RunnerConfig{
		WorkerCount: cfg.Job.WorkerCount,
		QueueSize:   cfg.Job.QueueSize,
		StuckJobAge: time.Duration(cfg.Job.StuckJobAgeMinutes) * time.Minute,
	}
	runner := job.NewRunner(jobStore, factory.Rehydrate, runnerConfig, log)

	eventHandler := job.NewEventHandler(factory, runner, log)
	eventEmitter.RegisterHandler(eventHandler)

	rescheduler := job.NewRescheduler(
		db, taskStore,
		time.Duration(cfg.Job.RescheduleIntervalMinutes)*time.Minute,
		log)

	return &application{
		config:          cfg,
		logger:          log,
		db:              db,
		jwtService:      jwtService,
		userService:     userService,
		questLogService: questLogService,
		taskService:     taskService,
		storyService:    storyService,
		jobRunner:       runner,
		rescheduler:     rescheduler,
	}, nil
}

// run starts the background workers and the HTTP server, blocking
// until shutdown.
func (app *application) run() error {
	if err := app.jobRunner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	backgroundCtx, cancel := context.WithCancel(context.Background())
	app.cancelBackground = cancel
	go app.rescheduler.Start(backgroundCtx)

	return app.startHTTPServer(backgroundCtx, app.setupRouter())
}

// cleanup releases resources during shutdown.
func (app *application) cleanup() {
	if app.cancelBackground != nil {
		app.cancelBackground()
	}
	app.jobRunner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}

// openDatabase opens and verifies the PostgreSQL connection pool.
func openDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresStoryStore implements store.StoryStore backed by PostgreSQL.
// A unique constraint on task_id enforces one story per task.
type PostgresStoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStoryStore creates a PostgreSQL implementation of the
// StoryStore interface. If logger is nil, the default logger is used.
func NewPostgresStoryStore(db store.DBTX, logger *slog.Logger) *PostgresStoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "story_store")),
	}
}

var _ store.StoryStore = (*PostgresStoryStore)(nil)

// WithTx implements store.StoryStore.WithTx
func (s *PostgresStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return NewPostgresStoryStore(tx, s.logger)
}

// Create implements store.StoryStore.Create
func (s *PostgresStoryStore) Create(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		log.Warn("story validation failed during create",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return err
	}

	query := `
		INSERT INTO stories (id, task_id, text, xp, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		story.ID,
		story.TaskID,
		story.Text,
		story.XP,
		story.Currency,
		story.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("task already has a story",
				slog.String("task_id", story.TaskID.String()))
			return MapUniqueViolation(err, "story", "", nil)
		}
		log.Error("failed to create story",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return MapError(err)
	}

	log.Info("story created",
		slog.String("story_id", story.ID.String()),
		slog.String("task_id", story.TaskID.String()),
		slog.Int("xp", story.XP),
		slog.Int("currency", story.Currency))
	return nil
}

// GetByTask implements store.StoryStore.GetByTask
func (s *PostgresStoryStore) GetByTask(ctx context.Context, taskID uuid.UUID) (*domain.Story, error) {
	query := `
		SELECT id, task_id, text, xp, currency, created_at
		FROM stories
		WHERE task_id = $1
	`

	var st domain.Story
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&st.ID,
		&st.TaskID,
		&st.Text,
		&st.XP,
		&st.Currency,
		&st.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStoryNotFound
		}
		return nil, MapError(err)
	}
	return &st, nil
}

// ListRecent implements store.StoryStore.ListRecent
func (s *PostgresStoryStore) ListRecent(ctx context.Context, limit int) ([]*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, task_id, text, xp, currency, created_at
		FROM stories
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to list stories", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanStories(rows)
}

// ListByQuestLog implements store.StoryStore.ListByQuestLog
func (s *PostgresStoryStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID, limit int) ([]*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT s.id, s.task_id, s.text, s.xp, s.currency, s.created_at
		FROM stories s
		JOIN tasks t ON t.id = s.task_id
		WHERE t.quest_log_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, questLogID, limit)
	if err != nil {
		log.Error("failed to list quest log stories",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLogID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanStories(rows)
}

func scanStories(rows *sql.Rows) ([]*domain.Story, error) {
	stories := []*domain.Story{}
	for rows.Next() {
		var st domain.Story
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Text, &st.XP, &st.Currency, &st.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		stories = append(stories, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return stories, nil
}

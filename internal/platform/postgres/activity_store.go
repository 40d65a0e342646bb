package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresActivityStore implements store.ActivityStore backed by
// PostgreSQL. The activities table carries no foreign key on
// quest_log_id so the trail survives quest log deletion.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a PostgreSQL implementation of the
// ActivityStore interface. If logger is nil, the default logger is
// used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return NewPostgresActivityStore(tx, s.logger)
}

// Append implements store.ActivityStore.Append
func (s *PostgresActivityStore) Append(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		log.Warn("activity validation failed during append",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return err
	}

	query := `
		INSERT INTO activities (id, quest_log_id, actor_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		activity.ID,
		activity.QuestLogID,
		activity.ActorID,
		activity.Action,
		activity.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append activity",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", activity.QuestLogID.String()),
			slog.String("action", string(activity.Action)))
		return MapError(err)
	}

	log.Debug("activity appended",
		slog.String("quest_log_id", activity.QuestLogID.String()),
		slog.String("action", string(activity.Action)))
	return nil
}

// ListByQuestLog implements store.ActivityStore.ListByQuestLog
func (s *PostgresActivityStore) ListByQuestLog(
	ctx context.Context,
	questLogID uuid.UUID,
	skip, limit int,
) ([]*domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT id, quest_log_id, actor_id, action, created_at
		FROM activities
		WHERE quest_log_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, questLogID, limit, skip)
	if err != nil {
		log.Error("failed to list activities",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLogID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	activities := []*domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.QuestLogID, &a.ActorID, &a.Action, &a.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return activities, nil
}

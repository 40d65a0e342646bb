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

// PostgresQuestLogStore implements store.QuestLogStore backed by
// PostgreSQL.
type PostgresQuestLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestLogStore creates a PostgreSQL implementation of the
// QuestLogStore interface. If logger is nil, the default logger is
// used.
func NewPostgresQuestLogStore(db store.DBTX, logger *slog.Logger) *PostgresQuestLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "questlog_store")),
	}
}

var _ store.QuestLogStore = (*PostgresQuestLogStore)(nil)

// WithTx implements store.QuestLogStore.WithTx
func (s *PostgresQuestLogStore) WithTx(tx *sql.Tx) store.QuestLogStore {
	return NewPostgresQuestLogStore(tx, s.logger)
}

// Create implements store.QuestLogStore.Create
func (s *PostgresQuestLogStore) Create(ctx context.Context, questLog *domain.QuestLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := questLog.Validate(); err != nil {
		log.Warn("quest log validation failed during create",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLog.ID.String()))
		return err
	}

	query := `
		INSERT INTO quest_logs (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		questLog.ID,
		questLog.OwnerID,
		questLog.Name,
		questLog.CreatedAt,
		questLog.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create quest log",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLog.ID.String()))
		return MapError(err)
	}

	log.Info("quest log created",
		slog.String("quest_log_id", questLog.ID.String()),
		slog.String("owner_id", questLog.OwnerID.String()))
	return nil
}

// GetByID implements store.QuestLogStore.GetByID
func (s *PostgresQuestLogStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM quest_logs
		WHERE id = $1
	`

	var ql domain.QuestLog
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ql.ID,
		&ql.OwnerID,
		&ql.Name,
		&ql.CreatedAt,
		&ql.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestLogNotFound
		}
		return nil, MapError(err)
	}
	return &ql, nil
}

// ListForUser implements store.QuestLogStore.ListForUser
// Owned quest logs and membership quest logs are returned together,
// deduplicated, oldest first.
func (s *PostgresQuestLogStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT q.id, q.owner_id, q.name, q.created_at, q.updated_at
		FROM quest_logs q
		LEFT JOIN memberships m ON m.quest_log_id = q.id
		WHERE q.owner_id = $1 OR m.user_id = $1
		ORDER BY q.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list quest logs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	questLogs := []*domain.QuestLog{}
	for rows.Next() {
		var ql domain.QuestLog
		if err := rows.Scan(&ql.ID, &ql.OwnerID, &ql.Name, &ql.CreatedAt, &ql.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		questLogs = append(questLogs, &ql)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return questLogs, nil
}

// Delete implements store.QuestLogStore.Delete
// Tasks, task history, comments, stories, memberships and invites go
// with the quest log through ON DELETE CASCADE. Activities carry no
// foreign key and survive.
func (s *PostgresQuestLogStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM quest_logs WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete quest log",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "quest log"); err != nil {
		return store.ErrQuestLogNotFound
	}

	log.Info("quest log deleted", slog.String("quest_log_id", id.String()))
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore backed by PostgreSQL.
// Co-owner IDs are persisted as a JSONB array; the repeat interval is
// stored in minutes.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a PostgreSQL implementation of the
// TaskStore interface. If logger is nil, the default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return NewPostgresTaskStore(tx, s.logger)
}

const taskColumns = `id, quest_log_id, owner_id, co_owner_ids, title, description,
	color, status, locked, is_private, scheduled_at, repeat_interval_minutes,
	created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	var coOwners []byte
	var status string
	var scheduledAt sql.NullTime
	var repeatMinutes sql.NullInt64

	err := row.Scan(
		&t.ID,
		&t.QuestLogID,
		&t.OwnerID,
		&coOwners,
		&t.Title,
		&t.Description,
		&t.Color,
		&status,
		&t.Locked,
		&t.IsPrivate,
		&scheduledAt,
		&repeatMinutes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	if len(coOwners) > 0 {
		if err := json.Unmarshal(coOwners, &t.CoOwnerIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal co-owner IDs: %w", err)
		}
	}
	if scheduledAt.Valid {
		at := scheduledAt.Time
		t.ScheduledAt = &at
	}
	if repeatMinutes.Valid {
		d := time.Duration(repeatMinutes.Int64) * time.Minute
		t.RepeatInterval = &d
	}
	return &t, nil
}

func taskWriteArgs(task *domain.Task) ([]byte, *int64, error) {
	coOwners, err := json.Marshal(task.CoOwnerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal co-owner IDs: %w", err)
	}

	var repeatMinutes *int64
	if task.RepeatInterval != nil {
		m := int64(*task.RepeatInterval / time.Minute)
		repeatMinutes = &m
	}
	return coOwners, repeatMinutes, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	coOwners, repeatMinutes, err := taskWriteArgs(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, quest_log_id, owner_id, co_owner_ids, title, description,
			color, status, locked, is_private, scheduled_at, repeat_interval_minutes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.QuestLogID,
		task.OwnerID,
		coOwners,
		task.Title,
		task.Description,
		task.Color,
		task.Status,
		task.Locked,
		task.IsPrivate,
		task.ScheduledAt,
		repeatMinutes,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("quest_log_id", task.QuestLogID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("quest_log_id", task.QuestLogID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
// The row lock serializes concurrent status changes on the same task
// for the lifetime of the enclosing transaction.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// ListByQuestLog implements store.TaskStore.ListByQuestLog
func (s *PostgresTaskStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE quest_log_id = $1
		ORDER BY created_at`
	return s.queryTasks(ctx, query, questLogID)
}

// ListDueRecurring implements store.TaskStore.ListDueRecurring
func (s *PostgresTaskStore) ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'done'
		  AND repeat_interval_minutes IS NOT NULL
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at <= $1
		ORDER BY scheduled_at`
	return s.queryTasks(ctx, query, now)
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	coOwners, repeatMinutes, err := taskWriteArgs(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET co_owner_ids = $1, title = $2, description = $3, color = $4,
			status = $5, locked = $6, is_private = $7, scheduled_at = $8,
			repeat_interval_minutes = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		coOwners,
		task.Title,
		task.Description,
		task.Color,
		task.Status,
		task.Locked,
		task.IsPrivate,
		task.ScheduledAt,
		repeatMinutes,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// AppendHistory implements store.TaskStore.AppendHistory
func (s *PostgresTaskStore) AppendHistory(ctx context.Context, entry *domain.TaskHistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_history (id, task_id, actor_id, old_status, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		entry.ActorID,
		entry.OldStatus,
		entry.NewStatus,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append task history",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()))
		return MapError(err)
	}
	return nil
}

// ListHistory implements store.TaskStore.ListHistory
func (s *PostgresTaskStore) ListHistory(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskHistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, actor_id, old_status, new_status, created_at
		FROM task_history
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list task history",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.TaskHistoryEntry{}
	for rows.Next() {
		var e domain.TaskHistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.ActorID, &e.OldStatus, &e.NewStatus, &e.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

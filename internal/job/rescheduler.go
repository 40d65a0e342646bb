package job

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

// Rescheduler is the polling loop that resets due recurring tasks. A
// done task with a repeat interval whose scheduled time has passed goes
// back to todo, unlocked, with its schedule advanced and a history
// entry appended.
type Rescheduler struct {
	db        *sql.DB
	taskStore store.TaskStore
	interval  time.Duration
	logger    *slog.Logger
}

// NewRescheduler creates a Rescheduler that polls at the given
// interval.
func NewRescheduler(db *sql.DB, taskStore store.TaskStore, interval time.Duration, logger *slog.Logger) *Rescheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Rescheduler{
		db:        db,
		taskStore: taskStore,
		interval:  interval,
		logger:    logger.With("component", "rescheduler"),
	}
}

// Start runs the polling loop until ctx is cancelled.
func (r *Rescheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("rescheduler started", "interval", r.interval.String())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("rescheduler stopped")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error("reschedule pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single reschedule pass. Each task is reset in its
// own transaction under a row lock so a concurrent status change cannot
// be clobbered.
func (r *Rescheduler) RunOnce(ctx context.Context) error {
	now := time.Now().UTC()

	due, err := r.taskStore.ListDueRecurring(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due recurring tasks: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	r.logger.Info("resetting due recurring tasks", "count", len(due))

	for _, t := range due {
		if err := r.resetTask(ctx, t.ID, now); err != nil {
			r.logger.Error("failed to reset recurring task",
				"task_id", t.ID.String(),
				"error", err)
		}
	}
	return nil
}

func (r *Rescheduler) resetTask(ctx context.Context, taskID uuid.UUID, now time.Time) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := r.taskStore.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		// The task may have been reset by a concurrent pass.
		if task.Status != domain.TaskStatusDone || task.RepeatInterval == nil ||
			task.ScheduledAt == nil || task.ScheduledAt.After(now) {
			return nil
		}

		oldStatus := task.Status
		task.Status = domain.TaskStatusTodo
		task.Locked = false

		// Advance the schedule past now, preserving the cadence even
		// after missed runs.
		next := *task.ScheduledAt
		for !next.After(now) {
			next = next.Add(*task.RepeatInterval)
		}
		task.ScheduledAt = &next
		task.UpdatedAt = now

		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		entry, err := domain.NewTaskHistoryEntry(task.ID, task.OwnerID, oldStatus, task.Status)
		if err != nil {
			return err
		}
		if err := txTasks.AppendHistory(ctx, entry); err != nil {
			return err
		}

		r.logger.Info("recurring task reset to todo",
			"task_id", task.ID.String(),
			"next_scheduled_at", next.Format(time.RFC3339))
		return nil
	})
}

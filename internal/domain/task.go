package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo    TaskStatus = "todo"
	TaskStatusDoing   TaskStatus = "doing"
	TaskStatusWaiting TaskStatus = "waiting"
	TaskStatusDone    TaskStatus = "done"
)

// taskTransitions is the full lifecycle table. Done is terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:    {TaskStatusDoing},
	TaskStatusDoing:   {TaskStatusWaiting, TaskStatusDone},
	TaskStatusWaiting: {TaskStatusDoing, TaskStatusDone},
	TaskStatusDone:    {},
}

// Task validation errors.
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskLog      = errors.New("task quest log ID cannot be empty")
	ErrEmptyTaskOwner    = errors.New("task owner ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskTitleLength   = errors.New("task title must be at most 200 characters")
	ErrInvalidTaskStatus = errors.New("unknown task status")
	ErrDuplicateCoOwner  = errors.New("co-owner list contains duplicates")
	ErrLockRequiresDone  = errors.New("only a done task can be locked")
)

// ValidTaskStatus reports whether s is one of the four known statuses.
func ValidTaskStatus(s TaskStatus) bool {
	_, ok := taskTransitions[s]
	return ok
}

// Task is a unit of work on a quest log. Its status walks the lifecycle
// todo -> doing -> (waiting <-> doing) -> done; once done it is locked
// and immutable.
type Task struct {
	ID             uuid.UUID      `json:"id"`
	QuestLogID     uuid.UUID      `json:"quest_log_id"`
	OwnerID        uuid.UUID      `json:"owner_id"`
	CoOwnerIDs     []uuid.UUID    `json:"co_owner_ids"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Color          string         `json:"color"`
	Status         TaskStatus     `json:"status"`
	Locked         bool           `json:"locked"`
	IsPrivate      bool           `json:"is_private"`
	ScheduledAt    *time.Time     `json:"scheduled_at,omitempty"`
	RepeatInterval *time.Duration `json:"repeat_interval,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewTask creates a task in status todo on questLogID, owned by ownerID.
func NewTask(questLogID, ownerID uuid.UUID, title, description string) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		QuestLogID:  questLogID,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Validate checks the task's fields and invariants.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.QuestLogID == uuid.Nil {
		return ErrEmptyTaskLog
	}
	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > 200 {
		return ErrTaskTitleLength
	}
	if !ValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}
	if t.Locked && t.Status != TaskStatusDone {
		return ErrLockRequiresDone
	}

	seen := make(map[uuid.UUID]struct{}, len(t.CoOwnerIDs))
	for _, id := range t.CoOwnerIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateCoOwner
		}
		seen[id] = struct{}{}
	}

	return nil
}

// CanTransitionTo reports whether the lifecycle table permits moving
// from the task's current status to next. It does not consider the lock.
func (t *Task) CanTransitionTo(next TaskStatus) bool {
	for _, s := range taskTransitions[t.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the task to next, enforcing the lifecycle table
// and the lock. Reaching done locks the task permanently; since done is
// terminal, any request to leave it fails on the table itself.
func (t *Task) TransitionTo(next TaskStatus) error {
	if !ValidTaskStatus(next) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, next)
	}
	if !t.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	if t.Locked {
		return fmt.Errorf("%w: task %s", ErrTaskLocked, t.ID)
	}

	t.Status = next
	if next == TaskStatusDone {
		t.Locked = true
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// TaskHistoryEntry records one status change of a task.
type TaskHistoryEntry struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	ActorID   uuid.UUID  `json:"actor_id"`
	OldStatus TaskStatus `json:"old_status"`
	NewStatus TaskStatus `json:"new_status"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTaskHistoryEntry records that actorID moved taskID between the
// given statuses.
func NewTaskHistoryEntry(taskID, actorID uuid.UUID, oldStatus, newStatus TaskStatus) (*TaskHistoryEntry, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if actorID == uuid.Nil {
		return nil, ErrEmptyTaskOwner
	}
	if !ValidTaskStatus(oldStatus) || !ValidTaskStatus(newStatus) {
		return nil, ErrInvalidTaskStatus
	}
	return &TaskHistoryEntry{
		ID:        uuid.New(),
		TaskID:    taskID,
		ActorID:   actorID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		CreatedAt: time.Now().UTC(),
	}, nil
}

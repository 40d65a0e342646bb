package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	questLogID := uuid.New()
	ownerID := uuid.New()

	task, err := NewTask(questLogID, ownerID, "Slay the backlog", "one ticket at a time")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected status %s, got %s", TaskStatusTodo, task.Status)
	}
	if task.Locked {
		t.Error("Expected new task to be unlocked")
	}
	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Empty title
	_, err = NewTask(questLogID, ownerID, "", "")
	if !errors.Is(err, ErrEmptyTaskTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}

	// Missing quest log
	_, err = NewTask(uuid.Nil, ownerID, "title", "")
	if !errors.Is(err, ErrEmptyTaskLog) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskLog, err)
	}
}

func TestTaskTransitionTable(t *testing.T) {
	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskStatusTodo, TaskStatusDoing, true},
		{TaskStatusTodo, TaskStatusWaiting, false},
		{TaskStatusTodo, TaskStatusDone, false},
		{TaskStatusDoing, TaskStatusWaiting, true},
		{TaskStatusDoing, TaskStatusDone, true},
		{TaskStatusDoing, TaskStatusTodo, false},
		{TaskStatusWaiting, TaskStatusDoing, true},
		{TaskStatusWaiting, TaskStatusDone, true},
		{TaskStatusWaiting, TaskStatusTodo, false},
		{TaskStatusDone, TaskStatusTodo, false},
		{TaskStatusDone, TaskStatusDoing, false},
		{TaskStatusDone, TaskStatusWaiting, false},
	}

	for _, tc := range cases {
		task := &Task{Status: tc.from}
		if got := task.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTaskTransitionToDoneLocks(t *testing.T) {
	task, err := NewTask(uuid.New(), uuid.New(), "title", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := task.TransitionTo(TaskStatusDoing); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := task.TransitionTo(TaskStatusDone); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !task.Locked {
		t.Error("Expected task to be locked after reaching done")
	}

	// Done is terminal; any further transition fails on the lifecycle
	// table and leaves the lock in place.
	err = task.TransitionTo(TaskStatusDoing)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTransition, err)
	}
	if !task.Locked {
		t.Error("Expected task to stay locked after rejected transition")
	}
	if task.Status != TaskStatusDone {
		t.Errorf("Expected status to stay done, got %s", task.Status)
	}
}

func TestTaskTransitionToInvalid(t *testing.T) {
	task, err := NewTask(uuid.New(), uuid.New(), "title", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err = task.TransitionTo(TaskStatusDone)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTransition, err)
	}
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected status unchanged after failed transition, got %s", task.Status)
	}

	err = task.TransitionTo(TaskStatus("paused"))
	if !errors.Is(err, ErrInvalidTaskStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}
}

func TestTaskValidateLockRequiresDone(t *testing.T) {
	task := &Task{
		ID:         uuid.New(),
		QuestLogID: uuid.New(),
		OwnerID:    uuid.New(),
		Title:      "title",
		Status:     TaskStatusDoing,
		Locked:     true,
	}

	if err := task.Validate(); !errors.Is(err, ErrLockRequiresDone) {
		t.Errorf("Expected error %v, got %v", ErrLockRequiresDone, err)
	}
}

func TestTaskValidateDuplicateCoOwners(t *testing.T) {
	dup := uuid.New()
	task := &Task{
		ID:         uuid.New(),
		QuestLogID: uuid.New(),
		OwnerID:    uuid.New(),
		Title:      "title",
		Status:     TaskStatusTodo,
		CoOwnerIDs: []uuid.UUID{dup, uuid.New(), dup},
	}

	if err := task.Validate(); !errors.Is(err, ErrDuplicateCoOwner) {
		t.Errorf("Expected error %v, got %v", ErrDuplicateCoOwner, err)
	}
}

func TestNewTaskHistoryEntry(t *testing.T) {
	entry, err := NewTaskHistoryEntry(uuid.New(), uuid.New(), TaskStatusTodo, TaskStatusDoing)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.OldStatus != TaskStatusTodo || entry.NewStatus != TaskStatusDoing {
		t.Errorf("Expected todo -> doing, got %s -> %s", entry.OldStatus, entry.NewStatus)
	}

	_, err = NewTaskHistoryEntry(uuid.New(), uuid.New(), TaskStatusTodo, TaskStatus("bogus"))
	if !errors.Is(err, ErrInvalidTaskStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}
}

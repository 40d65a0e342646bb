package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/events"
	"github.com/taskfable/questlog-api/internal/store"
)

// maskedTaskTitle replaces a private task's title for users outside
// its owner and co-owners.
const maskedTaskTitle = "Solo Adventure"

// CreateTaskParams carries the fields of a task creation request.
type CreateTaskParams struct {
	Title                 string
	Description           string
	Color                 string
	IsPrivate             bool
	CoOwnerIDs            []uuid.UUID
	ScheduledAt           *time.Time
	RepeatIntervalMinutes *int
}

// CommentView is a comment enriched with its author's username.
type CommentView struct {
	Comment        *domain.Comment `json:"comment"`
	AuthorUsername string          `json:"author_username"`
}

// TaskView is a task with its history, comments and story, as visible
// to a particular user. A private task viewed by an outsider is
// masked: the title is replaced and details are withheld.
type TaskView struct {
	Task     *domain.Task               `json:"task"`
	History  []*domain.TaskHistoryEntry `json:"history,omitempty"`
	Comments []*CommentView             `json:"comments,omitempty"`
	Story    *domain.Story              `json:"story,omitempty"`
	Masked   bool                       `json:"masked"`
}

// TaskService provides task lifecycle, comment and story-trigger
// operations.
type TaskService interface {
	// CreateTask creates a task on a quest log in the todo status.
	// Spectators cannot create tasks.
	CreateTask(ctx context.Context, actorID, questLogID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// GetTask retrieves a task by ID for the acting user, masked if
	// private and the actor is not on it.
	GetTask(ctx context.Context, actorID, taskID uuid.UUID) (*TaskView, error)

	// ListTasks returns a quest log's tasks as visible to the actor.
	ListTasks(ctx context.Context, actorID, questLogID uuid.UUID) ([]*TaskView, error)

	// RequestTransition moves a task to newStatus. Invalid moves,
	// including any move out of the terminal done status, return
	// domain.ErrInvalidTransition. Completing a task locks it and splits the
	// reward pool among the owner and distinct comment authors. The
	// first move into doing triggers story generation in the
	// background.
	RequestTransition(ctx context.Context, actorID, taskID uuid.UUID, newStatus domain.TaskStatus) (*domain.Task, error)

	// EditDescription updates a task's description. Only the owner and
	// co-owners may edit; a completed task returns
	// domain.ErrTaskLocked.
	EditDescription(ctx context.Context, actorID, taskID uuid.UUID, description string) (*domain.Task, error)

	// AddComment adds a comment to a task. Spectators cannot comment.
	AddComment(ctx context.Context, actorID, taskID uuid.UUID, content string) (*domain.Comment, error)

	// EditComment updates a comment's content. Only its author may
	// edit.
	EditComment(ctx context.Context, actorID, commentID uuid.UUID, content string) (*domain.Comment, error)
}

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskStore       store.TaskStore
	questLogStore   store.QuestLogStore
	membershipStore store.MembershipStore
	commentStore    store.CommentStore
	storyStore      store.StoryStore
	userStore       store.UserStore
	eventEmitter    events.EventEmitter
	db              *sql.DB
	logger          *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	questLogStore store.QuestLogStore,
	membershipStore store.MembershipStore,
	commentStore store.CommentStore,
	storyStore store.StoryStore,
	userStore store.UserStore,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskStore:       taskStore,
		questLogStore:   questLogStore,
		membershipStore: membershipStore,
		commentStore:    commentStore,
		storyStore:      storyStore,
		userStore:       userStore,
		eventEmitter:    eventEmitter,
		db:              db,
		logger:          logger.With("component", "task_service"),
	}
}

var _ TaskService = (*TaskServiceImpl)(nil)

// access describes what the actor may do on a quest log.
type access struct {
	questLog *domain.QuestLog
	canWrite bool
}

// checkAccess verifies the actor participates in the quest log.
// Spectators get read-only access; the owner and members can write.
func (s *TaskServiceImpl) checkAccess(ctx context.Context, questLogID, actorID uuid.UUID) (*access, error) {
	questLog, err := s.questLogStore.GetByID(ctx, questLogID)
	if err != nil {
		return nil, err
	}

	if questLog.OwnerID == actorID {
		return &access{questLog: questLog, canWrite: true}, nil
	}

	membership, err := s.membershipStore.Get(ctx, questLogID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return &access{
		questLog: questLog,
		canWrite: membership.Role == domain.RoleMember,
	}, nil
}

// onTask reports whether the user owns or co-owns the task.
func onTask(task *domain.Task, userID uuid.UUID) bool {
	if task.OwnerID == userID {
		return true
	}
	for _, id := range task.CoOwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// buildTask assembles and validates a task from creation params.
func buildTask(actorID, questLogID uuid.UUID, params CreateTaskParams) (*domain.Task, error) {
	task, err := domain.NewTask(questLogID, actorID, params.Title, params.Description)
	if err != nil {
		return nil, err
	}
	task.Color = params.Color
	task.IsPrivate = params.IsPrivate
	task.CoOwnerIDs = params.CoOwnerIDs
	task.ScheduledAt = params.ScheduledAt
	if params.RepeatIntervalMinutes != nil {
		interval := time.Duration(*params.RepeatIntervalMinutes) * time.Minute
		task.RepeatInterval = &interval
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTask creates a task on a quest log. The history trail opens
// with a todo entry recorded alongside the task itself.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, actorID, questLogID uuid.UUID, params CreateTaskParams) (*domain.Task, error) {
	acc, err := s.checkAccess(ctx, questLogID, actorID)
	if err != nil {
		return nil, NewServiceError("create task", err)
	}
	if !acc.canWrite {
		return nil, NewServiceError("create task", ErrForbidden)
	}

	task, err := buildTask(actorID, questLogID, params)
	if err != nil {
		return nil, NewServiceError("create task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}
		entry, err := domain.NewTaskHistoryEntry(task.ID, actorID, domain.TaskStatusTodo, domain.TaskStatusTodo)
		if err != nil {
			return err
		}
		return txTasks.AppendHistory(ctx, entry)
	})
	if err != nil {
		s.logger.Error("failed to create task", "error", err, "quest_log_id", questLogID)
		return nil, NewServiceError("create task", err)
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"quest_log_id", questLogID,
		"owner_id", actorID)
	return task, nil
}

// GetTask retrieves a single task as visible to the actor.
func (s *TaskServiceImpl) GetTask(ctx context.Context, actorID, taskID uuid.UUID) (*TaskView, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("get task", err)
	}

	if _, err := s.checkAccess(ctx, task.QuestLogID, actorID); err != nil {
		return nil, NewServiceError("get task", err)
	}

	view, err := s.buildView(ctx, task, actorID)
	if err != nil {
		return nil, NewServiceError("get task", err)
	}
	return view, nil
}

// ListTasks returns a quest log's tasks as visible to the actor.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, actorID, questLogID uuid.UUID) ([]*TaskView, error) {
	if _, err := s.checkAccess(ctx, questLogID, actorID); err != nil {
		return nil, NewServiceError("list tasks", err)
	}

	tasks, err := s.taskStore.ListByQuestLog(ctx, questLogID)
	if err != nil {
		return nil, NewServiceError("list tasks", err)
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		view, err := s.buildView(ctx, task, actorID)
		if err != nil {
			return nil, NewServiceError("list tasks", err)
		}
		views = append(views, view)
	}
	return views, nil
}

// buildView assembles the task's history, comments and story, masking
// private tasks for users outside the owner and co-owners.
func (s *TaskServiceImpl) buildView(ctx context.Context, task *domain.Task, actorID uuid.UUID) (*TaskView, error) {
	if task.IsPrivate && !onTask(task, actorID) {
		masked := *task
		masked.Title = maskedTaskTitle
		masked.Description = ""
		masked.CoOwnerIDs = nil
		return &TaskView{Task: &masked, Masked: true}, nil
	}

	history, err := s.taskStore.ListHistory(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentStore.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	commentViews := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		author, err := s.userStore.GetByID(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		commentViews = append(commentViews, &CommentView{
			Comment:        c,
			AuthorUsername: author.Username,
		})
	}

	story, err := s.storyStore.GetByTask(ctx, task.ID)
	if err != nil && !errors.Is(err, store.ErrStoryNotFound) {
		return nil, err
	}

	return &TaskView{
		Task:     task,
		History:  history,
		Comments: commentViews,
		Story:    story,
	}, nil
}

// RequestTransition moves a task to newStatus under a row lock.
func (s *TaskServiceImpl) RequestTransition(ctx context.Context, actorID, taskID uuid.UUID, newStatus domain.TaskStatus) (*domain.Task, error) {
	if !domain.ValidTaskStatus(newStatus) {
		return nil, NewServiceError("transition task", domain.ErrInvalidTransition)
	}

	var (
		updated      *domain.Task
		requestStory bool
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		acc, err := s.withTxAccess(ctx, tx, task.QuestLogID, actorID)
		if err != nil {
			return err
		}
		if !acc.canWrite {
			return ErrForbidden
		}

		oldStatus := task.Status
		if err := task.TransitionTo(newStatus); err != nil {
			return err
		}
		task.UpdatedAt = time.Now().UTC()

		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		entry, err := domain.NewTaskHistoryEntry(task.ID, actorID, oldStatus, newStatus)
		if err != nil {
			return err
		}
		if err := txTasks.AppendHistory(ctx, entry); err != nil {
			return err
		}

		if newStatus == domain.TaskStatusDone {
			if err := s.creditRewards(ctx, tx, task); err != nil {
				return err
			}
		}

		requestStory = oldStatus == domain.TaskStatusTodo && newStatus == domain.TaskStatusDoing
		updated = task
		return nil
	})
	if err != nil {
		return nil, NewServiceError("transition task", err)
	}

	// Story generation is triggered only after the status change has
	// committed; its failure never rolls the transition back.
	if requestStory {
		s.requestStoryGeneration(ctx, updated)
	}

	s.logger.Info("task transitioned",
		"task_id", taskID,
		"new_status", newStatus,
		"actor_id", actorID)
	return updated, nil
}

// withTxAccess is checkAccess against transaction-bound stores.
func (s *TaskServiceImpl) withTxAccess(ctx context.Context, tx *sql.Tx, questLogID, actorID uuid.UUID) (*access, error) {
	questLog, err := s.questLogStore.WithTx(tx).GetByID(ctx, questLogID)
	if err != nil {
		return nil, err
	}
	if questLog.OwnerID == actorID {
		return &access{questLog: questLog, canWrite: true}, nil
	}

	membership, err := s.membershipStore.WithTx(tx).Get(ctx, questLogID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return &access{
		questLog: questLog,
		canWrite: membership.Role == domain.RoleMember,
	}, nil
}

// rewardParticipants returns the distinct reward recipients of a
// completed task: the owner plus every distinct comment author. An
// owner who also commented appears once.
func rewardParticipants(ownerID uuid.UUID, authorIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{ownerID: {}}
	participants := []uuid.UUID{ownerID}
	for _, id := range authorIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	return participants
}

// creditRewards splits the completion pool among the task owner and
// the distinct comment authors, crediting each inside the transaction.
func (s *TaskServiceImpl) creditRewards(ctx context.Context, tx *sql.Tx, task *domain.Task) error {
	authorIDs, err := s.commentStore.WithTx(tx).ListAuthorIDs(ctx, task.ID)
	if err != nil {
		return err
	}

	participants := rewardParticipants(task.OwnerID, authorIDs)
	share := SplitReward(len(participants))
	txUsers := s.userStore.WithTx(tx)
	for _, id := range participants {
		if err := txUsers.AddRewards(ctx, id, share.XP, share.Currency); err != nil {
			return err
		}
	}

	s.logger.Info("rewards credited",
		"task_id", task.ID,
		"participants", len(participants),
		"xp_each", share.XP,
		"currency_each", share.Currency)
	return nil
}

// requestStoryGeneration emits a story request event unless the task
// already has a story from an earlier run.
func (s *TaskServiceImpl) requestStoryGeneration(ctx context.Context, task *domain.Task) {
	if _, err := s.storyStore.GetByTask(ctx, task.ID); err == nil {
		return
	} else if !errors.Is(err, store.ErrStoryNotFound) {
		s.logger.Error("failed to check for existing story", "error", err, "task_id", task.ID)
		return
	}

	event, err := events.NewJobRequestEvent(events.EventTypeStoryRequested, events.StoryRequestPayload{
		TaskID:     task.ID,
		QuestLogID: task.QuestLogID,
	})
	if err != nil {
		s.logger.Error("failed to create story request event", "error", err, "task_id", task.ID)
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit story request event", "error", err, "task_id", task.ID)
		return
	}

	s.logger.Debug("story generation requested", "task_id", task.ID)
}

// EditDescription updates a task's description.
func (s *TaskServiceImpl) EditDescription(ctx context.Context, actorID, taskID uuid.UUID, description string) (*domain.Task, error) {
	var updated *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if !onTask(task, actorID) {
			return ErrForbidden
		}
		if task.Locked {
			return domain.ErrTaskLocked
		}

		task.Description = description
		task.UpdatedAt = time.Now().UTC()
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, NewServiceError("edit task description", err)
	}
	return updated, nil
}

// AddComment adds a comment to a task.
func (s *TaskServiceImpl) AddComment(ctx context.Context, actorID, taskID uuid.UUID, content string) (*domain.Comment, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("add comment", err)
	}

	acc, err := s.checkAccess(ctx, task.QuestLogID, actorID)
	if err != nil {
		return nil, NewServiceError("add comment", err)
	}
	if !acc.canWrite {
		return nil, NewServiceError("add comment", ErrForbidden)
	}

	comment, err := domain.NewComment(taskID, actorID, content)
	if err != nil {
		return nil, NewServiceError("add comment", err)
	}
	if err := s.commentStore.Create(ctx, comment); err != nil {
		return nil, NewServiceError("add comment", err)
	}

	s.logger.Info("comment added", "comment_id", comment.ID, "task_id", taskID)
	return comment, nil
}

// EditComment updates a comment's content.
func (s *TaskServiceImpl) EditComment(ctx context.Context, actorID, commentID uuid.UUID, content string) (*domain.Comment, error) {
	comment, err := s.commentStore.GetByID(ctx, commentID)
	if err != nil {
		return nil, NewServiceError("edit comment", err)
	}
	if comment.AuthorID != actorID {
		return nil, NewServiceError("edit comment", ErrForbidden)
	}

	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()
	if err := comment.Validate(); err != nil {
		return nil, NewServiceError("edit comment", err)
	}
	if err := s.commentStore.Update(ctx, comment); err != nil {
		return nil, NewServiceError("edit comment", err)
	}
	return comment, nil
}

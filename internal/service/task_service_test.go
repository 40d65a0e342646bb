package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

type taskServiceFixture struct {
	tasks       *mockTaskStore
	questLogs   *mockQuestLogStore
	memberships *mockMembershipStore
	comments    *mockCommentStore
	stories     *mockStoryStore
	users       *mockUserStore
}

func (f *taskServiceFixture) service() *TaskServiceImpl {
	return NewTaskService(f.tasks, f.questLogs, f.memberships, f.comments, f.stories, f.users, nil, nil, slog.Default())
}

func newTaskServiceFixture(questLog *domain.QuestLog) *taskServiceFixture {
	return &taskServiceFixture{
		tasks: &mockTaskStore{},
		questLogs: &mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			if questLog != nil && id == questLog.ID {
				return questLog, nil
			}
			return nil, store.ErrQuestLogNotFound
		}},
		memberships: &mockMembershipStore{},
		comments:    &mockCommentStore{},
		stories:     &mockStoryStore{},
		users:       &mockUserStore{},
	}
}

func membershipFor(questLogID, userID uuid.UUID, role domain.MembershipRole) func(ctx context.Context, qID, uID uuid.UUID) (*domain.Membership, error) {
	return func(ctx context.Context, qID, uID uuid.UUID) (*domain.Membership, error) {
		if qID == questLogID && uID == userID {
			return &domain.Membership{ID: uuid.New(), QuestLogID: qID, UserID: uID, Role: role}, nil
		}
		return nil, store.ErrMembershipNotFound
	}
}

func TestCreateTaskRejectsSpectators(t *testing.T) {
	spectatorID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}

	f := newTaskServiceFixture(questLog)
	f.memberships.get = membershipFor(questLog.ID, spectatorID, domain.RoleSpectator)

	_, err := f.service().CreateTask(context.Background(), spectatorID, questLog.ID, CreateTaskParams{Title: "sweep"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.tasks.created)
}

func TestCreateTaskRejectsOutsiders(t *testing.T) {
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}

	f := newTaskServiceFixture(questLog)

	_, err := f.service().CreateTask(context.Background(), uuid.New(), questLog.ID, CreateTaskParams{Title: "sweep"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBuildTaskConvertsRepeatInterval(t *testing.T) {
	minutes := 90
	task, err := buildTask(uuid.New(), uuid.New(), CreateTaskParams{
		Title:                 "water the plants",
		Color:                 "#00ff00",
		RepeatIntervalMinutes: &minutes,
	})
	require.NoError(t, err)

	require.NotNil(t, task.RepeatInterval)
	assert.Equal(t, float64(90), task.RepeatInterval.Minutes())
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, "#00ff00", task.Color)
}

func TestBuildTaskRejectsDuplicateCoOwners(t *testing.T) {
	dup := uuid.New()
	_, err := buildTask(uuid.New(), uuid.New(), CreateTaskParams{
		Title:      "chore",
		CoOwnerIDs: []uuid.UUID{dup, dup},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCoOwner)
}

func TestGetTaskMasksPrivateTasks(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	private := &domain.Task{
		ID:          uuid.New(),
		QuestLogID:  questLog.ID,
		OwnerID:     ownerID,
		Title:       "secret errand",
		Description: "buy the gift",
		Status:      domain.TaskStatusTodo,
		IsPrivate:   true,
	}

	f := newTaskServiceFixture(questLog)
	f.tasks.getByID = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		return private, nil
	}
	f.memberships.get = membershipFor(questLog.ID, memberID, domain.RoleMember)

	view, err := f.service().GetTask(context.Background(), memberID, private.ID)
	require.NoError(t, err)

	assert.True(t, view.Masked)
	assert.Equal(t, "Solo Adventure", view.Task.Title)
	assert.Empty(t, view.Task.Description)
	assert.Nil(t, view.Task.CoOwnerIDs)
	assert.Nil(t, view.Story)

	// The original record is untouched.
	assert.Equal(t, "secret errand", private.Title)

	// The owner sees everything.
	view, err = f.service().GetTask(context.Background(), ownerID, private.ID)
	require.NoError(t, err)
	assert.False(t, view.Masked)
	assert.Equal(t, "secret errand", view.Task.Title)
}

func TestGetTaskVisibleToCoOwner(t *testing.T) {
	ownerID := uuid.New()
	coOwnerID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	private := &domain.Task{
		ID:         uuid.New(),
		QuestLogID: questLog.ID,
		OwnerID:    ownerID,
		Title:      "secret errand",
		Status:     domain.TaskStatusTodo,
		IsPrivate:  true,
		CoOwnerIDs: []uuid.UUID{coOwnerID},
	}

	f := newTaskServiceFixture(questLog)
	f.tasks.getByID = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		return private, nil
	}
	f.memberships.get = membershipFor(questLog.ID, coOwnerID, domain.RoleMember)

	view, err := f.service().GetTask(context.Background(), coOwnerID, private.ID)
	require.NoError(t, err)
	assert.False(t, view.Masked)
	assert.Equal(t, "secret errand", view.Task.Title)
}

func TestListTasksMixedVisibility(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	tasks := []*domain.Task{
		{ID: uuid.New(), QuestLogID: questLog.ID, OwnerID: ownerID, Title: "shared chore", Status: domain.TaskStatusTodo},
		{ID: uuid.New(), QuestLogID: questLog.ID, OwnerID: ownerID, Title: "private errand", Status: domain.TaskStatusTodo, IsPrivate: true},
	}

	f := newTaskServiceFixture(questLog)
	f.tasks.listByLog = func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Task, error) {
		return tasks, nil
	}
	f.memberships.get = membershipFor(questLog.ID, memberID, domain.RoleMember)

	views, err := f.service().ListTasks(context.Background(), memberID, questLog.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "shared chore", views[0].Task.Title)
	assert.False(t, views[0].Masked)
	assert.Equal(t, "Solo Adventure", views[1].Task.Title)
	assert.True(t, views[1].Masked)
}

func TestAddCommentRejectsSpectators(t *testing.T) {
	spectatorID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}
	task := &domain.Task{ID: uuid.New(), QuestLogID: questLog.ID, OwnerID: questLog.OwnerID, Title: "chore", Status: domain.TaskStatusTodo}

	f := newTaskServiceFixture(questLog)
	f.tasks.getByID = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		return task, nil
	}
	f.memberships.get = membershipFor(questLog.ID, spectatorID, domain.RoleSpectator)

	_, err := f.service().AddComment(context.Background(), spectatorID, task.ID, "nice work")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.comments.created)
}

func TestAddComment(t *testing.T) {
	memberID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}
	task := &domain.Task{ID: uuid.New(), QuestLogID: questLog.ID, OwnerID: questLog.OwnerID, Title: "chore", Status: domain.TaskStatusTodo}

	f := newTaskServiceFixture(questLog)
	f.tasks.getByID = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		return task, nil
	}
	f.memberships.get = membershipFor(questLog.ID, memberID, domain.RoleMember)

	comment, err := f.service().AddComment(context.Background(), memberID, task.ID, "nice work")
	require.NoError(t, err)
	assert.Equal(t, memberID, comment.AuthorID)
	assert.Equal(t, "nice work", comment.Content)
	require.Len(t, f.comments.created, 1)
}

func TestEditCommentAuthorOnly(t *testing.T) {
	authorID := uuid.New()
	comment := &domain.Comment{
		ID:       uuid.New(),
		TaskID:   uuid.New(),
		AuthorID: authorID,
		Content:  "original",
	}

	f := newTaskServiceFixture(nil)
	f.comments.getByID = func(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
		return comment, nil
	}

	svc := f.service()

	_, err := svc.EditComment(context.Background(), uuid.New(), comment.ID, "hijacked")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.comments.updated)

	edited, err := svc.EditComment(context.Background(), authorID, comment.ID, "revised")
	require.NoError(t, err)
	assert.Equal(t, "revised", edited.Content)
	require.Len(t, f.comments.updated, 1)
}

func TestRewardParticipants(t *testing.T) {
	owner := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	// Owner plus one distinct commenter splits the pool two ways.
	participants := rewardParticipants(owner, []uuid.UUID{bob})
	require.Len(t, participants, 2)
	assert.Equal(t, owner, participants[0])
	assert.Equal(t, bob, participants[1])

	share := SplitReward(len(participants))
	assert.Equal(t, 5, share.XP)
	assert.Equal(t, 2, share.Currency)

	// An owner who also commented is credited once.
	participants = rewardParticipants(owner, []uuid.UUID{owner, bob, bob, carol})
	require.Len(t, participants, 3)
	assert.Equal(t, []uuid.UUID{owner, bob, carol}, participants)

	// No commenters leaves the owner with the whole pool.
	participants = rewardParticipants(owner, nil)
	require.Len(t, participants, 1)
	share = SplitReward(len(participants))
	assert.Equal(t, 10, share.XP)
	assert.Equal(t, 5, share.Currency)
}

func TestRequestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newTaskServiceFixture(nil)

	_, err := f.service().RequestTransition(context.Background(), uuid.New(), uuid.New(), domain.TaskStatus("paused"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

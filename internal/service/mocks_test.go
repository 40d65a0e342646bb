package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

// Function-backed store mocks. Unset functions return not-found errors
// so tests only wire what they exercise.

type mockQuestLogStore struct {
	getByID     func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error)
	listForUser func(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error)
}

func (m *mockQuestLogStore) Create(ctx context.Context, q *domain.QuestLog) error { return nil }
func (m *mockQuestLogStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
	if m.getByID == nil {
		return nil, store.ErrQuestLogNotFound
	}
	return m.getByID(ctx, id)
}
func (m *mockQuestLogStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error) {
	if m.listForUser == nil {
		return nil, nil
	}
	return m.listForUser(ctx, userID)
}
func (m *mockQuestLogStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockQuestLogStore) WithTx(tx *sql.Tx) store.QuestLogStore          { return m }

type mockMembershipStore struct {
	get           func(ctx context.Context, questLogID, userID uuid.UUID) (*domain.Membership, error)
	listByLog     func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Membership, error)
	upsertedRoles []domain.MembershipRole
}

func (m *mockMembershipStore) Upsert(ctx context.Context, membership *domain.Membership) error {
	m.upsertedRoles = append(m.upsertedRoles, membership.Role)
	return nil
}
func (m *mockMembershipStore) Get(ctx context.Context, questLogID, userID uuid.UUID) (*domain.Membership, error) {
	if m.get == nil {
		return nil, store.ErrMembershipNotFound
	}
	return m.get(ctx, questLogID, userID)
}
func (m *mockMembershipStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Membership, error) {
	if m.listByLog == nil {
		return nil, nil
	}
	return m.listByLog(ctx, questLogID)
}
func (m *mockMembershipStore) WithTx(tx *sql.Tx) store.MembershipStore { return m }

type mockInviteStore struct {
	getByToken func(ctx context.Context, token string) (*domain.Invite, error)
	listByLog  func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Invite, error)
}

func (m *mockInviteStore) Create(ctx context.Context, invite *domain.Invite) error { return nil }
func (m *mockInviteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	return nil, store.ErrInviteNotFound
}
func (m *mockInviteStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	return nil, store.ErrInviteNotFound
}
func (m *mockInviteStore) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	if m.getByToken == nil {
		return nil, store.ErrInviteNotFound
	}
	return m.getByToken(ctx, token)
}
func (m *mockInviteStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Invite, error) {
	if m.listByLog == nil {
		return nil, nil
	}
	return m.listByLog(ctx, questLogID)
}
func (m *mockInviteStore) Update(ctx context.Context, invite *domain.Invite) error { return nil }
func (m *mockInviteStore) WithTx(tx *sql.Tx) store.InviteStore                     { return m }

type mockActivityStore struct {
	appended  []*domain.Activity
	listByLog func(ctx context.Context, questLogID uuid.UUID, skip, limit int) ([]*domain.Activity, error)
}

func (m *mockActivityStore) Append(ctx context.Context, activity *domain.Activity) error {
	m.appended = append(m.appended, activity)
	return nil
}
func (m *mockActivityStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID, skip, limit int) ([]*domain.Activity, error) {
	if m.listByLog == nil {
		return nil, nil
	}
	return m.listByLog(ctx, questLogID, skip, limit)
}
func (m *mockActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return m }

type mockUserStore struct {
	getByID       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByUsername func(ctx context.Context, username string) (*domain.User, error)
	getByEmail    func(ctx context.Context, email string) (*domain.User, error)
	listUsernames func(ctx context.Context) ([]string, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error { return nil }
func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByID == nil {
		return nil, store.ErrUserNotFound
	}
	return m.getByID(ctx, id)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsername == nil {
		return nil, store.ErrUserNotFound
	}
	return m.getByUsername(ctx, username)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmail == nil {
		return nil, store.ErrUserNotFound
	}
	return m.getByEmail(ctx, email)
}
func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error { return nil }
func (m *mockUserStore) AddRewards(ctx context.Context, id uuid.UUID, xp, currency int) error {
	return nil
}
func (m *mockUserStore) ListUsernames(ctx context.Context) ([]string, error) {
	if m.listUsernames == nil {
		return nil, nil
	}
	return m.listUsernames(ctx)
}
func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockTaskStore struct {
	getByID     func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByLog   func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Task, error)
	listHistory func(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskHistoryEntry, error)
	created     []*domain.Task
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.created = append(m.created, task)
	return nil
}
func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByID == nil {
		return nil, store.ErrTaskNotFound
	}
	return m.getByID(ctx, id)
}
func (m *mockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.GetByID(ctx, id)
}
func (m *mockTaskStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Task, error) {
	if m.listByLog == nil {
		return nil, nil
	}
	return m.listByLog(ctx, questLogID)
}
func (m *mockTaskStore) ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return nil, nil
}
func (m *mockTaskStore) Update(ctx context.Context, task *domain.Task) error { return nil }
func (m *mockTaskStore) AppendHistory(ctx context.Context, entry *domain.TaskHistoryEntry) error {
	return nil
}
func (m *mockTaskStore) ListHistory(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskHistoryEntry, error) {
	if m.listHistory == nil {
		return nil, nil
	}
	return m.listHistory(ctx, taskID)
}
func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

type mockCommentStore struct {
	getByID       func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	listByTask    func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
	listAuthorIDs func(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
	created       []*domain.Comment
	updated       []*domain.Comment
}

func (m *mockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	m.created = append(m.created, comment)
	return nil
}
func (m *mockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.getByID == nil {
		return nil, store.ErrCommentNotFound
	}
	return m.getByID(ctx, id)
}
func (m *mockCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	if m.listByTask == nil {
		return nil, nil
	}
	return m.listByTask(ctx, taskID)
}
func (m *mockCommentStore) ListAuthorIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	if m.listAuthorIDs == nil {
		return nil, nil
	}
	return m.listAuthorIDs(ctx, taskID)
}
func (m *mockCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	m.updated = append(m.updated, comment)
	return nil
}
func (m *mockCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return m }

type mockStoryStore struct {
	getByTask  func(ctx context.Context, taskID uuid.UUID) (*domain.Story, error)
	listByLog  func(ctx context.Context, questLogID uuid.UUID, limit int) ([]*domain.Story, error)
	listRecent func(ctx context.Context, limit int) ([]*domain.Story, error)
	created    []*domain.Story
}

func (m *mockStoryStore) Create(ctx context.Context, story *domain.Story) error {
	m.created = append(m.created, story)
	return nil
}
func (m *mockStoryStore) GetByTask(ctx context.Context, taskID uuid.UUID) (*domain.Story, error) {
	if m.getByTask == nil {
		return nil, store.ErrStoryNotFound
	}
	return m.getByTask(ctx, taskID)
}
func (m *mockStoryStore) ListRecent(ctx context.Context, limit int) ([]*domain.Story, error) {
	if m.listRecent == nil {
		return nil, nil
	}
	return m.listRecent(ctx, limit)
}
func (m *mockStoryStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID, limit int) ([]*domain.Story, error) {
	if m.listByLog == nil {
		return nil, nil
	}
	return m.listByLog(ctx, questLogID, limit)
}
func (m *mockStoryStore) WithTx(tx *sql.Tx) store.StoryStore { return m }

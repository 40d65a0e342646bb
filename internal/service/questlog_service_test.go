package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

func newQuestLogServiceForTest(
	questLogs *mockQuestLogStore,
	memberships *mockMembershipStore,
	invites *mockInviteStore,
	activities *mockActivityStore,
	users *mockUserStore,
) *QuestLogServiceImpl {
	return NewQuestLogService(questLogs, memberships, invites, activities, users, nil, slog.Default())
}

func TestListInvitesRequiresOwner(t *testing.T) {
	ownerID := uuid.New()
	outsiderID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{},
		&mockActivityStore{},
		&mockUserStore{},
	)

	_, err := svc.ListInvites(context.Background(), outsiderID, questLog.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.ListInvites(context.Background(), ownerID, questLog.ID)
	assert.NoError(t, err)
}

func TestListInvitesDisplayStatuses(t *testing.T) {
	ownerID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	expiry := time.Now().UTC().Add(time.Hour)
	invites := []*domain.Invite{
		{ID: uuid.New(), Revoked: true},
		{ID: uuid.New(), IsPermanent: true},
		{ID: uuid.New(), ExpiresAt: &expiry},
		{ID: uuid.New()},
	}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{listByLog: func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Invite, error) {
			return invites, nil
		}},
		&mockActivityStore{},
		&mockUserStore{},
	)

	views, err := svc.ListInvites(context.Background(), ownerID, questLog.ID)
	require.NoError(t, err)
	require.Len(t, views, 4)

	assert.Equal(t, "Revoked", views[0].Status)
	assert.Equal(t, "Permanent", views[1].Status)
	assert.Contains(t, views[2].Status, "hours remaining")
	assert.Equal(t, "Active", views[3].Status)
}

func TestGetInviteDetails(t *testing.T) {
	inviter := &domain.User{ID: uuid.New(), Username: "alice"}
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: inviter.ID, Name: "guild"}
	invite := &domain.Invite{
		ID:          uuid.New(),
		QuestLogID:  questLog.ID,
		CreatedByID: inviter.ID,
		Token:       uuid.NewString(),
		IsPermanent: true,
	}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{getByToken: func(ctx context.Context, token string) (*domain.Invite, error) {
			if token == invite.Token {
				return invite, nil
			}
			return nil, store.ErrInviteNotFound
		}},
		&mockActivityStore{},
		&mockUserStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return inviter, nil
		}},
	)

	details, err := svc.GetInviteDetails(context.Background(), invite.Token)
	require.NoError(t, err)
	assert.Equal(t, "guild", details.QuestLogName)
	assert.Equal(t, "alice", details.InviterUsername)
	assert.Equal(t, "Permanent", details.Status)

	_, err = svc.GetInviteDetails(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, store.ErrInviteNotFound)
}

func TestListParticipantsOwnerFirst(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	memberships := []*domain.Membership{
		{ID: uuid.New(), QuestLogID: questLog.ID, UserID: memberID, Role: domain.RoleSpectator},
		{ID: uuid.New(), QuestLogID: questLog.ID, UserID: ownerID, Role: domain.RoleMember},
	}
	users := map[uuid.UUID]*domain.User{
		ownerID:  {ID: ownerID, Username: "alice"},
		memberID: {ID: memberID, Username: "bob"},
	}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{listByLog: func(ctx context.Context, questLogID uuid.UUID) ([]*domain.Membership, error) {
			return memberships, nil
		}},
		&mockInviteStore{},
		&mockActivityStore{},
		&mockUserStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return users[id], nil
		}},
	)

	participants, err := svc.ListParticipants(context.Background(), ownerID, questLog.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	assert.Equal(t, "alice", participants[0].Username)
	assert.Equal(t, "owner", participants[0].Role)
	assert.Equal(t, "bob", participants[1].Username)
	assert.Equal(t, string(domain.RoleSpectator), participants[1].Role)
}

func TestListParticipantsForbiddenForOutsiders(t *testing.T) {
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{},
		&mockActivityStore{},
		&mockUserStore{},
	)

	_, err := svc.ListParticipants(context.Background(), uuid.New(), questLog.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListActivitiesEnrichesActors(t *testing.T) {
	ownerID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}

	created, err := domain.NewActivity(questLog.ID, ownerID, domain.ActivityCreated)
	require.NoError(t, err)
	joined, err := domain.NewActivity(questLog.ID, ownerID, domain.ActivityJoined)
	require.NoError(t, err)

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error) {
			return questLog, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{},
		&mockActivityStore{listByLog: func(ctx context.Context, questLogID uuid.UUID, skip, limit int) ([]*domain.Activity, error) {
			return []*domain.Activity{joined, created}, nil
		}},
		&mockUserStore{getByID: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice"}, nil
		}},
	)

	entries, err := svc.ListActivities(context.Background(), ownerID, questLog.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].ActorUsername)
	assert.Contains(t, entries[0].Message, "alice")
}

func TestListActivitiesSuppressesLoneDeletion(t *testing.T) {
	questLogID := uuid.New()
	actorID := uuid.New()

	deleted, err := domain.NewActivity(questLogID, actorID, domain.ActivityDeleted)
	require.NoError(t, err)

	// The quest log itself is gone; only the trail remains.
	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{},
		&mockMembershipStore{},
		&mockInviteStore{},
		&mockActivityStore{listByLog: func(ctx context.Context, id uuid.UUID, skip, limit int) ([]*domain.Activity, error) {
			return []*domain.Activity{deleted}, nil
		}},
		&mockUserStore{},
	)

	entries, err := svc.ListActivities(context.Background(), actorID, questLogID, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveAcceptanceRepeatedAcceptIsIdempotent(t *testing.T) {
	userID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}
	invite := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, Token: uuid.NewString()}
	existing := &domain.Membership{ID: uuid.New(), QuestLogID: questLog.ID, UserID: userID, Role: domain.RoleSpectator}

	now := time.Now().UTC()

	// Accepting again, even asking to join, keeps the current role and
	// records one revisit per attempt.
	for i := 0; i < 3; i++ {
		outcome, err := resolveAcceptance(invite, questLog, existing, userID, false, now)
		require.NoError(t, err)
		assert.Equal(t, domain.ActivityInviteRevisited, outcome.action)
		assert.False(t, outcome.join)
		require.NotNil(t, outcome.membership)
		assert.Equal(t, domain.RoleSpectator, outcome.membership.Role)
	}
}

func TestResolveAcceptanceOwnerRevisit(t *testing.T) {
	ownerID := uuid.New()
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: ownerID, Name: "guild"}
	invite := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, Token: uuid.NewString()}

	outcome, err := resolveAcceptance(invite, questLog, nil, ownerID, false, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityInviteRevisited, outcome.action)
	assert.False(t, outcome.join)
	assert.Nil(t, outcome.membership)
}

func TestResolveAcceptanceRoles(t *testing.T) {
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}
	invite := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, Token: uuid.NewString()}
	now := time.Now().UTC()

	joiner := uuid.New()
	outcome, err := resolveAcceptance(invite, questLog, nil, joiner, false, now)
	require.NoError(t, err)
	assert.True(t, outcome.join)
	assert.Equal(t, domain.ActivityJoined, outcome.action)
	require.NotNil(t, outcome.membership)
	assert.Equal(t, domain.RoleMember, outcome.membership.Role)
	assert.Equal(t, joiner, outcome.membership.UserID)

	spectator := uuid.New()
	outcome, err = resolveAcceptance(invite, questLog, nil, spectator, true, now)
	require.NoError(t, err)
	assert.True(t, outcome.join)
	assert.Equal(t, domain.ActivitySpectated, outcome.action)
	require.NotNil(t, outcome.membership)
	assert.Equal(t, domain.RoleSpectator, outcome.membership.Role)
}

func TestResolveAcceptanceRejectsUnusableInvites(t *testing.T) {
	questLog := &domain.QuestLog{ID: uuid.New(), OwnerID: uuid.New(), Name: "guild"}
	now := time.Now().UTC()

	revoked := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, Revoked: true}
	_, err := resolveAcceptance(revoked, questLog, nil, uuid.New(), false, now)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	past := now.Add(-time.Hour)
	expired := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, ExpiresAt: &past}
	_, err = resolveAcceptance(expired, questLog, nil, uuid.New(), false, now)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	// Expiry is reported even for a token that is also revoked.
	both := &domain.Invite{ID: uuid.New(), QuestLogID: questLog.ID, Revoked: true, ExpiresAt: &past}
	_, err = resolveAcceptance(both, questLog, nil, uuid.New(), false, now)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestListQuestLogs(t *testing.T) {
	userID := uuid.New()
	logs := []*domain.QuestLog{
		{ID: uuid.New(), OwnerID: userID, Name: "mine"},
		{ID: uuid.New(), OwnerID: uuid.New(), Name: "joined"},
	}

	svc := newQuestLogServiceForTest(
		&mockQuestLogStore{listForUser: func(ctx context.Context, id uuid.UUID) ([]*domain.QuestLog, error) {
			return logs, nil
		}},
		&mockMembershipStore{},
		&mockInviteStore{},
		&mockActivityStore{},
		&mockUserStore{},
	)

	got, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

// Participant is a quest log member with their display name and role.
// The owner is reported with the synthetic role "owner".
type Participant struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// InviteView is an invite with its human-readable status.
type InviteView struct {
	Invite *domain.Invite `json:"invite"`
	Status string         `json:"status"`
}

// InviteDetails describes an invite to a user deciding whether to
// accept it.
type InviteDetails struct {
	QuestLogID      uuid.UUID `json:"quest_log_id"`
	QuestLogName    string    `json:"quest_log_name"`
	InviterUsername string    `json:"inviter_username"`
	Status          string    `json:"status"`
}

// ActivityEntry is an activity record enriched with the actor's
// username and a display message.
type ActivityEntry struct {
	Activity      *domain.Activity `json:"activity"`
	ActorUsername string           `json:"actor_username"`
	Message       string           `json:"message"`
}

// QuestLogService provides quest log lifecycle, invite, membership and
// activity operations.
type QuestLogService interface {
	// Create creates a quest log owned by ownerID. The owner receives a
	// membership and a "created" activity is recorded, all atomically.
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.QuestLog, error)

	// Delete removes a quest log and everything attached to it except
	// the activity trail, which records the deletion.
	// Returns ErrNotOwner when actorID is not the owner.
	Delete(ctx context.Context, actorID, questLogID uuid.UUID) error

	// List returns the quest logs the user owns or participates in.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error)

	// IssueInvite creates an invite token for a quest log. Only the
	// owner may issue invites. A permanent invite cannot carry an
	// expiry; domain.ErrConflictingInviteOptions is returned if both
	// are requested.
	IssueInvite(ctx context.Context, actorID, questLogID uuid.UUID, isPermanent bool, expiresAt *time.Time) (*domain.Invite, error)

	// AcceptInvite joins the user to the invite's quest log. When
	// asSpectator is true the user joins read-only. Accepting an invite
	// to a quest log the user already participates in is idempotent and
	// recorded as a revisit.
	AcceptInvite(ctx context.Context, userID uuid.UUID, token string, asSpectator bool) (*domain.Membership, error)

	// RevokeInvite marks an invite unusable. Only the owner may revoke.
	// Returns domain.ErrAlreadyRevoked on a second revocation.
	RevokeInvite(ctx context.Context, actorID, questLogID, inviteID uuid.UUID) (*domain.Invite, error)

	// GetInviteDetails describes an invite by token, including its
	// current status, for display before accepting.
	GetInviteDetails(ctx context.Context, token string) (*InviteDetails, error)

	// ListInvites returns a quest log's invites with display statuses.
	// Only the owner may list invites.
	ListInvites(ctx context.Context, actorID, questLogID uuid.UUID) ([]*InviteView, error)

	// ListParticipants returns the quest log's participants, owner
	// first. Any participant may call it.
	ListParticipants(ctx context.Context, actorID, questLogID uuid.UUID) ([]*Participant, error)

	// UpgradeMembership promotes the calling spectator to a full
	// member. Upgrading an existing member is a no-op.
	UpgradeMembership(ctx context.Context, userID, questLogID uuid.UUID) (*domain.Membership, error)

	// ListActivities returns the quest log's activity trail, newest
	// first. When the only remaining record is the deletion entry the
	// trail reads as empty.
	ListActivities(ctx context.Context, actorID, questLogID uuid.UUID, skip, limit int) ([]*ActivityEntry, error)
}

// QuestLogServiceImpl implements the QuestLogService interface.
type QuestLogServiceImpl struct {
	questLogStore   store.QuestLogStore
	membershipStore store.MembershipStore
	inviteStore     store.InviteStore
	activityStore   store.ActivityStore
	userStore       store.UserStore
	db              *sql.DB
	logger          *slog.Logger
}

// NewQuestLogService creates a new QuestLogService.
func NewQuestLogService(
	questLogStore store.QuestLogStore,
	membershipStore store.MembershipStore,
	inviteStore store.InviteStore,
	activityStore store.ActivityStore,
	userStore store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) *QuestLogServiceImpl {
	return &QuestLogServiceImpl{
		questLogStore:   questLogStore,
		membershipStore: membershipStore,
		inviteStore:     inviteStore,
		activityStore:   activityStore,
		userStore:       userStore,
		db:              db,
		logger:          logger.With("component", "questlog_service"),
	}
}

var _ QuestLogService = (*QuestLogServiceImpl)(nil)

// authorize loads the quest log and verifies the user participates in
// it. The returned membership is nil for the owner unless they also
// hold a membership row.
func (s *QuestLogServiceImpl) authorize(ctx context.Context, questLogID, userID uuid.UUID) (*domain.QuestLog, *domain.Membership, error) {
	questLog, err := s.questLogStore.GetByID(ctx, questLogID)
	if err != nil {
		return nil, nil, err
	}

	membership, err := s.membershipStore.Get(ctx, questLogID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			if questLog.OwnerID == userID {
				return questLog, nil, nil
			}
			return nil, nil, ErrForbidden
		}
		return nil, nil, err
	}
	return questLog, membership, nil
}

// Create creates a quest log with the owner's membership and the
// opening activity record.
func (s *QuestLogServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.QuestLog, error) {
	questLog, err := domain.NewQuestLog(ownerID, name)
	if err != nil {
		return nil, NewServiceError("create quest log", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.questLogStore.WithTx(tx).Create(ctx, questLog); err != nil {
			return err
		}

		membership, err := domain.NewMembership(questLog.ID, ownerID, domain.RoleMember)
		if err != nil {
			return err
		}
		if err := s.membershipStore.WithTx(tx).Upsert(ctx, membership); err != nil {
			return err
		}

		return s.appendActivity(ctx, tx, questLog.ID, ownerID, domain.ActivityCreated)
	})
	if err != nil {
		s.logger.Error("failed to create quest log", "error", err, "owner_id", ownerID)
		return nil, NewServiceError("create quest log", err)
	}

	s.logger.Info("quest log created", "quest_log_id", questLog.ID, "owner_id", ownerID)
	return questLog, nil
}

// Delete removes a quest log. Memberships, invites, tasks and their
// attachments cascade away; the activity trail stays and records the
// deletion.
func (s *QuestLogServiceImpl) Delete(ctx context.Context, actorID, questLogID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txQuestLogs := s.questLogStore.WithTx(tx)

		questLog, err := txQuestLogs.GetByID(ctx, questLogID)
		if err != nil {
			return err
		}
		if questLog.OwnerID != actorID {
			return ErrNotOwner
		}

		if err := txQuestLogs.Delete(ctx, questLogID); err != nil {
			return err
		}

		// Recorded after the cascade so it survives as the trail's
		// final entry.
		return s.appendActivity(ctx, tx, questLogID, actorID, domain.ActivityDeleted)
	})
	if err != nil {
		if !errors.Is(err, ErrNotOwner) {
			s.logger.Error("failed to delete quest log", "error", err, "quest_log_id", questLogID)
		}
		return NewServiceError("delete quest log", err)
	}

	s.logger.Info("quest log deleted", "quest_log_id", questLogID, "actor_id", actorID)
	return nil
}

// List returns the quest logs the user owns or participates in.
func (s *QuestLogServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error) {
	questLogs, err := s.questLogStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list quest logs", err)
	}
	return questLogs, nil
}

// IssueInvite creates an invite token for a quest log.
func (s *QuestLogServiceImpl) IssueInvite(ctx context.Context, actorID, questLogID uuid.UUID, isPermanent bool, expiresAt *time.Time) (*domain.Invite, error) {
	questLog, err := s.questLogStore.GetByID(ctx, questLogID)
	if err != nil {
		return nil, NewServiceError("issue invite", err)
	}
	if questLog.OwnerID != actorID {
		return nil, NewServiceError("issue invite", ErrNotOwner)
	}

	invite, err := domain.NewInvite(questLogID, actorID, isPermanent, expiresAt)
	if err != nil {
		return nil, NewServiceError("issue invite", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.inviteStore.WithTx(tx).Create(ctx, invite); err != nil {
			return err
		}
		return s.appendActivity(ctx, tx, questLogID, actorID, domain.ActivityInviteGenerated)
	})
	if err != nil {
		s.logger.Error("failed to issue invite", "error", err, "quest_log_id", questLogID)
		return nil, NewServiceError("issue invite", err)
	}

	s.logger.Info("invite issued",
		"invite_id", invite.ID,
		"quest_log_id", questLogID,
		"permanent", isPermanent)
	return invite, nil
}

// acceptOutcome describes the effect of accepting an invite: the
// resulting membership (nil for an owner without a row), the single
// activity to record for the attempt, and whether a new membership row
// must be written.
type acceptOutcome struct {
	membership *domain.Membership
	action     domain.ActivityAction
	join       bool
}

// resolveAcceptance decides what accepting an invite does for userID.
// existing is the user's current membership on the quest log, nil when
// they have none. Re-accepting never changes an existing role; every
// attempt yields exactly one activity.
func resolveAcceptance(invite *domain.Invite, questLog *domain.QuestLog, existing *domain.Membership, userID uuid.UUID, asSpectator bool, now time.Time) (*acceptOutcome, error) {
	if err := invite.Usable(now); err != nil {
		return nil, err
	}
	if existing != nil {
		return &acceptOutcome{membership: existing, action: domain.ActivityInviteRevisited}, nil
	}
	if questLog.OwnerID == userID {
		return &acceptOutcome{action: domain.ActivityInviteRevisited}, nil
	}

	role := domain.RoleMember
	action := domain.ActivityJoined
	if asSpectator {
		role = domain.RoleSpectator
		action = domain.ActivitySpectated
	}

	membership, err := domain.NewMembership(invite.QuestLogID, userID, role)
	if err != nil {
		return nil, err
	}
	return &acceptOutcome{membership: membership, action: action, join: true}, nil
}

// AcceptInvite joins the user to the invite's quest log.
func (s *QuestLogServiceImpl) AcceptInvite(ctx context.Context, userID uuid.UUID, token string, asSpectator bool) (*domain.Membership, error) {
	var membership *domain.Membership

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txInvites := s.inviteStore.WithTx(tx)
		txMemberships := s.membershipStore.WithTx(tx)

		invite, err := txInvites.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		// Re-read under lock so a concurrent revocation is observed.
		invite, err = txInvites.GetByIDForUpdate(ctx, invite.ID)
		if err != nil {
			return err
		}

		questLog, err := s.questLogStore.WithTx(tx).GetByID(ctx, invite.QuestLogID)
		if err != nil {
			return err
		}

		existing, err := txMemberships.Get(ctx, invite.QuestLogID, userID)
		if err != nil {
			if !errors.Is(err, store.ErrMembershipNotFound) {
				return err
			}
			existing = nil
		}

		outcome, err := resolveAcceptance(invite, questLog, existing, userID, asSpectator, time.Now().UTC())
		if err != nil {
			return err
		}
		if outcome.join {
			if err := txMemberships.Upsert(ctx, outcome.membership); err != nil {
				return err
			}
		}
		membership = outcome.membership
		return s.appendActivity(ctx, tx, invite.QuestLogID, userID, outcome.action)
	})
	if err != nil {
		return nil, NewServiceError("accept invite", err)
	}

	if membership != nil {
		s.logger.Info("invite accepted",
			"quest_log_id", membership.QuestLogID,
			"user_id", userID,
			"role", membership.Role)
	}
	return membership, nil
}

// RevokeInvite marks an invite unusable.
func (s *QuestLogServiceImpl) RevokeInvite(ctx context.Context, actorID, questLogID, inviteID uuid.UUID) (*domain.Invite, error) {
	var revoked *domain.Invite

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		questLog, err := s.questLogStore.WithTx(tx).GetByID(ctx, questLogID)
		if err != nil {
			return err
		}
		if questLog.OwnerID != actorID {
			return ErrNotOwner
		}

		txInvites := s.inviteStore.WithTx(tx)

		invite, err := txInvites.GetByIDForUpdate(ctx, inviteID)
		if err != nil {
			return err
		}
		if invite.QuestLogID != questLogID {
			return store.ErrInviteNotFound
		}
		if invite.Revoked {
			return domain.ErrAlreadyRevoked
		}

		invite.Revoked = true
		if err := txInvites.Update(ctx, invite); err != nil {
			return err
		}
		revoked = invite

		return s.appendActivity(ctx, tx, questLogID, actorID, domain.ActivityInviteRevoked)
	})
	if err != nil {
		return nil, NewServiceError("revoke invite", err)
	}

	s.logger.Info("invite revoked", "invite_id", inviteID, "quest_log_id", questLogID)
	return revoked, nil
}

// GetInviteDetails describes an invite by token.
func (s *QuestLogServiceImpl) GetInviteDetails(ctx context.Context, token string) (*InviteDetails, error) {
	invite, err := s.inviteStore.GetByToken(ctx, token)
	if err != nil {
		return nil, NewServiceError("get invite details", err)
	}

	questLog, err := s.questLogStore.GetByID(ctx, invite.QuestLogID)
	if err != nil {
		return nil, NewServiceError("get invite details", err)
	}

	inviter, err := s.userStore.GetByID(ctx, invite.CreatedByID)
	if err != nil {
		return nil, NewServiceError("get invite details", err)
	}

	return &InviteDetails{
		QuestLogID:      questLog.ID,
		QuestLogName:    questLog.Name,
		InviterUsername: inviter.Username,
		Status:          invite.DisplayStatus(time.Now().UTC()),
	}, nil
}

// ListInvites returns a quest log's invites with display statuses.
func (s *QuestLogServiceImpl) ListInvites(ctx context.Context, actorID, questLogID uuid.UUID) ([]*InviteView, error) {
	questLog, err := s.questLogStore.GetByID(ctx, questLogID)
	if err != nil {
		return nil, NewServiceError("list invites", err)
	}
	if questLog.OwnerID != actorID {
		return nil, NewServiceError("list invites", ErrNotOwner)
	}

	invites, err := s.inviteStore.ListByQuestLog(ctx, questLogID)
	if err != nil {
		return nil, NewServiceError("list invites", err)
	}

	now := time.Now().UTC()
	views := make([]*InviteView, 0, len(invites))
	for _, invite := range invites {
		views = append(views, &InviteView{
			Invite: invite,
			Status: invite.DisplayStatus(now),
		})
	}
	return views, nil
}

// ListParticipants returns the quest log's participants, owner first.
func (s *QuestLogServiceImpl) ListParticipants(ctx context.Context, actorID, questLogID uuid.UUID) ([]*Participant, error) {
	questLog, _, err := s.authorize(ctx, questLogID, actorID)
	if err != nil {
		return nil, NewServiceError("list participants", err)
	}

	memberships, err := s.membershipStore.ListByQuestLog(ctx, questLogID)
	if err != nil {
		return nil, NewServiceError("list participants", err)
	}

	participants := make([]*Participant, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.userStore.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, NewServiceError("list participants", err)
		}

		role := string(m.Role)
		if m.UserID == questLog.OwnerID {
			role = "owner"
		}
		p := &Participant{UserID: m.UserID, Username: user.Username, Role: role}

		if m.UserID == questLog.OwnerID {
			participants = append([]*Participant{p}, participants...)
		} else {
			participants = append(participants, p)
		}
	}
	return participants, nil
}

// UpgradeMembership promotes the calling spectator to a full member.
func (s *QuestLogServiceImpl) UpgradeMembership(ctx context.Context, userID, questLogID uuid.UUID) (*domain.Membership, error) {
	var upgraded *domain.Membership

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txMemberships := s.membershipStore.WithTx(tx)

		membership, err := txMemberships.Get(ctx, questLogID, userID)
		if err != nil {
			return err
		}
		if membership.Role == domain.RoleMember {
			upgraded = membership
			return nil
		}

		membership.Role = domain.RoleMember
		if err := txMemberships.Upsert(ctx, membership); err != nil {
			return err
		}
		upgraded = membership

		return s.appendActivity(ctx, tx, questLogID, userID, domain.ActivityUpgraded)
	})
	if err != nil {
		return nil, NewServiceError("upgrade membership", err)
	}

	s.logger.Info("membership upgraded", "quest_log_id", questLogID, "user_id", userID)
	return upgraded, nil
}

// ListActivities returns the quest log's activity trail, newest first.
// The trail outlives its quest log; for a deleted quest log no
// membership check is possible and the remaining records are public to
// authenticated callers.
func (s *QuestLogServiceImpl) ListActivities(ctx context.Context, actorID, questLogID uuid.UUID, skip, limit int) ([]*ActivityEntry, error) {
	_, _, err := s.authorize(ctx, questLogID, actorID)
	if err != nil && !errors.Is(err, store.ErrQuestLogNotFound) {
		return nil, NewServiceError("list activities", err)
	}

	activities, err := s.activityStore.ListByQuestLog(ctx, questLogID, skip, limit)
	if err != nil {
		return nil, NewServiceError("list activities", err)
	}

	// A trail reduced to its own deletion record reads as empty.
	if skip == 0 && len(activities) == 1 && activities[0].Action == domain.ActivityDeleted {
		return []*ActivityEntry{}, nil
	}

	usernames := map[uuid.UUID]string{}
	entries := make([]*ActivityEntry, 0, len(activities))
	for _, activity := range activities {
		username, ok := usernames[activity.ActorID]
		if !ok {
			user, err := s.userStore.GetByID(ctx, activity.ActorID)
			if err != nil {
				if !errors.Is(err, store.ErrUserNotFound) {
					return nil, NewServiceError("list activities", err)
				}
				username = "unknown"
			} else {
				username = user.Username
			}
			usernames[activity.ActorID] = username
		}

		entries = append(entries, &ActivityEntry{
			Activity:      activity,
			ActorUsername: username,
			Message:       username + " " + activity.Label(),
		})
	}
	return entries, nil
}

// appendActivity records an activity inside the given transaction.
func (s *QuestLogServiceImpl) appendActivity(ctx context.Context, tx *sql.Tx, questLogID, actorID uuid.UUID, action domain.ActivityAction) error {
	activity, err := domain.NewActivity(questLogID, actorID, action)
	if err != nil {
		return err
	}
	return s.activityStore.WithTx(tx).Append(ctx, activity)
}

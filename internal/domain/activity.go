package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActivityAction enumerates the events recorded on a quest log's trail.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityDeleted         ActivityAction = "deleted"
	ActivityInviteGenerated ActivityAction = "invite_generated"
	ActivityInviteRevoked   ActivityAction = "invite_revoked"
	ActivityInviteRevisited ActivityAction = "invite_revisited"
	ActivityJoined          ActivityAction = "joined"
	ActivitySpectated       ActivityAction = "spectated"
	ActivityUpgraded        ActivityAction = "upgraded"
)

// Activity validation errors.
var (
	ErrEmptyActivityID     = errors.New("activity ID cannot be empty")
	ErrEmptyActivityLog    = errors.New("activity quest log ID cannot be empty")
	ErrEmptyActivityActor  = errors.New("activity actor ID cannot be empty")
	ErrInvalidActivityKind = errors.New("unknown activity action")
)

var validActions = map[ActivityAction]struct{}{
	ActivityCreated:         {},
	ActivityDeleted:         {},
	ActivityInviteGenerated: {},
	ActivityInviteRevoked:   {},
	ActivityInviteRevisited: {},
	ActivityJoined:          {},
	ActivitySpectated:       {},
	ActivityUpgraded:        {},
}

// actionLabels maps each action to its display phrase.
var actionLabels = map[ActivityAction]string{
	ActivityCreated:         "created the quest log",
	ActivityDeleted:         "deleted the quest log",
	ActivityInviteGenerated: "generated an invite",
	ActivityInviteRevoked:   "revoked an invite",
	ActivityInviteRevisited: "revisited an invite link",
	ActivityJoined:          "joined as a member",
	ActivitySpectated:       "joined as a spectator",
	ActivityUpgraded:        "upgraded to member",
}

// Activity is one append-only record on a quest log's audit trail.
// Activities deliberately survive the deletion of their quest log.
type Activity struct {
	ID         uuid.UUID      `json:"id"`
	QuestLogID uuid.UUID      `json:"quest_log_id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Action     ActivityAction `json:"action"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewActivity records that actorID performed action on questLogID.
func NewActivity(questLogID, actorID uuid.UUID, action ActivityAction) (*Activity, error) {
	a := &Activity{
		ID:         uuid.New(),
		QuestLogID: questLogID,
		ActorID:    actorID,
		Action:     action,
		CreatedAt:  time.Now().UTC(),
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks the activity's fields.
func (a *Activity) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyActivityID
	}
	if a.QuestLogID == uuid.Nil {
		return ErrEmptyActivityLog
	}
	if a.ActorID == uuid.Nil {
		return ErrEmptyActivityActor
	}
	if _, ok := validActions[a.Action]; !ok {
		return ErrInvalidActivityKind
	}
	return nil
}

// Label returns the display phrase for the activity's action.
func (a *Activity) Label() string {
	if label, ok := actionLabels[a.Action]; ok {
		return label
	}
	return string(a.Action)
}

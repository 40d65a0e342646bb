package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MembershipRole distinguishes active participants from read-only ones.
type MembershipRole string

const (
	// RoleMember may create and move tasks on the quest log.
	RoleMember MembershipRole = "member"
	// RoleSpectator has read-only access.
	RoleSpectator MembershipRole = "spectator"
)

// Membership validation errors.
var (
	ErrEmptyMembershipID   = errors.New("membership ID cannot be empty")
	ErrEmptyMembershipUser = errors.New("membership user ID cannot be empty")
	ErrEmptyMembershipLog  = errors.New("membership quest log ID cannot be empty")
	ErrInvalidRole         = errors.New("membership role must be member or spectator")
)

// Membership links a user to a quest log with a role. The pair
// (QuestLogID, UserID) is unique; joining again updates the existing
// record rather than creating a second one.
type Membership struct {
	ID         uuid.UUID      `json:"id"`
	QuestLogID uuid.UUID      `json:"quest_log_id"`
	UserID     uuid.UUID      `json:"user_id"`
	Role       MembershipRole `json:"role"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewMembership creates a membership record for userID on questLogID.
func NewMembership(questLogID, userID uuid.UUID, role MembershipRole) (*Membership, error) {
	now := time.Now().UTC()
	m := &Membership{
		ID:         uuid.New(),
		QuestLogID: questLogID,
		UserID:     userID,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks the membership's fields.
func (m *Membership) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMembershipID
	}
	if m.QuestLogID == uuid.Nil {
		return ErrEmptyMembershipLog
	}
	if m.UserID == uuid.Nil {
		return ErrEmptyMembershipUser
	}
	if m.Role != RoleMember && m.Role != RoleSpectator {
		return ErrInvalidRole
	}
	return nil
}

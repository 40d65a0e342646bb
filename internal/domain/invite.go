package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invite validation errors.
var (
	ErrEmptyInviteID    = errors.New("invite ID cannot be empty")
	ErrEmptyInviteToken = errors.New("invite token cannot be empty")
	ErrEmptyInviteLog   = errors.New("invite quest log ID cannot be empty")
	ErrEmptyInviter     = errors.New("invite creator ID cannot be empty")
	ErrExpiryInPast     = errors.New("invite expiry must be in the future")
)

// Invite lifecycle errors surfaced when a token is presented.
var (
	ErrTokenExpired   = errors.New("invite token has expired")
	ErrTokenRevoked   = errors.New("invite token has been revoked")
	ErrAlreadyRevoked = errors.New("invite token is already revoked")
)

// Invite is a shareable token granting access to a quest log. A token is
// reusable until it is revoked or expires; accepting it does not consume
// it.
type Invite struct {
	ID          uuid.UUID  `json:"id"`
	QuestLogID  uuid.UUID  `json:"quest_log_id"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	Token       string     `json:"token"`
	IsPermanent bool       `json:"is_permanent"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Revoked     bool       `json:"revoked"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewInvite creates an invite for questLogID issued by createdByID. A
// permanent invite must not carry an expiry; a non-permanent invite with
// a nil expiresAt never expires on its own but can still be revoked.
func NewInvite(questLogID, createdByID uuid.UUID, isPermanent bool, expiresAt *time.Time) (*Invite, error) {
	if isPermanent && expiresAt != nil {
		return nil, ErrConflictingInviteOptions
	}

	now := time.Now().UTC()
	inv := &Invite{
		ID:          uuid.New(),
		QuestLogID:  questLogID,
		CreatedByID: createdByID,
		Token:       uuid.NewString(),
		IsPermanent: isPermanent,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	return inv, nil
}

// Validate checks the invite's fields and the permanence invariant.
func (i *Invite) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInviteID
	}
	if i.QuestLogID == uuid.Nil {
		return ErrEmptyInviteLog
	}
	if i.CreatedByID == uuid.Nil {
		return ErrEmptyInviter
	}
	if i.Token == "" {
		return ErrEmptyInviteToken
	}
	if i.IsPermanent && i.ExpiresAt != nil {
		return ErrConflictingInviteOptions
	}
	if i.ExpiresAt != nil && !i.ExpiresAt.After(i.CreatedAt) {
		return ErrExpiryInPast
	}
	return nil
}

// ExpiredAt reports whether the invite's expiry has passed at the given
// instant. Permanent invites and invites without an expiry never expire.
func (i *Invite) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Usable returns nil when the token can be accepted at the given
// instant. Expiry is checked before revocation, so a token that is both
// expired and revoked reports ErrTokenExpired.
func (i *Invite) Usable(now time.Time) error {
	if i.ExpiredAt(now) {
		return ErrTokenExpired
	}
	if i.Revoked {
		return ErrTokenRevoked
	}
	return nil
}

// DisplayStatus derives the human-readable status shown on invite
// listings. Precedence: Revoked, then Expired, then Permanent, then a
// remaining-hours countdown, then Active.
func (i *Invite) DisplayStatus(now time.Time) string {
	switch {
	case i.Revoked:
		return "Revoked"
	case i.ExpiredAt(now):
		return "Expired"
	case i.IsPermanent:
		return "Permanent"
	case i.ExpiresAt != nil:
		remaining := i.ExpiresAt.Sub(now).Hours()
		return fmt.Sprintf("%.1f hours remaining", remaining)
	default:
		return "Active"
	}
}

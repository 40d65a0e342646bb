package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Quest log validation errors.
var (
	ErrEmptyQuestLogID    = errors.New("quest log ID cannot be empty")
	ErrEmptyQuestLogOwner = errors.New("quest log owner ID cannot be empty")
	ErrEmptyQuestLogName  = errors.New("quest log name cannot be empty")
	ErrQuestLogNameLength = errors.New("quest log name must be at most 100 characters")
)

// QuestLog is a shared board of tasks owned by a single user. Other
// users participate through Membership records.
type QuestLog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQuestLog creates a quest log owned by ownerID with the given name.
func NewQuestLog(ownerID uuid.UUID, name string) (*QuestLog, error) {
	now := time.Now().UTC()
	ql := &QuestLog{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ql.Validate(); err != nil {
		return nil, err
	}

	return ql, nil
}

// Validate checks the quest log's fields.
func (q *QuestLog) Validate() error {
	if q.ID == uuid.Nil {
		return ErrEmptyQuestLogID
	}
	if q.OwnerID == uuid.Nil {
		return ErrEmptyQuestLogOwner
	}
	if q.Name == "" {
		return ErrEmptyQuestLogName
	}
	if len(q.Name) > 100 {
		return ErrQuestLogNameLength
	}
	return nil
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Story validation errors.
var (
	ErrEmptyStoryID   = errors.New("story ID cannot be empty")
	ErrEmptyStoryTask = errors.New("story task ID cannot be empty")
	ErrEmptyStoryText = errors.New("story text cannot be empty")
	ErrNegativeReward = errors.New("story rewards cannot be negative")
)

// Story is the generated narrative attached to a task when it first
// moves from todo to doing. Each task has at most one story. XP and
// currency are display values parsed out of the generated text; the
// completion payout comes from the fixed reward pool, not from here.
type Story struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Text      string    `json:"text"`
	XP        int       `json:"xp"`
	Currency  int       `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStory creates a story for taskID with the given text and reward
// pool.
func NewStory(taskID uuid.UUID, text string, xp, currency int) (*Story, error) {
	s := &Story{
		ID:        uuid.New(),
		TaskID:    taskID,
		Text:      text,
		XP:        xp,
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the story's fields.
func (s *Story) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyStoryID
	}
	if s.TaskID == uuid.Nil {
		return ErrEmptyStoryTask
	}
	if s.Text == "" {
		return ErrEmptyStoryText
	}
	if s.XP < 0 || s.Currency < 0 {
		return ErrNegativeReward
	}
	return nil
}

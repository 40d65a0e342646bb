package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment validation errors.
var (
	ErrEmptyCommentID      = errors.New("comment ID cannot be empty")
	ErrEmptyCommentTask    = errors.New("comment task ID cannot be empty")
	ErrEmptyCommentAuthor  = errors.New("comment author ID cannot be empty")
	ErrEmptyCommentContent = errors.New("comment content cannot be empty")
)

// Comment is a note left on a task. Comment authors count as reward
// participants when the task completes.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a comment by authorID on taskID.
func NewComment(taskID, authorID uuid.UUID, content string) (*Comment, error) {
	now := time.Now().UTC()
	c := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the comment's fields.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}
	if c.TaskID == uuid.Nil {
		return ErrEmptyCommentTask
	}
	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthor
	}
	if c.Content == "" {
		return ErrEmptyCommentContent
	}
	return nil
}

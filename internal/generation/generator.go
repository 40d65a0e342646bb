package generation

import (
	"context"

	"github.com/taskfable/questlog-api/internal/domain"
)

// StoryDraft is the raw result of a generation call: the narrative text
// plus the reward pool parsed out of it.
type StoryDraft struct {
	Text     string
	XP       int
	Currency int
}

// StoryGenerator defines the interface for producing a task's story.
// It is the boundary between the application core and the external LLM
// service.
type StoryGenerator interface {
	// GenerateStory produces a story draft for the given task.
	// priorContext carries recent story text from the same quest log so
	// the narrative can stay continuous; it may be empty.
	// Returns one of the errors in errors.go on failure.
	GenerateStory(ctx context.Context, task *domain.Task, priorContext string) (*StoryDraft, error)
}

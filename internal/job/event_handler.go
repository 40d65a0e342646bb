package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskfable/questlog-api/internal/events"
)

// EventHandler bridges the event emitter and the job runner: when a
// service emits a story request, it creates the matching job and
// submits it for execution.
type EventHandler struct {
	factory *StoryGenerationJobFactory
	runner  *Runner
	logger  *slog.Logger
}

// NewEventHandler creates an event handler wired to the given factory
// and runner.
func NewEventHandler(factory *StoryGenerationJobFactory, runner *Runner, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "job_event_handler"),
	}
}

var _ events.EventHandler = (*EventHandler)(nil)

// HandleEvent processes story request events by creating and submitting
// a story generation job. Events of other types are ignored.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	if event.Type != events.EventTypeStoryRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.StoryRequestPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	j, err := h.factory.CreateJob(payload.TaskID)
	if err != nil {
		h.logger.Error("failed to create job",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create job: %w", err)
	}

	if err := h.runner.Submit(ctx, j); err != nil {
		h.logger.Error("failed to submit job",
			"error", err,
			"job_id", j.ID(),
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Info("job created and submitted",
		"job_id", j.ID(),
		"task_id", payload.TaskID,
		"event_id", event.ID)
	return nil
}

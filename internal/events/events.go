package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventTypeStoryRequested identifies a request to generate a story for
// a task that just began.
const EventTypeStoryRequested = "story_requested"

// StoryRequestPayload is the payload of a story generation request.
type StoryRequestPayload struct {
	TaskID     uuid.UUID `json:"task_id"`
	QuestLogID uuid.UUID `json:"quest_log_id"`
}

// JobRequestEvent represents a request to run a background job. It
// carries the job type and an opaque payload so emitters need no
// knowledge of the job package.
type JobRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the kind of job that should run
	Type string `json:"type"`

	// Payload contains the job-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *JobRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates a JobRequestEvent with the given type and
// payload.
func NewJobRequestEvent(eventType string, payload interface{}) (*JobRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &JobRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter publishes events to registered handlers, letting
// services trigger background work without knowing who runs it.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}

package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*JobRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *JobRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())

	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewJobRequestEvent(EventTypeStoryRequested, StoryRequestPayload{
		TaskID:     uuid.New(),
		QuestLogID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
}

func TestEmitEventWithNoHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())

	event, err := NewJobRequestEvent(EventTypeStoryRequested, StoryRequestPayload{TaskID: uuid.New()})
	require.NoError(t, err)

	// Emitting without handlers logs a warning but does not fail.
	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventReturnsFirstHandlerError(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())

	failure := errors.New("handler broke")
	failing := &recordingHandler{err: failure}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewJobRequestEvent(EventTypeStoryRequested, StoryRequestPayload{TaskID: uuid.New()})
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failure)

	// The later handler still received the event.
	require.Len(t, healthy.events, 1)
}

func TestUnmarshalPayloadRoundTrip(t *testing.T) {
	payload := StoryRequestPayload{TaskID: uuid.New(), QuestLogID: uuid.New()}

	event, err := NewJobRequestEvent(EventTypeStoryRequested, payload)
	require.NoError(t, err)
	assert.Equal(t, EventTypeStoryRequested, event.Type)
	assert.NotEqual(t, uuid.Nil, event.ID)

	var decoded StoryRequestPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

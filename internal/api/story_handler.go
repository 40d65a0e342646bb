package api

import (
	"net/http"

	"github.com/taskfable/questlog-api/internal/api/shared"
	"github.com/taskfable/questlog-api/internal/service"
)

// StoryHandler handles story retrieval requests.
type StoryHandler struct {
	storyService service.StoryService
	taskService  service.TaskService
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(storyService service.StoryService, taskService service.TaskService) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		taskService:  taskService,
	}
}

// GetForTask handles GET /tasks/{taskID}/story. Task visibility rules
// apply: a private task's story is only visible to those on the task.
func (h *StoryHandler) GetForTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	view, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}
	if view.Masked {
		shared.RespondWithError(w, r, http.StatusForbidden, "You are not allowed to do this")
		return
	}

	story, err := h.storyService.GetStoryForTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve story")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, story)
}

// ListRecent handles GET /stories. Stories of tasks the caller cannot
// see in full (private tasks they are not on, quest logs they do not
// participate in) are left out of the feed.
func (h *StoryHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	limit := parseQueryInt(r, "limit", 20)

	stories, err := h.storyService.ListRecentStories(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list stories")
		return
	}

	visible := stories[:0]
	for _, story := range stories {
		view, err := h.taskService.GetTask(r.Context(), userID, story.TaskID)
		if err != nil || view.Masked {
			continue
		}
		visible = append(visible, story)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, visible)
}

package api

import (
	"net/http"

	"github.com/taskfable/questlog-api/internal/api/shared"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/service"
)

// TaskHandler handles task lifecycle and comment requests.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles POST /questlogs/{questLogID}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, questLogID, service.CreateTaskParams{
		Title:                 req.Title,
		Description:           req.Description,
		Color:                 req.Color,
		IsPrivate:             req.IsPrivate,
		CoOwnerIDs:            req.CoOwnerIDs,
		ScheduledAt:           req.ScheduledAt,
		RepeatIntervalMinutes: req.RepeatIntervalMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// List handles GET /questlogs/{questLogID}/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, questLogID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Get handles GET /tasks/{taskID}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Transition handles POST /tasks/{taskID}/transition.
func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.RequestTransition(r.Context(), userID, taskID, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// EditDescription handles PATCH /tasks/{taskID}/description.
func (h *TaskHandler) EditDescription(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req EditDescriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	task, err := h.taskService.EditDescription(r.Context(), userID, taskID, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to edit task description")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// AddComment handles POST /tasks/{taskID}/comments.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.taskService.AddComment(r.Context(), userID, taskID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// EditComment handles PATCH /comments/{commentID}.
func (h *TaskHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := requireUserAndPathUUID(w, r, "commentID")
	if !ok {
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.taskService.EditComment(r.Context(), userID, commentID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to edit comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, comment)
}

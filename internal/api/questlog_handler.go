package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskfable/questlog-api/internal/api/shared"
	"github.com/taskfable/questlog-api/internal/service"
)

// QuestLogHandler handles quest log, invite, membership and activity
// requests.
type QuestLogHandler struct {
	questLogService service.QuestLogService
}

// NewQuestLogHandler creates a new QuestLogHandler.
func NewQuestLogHandler(questLogService service.QuestLogService) *QuestLogHandler {
	return &QuestLogHandler{questLogService: questLogService}
}

// Create handles POST /questlogs.
func (h *QuestLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	var req CreateQuestLogRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	questLog, err := h.questLogService.Create(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create quest log")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, questLog)
}

// List handles GET /questlogs.
func (h *QuestLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	questLogs, err := h.questLogService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list quest logs")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, questLogs)
}

// Delete handles DELETE /questlogs/{questLogID}.
func (h *QuestLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	if err := h.questLogService.Delete(r.Context(), userID, questLogID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete quest log")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IssueInvite handles POST /questlogs/{questLogID}/invites.
func (h *QuestLogHandler) IssueInvite(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	var req IssueInviteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresInHours != nil {
		t := time.Now().UTC().Add(time.Duration(*req.ExpiresInHours * float64(time.Hour)))
		expiresAt = &t
	}

	invite, err := h.questLogService.IssueInvite(r.Context(), userID, questLogID, req.Permanent, expiresAt)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue invite")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, invite)
}

// ListInvites handles GET /questlogs/{questLogID}/invites.
func (h *QuestLogHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	invites, err := h.questLogService.ListInvites(r.Context(), userID, questLogID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list invites")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invites)
}

// RevokeInvite handles POST /questlogs/{questLogID}/invites/{inviteID}/revoke.
func (h *QuestLogHandler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	inviteID, err := getPathUUID(r, "inviteID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	invite, err := h.questLogService.RevokeInvite(r.Context(), userID, questLogID, inviteID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to revoke invite")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invite)
}

// GetInviteDetails handles GET /invites/{token}.
func (h *QuestLogHandler) GetInviteDetails(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invite token is required")
		return
	}

	details, err := h.questLogService.GetInviteDetails(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get invite details")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, details)
}

// AcceptInvite handles POST /invites/{token}/accept.
func (h *QuestLogHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invite token is required")
		return
	}

	var req AcceptInviteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	membership, err := h.questLogService.AcceptInvite(r.Context(), userID, token, req.AsSpectator)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept invite")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, membership)
}

// ListParticipants handles GET /questlogs/{questLogID}/participants.
func (h *QuestLogHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	participants, err := h.questLogService.ListParticipants(r.Context(), userID, questLogID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list participants")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, participants)
}

// UpgradeMembership handles POST /questlogs/{questLogID}/membership/upgrade.
func (h *QuestLogHandler) UpgradeMembership(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	membership, err := h.questLogService.UpgradeMembership(r.Context(), userID, questLogID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upgrade membership")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, membership)
}

// ListActivities handles GET /questlogs/{questLogID}/activities.
func (h *QuestLogHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID, questLogID, ok := requireUserAndPathUUID(w, r, "questLogID")
	if !ok {
		return
	}

	skip := parseQueryInt(r, "skip", 0)
	limit := parseQueryInt(r, "limit", 50)

	activities, err := h.questLogService.ListActivities(r.Context(), userID, questLogID, skip, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list activities")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activities)
}

// parseQueryInt reads a non-negative integer query parameter, falling
// back to def when absent or malformed.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

package api

import (
	"net/http"

	"github.com/taskfable/questlog-api/internal/api/shared"
	"github.com/taskfable/questlog-api/internal/service"
)

// UserHandler handles user profile requests.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateSettings handles PATCH /users/me/settings.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	user, err := h.userService.UpdateSettings(r.Context(), userID, service.UpdateSettingsParams{
		Timezone:         req.Timezone,
		ShowTooltips:     req.ShowTooltips,
		DarkMode:         req.DarkMode,
		SkipConfirmBegin: req.SkipConfirmBegin,
		SkipConfirmEnd:   req.SkipConfirmEnd,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update settings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// ListUsernames handles GET /users/usernames.
func (h *UserHandler) ListUsernames(w http.ResponseWriter, r *http.Request) {
	usernames, err := h.userService.ListUsernames(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list usernames")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string][]string{"usernames": usernames})
}

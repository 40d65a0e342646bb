package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint. Identifier
// is a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required,min=1"`
}

// AuthResponse defines the successful response for auth endpoints.
type AuthResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID       uuid.UUID           `json:"id"`
	Username string              `json:"username"`
	Email    string              `json:"email"`
	XP       int                 `json:"xp"`
	Currency int                 `json:"currency"`
	Settings domain.UserSettings `json:"settings"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		XP:       user.XP,
		Currency: user.Currency,
		Settings: user.Settings,
	}
}

// UpdateSettingsRequest carries optional settings updates; absent
// fields are left unchanged.
type UpdateSettingsRequest struct {
	Timezone         *string `json:"timezone,omitempty"`
	ShowTooltips     *bool   `json:"show_tooltips,omitempty"`
	DarkMode         *bool   `json:"dark_mode,omitempty"`
	SkipConfirmBegin *bool   `json:"skip_confirm_begin,omitempty"`
	SkipConfirmEnd   *bool   `json:"skip_confirm_end,omitempty"`
}

// CreateQuestLogRequest defines the payload for quest log creation.
type CreateQuestLogRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// IssueInviteRequest defines the payload for invite creation. A
// permanent invite cannot carry an expiry.
type IssueInviteRequest struct {
	Permanent      bool     `json:"permanent"`
	ExpiresInHours *float64 `json:"expires_in_hours,omitempty" validate:"omitempty,gt=0"`
}

// AcceptInviteRequest defines the payload for accepting an invite.
type AcceptInviteRequest struct {
	AsSpectator bool `json:"as_spectator"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title                 string      `json:"title"                             validate:"required,max=200"`
	Description           string      `json:"description"`
	Color                 string      `json:"color"`
	IsPrivate             bool        `json:"is_private"`
	CoOwnerIDs            []uuid.UUID `json:"co_owner_ids,omitempty"`
	ScheduledAt           *time.Time  `json:"scheduled_at,omitempty"`
	RepeatIntervalMinutes *int        `json:"repeat_interval_minutes,omitempty" validate:"omitempty,gt=0"`
}

// TransitionRequest defines the payload for a task status change.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=todo doing waiting done"`
}

// EditDescriptionRequest defines the payload for a description edit.
type EditDescriptionRequest struct {
	Description string `json:"description"`
}

// CommentRequest defines the payload for adding or editing a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

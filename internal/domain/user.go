package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrInvalidUsername     = errors.New("username must be 3-32 characters of letters, digits, '_' or '-'")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrNegativeBalance     = errors.New("xp and currency balances cannot be negative")
)

// UserSettings holds the per-user display and confirmation preferences.
// All fields have server-side defaults applied at registration time.
type UserSettings struct {
	Timezone         string `json:"timezone"`
	ShowTooltips     bool   `json:"show_tooltips"`
	DarkMode         bool   `json:"dark_mode"`
	SkipConfirmBegin bool   `json:"skip_confirm_begin"`
	SkipConfirmEnd   bool   `json:"skip_confirm_end"`
}

// DefaultUserSettings returns the settings applied to a freshly
// registered user.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Timezone:     "UTC",
		ShowTooltips: true,
	}
}

// User represents a registered user of the quest log application,
// including the reward balances accumulated from completed tasks.
type User struct {
	ID             uuid.UUID    `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	Password       string       `json:"-"` // Plaintext, held only between registration and hashing
	HashedPassword string       `json:"-"` // Never expose the hash in JSON
	XP             int          `json:"xp"`
	Currency       int          `json:"currency"`
	Settings       UserSettings `json:"settings"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewUser creates a User with the given username, email and plaintext
// password, zero reward balances and default settings. The caller is
// responsible for hashing the password before the user is stored.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  password,
		Settings:  DefaultUserSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the User's fields. Returns the first validation error
// encountered, or nil.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if !validUsername(u.Username) {
		return ErrInvalidUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from storage carry only the hash.
		return ErrEmptyPassword
	}

	if u.XP < 0 || u.Currency < 0 {
		return ErrNegativeBalance
	}

	return nil
}

func validUsername(username string) bool {
	if len(username) < 3 || len(username) > 32 {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// validEmailFormat performs a lightweight structural check: one '@' with
// a dotted domain after it. Full RFC 5322 validation is deliberately out
// of scope here.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

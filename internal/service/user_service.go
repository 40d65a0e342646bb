package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/service/auth"
	"github.com/taskfable/questlog-api/internal/store"
)

// UpdateSettingsParams carries the optional settings fields of an
// update request. Nil fields are left unchanged.
type UpdateSettingsParams struct {
	Timezone         *string
	ShowTooltips     *bool
	DarkMode         *bool
	SkipConfirmBegin *bool
	SkipConfirmEnd   *bool
}

// UserService provides account registration, login and profile
// operations.
type UserService interface {
	// Register creates a new account with a hashed password.
	// Returns store.ErrUsernameExists or store.ErrEmailExists when the
	// username or email is already taken.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Login authenticates by username or email plus password and
	// returns the user with a signed access token.
	// Returns ErrInvalidCredentials on any authentication failure.
	Login(ctx context.Context, identifier, password string) (*domain.User, string, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateSettings applies the non-nil fields of params to the user's
	// settings and returns the updated user.
	UpdateSettings(ctx context.Context, userID uuid.UUID, params UpdateSettingsParams) (*domain.User, error)

	// ListUsernames returns all registered usernames, sorted.
	ListUsernames(ctx context.Context) ([]string, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore  store.UserStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	jwtService auth.JWTService
	db         *sql.DB
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	db *sql.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userStore:  userStore,
		hasher:     hasher,
		verifier:   verifier,
		jwtService: jwtService,
		db:         db,
		logger:     logger.With("component", "user_service"),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// Register creates a new account with a hashed password.
func (s *UserServiceImpl) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, NewServiceError("register user", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, NewServiceError("register user", fmt.Errorf("failed to hash password: %w", err))
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) || errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("registration conflict", "username", username)
		} else {
			s.logger.Error("failed to create user", "error", err, "username", username)
		}
		return nil, NewServiceError("register user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates by username or email and returns a signed token.
func (s *UserServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.User, string, error) {
	user, err := s.lookupByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown identifier")
			return nil, "", NewServiceError("login", ErrInvalidCredentials)
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return nil, "", NewServiceError("login", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login password mismatch", "user_id", user.ID)
		return nil, "", NewServiceError("login", ErrInvalidCredentials)
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", user.ID)
		return nil, "", NewServiceError("login", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// lookupByIdentifier resolves a login identifier to a user. Anything
// containing "@" is treated as an email, otherwise as a username.
func (s *UserServiceImpl) lookupByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userStore.GetByEmail(ctx, identifier)
	}
	return s.userStore.GetByUsername(ctx, identifier)
}

// GetUser retrieves a user by ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get user", err)
	}
	return user, nil
}

// UpdateSettings applies the non-nil fields of params to the user's
// settings.
func (s *UserServiceImpl) UpdateSettings(ctx context.Context, userID uuid.UUID, params UpdateSettingsParams) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if params.Timezone != nil {
			user.Settings.Timezone = *params.Timezone
		}
		if params.ShowTooltips != nil {
			user.Settings.ShowTooltips = *params.ShowTooltips
		}
		if params.DarkMode != nil {
			user.Settings.DarkMode = *params.DarkMode
		}
		if params.SkipConfirmBegin != nil {
			user.Settings.SkipConfirmBegin = *params.SkipConfirmBegin
		}
		if params.SkipConfirmEnd != nil {
			user.Settings.SkipConfirmEnd = *params.SkipConfirmEnd
		}

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update settings", "error", err, "user_id", userID)
		return nil, NewServiceError("update settings", err)
	}

	s.logger.Info("user settings updated", "user_id", userID)
	return updated, nil
}

// ListUsernames returns all registered usernames.
func (s *UserServiceImpl) ListUsernames(ctx context.Context) ([]string, error) {
	names, err := s.userStore.ListUsernames(ctx)
	if err != nil {
		return nil, NewServiceError("list usernames", err)
	}
	return names, nil
}

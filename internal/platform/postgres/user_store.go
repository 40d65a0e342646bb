package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresUserStore implements store.UserStore backed by PostgreSQL.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a PostgreSQL implementation of the
// UserStore interface. If logger is nil, the default logger is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return NewPostgresUserStore(tx, s.logger)
}

const userColumns = `id, username, email, hashed_password, xp, currency,
	timezone, show_tooltips, dark_mode, skip_confirm_begin, skip_confirm_end,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.XP,
		&u.Currency,
		&u.Settings.Timezone,
		&u.Settings.ShowTooltips,
		&u.Settings.DarkMode,
		&u.Settings.SkipConfirmBegin,
		&u.Settings.SkipConfirmEnd,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create implements store.UserStore.Create
// Returns store.ErrUsernameExists or store.ErrEmailExists when a unique
// constraint is violated.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	query := `
		INSERT INTO users (id, username, email, hashed_password, xp, currency,
			timezone, show_tooltips, dark_mode, skip_confirm_begin, skip_confirm_end,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.XP,
		user.Currency,
		user.Settings.Timezone,
		user.Settings.ShowTooltips,
		user.Settings.DarkMode,
		user.Settings.SkipConfirmBegin,
		user.Settings.SkipConfirmEnd,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUserUniqueViolation(err); mapped != nil {
			log.Warn("duplicate user during create",
				slog.String("error", err.Error()),
				slog.String("username", user.Username))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// mapUserUniqueViolation maps a unique violation on the users table to
// the matching store error based on the violated constraint.
func mapUserUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
	case "users_email_key":
		return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
	default:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3, xp = $4, currency = $5,
			timezone = $6, show_tooltips = $7, dark_mode = $8,
			skip_confirm_begin = $9, skip_confirm_end = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.XP,
		user.Currency,
		user.Settings.Timezone,
		user.Settings.ShowTooltips,
		user.Settings.DarkMode,
		user.Settings.SkipConfirmBegin,
		user.Settings.SkipConfirmEnd,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if mapped := mapUserUniqueViolation(err); mapped != nil {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return store.ErrUserNotFound
	}
	return nil
}

// AddRewards implements store.UserStore.AddRewards
func (s *PostgresUserStore) AddRewards(ctx context.Context, id uuid.UUID, xp, currency int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET xp = xp + $1, currency = currency + $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, xp, currency, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to credit rewards",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return store.ErrUserNotFound
	}

	log.Info("rewards credited",
		slog.String("user_id", id.String()),
		slog.Int("xp", xp),
		slog.Int("currency", currency))
	return nil
}

// ListUsernames implements store.UserStore.ListUsernames
func (s *PostgresUserStore) ListUsernames(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		log.Error("failed to list usernames", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	usernames := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, MapError(err)
		}
		usernames = append(usernames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return usernames, nil
}

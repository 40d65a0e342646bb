package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresInviteStore implements store.InviteStore backed by
// PostgreSQL.
type PostgresInviteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInviteStore creates a PostgreSQL implementation of the
// InviteStore interface. If logger is nil, the default logger is used.
func NewPostgresInviteStore(db store.DBTX, logger *slog.Logger) *PostgresInviteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInviteStore{
		db:     db,
		logger: logger.With(slog.String("component", "invite_store")),
	}
}

var _ store.InviteStore = (*PostgresInviteStore)(nil)

// WithTx implements store.InviteStore.WithTx
func (s *PostgresInviteStore) WithTx(tx *sql.Tx) store.InviteStore {
	return NewPostgresInviteStore(tx, s.logger)
}

const inviteColumns = `id, quest_log_id, created_by_id, token, is_permanent,
	expires_at, revoked, created_at`

func scanInvite(row interface{ Scan(...any) error }) (*domain.Invite, error) {
	var inv domain.Invite
	var expiresAt sql.NullTime
	err := row.Scan(
		&inv.ID,
		&inv.QuestLogID,
		&inv.CreatedByID,
		&inv.Token,
		&inv.IsPermanent,
		&expiresAt,
		&inv.Revoked,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		inv.ExpiresAt = &t
	}
	return &inv, nil
}

// Create implements store.InviteStore.Create
func (s *PostgresInviteStore) Create(ctx context.Context, invite *domain.Invite) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invite.Validate(); err != nil {
		log.Warn("invite validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return err
	}

	query := `
		INSERT INTO invites (id, quest_log_id, created_by_id, token, is_permanent,
			expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invite.ID,
		invite.QuestLogID,
		invite.CreatedByID,
		invite.Token,
		invite.IsPermanent,
		invite.ExpiresAt,
		invite.Revoked,
		invite.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create invite",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return MapError(err)
	}

	log.Info("invite created",
		slog.String("invite_id", invite.ID.String()),
		slog.String("quest_log_id", invite.QuestLogID.String()),
		slog.Bool("is_permanent", invite.IsPermanent))
	return nil
}

// GetByID implements store.InviteStore.GetByID
func (s *PostgresInviteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	invite, err := scanInvite(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInviteNotFound
		}
		return nil, MapError(err)
	}
	return invite, nil
}

// GetByIDForUpdate implements store.InviteStore.GetByIDForUpdate
// The row lock serializes concurrent revocations of the same invite.
func (s *PostgresInviteStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1 FOR UPDATE`
	invite, err := scanInvite(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInviteNotFound
		}
		return nil, MapError(err)
	}
	return invite, nil
}

// GetByToken implements store.InviteStore.GetByToken
func (s *PostgresInviteStore) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE token = $1`
	invite, err := scanInvite(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInviteNotFound
		}
		return nil, MapError(err)
	}
	return invite, nil
}

// ListByQuestLog implements store.InviteStore.ListByQuestLog
func (s *PostgresInviteStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Invite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + inviteColumns + ` FROM invites
		WHERE quest_log_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, questLogID)
	if err != nil {
		log.Error("failed to list invites",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLogID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	invites := []*domain.Invite{}
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, MapError(err)
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return invites, nil
}

// Update implements store.InviteStore.Update
func (s *PostgresInviteStore) Update(ctx context.Context, invite *domain.Invite) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invite.Validate(); err != nil {
		log.Warn("invite validation failed during update",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return err
	}

	query := `
		UPDATE invites
		SET is_permanent = $1, expires_at = $2, revoked = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		invite.IsPermanent,
		invite.ExpiresAt,
		invite.Revoked,
		invite.ID,
	)
	if err != nil {
		log.Error("failed to update invite",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "invite"); err != nil {
		return store.ErrInviteNotFound
	}

	log.Info("invite updated",
		slog.String("invite_id", invite.ID.String()),
		slog.Bool("revoked", invite.Revoked))
	return nil
}

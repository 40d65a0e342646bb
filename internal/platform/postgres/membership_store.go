package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresMembershipStore implements store.MembershipStore backed by
// PostgreSQL.
type PostgresMembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMembershipStore creates a PostgreSQL implementation of the
// MembershipStore interface. If logger is nil, the default logger is
// used.
func NewPostgresMembershipStore(db store.DBTX, logger *slog.Logger) *PostgresMembershipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMembershipStore{
		db:     db,
		logger: logger.With(slog.String("component", "membership_store")),
	}
}

var _ store.MembershipStore = (*PostgresMembershipStore)(nil)

// WithTx implements store.MembershipStore.WithTx
func (s *PostgresMembershipStore) WithTx(tx *sql.Tx) store.MembershipStore {
	return NewPostgresMembershipStore(tx, s.logger)
}

// Upsert implements store.MembershipStore.Upsert
// The (quest_log_id, user_id) pair is unique; a conflicting insert
// updates the existing row's role in place.
func (s *PostgresMembershipStore) Upsert(ctx context.Context, membership *domain.Membership) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := membership.Validate(); err != nil {
		log.Warn("membership validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("membership_id", membership.ID.String()))
		return err
	}

	query := `
		INSERT INTO memberships (id, quest_log_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (quest_log_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.QuestLogID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert membership",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", membership.QuestLogID.String()),
			slog.String("user_id", membership.UserID.String()))
		return MapError(err)
	}

	log.Info("membership upserted",
		slog.String("quest_log_id", membership.QuestLogID.String()),
		slog.String("user_id", membership.UserID.String()),
		slog.String("role", string(membership.Role)))
	return nil
}

// Get implements store.MembershipStore.Get
func (s *PostgresMembershipStore) Get(ctx context.Context, questLogID, userID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, quest_log_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE quest_log_id = $1 AND user_id = $2
	`

	var m domain.Membership
	err := s.db.QueryRowContext(ctx, query, questLogID, userID).Scan(
		&m.ID,
		&m.QuestLogID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, MapError(err)
	}
	return &m, nil
}

// ListByQuestLog implements store.MembershipStore.ListByQuestLog
func (s *PostgresMembershipStore) ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Membership, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, quest_log_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE quest_log_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, questLogID)
	if err != nil {
		log.Error("failed to list memberships",
			slog.String("error", err.Error()),
			slog.String("quest_log_id", questLogID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	memberships := []*domain.Membership{}
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.QuestLogID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		memberships = append(memberships, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return memberships, nil
}

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

// PostgresCommentStore implements store.CommentStore backed by
// PostgreSQL.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a PostgreSQL implementation of the
// CommentStore interface. If logger is nil, the default logger is used.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

var _ store.CommentStore = (*PostgresCommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return NewPostgresCommentStore(tx, s.logger)
}

// Create implements store.CommentStore.Create
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO comments (id, task_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.TaskID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()),
			slog.String("task_id", comment.TaskID.String()))
		return MapError(err)
	}

	log.Info("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", comment.TaskID.String()))
	return nil
}

// GetByID implements store.CommentStore.GetByID
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, task_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	var c domain.Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.TaskID,
		&c.AuthorID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		return nil, MapError(err)
	}
	return &c, nil
}

// ListByTask implements store.CommentStore.ListByTask
func (s *PostgresCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	comments := []*domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return comments, nil
}

// ListAuthorIDs implements store.CommentStore.ListAuthorIDs
func (s *PostgresCommentStore) ListAuthorIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT DISTINCT author_id FROM comments WHERE task_id = $1`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list comment authors",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	authorIDs := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		authorIDs = append(authorIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return authorIDs, nil
}

// Update implements store.CommentStore.Update
func (s *PostgresCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		UPDATE comments
		SET content = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, comment.Content, comment.UpdatedAt, comment.ID)
	if err != nil {
		log.Error("failed to update comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "comment"); err != nil {
		return store.ErrCommentNotFound
	}
	return nil
}

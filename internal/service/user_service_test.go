package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/service/auth"
	"github.com/taskfable/questlog-api/internal/store"
)

type stubVerifier struct {
	err error
}

func (v *stubVerifier) Compare(hashedPassword, password string) error { return v.err }

type stubJWTService struct {
	token string
	err   error
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, s.err
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, nil
}

func TestLoginResolvesIdentifier(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", HashedPassword: "hash"}

	var byEmail, byUsername int
	users := &mockUserStore{
		getByEmail: func(ctx context.Context, email string) (*domain.User, error) {
			byEmail++
			return user, nil
		},
		getByUsername: func(ctx context.Context, username string) (*domain.User, error) {
			byUsername++
			return user, nil
		},
	}

	svc := NewUserService(users, nil, &stubVerifier{}, &stubJWTService{token: "signed"}, nil, slog.Default())

	got, token, err := svc.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "signed", token)
	assert.Equal(t, 1, byEmail)
	assert.Equal(t, 0, byUsername)

	_, _, err = svc.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, byUsername)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc := NewUserService(&mockUserStore{}, nil, &stubVerifier{}, &stubJWTService{}, nil, slog.Default())

	_, _, err := svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "alice", HashedPassword: "hash"}
	users := &mockUserStore{
		getByUsername: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}

	svc := NewUserService(users, nil, &stubVerifier{err: errors.New("mismatch")}, &stubJWTService{}, nil, slog.Default())

	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "alice"}
	users := &mockUserStore{
		getByID: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id == user.ID {
				return user, nil
			}
			return nil, store.ErrUserNotFound
		},
	}

	svc := NewUserService(users, nil, &stubVerifier{}, &stubJWTService{}, nil, slog.Default())

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestListUsernames(t *testing.T) {
	users := &mockUserStore{
		listUsernames: func(ctx context.Context) ([]string, error) {
			return []string{"alice", "bob"}, nil
		},
	}

	svc := NewUserService(users, nil, &stubVerifier{}, &stubJWTService{}, nil, slog.Default())

	names, err := svc.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

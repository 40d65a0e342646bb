package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewInvite(t *testing.T) {
	questLogID := uuid.New()
	createdByID := uuid.New()

	invite, err := NewInvite(questLogID, createdByID, false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if invite.Token == "" {
		t.Error("Expected non-empty token")
	}
	if invite.Revoked {
		t.Error("Expected new invite to be unrevoked")
	}

	// A permanent invite with an expiry is contradictory.
	expiry := time.Now().UTC().Add(time.Hour)
	_, err = NewInvite(questLogID, createdByID, true, &expiry)
	if !errors.Is(err, ErrConflictingInviteOptions) {
		t.Errorf("Expected error %v, got %v", ErrConflictingInviteOptions, err)
	}

	// Expiry in the past
	past := time.Now().UTC().Add(-time.Hour)
	_, err = NewInvite(questLogID, createdByID, false, &past)
	if !errors.Is(err, ErrExpiryInPast) {
		t.Errorf("Expected error %v, got %v", ErrExpiryInPast, err)
	}
}

func TestInviteUsable(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)

	invite := &Invite{
		ID:          uuid.New(),
		QuestLogID:  uuid.New(),
		CreatedByID: uuid.New(),
		Token:       uuid.NewString(),
		ExpiresAt:   &expiry,
		CreatedAt:   now,
	}

	if err := invite.Usable(now); err != nil {
		t.Errorf("Expected usable invite, got %v", err)
	}

	// Expired
	if err := invite.Usable(now.Add(2 * time.Hour)); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected error %v, got %v", ErrTokenExpired, err)
	}

	// Revoked
	invite.Revoked = true
	if err := invite.Usable(now); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Expected error %v, got %v", ErrTokenRevoked, err)
	}

	// Expiry is reported before revocation when both apply.
	if err := invite.Usable(now.Add(2 * time.Hour)); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected error %v, got %v", ErrTokenExpired, err)
	}
}

func TestInviteReusableAcrossAccepts(t *testing.T) {
	invite, err := NewInvite(uuid.New(), uuid.New(), false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := invite.Usable(now); err != nil {
			t.Fatalf("Expected invite to stay usable, got %v on accept %d", err, i+1)
		}
	}
}

func TestInviteDisplayStatus(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(90 * time.Minute)

	cases := []struct {
		name   string
		invite Invite
		want   string
	}{
		{"revoked", Invite{Revoked: true}, "Revoked"},
		{"revoked wins over permanent", Invite{Revoked: true, IsPermanent: true}, "Revoked"},
		{"expired", Invite{ExpiresAt: &expiry}, "Expired"},
		{"permanent", Invite{IsPermanent: true}, "Permanent"},
		{"countdown", Invite{ExpiresAt: &expiry}, "1.5 hours remaining"},
		{"active", Invite{}, "Active"},
	}

	for _, tc := range cases {
		at := now
		if tc.want == "Expired" {
			at = expiry.Add(time.Minute)
		}
		if got := tc.invite.DisplayStatus(at); got != tc.want {
			t.Errorf("%s: DisplayStatus() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/planwise/nutrisync/internal/errors"
)

func TestRegisterUserCreatesWithDefaultEngagement(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.RegisterUser(context.Background(), "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("registered user has no ID")
	}
	if !user.Engagement.StreakFreezeAvailable {
		t.Fatalf("new accounts should start with the streak freeze available")
	}
}

func TestRegisterUserIsIdempotentByEmail(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	first, err := svc.RegisterUser(ctx, "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	second, err := svc.RegisterUser(ctx, "ana@example.com", "Ana M.")
	if err != nil {
		t.Fatalf("second RegisterUser failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("duplicate account created: %s and %s", first.ID, second.ID)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
}

func TestGetUserUnknownID(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newFakeUserRepo())
	_, err := svc.GetUser(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

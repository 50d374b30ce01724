package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
)

func TestUserServiceCreateWithGeneratedPassword(t *testing.T) {
	users := &userRepoMock{}
	svc := NewUserService(users, nil, zap.NewNop())
	createdAt := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return createdAt })

	result, err := svc.Create(context.Background(), CreateUserInput{
		Username: "hkhan",
		Role:     domain.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.InitialPassword == "" {
		t.Fatal("expected a generated initial password")
	}
	if len(result.InitialPassword) != 12 {
		t.Fatalf("expected a 12 character password, got %d", len(result.InitialPassword))
	}
	if !result.User.IsActive {
		t.Fatal("expected new accounts to start active")
	}
	if !strings.HasPrefix(result.User.CCLID, "CCL-2026-S-") {
		t.Fatalf("unexpected CCL ID %q", result.User.CCLID)
	}
	if result.User.PasswordHash == result.InitialPassword {
		t.Fatal("expected the stored hash to differ from the password")
	}

	valid, err := security.VerifyPassword(result.InitialPassword, result.User.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("expected generated password to verify, valid=%v err=%v", valid, err)
	}
}

func TestUserServiceCreateWithSuppliedPassword(t *testing.T) {
	users := &userRepoMock{}
	svc := NewUserService(users, nil, zap.NewNop())

	result, err := svc.Create(context.Background(), CreateUserInput{
		Username: "fmalik",
		Role:     domain.RoleFaculty,
		Password: "Strong-Tower-93!",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.InitialPassword != "" {
		t.Fatal("expected no initial password echo for supplied password")
	}
}

func TestUserServiceCreateRejectsWeakPassword(t *testing.T) {
	users := &userRepoMock{}
	svc := NewUserService(users, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserInput{
		Username: "hkhan",
		Role:     domain.RoleStudent,
		Password: "password",
	})
	var validationErr *security.PasswordValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(&userRepoMock{}, nil, zap.NewNop())

	if _, err := svc.Create(context.Background(), CreateUserInput{
		Username: "legacy",
		Role:     domain.Role("registrar"),
	}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUserServiceCreateRejectsDuplicateUsername(t *testing.T) {
	users := &userRepoMock{}
	svc := NewUserService(users, nil, zap.NewNop())

	if _, err := svc.Create(context.Background(), CreateUserInput{
		Username: "hkhan",
		Role:     domain.RoleStudent,
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateUserInput{
		Username: "hkhan",
		Role:     domain.RoleStudent,
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

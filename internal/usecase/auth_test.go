package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
)

func seedAuthService(t *testing.T) (*AuthService, *userRepoMock, *publisherMock) {
	t.Helper()

	hash, err := security.HashPassword("Correct-Horse-42!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &userRepoMock{}
	if _, err := users.Create(context.Background(), domain.User{
		Username:     "hkhan",
		CCLID:        "CCL-STD-0007",
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		IsActive:     true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	codec, err := security.NewTokenCodec("0123456789abcdef0123456789abcdef", "cecos-connect", 15*time.Minute)
	if err != nil {
		t.Fatalf("init codec: %v", err)
	}

	publisher := &publisherMock{}
	return NewAuthService(users, codec, publisher, zap.NewNop()), users, publisher
}

func TestAuthServiceLogin(t *testing.T) {
	svc, users, publisher := seedAuthService(t)
	loginAt := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return loginAt })

	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "hkhan",
		Password:   "Correct-Horse-42!",
		IP:         "203.0.113.8",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.ExpiresIn != 15*time.Minute {
		t.Fatalf("expected 15m expiry, got %v", result.ExpiresIn)
	}

	identity, err := svc.ParseAccessToken(result.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if identity.ID != result.User.ID || identity.Role != domain.RoleStudent {
		t.Fatalf("expected identity to round-trip, got %+v", identity)
	}

	if stamp, ok := users.loginStamps[result.User.ID]; !ok || !stamp.Equal(loginAt) {
		t.Fatalf("expected login stamped at %v, got %v", loginAt, stamp)
	}
	if len(publisher.logins) != 1 {
		t.Fatalf("expected one login event, got %d", len(publisher.logins))
	}
	if publisher.logins[0].IP != "203.0.113.8" {
		t.Fatalf("expected event to carry client IP, got %q", publisher.logins[0].IP)
	}
}

func TestAuthServiceLoginByCCLID(t *testing.T) {
	svc, _, _ := seedAuthService(t)

	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "CCL-STD-0007",
		Password:   "Correct-Horse-42!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.User.Username != "hkhan" {
		t.Fatalf("expected CCL ID to resolve the account, got %q", result.User.Username)
	}
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	svc, _, publisher := seedAuthService(t)

	cases := []LoginInput{
		{Identifier: "hkhan", Password: "wrong"},
		{Identifier: "nobody", Password: "Correct-Horse-42!"},
		{Identifier: "", Password: "Correct-Horse-42!"},
		{Identifier: "hkhan", Password: ""},
	}
	for _, input := range cases {
		if _, err := svc.Login(context.Background(), input); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("identifier %q: expected ErrInvalidCredentials, got %v", input.Identifier, err)
		}
	}
	if len(publisher.logins) != 0 {
		t.Fatal("expected no login events for failed attempts")
	}
}

func TestAuthServiceLoginDisabledAccount(t *testing.T) {
	svc, users, _ := seedAuthService(t)
	if err := users.SetActive(context.Background(), 1, false); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{
		Identifier: "hkhan",
		Password:   "Correct-Horse-42!",
	}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthServiceParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := seedAuthService(t)

	if _, err := svc.ParseAccessToken("not-a-token"); !errors.Is(err, security.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

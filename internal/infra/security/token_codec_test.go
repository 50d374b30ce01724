package security

import (
	"errors"
	"testing"
	"time"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

const testSigningSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSigningSecret, "cecos-connect", ttl)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	identity := domain.Identity{ID: 42, Username: "hkhan", Role: domain.RoleFaculty}
	token, err := codec.Issue(identity)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parsed, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if parsed.ID != identity.ID || parsed.Username != identity.Username || parsed.Role != identity.Role {
		t.Fatalf("expected identity to round-trip, got %+v", parsed)
	}
}

func TestTokenCodecRejectsExpired(t *testing.T) {
	issuedAt := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, 15*time.Minute).WithClock(func() time.Time { return issuedAt })

	token, err := codec.Issue(domain.Identity{ID: 42, Username: "hkhan", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	codec.WithClock(func() time.Time { return issuedAt.Add(16 * time.Minute) })
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodecRejectsForeignSignature(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)
	foreign, err := NewTokenCodec("another-secret-another-secret-32", "cecos-connect", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	token, err := foreign.Issue(domain.Identity{ID: 42, Username: "hkhan", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestTokenCodecRejectsMalformed(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestTokenCodecRequiresSecret(t *testing.T) {
	if _, err := NewTokenCodec("  ", "cecos-connect", time.Minute); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestTokenCodecRequiresIdentityID(t *testing.T) {
	codec := newTestCodec(t, time.Minute)
	if _, err := codec.Issue(domain.Identity{Username: "ghost"}); err == nil {
		t.Fatal("expected error for identity without id")
	}
}

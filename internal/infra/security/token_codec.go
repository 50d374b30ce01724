package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

var (
	// ErrTokenMalformed indicates the token structure could not be parsed.
	ErrTokenMalformed = errors.New("token: malformed")
	// ErrTokenSignatureInvalid indicates the signature check failed.
	ErrTokenSignatureInvalid = errors.New("token: signature invalid")
	// ErrTokenExpired indicates current time exceeds the embedded expiry.
	ErrTokenExpired = errors.New("token: expired")
)

// IdentityClaims augments registered claims with the caller identity.
type IdentityClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

const defaultAccessTokenTTL = 15 * time.Minute

// TokenCodec issues and verifies signed identity tokens using a symmetric
// key. Verification is stateless and never consults storage; re-checking
// user-active status after a successful Verify is the caller's job.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a codec for the given signing secret.
func NewTokenCodec(secret, issuer string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if ttl == 0 {
		ttl = defaultAccessTokenTTL
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue serializes the identity with issuance and expiry timestamps and signs
// it with the symmetric key. Pure function of inputs and the current time.
func (c *TokenCodec) Issue(identity domain.Identity) (string, error) {
	if identity.ID <= 0 {
		return "", fmt.Errorf("token: identity id is required")
	}

	now := c.now().UTC()
	claims := IdentityClaims{
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Verify validates signature and expiry and rebuilds the caller identity.
// The three failure kinds are distinguishable for logging but must all result
// in the same external behavior: the request is rejected.
func (c *TokenCodec) Verify(tokenString string) (*domain.Identity, error) {
	claims := &IdentityClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if claims.UserID <= 0 {
		return nil, ErrTokenMalformed
	}

	return &domain.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     domain.Role(claims.Role),
	}, nil
}

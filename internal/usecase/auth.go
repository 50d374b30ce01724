package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/infra/logger"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the identifier/password pair did not
	// match an account. Unknown identifier and wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account exists but is deactivated.
	ErrAccountDisabled = errors.New("account disabled")
)

// LoginInput captures the credential exchange payload.
type LoginInput struct {
	Identifier string
	Password   string
	IP         string
}

// LoginResult is a successful credential exchange.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      domain.User
}

// AuthService exchanges credentials for identity tokens and resolves tokens
// back to callers.
type AuthService struct {
	users     port.UserRepository
	codec     *security.TokenCodec
	publisher port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository, codec *security.TokenCodec, publisher port.EventPublisher, log *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		codec:     codec,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies the identifier/password pair and issues a signed identity
// token. Accounts can be addressed by username or CCL ID.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	valid, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	identity := domain.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	token, err := s.codec.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the stamp is informational.
		s.logger.Warn("record login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", logger.MaskString(user.Username)),
		zap.String("role", string(user.Role)),
	)

	event := domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		At:       now,
		IP:       input.IP,
	}
	if err := s.publisher.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.codec.TTL(),
		User:      *user,
	}, nil
}

// ParseAccessToken verifies a bearer token and rebuilds the caller identity.
// Verification is stateless; it never touches storage.
func (s *AuthService) ParseAccessToken(tokenString string) (*domain.Identity, error) {
	return s.codec.Verify(tokenString)
}

// CurrentUser resolves the authenticated identity to its full account record.
func (s *AuthService) CurrentUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return user, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/infra/logger"
	"github.com/Natsdon/CECOS-Connect/internal/infra/security"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

var (
	// ErrUsernameTaken indicates the requested username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUnknownRole indicates the requested role is not a defined category.
	ErrUnknownRole = errors.New("unknown role")
)

// CreateUserInput captures the payload for provisioning an account. When
// Password is empty a random initial password is generated and returned once.
type CreateUserInput struct {
	Username string
	Email    *string
	Role     domain.Role
	Password string
}

// CreateUserResult carries the stored account plus the initial password. The
// password is never persisted in clear and never shown again.
type CreateUserResult struct {
	User            domain.User
	InitialPassword string
}

// UserService provisions and manages accounts. Role is fixed at creation; no
// operation changes it afterwards.
type UserService struct {
	users     port.UserRepository
	validator *security.PasswordValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, validator *security.PasswordValidator, log *zap.Logger) *UserService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &UserService{
		users:     users,
		validator: validator,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create provisions a new account with a generated CCL ID.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*CreateUserResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if !domain.KnownRole(input.Role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, input.Role)
	}

	if existing, err := s.users.GetByIdentifier(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	now := s.now().UTC()

	cclID, err := security.GenerateCCLID(input.Role, now)
	if err != nil {
		return nil, fmt.Errorf("generate ccl id: %w", err)
	}

	password := input.Password
	generated := false
	if password == "" {
		password, err = security.GenerateInitialPassword(12)
		if err != nil {
			return nil, fmt.Errorf("generate initial password: %w", err)
		}
		generated = true
	}

	if err := s.validator.Validate(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:     username,
		CCLID:        cclID,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
	}

	stored, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	email := ""
	if stored.Email != nil {
		email = logger.MaskEmail(*stored.Email)
	}
	s.logger.Info("account provisioned",
		zap.Int64("user_id", stored.ID),
		zap.String("ccl_id", stored.CCLID),
		zap.String("role", string(stored.Role)),
		zap.String("email", email),
	)

	result := &CreateUserResult{User: stored}
	if generated {
		result.InitialPassword = password
	}
	return result, nil
}

// Get retrieves an account by identifier.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return user, nil
}

// SetActive enables or disables an account. Disabled accounts fail login but
// outstanding tokens stay verifiable until they expire.
func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set account active: %w", err)
	}

	s.logger.Info("account active flag changed",
		zap.Int64("user_id", id),
		zap.Bool("active", active),
	)
	return nil
}

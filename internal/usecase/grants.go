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
)

var (
	// ErrActorNotPermitted indicates the caller may not manage privileges.
	ErrActorNotPermitted = errors.New("actor not permitted to manage privileges")
	// ErrInvalidAction indicates the permission or resource string is empty.
	ErrInvalidAction = errors.New("permission and resource are required")
	// ErrUnknownGrantee indicates the target user does not exist.
	ErrUnknownGrantee = errors.New("grantee not found")
)

// GrantInput captures the payload for issuing or revoking a privilege.
type GrantInput struct {
	UserID     int64
	Permission string
	Resource   string
}

// GrantService is the privilege lifecycle manager. Only EPR administrators
// may issue or revoke explicit grants; the check lives here rather than in
// route wiring so every transport gets it.
type GrantService struct {
	grants    port.GrantRepository
	users     port.UserRepository
	publisher port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewGrantService constructs a GrantService.
func NewGrantService(grants port.GrantRepository, users port.UserRepository, publisher port.EventPublisher, logger *zap.Logger) *GrantService {
	return &GrantService{
		grants:    grants,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *GrantService) WithClock(now func() time.Time) *GrantService {
	if now != nil {
		s.now = now
	}
	return s
}

// Issue adds an explicit privilege to a user. The actor is stamped into the
// stored row so every grant is attributable.
func (s *GrantService) Issue(ctx context.Context, actor domain.Identity, input GrantInput) (*domain.Grant, error) {
	if err := s.authorizeActor(actor); err != nil {
		return nil, err
	}

	permission, resource, err := normalizeAction(input.Permission, input.Resource)
	if err != nil {
		return nil, err
	}

	if input.UserID <= 0 {
		return nil, ErrUnknownGrantee
	}
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownGrantee, err)
	}

	grant := domain.Grant{
		UserID:     input.UserID,
		Permission: permission,
		Resource:   resource,
		GrantedBy:  actor.ID,
		GrantedAt:  s.now().UTC(),
	}

	stored, err := s.grants.Add(ctx, grant)
	if err != nil {
		return nil, fmt.Errorf("add grant: %w", err)
	}

	s.logger.Info("privilege granted",
		zap.Int64("user_id", stored.UserID),
		zap.String("permission", stored.Permission),
		zap.String("resource", stored.Resource),
		zap.Int64("granted_by", stored.GrantedBy),
	)

	event := domain.GrantIssuedEvent{
		EventID:    uuid.NewString(),
		GrantID:    stored.ID,
		UserID:     stored.UserID,
		Permission: stored.Permission,
		Resource:   stored.Resource,
		GrantedBy:  stored.GrantedBy,
		GrantedAt:  stored.GrantedAt,
	}
	if err := s.publisher.PublishGrantIssued(ctx, event); err != nil {
		// The grant is durable; a lost audit event is logged, not fatal.
		s.logger.Warn("publish grant issued event failed", zap.Error(err))
	}

	return &stored, nil
}

// Revoke removes every stored grant matching the user/permission/resource
// triple. Revoking a privilege the user never had is a no-op, not an error.
func (s *GrantService) Revoke(ctx context.Context, actor domain.Identity, input GrantInput) (bool, error) {
	if err := s.authorizeActor(actor); err != nil {
		return false, err
	}

	permission, resource, err := normalizeAction(input.Permission, input.Resource)
	if err != nil {
		return false, err
	}

	removed, err := s.grants.RemoveExact(ctx, input.UserID, permission, resource)
	if err != nil {
		return false, fmt.Errorf("remove grant: %w", err)
	}

	s.logger.Info("privilege revoked",
		zap.Int64("user_id", input.UserID),
		zap.String("permission", permission),
		zap.String("resource", resource),
		zap.Int64("revoked_by", actor.ID),
		zap.Bool("removed", removed),
	)

	event := domain.GrantRevokedEvent{
		EventID:    uuid.NewString(),
		UserID:     input.UserID,
		Permission: permission,
		Resource:   resource,
		RevokedBy:  actor.ID,
		RevokedAt:  s.now().UTC(),
		Removed:    removed,
	}
	if err := s.publisher.PublishGrantRevoked(ctx, event); err != nil {
		s.logger.Warn("publish grant revoked event failed", zap.Error(err))
	}

	return removed, nil
}

// ListGrants returns the explicit privileges attached to a user.
func (s *GrantService) ListGrants(ctx context.Context, actor domain.Identity, userID int64) ([]domain.Grant, error) {
	if err := s.authorizeActor(actor); err != nil {
		return nil, err
	}

	grants, err := s.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}

	return grants, nil
}

func (s *GrantService) authorizeActor(actor domain.Identity) error {
	if actor.ID <= 0 || actor.Role != domain.RoleEPRAdmin {
		return ErrActorNotPermitted
	}
	return nil
}

func normalizeAction(permission, resource string) (string, string, error) {
	permission = strings.TrimSpace(permission)
	resource = strings.TrimSpace(resource)
	if permission == "" || resource == "" {
		return "", "", ErrInvalidAction
	}
	return permission, resource, nil
}

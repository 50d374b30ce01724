package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// ErrStoreUnavailable indicates the privilege store could not be consulted.
// The decision is still a deny; the error rides along so transport can
// distinguish a policy deny from an outage.
var ErrStoreUnavailable = errors.New("privilege store unavailable")

// Authorizer is the decision engine. Access is granted when either the
// caller's role policy or an explicit grant covers the requested action;
// there is no deny override. Decisions are made fresh per request and never
// cached.
type Authorizer struct {
	policy *domain.RolePolicy
	grants port.GrantRepository
	logger *zap.Logger
}

// NewAuthorizer constructs the decision engine over the given policy table
// and privilege store.
func NewAuthorizer(policy *domain.RolePolicy, grants port.GrantRepository, logger *zap.Logger) *Authorizer {
	if policy == nil {
		policy = domain.DefaultRolePolicy()
	}
	return &Authorizer{policy: policy, grants: grants, logger: logger}
}

// Authorize evaluates the request in two tiers. The role policy is consulted
// first because it is an in-memory lookup; the privilege store is only hit
// when the role alone does not cover the action. A store failure denies the
// request: on outage no privileged action goes through.
func (a *Authorizer) Authorize(ctx context.Context, request domain.AuthorizationRequest) (domain.AuthorizationResult, error) {
	identity := request.Identity
	if identity == nil || identity.ID <= 0 {
		return domain.Denied(domain.DenyTokenInvalid), nil
	}

	if a.policy.Allows(identity.Role, request.Permission, request.Resource) {
		return domain.Allowed(), nil
	}

	grants, err := a.grants.ListByUser(ctx, identity.ID)
	if err != nil {
		a.logger.Error("privilege store lookup failed",
			zap.Int64("user_id", identity.ID),
			zap.String("permission", request.Permission),
			zap.String("resource", request.Resource),
			zap.Error(err),
		)
		return domain.Denied(domain.DenyStoreUnavailable), fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	for _, grant := range grants {
		if grant.Matches(request.Permission, request.Resource) {
			return domain.Allowed(), nil
		}
	}

	if !a.policy.HasEntries(identity.Role) {
		return domain.Denied(domain.DenyNoRolePolicy), nil
	}

	return domain.Denied(domain.DenyInsufficientPrivilege), nil
}

package domain

// DenyReason tags why an authorization decision came back negative. Reasons
// are for logging and metrics only; API responses carry a generic forbidden
// message so callers cannot probe policy structure.
type DenyReason string

const (
	DenyTokenInvalid          DenyReason = "token_invalid"
	DenyTokenExpired          DenyReason = "token_expired"
	DenyNoRolePolicy          DenyReason = "no_role_policy"
	DenyInsufficientPrivilege DenyReason = "insufficient_privilege"
	DenyStoreUnavailable      DenyReason = "store_unavailable"
)

// AuthorizationRequest is the ephemeral value handed to the decision engine.
type AuthorizationRequest struct {
	Identity   *Identity
	Permission string
	Resource   string
}

// AuthorizationResult is the engine's verdict. Reason is empty on allow.
type AuthorizationResult struct {
	Allow  bool
	Reason DenyReason
}

// Allowed builds a positive result.
func Allowed() AuthorizationResult {
	return AuthorizationResult{Allow: true}
}

// Denied builds a negative result tagged with the given reason.
func Denied(reason DenyReason) AuthorizationResult {
	return AuthorizationResult{Allow: false, Reason: reason}
}

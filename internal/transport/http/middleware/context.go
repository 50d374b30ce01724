package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

const (
	// IdentityKey is the gin context key holding the authenticated identity.
	IdentityKey = "identity"
	// UserIDKey is the gin context key holding the authenticated user ID.
	UserIDKey = "user_id"
	// DenyReasonKey is the gin context key holding the deny reason for a
	// rejected request. Internal only; responses never carry it.
	DenyReasonKey = "deny_reason"
)

// SetIdentity stores the authenticated caller in the request context.
func SetIdentity(c *gin.Context, identity *domain.Identity) {
	c.Set(IdentityKey, identity)
	c.Set(UserIDKey, identity.ID)
}

// IdentityFromContext retrieves the authenticated caller, if any.
func IdentityFromContext(c *gin.Context) (*domain.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*domain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// SetDenyReason records why the request was rejected so instrumentation can
// label the denial.
func SetDenyReason(c *gin.Context, reason domain.DenyReason) {
	c.Set(DenyReasonKey, reason)
}

// DenyReasonFromContext retrieves the deny reason, if any.
func DenyReasonFromContext(c *gin.Context) (domain.DenyReason, bool) {
	value, exists := c.Get(DenyReasonKey)
	if !exists {
		return "", false
	}
	reason, ok := value.(domain.DenyReason)
	if !ok || reason == "" {
		return "", false
	}
	return reason, true
}

// AuthenticatedUserID retrieves the caller's user ID from context.
func AuthenticatedUserID(c *gin.Context) (int64, bool) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return 0, false
	}
	return identity.ID, true
}

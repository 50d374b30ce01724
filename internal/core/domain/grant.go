package domain

import "time"

// Grant is one explicit privilege attached to a single user, layered on top
// of that user's role defaults. Grants are created and removed only through
// the grant lifecycle service; they are never mutated in place.
type Grant struct {
	ID         int64
	UserID     int64
	Permission string
	Resource   string
	GrantedBy  int64
	GrantedAt  time.Time
}

// Matches reports whether the grant covers the permission/resource pair.
// Permission and resource strings are opaque and compared for exact equality.
func (g Grant) Matches(permission, resource string) bool {
	return g.Permission == permission && g.Resource == resource
}

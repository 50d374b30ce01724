package port

import (
	"context"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// GrantRepository is the privilege store: the durable mapping from a user to
// their explicit permission/resource grants. Implementations must reflect the
// latest committed state on every read; authorization correctness depends on
// freshness, so no caching layer is permitted in front of it.
type GrantRepository interface {
	// ListByUser returns every current grant for the user, empty if none.
	ListByUser(ctx context.Context, userID int64) ([]domain.Grant, error)
	// Add persists a new grant row. It does not deduplicate.
	Add(ctx context.Context, grant domain.Grant) (domain.Grant, error)
	// RemoveExact deletes all rows matching the triple and reports whether
	// at least one row was removed. Removing a non-existent grant is not an
	// error.
	RemoveExact(ctx context.Context, userID int64, permission, resource string) (bool, error)
}

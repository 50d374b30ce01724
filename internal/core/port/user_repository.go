package port

import (
	"context"
	"time"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// UserRepository is the account directory backing login and provisioning.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByIdentifier resolves a username or CCL ID to an account.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

package port

import (
	"context"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// EventPublisher publishes audit events to the message bus.
type EventPublisher interface {
	PublishGrantIssued(ctx context.Context, event domain.GrantIssuedEvent) error
	PublishGrantRevoked(ctx context.Context, event domain.GrantRevokedEvent) error
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
}

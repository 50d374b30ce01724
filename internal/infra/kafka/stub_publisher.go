package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, userID int64, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.Int64("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishGrantIssued logs cecos.privilege.granted events.
func (p *StubPublisher) PublishGrantIssued(_ context.Context, event domain.GrantIssuedEvent) error {
	payload := map[string]any{
		"grant_id":   event.GrantID,
		"user_id":    event.UserID,
		"permission": event.Permission,
		"resource":   event.Resource,
		"granted_by": event.GrantedBy,
		"granted_at": event.GrantedAt,
	}
	p.logEvent("cecos.privilege.granted", event.UserID, event.GrantedAt, payload)
	return nil
}

// PublishGrantRevoked logs cecos.privilege.revoked events.
func (p *StubPublisher) PublishGrantRevoked(_ context.Context, event domain.GrantRevokedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"permission": event.Permission,
		"resource":   event.Resource,
		"revoked_by": event.RevokedBy,
		"revoked_at": event.RevokedAt,
		"removed":    event.Removed,
	}
	p.logEvent("cecos.privilege.revoked", event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishUserLoggedIn logs cecos.user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"username": event.Username,
		"role":     event.Role,
		"at":       event.At,
	}
	p.logEvent("cecos.user.logged_in", event.UserID, event.At, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

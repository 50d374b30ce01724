package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/infra/config"
	"github.com/Natsdon/CECOS-Connect/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed audit event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    int64            `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, userID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishGrantIssued publishes cecos.privilege.granted events.
func (p *EventPublisher) PublishGrantIssued(ctx context.Context, event domain.GrantIssuedEvent) error {
	payload := struct {
		GrantID    int64     `json:"grant_id"`
		UserID     int64     `json:"user_id"`
		Permission string    `json:"permission"`
		Resource   string    `json:"resource"`
		GrantedBy  int64     `json:"granted_by"`
		GrantedAt  time.Time `json:"granted_at"`
	}{
		GrantID:    event.GrantID,
		UserID:     event.UserID,
		Permission: event.Permission,
		Resource:   event.Resource,
		GrantedBy:  event.GrantedBy,
		GrantedAt:  event.GrantedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "cecos.privilege.granted", event.UserID, event.GrantedAt, payload)
}

// PublishGrantRevoked publishes cecos.privilege.revoked events.
func (p *EventPublisher) PublishGrantRevoked(ctx context.Context, event domain.GrantRevokedEvent) error {
	payload := struct {
		UserID     int64     `json:"user_id"`
		Permission string    `json:"permission"`
		Resource   string    `json:"resource"`
		RevokedBy  int64     `json:"revoked_by"`
		RevokedAt  time.Time `json:"revoked_at"`
		Removed    bool      `json:"removed"`
	}{
		UserID:     event.UserID,
		Permission: event.Permission,
		Resource:   event.Resource,
		RevokedBy:  event.RevokedBy,
		RevokedAt:  event.RevokedAt.UTC(),
		Removed:    event.Removed,
	}

	return p.publish(ctx, event.EventID, "cecos.privilege.revoked", event.UserID, event.RevokedAt, payload)
}

// PublishUserLoggedIn publishes cecos.user.logged_in events.
func (p *EventPublisher) PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error {
	payload := struct {
		UserID   int64     `json:"user_id"`
		Username string    `json:"username"`
		Role     string    `json:"role"`
		At       time.Time `json:"at"`
		IP       string    `json:"ip,omitempty"`
	}{
		UserID:   event.UserID,
		Username: event.Username,
		Role:     string(event.Role),
		At:       event.At.UTC(),
		IP:       logger.MaskIP(event.IP),
	}

	return p.publish(ctx, event.EventID, "cecos.user.logged_in", event.UserID, event.At, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)

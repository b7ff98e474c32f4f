package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/payroll-registry/internal/config"
	"github.com/spec-kit/payroll-registry/internal/events"
	"github.com/spec-kit/payroll-registry/internal/observability"
)

// NotificationService fans committed registry events out to external observers.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	metrics    *observability.Metrics
	stream     *redis.Client
	streamName string
}

// NotificationSinks are the optional outputs beyond logging.
type NotificationSinks struct {
	Metrics     *observability.Metrics
	StreamRedis *redis.Client
	StreamName  string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, sinks NotificationSinks) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		metrics:    sinks.Metrics,
		stream:     sinks.StreamRedis,
		streamName: sinks.StreamName,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("registry event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("hash", event.Hash),
		zap.String("actor", event.Actor.String()),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	n.metrics.RecordEvent(string(event.Type))
	n.sendWebhookNotificationStub(ctx, event)
	return n.appendToStream(ctx, event)
}

// appendToStream publishes the event to a Redis stream so observers outside
// the process can follow the registry.
func (n *NotificationService) appendToStream(ctx context.Context, event events.Event) error {
	if n.stream == nil || n.streamName == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.stream.XAdd(ctx, &redis.XAddArgs{
		Stream: n.streamName,
		Values: map[string]interface{}{
			"id":    event.ID,
			"type":  string(event.Type),
			"event": payload,
		},
	}).Err()
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/config"
	"github.com/spec-kit/gym-portal/internal/events"
)

// NotificationService emits member notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	unsubs     []func()
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.subscribe(events.EventSubscriptionPurchased, n.handleSubscriptionPurchased)
	n.subscribe(events.EventSubscriptionDeactivated, n.handleWebhookOnly)
	n.subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
	n.subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
	n.subscribe(events.EventAttendanceCheckedIn, n.handleWebhookOnly)
	n.subscribe(events.EventAttendanceCheckedOut, n.handleWebhookOnly)
}

// Unregister removes every handler added by RegisterHandlers.
func (n *NotificationService) Unregister() {
	for _, unsub := range n.unsubs {
		unsub()
	}
	n.unsubs = nil
}

func (n *NotificationService) subscribe(eventType events.EventType, handler events.EventHandler) {
	n.unsubs = append(n.unsubs, n.dispatcher.Subscribe(eventType, handler))
}

func (n *NotificationService) handleSubscriptionPurchased(ctx context.Context, event events.Event) error {
	n.logger.Info("SubscriptionPurchased", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderPlaced", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleWebhookOnly(ctx context.Context, event events.Event) error {
	n.logger.Debug("event", zap.String("event_type", string(event.Type)), zap.String("user_id", event.UserID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
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

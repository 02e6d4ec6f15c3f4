package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/circleats/donation-service/internal/config"
	"github.com/circleats/donation-service/internal/events"
)

// NotificationService reacts to donation lifecycle events. The durable
// per-donation notification log is written by DonationService inside the
// transition; this service covers the outward-facing side channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
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
	n.dispatcher.Subscribe(events.EventDonationCreated, n.handleDonationCreated)
	n.dispatcher.Subscribe(events.EventDonationRequested, n.handleDonationRequested)
	n.dispatcher.Subscribe(events.EventDeliveryAccepted, n.handleDeliveryAccepted)
	n.dispatcher.Subscribe(events.EventDonationCompleted, n.handleDonationCompleted)
}

func (n *NotificationService) handleDonationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("DonationCreated", zap.String("donation_id", event.DonationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDonationRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("DonationRequested", zap.String("donation_id", event.DonationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDeliveryAccepted(ctx context.Context, event events.Event) error {
	n.logger.Info("DeliveryAccepted", zap.String("donation_id", event.DonationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDonationCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("DonationCompleted", zap.String("donation_id", event.DonationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("donation_id", event.DonationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("donation_id", event.DonationID),
		zap.String("event_type", string(event.Type)))
}

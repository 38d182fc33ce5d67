package worker

import (
	"go.uber.org/zap"

	"github.com/helpdesk-central/ticket-hub/internal/config"
	"github.com/helpdesk-central/ticket-hub/internal/events"
	"github.com/helpdesk-central/ticket-hub/internal/service"
)

// StartNotificationWorker wires the notification service onto the event
// dispatcher. Delivery is in-process and synchronous with publication.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	notifications := service.NewNotificationService(dispatcher, logger, cfg)
	notifications.RegisterHandlers()
	logger.Info("notification worker registered")
	return notifications
}

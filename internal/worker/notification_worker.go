package worker

// NotificationRegistrar subscribes notification fan-out to domain events.
type NotificationRegistrar interface {
	RegisterHandlers()
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notifications NotificationRegistrar) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
}

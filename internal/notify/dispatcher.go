package notify

import (
	"context"

	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/metrics"
	"telemetry-bridge/internal/models"
)

// SendFunc delivers one notification through a single provider.
type SendFunc func(context.Context, models.Notification) error

// Dispatcher fans one alert out to every registered provider. Delivery is
// fire and forget: a provider failure is logged and counted, never
// propagated, so a flaky channel cannot block error-state persistence.
type Dispatcher struct {
	providers map[string]SendFunc
	logger    *logging.Logger
}

func NewDispatcher(logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		providers: make(map[string]SendFunc),
		logger:    logger,
	}
}

// Register adds a named provider.
func (d *Dispatcher) Register(name string, send SendFunc) {
	d.providers[name] = send
}

// Notify delivers the alert to all providers.
func (d *Dispatcher) Notify(ctx context.Context, notif models.Notification) error {
	for name, send := range d.providers {
		if err := send(ctx, notif); err != nil {
			metrics.NotificationsTotal.WithLabelValues(name, "failed").Inc()
			d.logger.Errorf("Dispatch error via %s for device %s (%s): %v",
				name, notif.DeviceID, notif.Condition, err)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(name, "sent").Inc()
		d.logger.Infof("Alert %s dispatched via %s for device %s", notif.Condition, name, notif.DeviceID)
	}
	return nil
}

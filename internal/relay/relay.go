// Package relay forwards configuration edits down to devices. The device
// side consumes from the configuration-push channel addressed by its fully
// qualified device path.
package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/metrics"
	"telemetry-bridge/internal/models"
)

// Publisher sends one addressed payload to the configuration-push channel.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Relay formats and forwards configuration documents. One synchronous
// publish per edit; retries belong to the transport.
type Relay struct {
	pub      Publisher
	project  string
	region   string
	registry string
	logger   *logging.Logger
}

func New(pub Publisher, project, region, registry string, logger *logging.Logger) *Relay {
	return &Relay{
		pub:      pub,
		project:  project,
		region:   region,
		registry: registry,
		logger:   logger,
	}
}

// DevicePath resolves a device id to its fully qualified path.
func (r *Relay) DevicePath(deviceID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/registries/%s/devices/%s",
		r.project, r.region, r.registry, deviceID)
}

// PushConfig serializes the configuration as an opaque base64 payload and
// publishes it addressed to the device.
func (r *Relay) PushConfig(ctx context.Context, deviceID string, cfg models.DeviceConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config for %s: %w", deviceID, err)
	}
	payload := base64.StdEncoding.EncodeToString(doc)
	path := r.DevicePath(deviceID)

	if err := r.pub.Publish(ctx, path, []byte(payload)); err != nil {
		metrics.ConfigPushesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to push config to %s: %w", path, err)
	}
	metrics.ConfigPushesTotal.WithLabelValues("sent").Inc()
	r.logger.Infof("Config pushed to %s", path)
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"telemetry-bridge/internal/models"
)

// LoadConfig fetches the configuration document for a device, or ErrNotFound.
func (d *DB) LoadConfig(ctx context.Context, deviceID string) (models.DeviceConfig, error) {
	var doc []byte
	err := d.Pool.QueryRow(ctx,
		`SELECT doc FROM device_configs WHERE device_id = $1`, deviceID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DeviceConfig{}, ErrNotFound
		}
		return models.DeviceConfig{}, fmt.Errorf("failed to load config for %s: %w", deviceID, err)
	}
	var cfg models.DeviceConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return models.DeviceConfig{}, fmt.Errorf("corrupt config document for %s: %w", deviceID, err)
	}
	return cfg, nil
}

// EnsureConfig loads the device configuration, creating and persisting the
// default document on first contact. The insert is a no-op when a row
// already exists, so concurrent first contacts converge on one document;
// the default is identical regardless of which caller wins.
func (d *DB) EnsureConfig(ctx context.Context, deviceID string) (models.DeviceConfig, error) {
	cfg, err := d.LoadConfig(ctx, deviceID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.DeviceConfig{}, err
	}

	def := models.DefaultConfig()
	doc, err := json.Marshal(def)
	if err != nil {
		return models.DeviceConfig{}, fmt.Errorf("failed to marshal default config: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_configs (device_id, doc) VALUES ($1, $2)
		 ON CONFLICT (device_id) DO NOTHING`, deviceID, doc)
	if err != nil {
		return models.DeviceConfig{}, fmt.Errorf("failed to create default config for %s: %w", deviceID, err)
	}
	// Read back in case a concurrent caller inserted first.
	return d.LoadConfig(ctx, deviceID)
}

// SaveConfig persists the full configuration document for a device.
func (d *DB) SaveConfig(ctx context.Context, deviceID string, cfg models.DeviceConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_configs (device_id, doc, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (device_id) DO UPDATE SET doc = $2, updated_at = now()`,
		deviceID, doc)
	if err != nil {
		return fmt.Errorf("failed to save config for %s: %w", deviceID, err)
	}
	return nil
}

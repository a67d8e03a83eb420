package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"telemetry-bridge/internal/models"
)

// SaveStatus upserts the latest reading for a device.
func (d *DB) SaveStatus(ctx context.Context, deviceID string, r models.Reading) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_status (device_id, doc, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (device_id) DO UPDATE SET doc = $2, updated_at = $3`,
		deviceID, doc, r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save status for %s: %w", deviceID, err)
	}
	return nil
}

// AppendHistory appends a reading to the device history.
func (d *DB) AppendHistory(ctx context.Context, deviceID string, r models.Reading) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_history (device_id, doc, recorded_at) VALUES ($1, $2, $3)`,
		deviceID, doc, r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history for %s: %w", deviceID, err)
	}
	return nil
}

// LoadStatus fetches the latest reading for a device, or ErrNotFound.
func (d *DB) LoadStatus(ctx context.Context, deviceID string) (models.Reading, error) {
	var doc []byte
	err := d.Pool.QueryRow(ctx,
		`SELECT doc FROM device_status WHERE device_id = $1`, deviceID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Reading{}, ErrNotFound
		}
		return models.Reading{}, fmt.Errorf("failed to load status for %s: %w", deviceID, err)
	}
	var r models.Reading
	if err := json.Unmarshal(doc, &r); err != nil {
		return models.Reading{}, fmt.Errorf("corrupt status document for %s: %w", deviceID, err)
	}
	return r, nil
}

// LoadHistory returns up to limit recent readings for a device, newest first.
func (d *DB) LoadHistory(ctx context.Context, deviceID string, limit int) ([]models.Reading, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT doc FROM device_history
		 WHERE device_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT $2`, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", deviceID, err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		var r models.Reading
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("corrupt history document for %s: %w", deviceID, err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

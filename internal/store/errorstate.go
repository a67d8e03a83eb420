package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"telemetry-bridge/internal/models"
)

// LoadErrorState fetches the error-state document for a device, or ErrNotFound.
func (d *DB) LoadErrorState(ctx context.Context, deviceID string) (models.ErrorState, error) {
	var doc []byte
	err := d.Pool.QueryRow(ctx,
		`SELECT doc FROM device_error_states WHERE device_id = $1`, deviceID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrorState{}, ErrNotFound
		}
		return models.ErrorState{}, fmt.Errorf("failed to load error state for %s: %w", deviceID, err)
	}
	var state models.ErrorState
	if err := json.Unmarshal(doc, &state); err != nil {
		return models.ErrorState{}, fmt.Errorf("corrupt error-state document for %s: %w", deviceID, err)
	}
	return state, nil
}

// EnsureErrorState loads the error state, creating and persisting the
// all-clear default on first contact.
func (d *DB) EnsureErrorState(ctx context.Context, deviceID string) (models.ErrorState, error) {
	state, err := d.LoadErrorState(ctx, deviceID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.ErrorState{}, err
	}

	doc, err := json.Marshal(models.DefaultErrorState())
	if err != nil {
		return models.ErrorState{}, fmt.Errorf("failed to marshal default error state: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_error_states (device_id, doc) VALUES ($1, $2)
		 ON CONFLICT (device_id) DO NOTHING`, deviceID, doc)
	if err != nil {
		return models.ErrorState{}, fmt.Errorf("failed to create default error state for %s: %w", deviceID, err)
	}
	return d.LoadErrorState(ctx, deviceID)
}

// SaveErrorState persists the whole error-state document. Written after
// every evaluation, changed or not, so the store stays the single source
// of truth for the next reading.
func (d *DB) SaveErrorState(ctx context.Context, deviceID string, state models.ErrorState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal error state: %w", err)
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO device_error_states (device_id, doc, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (device_id) DO UPDATE SET doc = $2, updated_at = now()`,
		deviceID, doc)
	if err != nil {
		return fmt.Errorf("failed to save error state for %s: %w", deviceID, err)
	}
	return nil
}

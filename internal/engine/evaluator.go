// Package engine holds the threshold evaluator. It is pure: no I/O, no
// clocks, no mutation of its inputs, so the ingestion workers can run it
// concurrently and tests can drive it directly.
package engine

import "telemetry-bridge/internal/models"

// Evaluate checks one reading against the device configuration and the
// prior error state and returns the complete next error state plus the
// notifications to emit.
//
// Rules:
//   - A sensor absent from the reading leaves its flags untouched; no data
//     means no new verdict.
//   - Present sensors use strict inequalities: value > max raises the high
//     flag, value < min raises the low flag, in-range clears.
//   - A notification is emitted only on a false->true transition of a flag.
//     Persisting violations stay silent, and clearing is always silent.
//
// All checks observe the same prior snapshot; none sees another check's
// in-progress update.
func Evaluate(deviceID string, r models.Reading, cfg models.DeviceConfig, prior models.ErrorState) (models.ErrorState, []models.Notification) {
	next := prior

	if r.Temperature != nil {
		next.TempHigh = *r.Temperature > cfg.MaxTemperature
		next.TempLow = *r.Temperature < cfg.MinTemperature
	}
	if r.PH != nil {
		next.PHHigh = *r.PH > cfg.MaxPH
		next.PHLow = *r.PH < cfg.MinPH
	}
	if r.WaterLevel != nil {
		next.WaterLevelLow = *r.WaterLevel < models.MinWaterLevel
	}
	if r.BatteryVoltage != nil {
		next.BatteryLow = *r.BatteryVoltage < models.MinBatteryVoltage
	}
	if r.Leak != nil {
		next.LeakDetected = *r.Leak > models.MaxLeakVoltage
	}
	if r.InternalLeak != nil {
		next.InternalLeakDetected = *r.InternalLeak > models.MaxLeakVoltage
	}

	var notifs []models.Notification
	for _, cond := range []string{
		models.CondPHHigh,
		models.CondPHLow,
		models.CondTempHigh,
		models.CondTempLow,
		models.CondWaterLow,
		models.CondBatteryLow,
		models.CondLeak,
		models.CondInternalLeak,
	} {
		if !prior.Flag(cond) && next.Flag(cond) {
			notifs = append(notifs, models.NewAlert(deviceID, cond))
		}
	}

	return next, notifs
}

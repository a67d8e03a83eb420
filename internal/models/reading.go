package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reading is one telemetry message from a device. Devices only report the
// sensors they have, so every field is optional; a nil field means the
// sensor was absent from this reading, not that it read zero. Unknown JSON
// keys from newer firmware are dropped on decode.
type Reading struct {
	Temperature    *float64  `json:"temperature,omitempty"`
	PH             *float64  `json:"pH,omitempty"`
	BatteryVoltage *float64  `json:"battery_voltage,omitempty"`
	Leak           *float64  `json:"leak,omitempty"`
	InternalLeak   *float64  `json:"internal_leak,omitempty"`
	WaterLevel     *float64  `json:"water_level,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty"` // server-assigned
}

// ParseReading decodes a raw reading body.
func ParseReading(data []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return Reading{}, fmt.Errorf("invalid reading payload: %w", err)
	}
	return r, nil
}

// Empty reports whether the reading carries no known sensor fields.
func (r Reading) Empty() bool {
	return r.Temperature == nil && r.PH == nil && r.BatteryVoltage == nil &&
		r.Leak == nil && r.InternalLeak == nil && r.WaterLevel == nil
}

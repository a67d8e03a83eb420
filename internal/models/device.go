package models

// Built-in thresholds for sensors that are not user-configurable.
const (
	MinBatteryVoltage = 4.0
	MaxLeakVoltage    = 0.6 // applies to both leak and internal_leak
	MinWaterLevel     = 1.0 // float switch reports 0 (dry) or 1 (submerged)
)

// DeviceConfig is the per-device configuration document. It is created with
// DefaultConfig the first time a device is seen and owned by the user
// afterwards; the ingestion path only reads it.
type DeviceConfig struct {
	MaxPH                 float64 `json:"max_ph"`
	MinPH                 float64 `json:"min_ph"`
	MaxTemperature        float64 `json:"max_temperature"`
	MinTemperature        float64 `json:"min_temperature"`
	PeristalticPumpOn     bool    `json:"peristaltic_pump_on"`
	TargetPH              float64 `json:"target_ph"`
	UpdateIntervalMinutes int     `json:"update_interval_minutes"`
}

// DefaultConfig returns the configuration written on first contact.
func DefaultConfig() DeviceConfig {
	return DeviceConfig{
		MaxPH:                 10,
		MinPH:                 5,
		MaxTemperature:        25,
		MinTemperature:        15,
		PeristalticPumpOn:     false,
		TargetPH:              7,
		UpdateIntervalMinutes: 30,
	}
}

// ErrorState holds the currently active alert flags for one device. A flag
// is true iff the most recent reading that included the relevant sensor
// violated its threshold; flags for sensors absent from a reading keep
// their prior value.
type ErrorState struct {
	PHHigh               bool `json:"PH_HIGH"`
	PHLow                bool `json:"PH_LOW"`
	TempHigh             bool `json:"TEMP_HIGH"`
	TempLow              bool `json:"TEMP_LOW"`
	WaterLevelLow        bool `json:"WATER_LEVEL_LOW"`
	BatteryLow           bool `json:"BATTERY_LOW"`
	LeakDetected         bool `json:"LEAK_DETECTED"`
	InternalLeakDetected bool `json:"INTERNAL_LEAK_DETECTED"`
}

// DefaultErrorState returns the all-clear state written on first contact.
func DefaultErrorState() ErrorState {
	return ErrorState{}
}

// Condition identifiers, one per ErrorState flag.
const (
	CondPHHigh       = "PH_HIGH"
	CondPHLow        = "PH_LOW"
	CondTempHigh     = "TEMP_HIGH"
	CondTempLow      = "TEMP_LOW"
	CondWaterLow     = "WATER_LEVEL_LOW"
	CondBatteryLow   = "BATTERY_LOW"
	CondLeak         = "LEAK_DETECTED"
	CondInternalLeak = "INTERNAL_LEAK_DETECTED"
)

// ConditionMessage maps a condition to the human-readable alert title text.
var ConditionMessage = map[string]string{
	CondPHHigh:       "PH TOO HIGH",
	CondPHLow:        "PH TOO LOW",
	CondTempHigh:     "TEMPERATURE TOO HIGH",
	CondTempLow:      "TEMPERATURE TOO LOW",
	CondWaterLow:     "WATER LEVEL TOO LOW",
	CondBatteryLow:   "BATTERY LOW",
	CondLeak:         "LEAK DETECTED",
	CondInternalLeak: "INTERNAL LEAK DETECTED",
}

// Flag returns the value of the named condition flag.
func (e ErrorState) Flag(condition string) bool {
	switch condition {
	case CondPHHigh:
		return e.PHHigh
	case CondPHLow:
		return e.PHLow
	case CondTempHigh:
		return e.TempHigh
	case CondTempLow:
		return e.TempLow
	case CondWaterLow:
		return e.WaterLevelLow
	case CondBatteryLow:
		return e.BatteryLow
	case CondLeak:
		return e.LeakDetected
	case CondInternalLeak:
		return e.InternalLeakDetected
	default:
		return false
	}
}

package models

import (
	"strings"
	"testing"
)

func TestParseReadingSparseFields(t *testing.T) {
	r, err := ParseReading([]byte(`{"temperature": 22.5, "battery_voltage": 4.1}`))
	if err != nil {
		t.Fatalf("ParseReading failed: %v", err)
	}
	if r.Temperature == nil || *r.Temperature != 22.5 {
		t.Errorf("Temperature = %v, want 22.5", r.Temperature)
	}
	if r.BatteryVoltage == nil || *r.BatteryVoltage != 4.1 {
		t.Errorf("BatteryVoltage = %v, want 4.1", r.BatteryVoltage)
	}
	if r.PH != nil || r.Leak != nil || r.InternalLeak != nil || r.WaterLevel != nil {
		t.Errorf("absent sensors decoded as present: %+v", r)
	}
}

func TestParseReadingIgnoresUnknownFields(t *testing.T) {
	r, err := ParseReading([]byte(`{"pH": 6.8, "co2_ppm": 415, "firmware": "2.1"}`))
	if err != nil {
		t.Fatalf("ParseReading rejected forward-compatible fields: %v", err)
	}
	if r.PH == nil || *r.PH != 6.8 {
		t.Errorf("PH = %v, want 6.8", r.PH)
	}
}

func TestParseReadingMalformed(t *testing.T) {
	if _, err := ParseReading([]byte(`{"temperature": "hot"}`)); err == nil {
		t.Error("malformed reading accepted")
	}
	if _, err := ParseReading([]byte(`not json`)); err == nil {
		t.Error("non-JSON reading accepted")
	}
}

func TestReadingEmpty(t *testing.T) {
	if r := (Reading{}); !r.Empty() {
		t.Error("zero reading not Empty")
	}
	v := 1.0
	if r := (Reading{Leak: &v}); r.Empty() {
		t.Error("reading with leak reported Empty")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxPH != 10 || cfg.MinPH != 5 || cfg.MaxTemperature != 25 || cfg.MinTemperature != 15 {
		t.Errorf("default thresholds wrong: %+v", cfg)
	}
	if cfg.PeristalticPumpOn {
		t.Error("pump enabled by default")
	}
	if cfg.TargetPH != 7 || cfg.UpdateIntervalMinutes != 30 {
		t.Errorf("default setpoints wrong: %+v", cfg)
	}
}

func TestNewAlertShape(t *testing.T) {
	n := NewAlert("dev-7", CondTempHigh)
	if n.Title != "dev-7: TEMPERATURE TOO HIGH" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Priority != "high" || n.TTLSeconds != 86400 {
		t.Errorf("delivery params = %q/%d, want high/86400", n.Priority, n.TTLSeconds)
	}
	if n.DeviceID != "dev-7" || n.Condition != CondTempHigh {
		t.Errorf("addressing wrong: %+v", n)
	}
	if n.Body == "" || strings.Contains(n.Body, "%") {
		t.Errorf("body looks wrong: %q", n.Body)
	}
}

func TestConditionCatalogComplete(t *testing.T) {
	conds := []string{
		CondPHHigh, CondPHLow, CondTempHigh, CondTempLow,
		CondWaterLow, CondBatteryLow, CondLeak, CondInternalLeak,
	}
	for _, cond := range conds {
		if ConditionMessage[cond] == "" {
			t.Errorf("condition %s has no message", cond)
		}
	}
}

package engine

import (
	"strings"
	"testing"

	"telemetry-bridge/internal/models"
)

func f(v float64) *float64 { return &v }

func TestMissingSensorKeepsPriorFlags(t *testing.T) {
	prior := models.ErrorState{TempHigh: true, BatteryLow: true}
	// Reading carries only pH, everything else must carry over unchanged.
	next, notifs := Evaluate("dev-1", models.Reading{PH: f(7)}, models.DefaultConfig(), prior)

	if !next.TempHigh {
		t.Error("TempHigh cleared by a reading without temperature")
	}
	if !next.BatteryLow {
		t.Error("BatteryLow cleared by a reading without battery_voltage")
	}
	if next.PHHigh || next.PHLow {
		t.Error("in-range pH raised a flag")
	}
	if len(notifs) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifs))
	}
}

func TestTemperatureHighRaisesAndNotifiesOnce(t *testing.T) {
	cfg := models.DefaultConfig() // max 25, min 15

	next, notifs := Evaluate("dev-1", models.Reading{Temperature: f(30)}, cfg, models.ErrorState{})
	if !next.TempHigh {
		t.Fatal("TempHigh not set for temperature 30 > 25")
	}
	if len(notifs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs))
	}
	if !strings.Contains(notifs[0].Title, "TOO HIGH") {
		t.Errorf("title %q does not mention TOO HIGH", notifs[0].Title)
	}
	if !strings.HasPrefix(notifs[0].Title, "dev-1: ") {
		t.Errorf("title %q missing device prefix", notifs[0].Title)
	}

	// Same violation again while the flag is set: no re-notify.
	next, notifs = Evaluate("dev-1", models.Reading{Temperature: f(31)}, cfg, next)
	if !next.TempHigh {
		t.Error("TempHigh dropped while still violating")
	}
	if len(notifs) != 0 {
		t.Errorf("repeated violation re-notified: %d notifications", len(notifs))
	}

	// Back in range: flag clears silently.
	next, notifs = Evaluate("dev-1", models.Reading{Temperature: f(20)}, cfg, next)
	if next.TempHigh {
		t.Error("TempHigh not cleared for in-range temperature")
	}
	if len(notifs) != 0 {
		t.Errorf("clear emitted %d notifications", len(notifs))
	}
}

func TestStrictInequalityAtBoundary(t *testing.T) {
	cfg := models.DefaultConfig()

	next, notifs := Evaluate("dev-1", models.Reading{Temperature: f(25), PH: f(5)}, cfg, models.ErrorState{})
	if next.TempHigh {
		t.Error("temperature == max flagged high, comparison must be strict")
	}
	if next.PHLow {
		t.Error("pH == min flagged low, comparison must be strict")
	}
	if len(notifs) != 0 {
		t.Errorf("boundary reading emitted %d notifications", len(notifs))
	}
}

func TestBatteryUsesBuiltInConstant(t *testing.T) {
	next, notifs := Evaluate("dev-1", models.Reading{BatteryVoltage: f(3.5)}, models.DefaultConfig(), models.ErrorState{})
	if !next.BatteryLow {
		t.Fatal("BatteryLow not set for 3.5V < 4.0V")
	}
	if len(notifs) != 1 || notifs[0].Condition != models.CondBatteryLow {
		t.Fatalf("unexpected notifications: %+v", notifs)
	}

	next, notifs = Evaluate("dev-1", models.Reading{BatteryVoltage: f(4.5)}, models.DefaultConfig(), next)
	if next.BatteryLow {
		t.Error("BatteryLow not cleared for 4.5V")
	}
	if len(notifs) != 0 {
		t.Errorf("clear emitted %d notifications", len(notifs))
	}
}

func TestLeakDimensionsAreIndependent(t *testing.T) {
	next, notifs := Evaluate("dev-1", models.Reading{Leak: f(0.9)}, models.DefaultConfig(), models.ErrorState{})
	if !next.LeakDetected {
		t.Error("LeakDetected not set for 0.9 > 0.6")
	}
	if next.InternalLeakDetected {
		t.Error("InternalLeakDetected set without an internal_leak field")
	}
	if len(notifs) != 1 || notifs[0].Condition != models.CondLeak {
		t.Fatalf("unexpected notifications: %+v", notifs)
	}

	next, _ = Evaluate("dev-1", models.Reading{InternalLeak: f(0.7)}, models.DefaultConfig(), next)
	if !next.LeakDetected || !next.InternalLeakDetected {
		t.Errorf("expected both leak flags set, got %+v", next)
	}
}

func TestWaterLevelLow(t *testing.T) {
	next, notifs := Evaluate("dev-1", models.Reading{WaterLevel: f(0)}, models.DefaultConfig(), models.ErrorState{})
	if !next.WaterLevelLow {
		t.Fatal("WaterLevelLow not set for level 0")
	}
	if len(notifs) != 1 || notifs[0].Condition != models.CondWaterLow {
		t.Fatalf("unexpected notifications: %+v", notifs)
	}
}

func TestSimultaneousConditionsEachNotify(t *testing.T) {
	cfg := models.DefaultConfig() // max_ph 10
	reading := models.Reading{PH: f(11), BatteryVoltage: f(3.0)}

	next, notifs := Evaluate("dev-1", reading, cfg, models.ErrorState{})
	if !next.PHHigh || !next.BatteryLow {
		t.Fatalf("expected PHHigh and BatteryLow set, got %+v", next)
	}
	if len(notifs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifs))
	}
	seen := map[string]bool{}
	for _, n := range notifs {
		seen[n.Condition] = true
	}
	if !seen[models.CondPHHigh] || !seen[models.CondBatteryLow] {
		t.Errorf("wrong conditions notified: %+v", notifs)
	}
}

func TestChecksObservePriorSnapshot(t *testing.T) {
	// A reading that clears one flag and raises another in the same pass:
	// the raised flag must notify based on the prior snapshot, not on the
	// partially updated state.
	prior := models.ErrorState{TempHigh: true}
	next, notifs := Evaluate("dev-1", models.Reading{Temperature: f(10)}, models.DefaultConfig(), prior)
	if next.TempHigh {
		t.Error("TempHigh not cleared")
	}
	if !next.TempLow {
		t.Error("TempLow not set for 10 < 15")
	}
	if len(notifs) != 1 || notifs[0].Condition != models.CondTempLow {
		t.Fatalf("expected a single TEMP_LOW notification, got %+v", notifs)
	}
}

func TestEvaluateDoesNotMutatePrior(t *testing.T) {
	prior := models.ErrorState{}
	_, _ = Evaluate("dev-1", models.Reading{Temperature: f(30)}, models.DefaultConfig(), prior)
	if prior.TempHigh {
		t.Error("Evaluate mutated the caller's prior state")
	}
}

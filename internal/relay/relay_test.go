package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/models"
)

type fakePublisher struct {
	key   string
	value []byte
	fail  bool
}

func (p *fakePublisher) Publish(_ context.Context, key string, value []byte) error {
	if p.fail {
		return errors.New("publish failed")
	}
	p.key = key
	p.value = value
	return nil
}

func newTestRelay(t *testing.T, pub Publisher) *Relay {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error")
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	t.Cleanup(logger.Close)
	return New(pub, "greenhouse-prod", "europe-west1", "hydro-units", logger)
}

func TestDevicePath(t *testing.T) {
	r := newTestRelay(t, &fakePublisher{})
	got := r.DevicePath("dev-42")
	want := "projects/greenhouse-prod/locations/europe-west1/registries/hydro-units/devices/dev-42"
	if got != want {
		t.Errorf("DevicePath = %q, want %q", got, want)
	}
}

func TestPushConfigEncodesAndAddresses(t *testing.T) {
	pub := &fakePublisher{}
	r := newTestRelay(t, pub)

	cfg := models.DefaultConfig()
	cfg.TargetPH = 6.5
	if err := r.PushConfig(context.Background(), "dev-42", cfg); err != nil {
		t.Fatalf("PushConfig failed: %v", err)
	}

	if pub.key != r.DevicePath("dev-42") {
		t.Errorf("published to %q, want the device path", pub.key)
	}

	decoded, err := base64.StdEncoding.DecodeString(string(pub.value))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	var got models.DeviceConfig
	if err := json.Unmarshal(decoded, &got); err != nil {
		t.Fatalf("payload is not a config document: %v", err)
	}
	if got != cfg {
		t.Errorf("round-tripped config = %+v, want %+v", got, cfg)
	}
}

func TestPushConfigSurfacesPublishFailure(t *testing.T) {
	r := newTestRelay(t, &fakePublisher{fail: true})
	if err := r.PushConfig(context.Background(), "dev-42", models.DefaultConfig()); err == nil {
		t.Fatal("PushConfig swallowed the publish failure")
	}
}

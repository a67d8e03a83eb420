package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telemetry-bridge/internal/models"
)

func TestPushSenderWireFormat(t *testing.T) {
	var got pushMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewPushSender(srv.URL, "secret-key", 100)
	notif := models.NewAlert("dev-9", models.CondLeak)
	if err := sender.Send(context.Background(), notif); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if auth != "key=secret-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.To != "/topics/dev-9" {
		t.Errorf("topic = %q, want /topics/dev-9", got.To)
	}
	if got.Priority != "high" {
		t.Errorf("priority = %q, want high", got.Priority)
	}
	if got.TimeToLive != 86400 {
		t.Errorf("time_to_live = %d, want 86400", got.TimeToLive)
	}
	if got.Notification.Title != notif.Title || got.Notification.Body != notif.Body {
		t.Errorf("notification content mismatch: %+v", got.Notification)
	}
}

func TestPushSenderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewPushSender(srv.URL, "wrong-key", 100)
	if err := sender.Send(context.Background(), models.NewAlert("dev-9", models.CondLeak)); err == nil {
		t.Fatal("Send accepted a 401 response")
	}
}

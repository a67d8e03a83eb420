package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"telemetry-bridge/internal/models"
)

// pushMessage is the wire form of a topic push. Mobile clients subscribe to
// the topic matching their device id.
type pushMessage struct {
	To           string           `json:"to"`
	Priority     string           `json:"priority"`
	TimeToLive   int              `json:"time_to_live"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushSender delivers alert notifications to the mobile push channel.
type PushSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewPushSender(endpoint, serverKey string, ratePerSecond int) *PushSender {
	if ratePerSecond <= 0 {
		ratePerSecond = 20
	}
	return &PushSender{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
	}
}

// Send pushes one notification to the topic named by its device id.
// Delivery is best effort; callers log and continue on error.
func (p *PushSender) Send(ctx context.Context, notif models.Notification) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push rate limit exceeded: %w", err)
	}

	msg := pushMessage{
		To:         "/topics/" + notif.DeviceID,
		Priority:   notif.Priority,
		TimeToLive: notif.TTLSeconds,
		Notification: pushNotification{
			Title: notif.Title,
			Body:  notif.Body,
		},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed for device %s: %w", notif.DeviceID, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push channel returned %d for device %s", resp.StatusCode, notif.DeviceID)
	}
	return nil
}

package models

import "fmt"

// Notification delivery parameters. Alerts older than the TTL are useless,
// the transport may drop them silently.
const (
	NotificationPriority   = "high"
	NotificationTTLSeconds = 86400
)

const alertBody = "One of your devices reported a value outside its safe range. Please check on it as soon as possible."

// Notification is an ephemeral alert message for one condition transition on
// one device. It is emitted, never stored.
type Notification struct {
	DeviceID   string `json:"device_id"`
	Condition  string `json:"condition"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Priority   string `json:"priority"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// NewAlert builds the notification emitted when condition transitions to
// active for the given device. The topic consumers subscribe to is the
// device id itself.
func NewAlert(deviceID, condition string) Notification {
	return Notification{
		DeviceID:   deviceID,
		Condition:  condition,
		Title:      fmt.Sprintf("%s: %s", deviceID, ConditionMessage[condition]),
		Body:       alertBody,
		Priority:   NotificationPriority,
		TTLSeconds: NotificationTTLSeconds,
	}
}

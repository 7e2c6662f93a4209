package alarm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// MQTTClient is the subset of the broker client used for device alerts.
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

// DeviceAlert is the payload sent to a patient's wearable.
type DeviceAlert struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Action      string    `json:"action"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// DevicePublisher sends physical alerts to TopicPrefix+userID.
type DevicePublisher struct {
	client      MQTTClient
	topicPrefix string
}

func NewDevicePublisher(client MQTTClient, topicPrefix string) *DevicePublisher {
	return &DevicePublisher{client: client, topicPrefix: topicPrefix}
}

func (p *DevicePublisher) Topic(userID string) string {
	return p.topicPrefix + userID
}

// PublishAlert sends event to the user's device topic. Not retained: a
// device that reconnects later must not buzz for a stale alert.
func (p *DevicePublisher) PublishAlert(event *domain.AlertEvent) error {
	payload, err := json.Marshal(DeviceAlert{
		EventID:     event.EventID,
		UserID:      event.UserID,
		Severity:    event.Severity,
		Message:     event.Message,
		Action:      "vibrate",
		TriggeredAt: event.TriggeredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal device alert: %w", err)
	}
	if err := p.client.Publish(p.Topic(event.UserID), p.client.QoS(), false, payload); err != nil {
		return fmt.Errorf("publish device alert: %w", err)
	}
	return nil
}

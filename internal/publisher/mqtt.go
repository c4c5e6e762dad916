// Package publisher streams persisted telemetry records to an MQTT broker
// for downstream consumers. The stream is best-effort: a publish failure is
// logged and never affects collection accounting.
package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

const connectTimeout = 10 * time.Second

// MQTTPublisher publishes each record to fleet/telemetry/<vin>/<report_type>.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker. The caller decides whether a
// broker is configured at all; this constructor expects a non-empty URL.
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", err)
	}
	log.WithField("broker", brokerURL).Info("MQTT publisher connected")
	return &MQTTPublisher{client: client}, nil
}

// Publish sends one record, fire-and-forget.
func (p *MQTTPublisher) Publish(record *models.TelemetryRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.WithError(err).WithField("vin", record.VIN).Warn("Failed to marshal record for MQTT")
		return
	}
	topic := fmt.Sprintf("fleet/telemetry/%s/%s", record.VIN, record.Metadata.ReportType)
	p.client.Publish(topic, 0, false, payload)
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

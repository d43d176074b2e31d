package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/finitude/finitude/internal/infrastructure/mqtt"
)

// StatePublisher receives every retained register transition. Used to
// mirror bus state onto an external channel; publishing failures must not
// disturb frame processing, so implementations report errors and the
// caller logs them.
type StatePublisher interface {
	PublishState(register string, values map[string]any, remainder string) error
}

// stateMessage is the JSON document published per transition.
type stateMessage struct {
	Device    string         `json:"device"`
	Register  string         `json:"register"`
	Values    map[string]any `json:"values,omitempty"`
	Remainder string         `json:"remainder,omitempty"`
	Time      time.Time      `json:"time"`
}

// MQTTPublisher publishes register transitions as retained JSON messages,
// one topic per (device, register) pair, so subscribers always see the
// latest state of every register without replaying the bus.
type MQTTPublisher struct {
	client *mqtt.Client
	device string
	topics mqtt.Topics
	now    func() time.Time
}

// NewMQTTPublisher creates a publisher for one device's transitions.
func NewMQTTPublisher(client *mqtt.Client, device string) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		device: device,
		now:    time.Now,
	}
}

// PublishState publishes one transition to finitude/state/<device>/<register>.
func (p *MQTTPublisher) PublishState(register string, values map[string]any, remainder string) error {
	payload, err := json.Marshal(stateMessage{
		Device:    p.device,
		Register:  register,
		Values:    values,
		Remainder: remainder,
		Time:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode state message: %w", err)
	}

	topic := p.topics.DeviceState(p.device, register)
	if err := p.client.PublishRetained(topic, payload); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

package mqtt

import "fmt"

// Topic prefixes for the finitude topic hierarchy.
const (
	// TopicPrefix is the base for all finitude topics.
	TopicPrefix = "finitude"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "finitude/system"
)

// Topics provides builders for finitude MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// DeviceState returns the topic for register state transitions of a device.
//
// Example: finitude/state/hp1/TStatZoneParams
func (Topics) DeviceState(device, register string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, device, register)
}

// SystemStatus returns the topic for finitude's own online/offline status.
//
// Example: finitude/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

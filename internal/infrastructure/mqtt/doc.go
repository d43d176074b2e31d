// Package mqtt provides the MQTT client used to export register state
// transitions from finitude.
//
// It wraps paho.mqtt.golang with:
//   - Connection management and automatic reconnection
//   - Last Will and Testament for offline detection
//   - Publish with timeout and payload validation
//   - Topic builders for the finitude topic hierarchy
//
// finitude only ever publishes (state transitions and its own online
// status); there is no subscribe surface.
//
// Topic hierarchy:
//
//	finitude/state/{device}/{register}   retained state transition (JSON)
//	finitude/system/status               retained online/offline status
package mqtt

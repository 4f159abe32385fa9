package mqtt

import (
	"fmt"
	"strings"
)

// Payloads published and accepted by the bridge.
const (
	PayloadOn      = "ON"
	PayloadOff     = "OFF"
	PayloadUnknown = "unknown"
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Topics builds the bridge's topic names under a common prefix:
//
//	<prefix>/<unique_id>/state
//	<prefix>/<unique_id>/availability
//	<prefix>/<unique_id>/set
//	<prefix>/bridge/status
type Topics struct {
	Prefix string
}

// State returns the retained state topic of a channel.
func (t Topics) State(id string) string {
	return fmt.Sprintf("%s/%s/state", t.Prefix, id)
}

// Availability returns the retained availability topic of a channel.
func (t Topics) Availability(id string) string {
	return fmt.Sprintf("%s/%s/availability", t.Prefix, id)
}

// Set returns the command topic of a channel.
func (t Topics) Set(id string) string {
	return fmt.Sprintf("%s/%s/set", t.Prefix, id)
}

// SetWildcard matches the command topic of every channel.
func (t Topics) SetWildcard() string {
	return t.Prefix + "/+/set"
}

// BridgeStatus is where the bridge announces itself; the broker publishes the
// last will there when the daemon drops off.
func (t Topics) BridgeStatus() string {
	return t.Prefix + "/bridge/status"
}

// ParseSet extracts the channel id from a command topic.
func (t Topics) ParseSet(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/set")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// StatePayload renders a tri-state power value.
func StatePayload(on *bool) string {
	switch {
	case on == nil:
		return PayloadUnknown
	case *on:
		return PayloadOn
	default:
		return PayloadOff
	}
}

// AvailabilityPayload renders channel availability.
func AvailabilityPayload(available bool) string {
	if available {
		return PayloadOnline
	}
	return PayloadOffline
}

// ParseCommand reads an ON/OFF command, ignoring case and surrounding space.
func ParseCommand(payload []byte) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case PayloadOn:
		return true, true
	case PayloadOff:
		return false, true
	default:
		return false, false
	}
}

// Package events provides a lightweight in-process event bus for broadcasting
// channel and device changes to subscribers (WebSocket hub, MQTT bridge).
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of event.
type EventType string

const (
	// Channel events
	ChannelStateChanged        EventType = "channel.state_changed"
	ChannelAvailabilityChanged EventType = "channel.availability_changed"
	ChannelRenamed             EventType = "channel.renamed"

	// Device events
	DeviceAdded      EventType = "device.added"
	DeviceDiscovered EventType = "device.discovered"
)

// Event is a single event emitted by a producer.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// ChannelData is the payload of channel.* events.
type ChannelData struct {
	UniqueID  string `json:"unique_id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Index     int    `json:"index"`
	On        *bool  `json:"on"`
	Available bool   `json:"available"`
}

// DeviceData is the payload of device.* events.
type DeviceData struct {
	Host     string   `json:"host"`
	Model    string   `json:"model"`
	Name     string   `json:"name,omitempty"`
	DeviceID string   `json:"device_id,omitempty"`
	Channels []string `json:"channels,omitempty"`
}

// NewEvent creates an Event, marshaling data to JSON.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// SubscriberFunc is a callback invoked for each event.
// Implementations must not block; slow subscribers should buffer internally.
type SubscriberFunc func(Event)

// Bus is a simple synchronous fan-out event bus.
// Publishing blocks until all subscribers have been called, so subscribers
// should be fast (e.g., write to a channel).
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]SubscriberFunc
	nextID      int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]SubscriberFunc),
	}
}

// Subscribe registers a callback and returns an unsubscribe function.
func (b *Bus) Subscribe(fn SubscriberFunc) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// Publish sends an event to all current subscribers. A nil bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]SubscriberFunc, 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

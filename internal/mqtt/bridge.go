// Package mqtt mirrors channel state to an MQTT broker and accepts on/off
// commands from it.
package mqtt

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/entity"
	"github.com/ptxhome/ptxswitchd/internal/events"
)

const (
	queueSize      = 256
	commandTimeout = 10 * time.Second
)

// Controller is the part of the platform manager the bridge drives.
type Controller interface {
	Snapshots() []entity.Snapshot
	SetPower(ctx context.Context, id string, on bool) (entity.Snapshot, error)
}

// Bridge publishes retained state and availability for every channel and
// turns channels on or off from <prefix>/<id>/set.
type Bridge struct {
	conn   Conn
	topics Topics
	qos    byte
	ctrl   Controller
	logger *slog.Logger
	queue  chan events.Event
	unsub  func()
}

// NewBridge creates a bridge and subscribes it to the event bus.
func NewBridge(conn Conn, cfg config.MQTTConfig, ctrl Controller, bus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		conn:   conn,
		topics: Topics{Prefix: cfg.TopicPrefix},
		qos:    cfg.QoS,
		ctrl:   ctrl,
		logger: logger,
		queue:  make(chan events.Event, queueSize),
		unsub:  func() {},
	}
	if bus != nil {
		b.unsub = bus.Subscribe(func(e events.Event) {
			switch e.Type {
			case events.ChannelStateChanged, events.ChannelAvailabilityChanged, events.DeviceAdded:
			default:
				return
			}
			select {
			case b.queue <- e:
			default:
				logger.Warn("mqtt: event queue full, dropping event", "type", e.Type)
			}
		})
	}
	return b
}

// Run announces the bridge, then publishes queued events until ctx is
// cancelled. On return the bridge has published "offline" and closed the
// connection.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.unsub()
	defer b.conn.Close()

	b.conn.OnConnect(func() {
		if err := b.announce(); err != nil {
			b.logger.Warn("mqtt: re-announce failed", "error", err)
		}
	})
	if err := b.announce(); err != nil {
		return err
	}
	b.logger.Info("mqtt: bridge started", "prefix", b.topics.Prefix)

	for {
		select {
		case <-ctx.Done():
			if err := b.conn.Publish(b.topics.BridgeStatus(), b.qos, true, PayloadOffline); err != nil {
				b.logger.Warn("mqtt: failed to publish offline status", "error", err)
			}
			b.logger.Info("mqtt: bridge stopped")
			return nil
		case e := <-b.queue:
			b.handleEvent(e)
		}
	}
}

// announce marks the bridge online, (re)subscribes to commands and publishes
// the current state of every channel.
func (b *Bridge) announce() error {
	if err := b.conn.Publish(b.topics.BridgeStatus(), b.qos, true, PayloadOnline); err != nil {
		return err
	}
	if err := b.conn.Subscribe(b.topics.SetWildcard(), b.qos, b.handleSet); err != nil {
		return err
	}
	for _, s := range b.ctrl.Snapshots() {
		b.publishSnapshot(s)
	}
	return nil
}

func (b *Bridge) handleEvent(e events.Event) {
	switch e.Type {
	case events.ChannelStateChanged, events.ChannelAvailabilityChanged:
		var data events.ChannelData
		if err := e.Decode(&data); err != nil {
			b.logger.Warn("mqtt: malformed event", "type", e.Type, "error", err)
			return
		}
		if e.Type == events.ChannelStateChanged {
			b.publish(b.topics.State(data.UniqueID), StatePayload(data.On))
		} else {
			b.publish(b.topics.Availability(data.UniqueID), AvailabilityPayload(data.Available))
		}
	case events.DeviceAdded:
		var data events.DeviceData
		if err := e.Decode(&data); err != nil {
			b.logger.Warn("mqtt: malformed event", "type", e.Type, "error", err)
			return
		}
		for _, s := range b.ctrl.Snapshots() {
			if slices.Contains(data.Channels, s.UniqueID) {
				b.publishSnapshot(s)
			}
		}
	}
}

func (b *Bridge) publishSnapshot(s entity.Snapshot) {
	var on *bool
	if v, ok := s.State.Bool(); ok {
		on = &v
	}
	b.publish(b.topics.State(s.UniqueID), StatePayload(on))
	b.publish(b.topics.Availability(s.UniqueID), AvailabilityPayload(s.Available))
}

func (b *Bridge) publish(topic, payload string) {
	if err := b.conn.Publish(topic, b.qos, true, payload); err != nil {
		b.logger.Warn("mqtt: publish failed", "topic", topic, "error", err)
		return
	}
	b.logger.Debug("mqtt: published", "topic", topic, "payload", payload)
}

func (b *Bridge) handleSet(topic string, payload []byte) {
	id, ok := b.topics.ParseSet(topic)
	if !ok {
		b.logger.Debug("mqtt: ignoring topic", "topic", topic)
		return
	}
	on, ok := ParseCommand(payload)
	if !ok {
		b.logger.Warn("mqtt: invalid command payload", "topic", topic, "payload", string(payload))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := b.ctrl.SetPower(ctx, id, on); err != nil {
		b.logger.Warn("mqtt: command failed", "switch", id, "on", on, "error", err)
		return
	}
	b.logger.Debug("mqtt: command applied", "switch", id, "on", on)
}

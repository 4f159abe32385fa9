// Package entity adapts one physical channel of a PTX switch to the host:
// on/off commands, a pollable refresh, tri-state and availability.
package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ptxhome/ptxswitchd/internal/errors"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// Options configures a Channel.
type Options struct {
	// Switch is the shared device handle. It must outlive the channel.
	Switch *ptx.Switch
	// Index is the 1-based channel number.
	Index int
	// Name is the configured device name; the channel name gets "_<index>" appended.
	Name string
	// Host is the configured device address.
	Host string
	// HardwareAddress is the MAC reported by the device, if known.
	HardwareAddress string
	// Bus receives channel events. Nil disables publishing.
	Bus *events.Bus
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Channel is the adapter for one channel. Each channel owns its state; the
// only thing shared with sibling channels is the Switch.
type Channel struct {
	// op serializes device operations; mu guards the mutable state.
	op sync.Mutex
	mu sync.Mutex

	sw       *ptx.Switch
	index    int
	name     string
	host     string
	uniqueID string
	bus      *events.Bus
	logger   *slog.Logger

	state      ptx.State
	available  bool
	skipUpdate bool
	label      string
	lastUpdate time.Time
	pending    []events.EventType
}

// Snapshot is a point-in-time view of a channel.
type Snapshot struct {
	UniqueID   string    `json:"unique_id"`
	Name       string    `json:"name"`
	Label      string    `json:"label,omitempty"`
	Model      ptx.Model `json:"model"`
	Host       string    `json:"host"`
	Index      int       `json:"index"`
	State      ptx.State `json:"on"`
	Available  bool      `json:"available"`
	LastUpdate time.Time `json:"last_update"`
}

// New creates a channel adapter. It starts unavailable with unknown state
// until the first refresh.
func New(opts Options) (*Channel, error) {
	if opts.Switch == nil {
		return nil, errors.InvalidInputf("channel: nil switch")
	}
	if !opts.Switch.Descriptor().HasChannel(opts.Index) {
		return nil, errors.UnsupportedChannelf("channel %d on %s", opts.Index, opts.Switch.Model())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hw := opts.HardwareAddress
	if hw == "" {
		hw = opts.Host
	}
	c := &Channel{
		sw:       opts.Switch,
		index:    opts.Index,
		name:     opts.Name,
		host:     opts.Host,
		uniqueID: UniqueID(opts.Switch.Model(), hw, opts.Index),
		bus:      opts.Bus,
		state:    ptx.StateUnknown,
	}
	c.logger = logger.With("channel", c.uniqueID)
	return c, nil
}

// UniqueID builds the stable identity of a channel.
func UniqueID(model ptx.Model, hardwareAddress string, index int) string {
	return fmt.Sprintf("%s-%s-%d", model, strings.ToLower(hardwareAddress), index)
}

// UniqueID returns the stable identity of the channel.
func (c *Channel) UniqueID() string {
	return c.uniqueID
}

// Name returns the display name "<device name>_<index>".
func (c *Channel) Name() string {
	return fmt.Sprintf("%s_%d", c.name, c.index)
}

// Index returns the 1-based channel number.
func (c *Channel) Index() int {
	return c.index
}

// Host returns the configured device address.
func (c *Channel) Host() string {
	return c.host
}

// IsOn returns the last known tri-state.
func (c *Channel) IsOn() ptx.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Available reports whether the last device interaction succeeded.
func (c *Channel) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// Snapshot returns the current view of the channel.
func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Channel) snapshotLocked() Snapshot {
	return Snapshot{
		UniqueID:   c.uniqueID,
		Name:       c.Name(),
		Label:      c.label,
		Model:      c.sw.Model(),
		Host:       c.host,
		Index:      c.index,
		State:      c.state,
		Available:  c.available,
		LastUpdate: c.lastUpdate,
	}
}

// TurnOn switches the channel on. It reports whether the device confirmed.
func (c *Channel) TurnOn(ctx context.Context) bool {
	return c.SetPower(ctx, true) == nil
}

// TurnOff switches the channel off. It reports whether the device confirmed.
func (c *Channel) TurnOff(ctx context.Context) bool {
	return c.SetPower(ctx, false) == nil
}

// SetPower switches the channel. A transport failure marks the channel
// unavailable and wraps ErrDeviceUnavailable; a reply without acknowledgement
// wraps ErrNotConfirmed and leaves the state alone.
func (c *Channel) SetPower(ctx context.Context, on bool) error {
	c.op.Lock()
	defer c.op.Unlock()

	ok, err := c.sw.SetChannel(ctx, c.index, on)
	if err != nil {
		c.logger.Error("channel: command failed", "on", on, "error", err)
		if errors.IsDeviceUnavailable(err) {
			c.update(func() { c.setAvailableLocked(false) })
		}
		return err
	}
	if !ok {
		c.logger.Warn("channel: command not confirmed", "on", on)
		return errors.NotConfirmedf("channel %s: turn %s", c.uniqueID, ptx.StateOf(on))
	}

	c.update(func() { c.confirmLocked(on) })
	return nil
}

// ApplyConfirmed records a state the device already acknowledged through a
// device-wide command, exactly as if SetPower had succeeded.
func (c *Channel) ApplyConfirmed(on bool) {
	c.op.Lock()
	defer c.op.Unlock()
	c.update(func() { c.confirmLocked(on) })
}

// MarkUnavailable flags the channel unavailable after a device-wide failure.
// The last known state is kept.
func (c *Channel) MarkUnavailable() {
	c.op.Lock()
	defer c.op.Unlock()
	c.update(func() { c.setAvailableLocked(false) })
}

func (c *Channel) confirmLocked(on bool) {
	// The device reports the old state for a moment after a toggle, so
	// the next poll is skipped.
	c.skipUpdate = true
	c.lastUpdate = time.Now()
	c.setStateLocked(ptx.StateOf(on))
}

// Refresh polls the device for this channel's state. Right after a confirmed
// command it does nothing once. A transport failure marks the channel
// unavailable, keeps the last known state and is returned.
func (c *Channel) Refresh(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	c.mu.Lock()
	skip := c.skipUpdate
	c.skipUpdate = false
	c.mu.Unlock()
	if skip {
		c.logger.Debug("channel: skipping refresh after command")
		return nil
	}

	status, err := c.sw.Status(ctx)
	if err != nil {
		c.logger.Error("channel: failed to fetch state", "error", err)
		c.update(func() { c.setAvailableLocked(false) })
		return err
	}

	c.update(func() {
		c.lastUpdate = time.Now()
		if label, ok := status.SwitchName(c.index); ok {
			c.label = label
		}
		c.setAvailableLocked(true)
		c.setStateLocked(status.IsOn(c.index))
	})
	return nil
}

// Rename sets the name stored on the device for this channel. It reports
// whether the device confirmed.
func (c *Channel) Rename(ctx context.Context, name string) bool {
	return c.SetName(ctx, name) == nil
}

// SetName is Rename with the failure cause.
func (c *Channel) SetName(ctx context.Context, name string) error {
	c.op.Lock()
	defer c.op.Unlock()

	ok, err := c.sw.RenameChannel(ctx, c.index, name)
	if err != nil {
		c.logger.Error("channel: rename failed", "name", name, "error", err)
		if errors.IsDeviceUnavailable(err) {
			c.update(func() { c.setAvailableLocked(false) })
		}
		return err
	}
	if !ok {
		c.logger.Warn("channel: rename not confirmed", "name", name)
		return errors.NotConfirmedf("channel %s: rename to %q", c.uniqueID, name)
	}

	c.update(func() {
		c.label = name
		c.pending = append(c.pending, events.ChannelRenamed)
	})
	return nil
}

// update applies fn under the state lock and publishes the events it queued
// once the lock is released.
func (c *Channel) update(fn func()) {
	c.mu.Lock()
	fn()
	pending := c.pending
	c.pending = nil
	var data events.ChannelData
	if len(pending) > 0 {
		data = c.eventDataLocked()
	}
	c.mu.Unlock()

	if c.bus == nil {
		return
	}
	for _, t := range pending {
		c.bus.Publish(events.NewEvent(t, data))
	}
}

func (c *Channel) setStateLocked(s ptx.State) {
	if c.state == s {
		return
	}
	c.logger.Debug("channel: state changed", "from", c.state, "to", s)
	c.state = s
	c.pending = append(c.pending, events.ChannelStateChanged)
}

func (c *Channel) setAvailableLocked(available bool) {
	if c.available == available {
		return
	}
	c.logger.Info("channel: availability changed", "available", available)
	c.available = available
	c.pending = append(c.pending, events.ChannelAvailabilityChanged)
}

func (c *Channel) eventDataLocked() events.ChannelData {
	data := events.ChannelData{
		UniqueID:  c.uniqueID,
		Name:      c.Name(),
		Host:      c.host,
		Index:     c.index,
		Available: c.available,
	}
	if on, ok := c.state.Bool(); ok {
		data.On = &on
	}
	return data
}

// Package platform turns configured devices into channel adapters and keeps
// them refreshed.
package platform

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/entity"
	"github.com/ptxhome/ptxswitchd/internal/errors"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// Device is a configured switch and the channels built for it.
type Device struct {
	Host      string          `json:"host"`
	Name      string          `json:"name"`
	Model     ptx.Model       `json:"model"`
	Transport string          `json:"transport"`
	Info      *ptx.DeviceInfo `json:"info,omitempty"`
	Channels  []string        `json:"channels"`
}

type device struct {
	summary  Device
	sw       *ptx.Switch
	channels []*entity.Channel
}

// Manager owns every device handle and channel adapter.
type Manager struct {
	mu        sync.RWMutex
	devices   map[string]*device
	channels  map[string]*entity.Channel
	announced map[string]bool
	// pending holds configured devices that were not ready at setup.
	pending    map[string]config.DeviceConfig
	transports *transportRegistry
	bus        *events.Bus
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewManager creates a manager. The bus may be nil.
func NewManager(logger *slog.Logger, bus *events.Bus) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		devices:    make(map[string]*device),
		channels:   make(map[string]*entity.Channel),
		announced:  make(map[string]bool),
		pending:    make(map[string]config.DeviceConfig),
		transports: newTransportRegistry(),
		bus:        bus,
		logger:     logger,
	}
}

// RegisterTransport makes a transport available to devices by name.
func (m *Manager) RegisterTransport(name string, d Dialer) {
	m.transports.register(name, d)
}

// Transports lists the registered transport names.
func (m *Manager) Transports() []string {
	return m.transports.names()
}

// SetupDevices sets up every configured device. Failing devices are logged
// and skipped; the first error is returned after all devices were tried.
// Devices that are not ready are kept for RetryPending.
func (m *Manager) SetupDevices(ctx context.Context, cfgs []config.DeviceConfig) error {
	var first error
	for _, cfg := range cfgs {
		_, err := m.SetupDevice(ctx, cfg)
		if err == nil {
			continue
		}
		if errors.IsNotReady(err) {
			m.mu.Lock()
			m.pending[cfg.Host] = cfg
			m.mu.Unlock()
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// RetryPending tries again to set up devices that were not ready. A device
// leaves the pending set once it is set up or fails for any other reason.
// It returns the number of devices still pending.
func (m *Manager) RetryPending(ctx context.Context) int {
	m.mu.RLock()
	cfgs := make([]config.DeviceConfig, 0, len(m.pending))
	for _, cfg := range m.pending {
		cfgs = append(cfgs, cfg)
	}
	m.mu.RUnlock()
	sort.Slice(cfgs, func(i, j int) bool { return cfgs[i].Host < cfgs[j].Host })

	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			break
		}
		_, err := m.SetupDevice(ctx, cfg)
		if errors.IsNotReady(err) {
			continue
		}
		if err != nil {
			m.logger.Error("platform: giving up on device", "host", cfg.Host, "error", err)
		}
		m.mu.Lock()
		delete(m.pending, cfg.Host)
		m.mu.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

// SetupDevice connects to one device, detects its model when not configured,
// and creates one channel adapter per physical channel. Each channel is
// refreshed once before it is registered.
func (m *Manager) SetupDevice(ctx context.Context, cfg config.DeviceConfig) ([]*entity.Channel, error) {
	transport := cfg.Transport
	if transport == "" {
		transport = config.DefaultTransport
	}
	logger := m.logger.With("host", cfg.Host)
	logger.Info("platform: initializing device", "token", config.MaskToken(cfg.Token), "transport", transport)

	m.mu.RLock()
	_, exists := m.devices[cfg.Host]
	m.mu.RUnlock()
	if exists {
		return nil, errors.InvalidInputf("device %s already set up", cfg.Host)
	}

	dial, ok := m.transports.lookup(transport)
	if !ok {
		return nil, errors.LogErrorAndReturn(logger,
			errors.InvalidInputf("unknown transport %q", transport),
			"platform: cannot set up device")
	}

	sender, err := dial(ctx, cfg)
	if err != nil {
		return nil, errors.LogErrorAndReturn(logger,
			errors.NotReadyf("dial %s: %w", cfg.Host, err),
			"platform: cannot connect")
	}

	model := ptx.Model(cfg.Model)
	var info *ptx.DeviceInfo
	if model == "" {
		detected, err := ptx.QueryInfo(ctx, sender)
		if err != nil {
			return nil, errors.LogErrorAndReturn(logger,
				errors.NotReadyf("identify %s: %w", cfg.Host, err),
				"platform: model detection failed")
		}
		info = &detected
		model = detected.Model
		logger.Info("platform: detected model",
			"model", detected.Model,
			"firmware", detected.FirmwareVersion,
			"hardware", detected.HardwareVersion)
	}

	sw, err := ptx.NewSwitch(model, sender, logger)
	if err != nil {
		return nil, errors.LogErrorAndReturn(logger, err, "platform: unsupported device", "model", model)
	}

	hw := ""
	if info != nil {
		hw = info.MACAddress
	}

	d := sw.Descriptor()
	channels := make([]*entity.Channel, 0, d.Channels)
	for i := 1; i <= d.Channels; i++ {
		ch, err := entity.New(entity.Options{
			Switch:          sw,
			Index:           i,
			Name:            deviceName(cfg),
			Host:            cfg.Host,
			HardwareAddress: hw,
			Bus:             m.bus,
			Logger:          m.logger,
		})
		if err != nil {
			return nil, errors.LogErrorAndReturn(logger, err, "platform: cannot create channel", "index", i)
		}
		// A failed first refresh leaves the channel unavailable; it is still added.
		_ = ch.Refresh(ctx)
		channels = append(channels, ch)
	}

	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.UniqueID())
	}
	summary := Device{
		Host:      cfg.Host,
		Name:      deviceName(cfg),
		Model:     model,
		Transport: transport,
		Info:      info,
		Channels:  ids,
	}

	m.mu.Lock()
	if _, exists := m.devices[cfg.Host]; exists {
		m.mu.Unlock()
		return nil, errors.InvalidInputf("device %s already set up", cfg.Host)
	}
	m.devices[cfg.Host] = &device{summary: summary, sw: sw, channels: channels}
	for _, ch := range channels {
		m.channels[ch.UniqueID()] = ch
	}
	m.mu.Unlock()

	logger.Info("platform: device added", "model", model, "channels", len(channels))
	m.bus.Publish(events.NewEvent(events.DeviceAdded, events.DeviceData{
		Host:     cfg.Host,
		Model:    string(model),
		Name:     summary.Name,
		Channels: ids,
	}))
	return channels, nil
}

func deviceName(cfg config.DeviceConfig) string {
	if strings.TrimSpace(cfg.Name) != "" {
		return cfg.Name
	}
	return cfg.Host
}

// Channels returns all channels ordered by unique ID.
func (m *Manager) Channels() []*entity.Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entity.Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID() < out[j].UniqueID() })
	return out
}

// Channel returns a channel by unique ID.
func (m *Manager) Channel(id string) (*entity.Channel, error) {
	m.mu.RLock()
	ch, ok := m.channels[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("switch %s not found", id)
	}
	return ch, nil
}

// Snapshots returns the state of every channel ordered by unique ID.
func (m *Manager) Snapshots() []entity.Snapshot {
	channels := m.Channels()
	out := make([]entity.Snapshot, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.Snapshot())
	}
	return out
}

// Snapshot returns the state of one channel.
func (m *Manager) Snapshot(id string) (entity.Snapshot, error) {
	ch, err := m.Channel(id)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return ch.Snapshot(), nil
}

// Devices returns the configured devices ordered by host.
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

// SetPower turns a channel on or off.
func (m *Manager) SetPower(ctx context.Context, id string, on bool) (entity.Snapshot, error) {
	ch, err := m.Channel(id)
	if err != nil {
		return entity.Snapshot{}, err
	}
	if err := ch.SetPower(ctx, on); err != nil {
		return ch.Snapshot(), errors.WrapErrorf(err, "switch %s: turn %s", id, ptx.StateOf(on))
	}
	return ch.Snapshot(), nil
}

// SetDevicePower turns every channel of a device on or off with one command.
// On confirmation each channel takes the new state as if it had been switched
// individually; a transport failure marks them all unavailable.
func (m *Manager) SetDevicePower(ctx context.Context, host string, on bool) ([]entity.Snapshot, error) {
	m.mu.RLock()
	d, ok := m.devices[host]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("device %s not found", host)
	}

	confirmed, err := d.sw.SetAllChannels(ctx, on)
	switch {
	case err != nil:
		m.logger.Error("platform: device command failed", "host", host, "on", on, "error", err)
		if errors.IsDeviceUnavailable(err) {
			for _, ch := range d.channels {
				ch.MarkUnavailable()
			}
		}
	case !confirmed:
		m.logger.Warn("platform: device command not confirmed", "host", host, "on", on)
		err = errors.NotConfirmedf("device %s: turn %s", host, ptx.StateOf(on))
	default:
		for _, ch := range d.channels {
			ch.ApplyConfirmed(on)
		}
	}

	out := make([]entity.Snapshot, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch.Snapshot())
	}
	return out, err
}

// Rename stores a new name for a channel on the device.
func (m *Manager) Rename(ctx context.Context, id, name string) (entity.Snapshot, error) {
	ch, err := m.Channel(id)
	if err != nil {
		return entity.Snapshot{}, err
	}
	if strings.TrimSpace(name) == "" {
		return ch.Snapshot(), errors.InvalidInputf("name must not be empty")
	}
	if err := ch.SetName(ctx, name); err != nil {
		return ch.Snapshot(), errors.WrapErrorf(err, "switch %s: rename", id)
	}
	return ch.Snapshot(), nil
}

// Refresh polls one channel.
func (m *Manager) Refresh(ctx context.Context, id string) (entity.Snapshot, error) {
	ch, err := m.Channel(id)
	if err != nil {
		return entity.Snapshot{}, err
	}
	if err := ch.Refresh(ctx); err != nil {
		return ch.Snapshot(), err
	}
	return ch.Snapshot(), nil
}

// RefreshAll polls every channel in turn. Channels of one device share a
// connection, so they are never refreshed in parallel.
func (m *Manager) RefreshAll(ctx context.Context) {
	for _, ch := range m.Channels() {
		if ctx.Err() != nil {
			return
		}
		_ = ch.Refresh(ctx)
	}
}

// DeviceStatus reads the raw status record of a device.
func (m *Manager) DeviceStatus(ctx context.Context, host string) (*ptx.Status, error) {
	m.mu.RLock()
	d, ok := m.devices[host]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("device %s not found", host)
	}
	return d.sw.Status(ctx)
}

// Wait blocks until every worker started by the manager has stopped.
func (m *Manager) Wait() {
	m.wg.Wait()
}

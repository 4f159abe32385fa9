package platform

import (
	"context"
	"time"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// StartPollWorker refreshes every channel on each tick until ctx is done.
// Devices that were not ready at setup are retried first.
func (m *Manager) StartPollWorker(ctx context.Context, interval time.Duration) {
	if interval < config.MinPollInterval {
		m.logger.Warn("platform: poll interval too short, using minimum",
			"interval", interval,
			"minimum", config.MinPollInterval)
		interval = config.MinPollInterval
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		m.logger.Info("platform: poll worker started", "interval", interval)
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("platform: poll worker stopped")
				return
			case <-ticker.C:
				if n := m.RetryPending(ctx); n > 0 {
					m.logger.Debug("platform: devices still pending", "count", n)
				}
				m.RefreshAll(ctx)
			}
		}
	}()
}

// DiscoverOnce browses the network and announces switches that are not
// configured yet. Each instance is announced once per manager lifetime.
func (m *Manager) DiscoverOnce(ctx context.Context, resolver ptx.Resolver, timeout time.Duration) ([]ptx.DiscoveredDevice, error) {
	found, err := ptx.Discover(ctx, resolver, timeout, m.logger)
	if err != nil {
		return nil, err
	}

	for _, d := range found {
		addr := d.Address()
		m.mu.Lock()
		_, configured := m.devices[addr]
		if !configured {
			_, configured = m.devices[d.Host]
		}
		if !configured {
			_, configured = m.pending[addr]
		}
		fresh := !configured && !m.announced[d.Instance]
		if fresh {
			m.announced[d.Instance] = true
		}
		m.mu.Unlock()

		if !fresh {
			continue
		}
		m.logger.Info("platform: unconfigured switch found", "address", addr, "model", d.Model, "device_id", d.DeviceID)
		m.bus.Publish(events.NewEvent(events.DeviceDiscovered, events.DeviceData{
			Host:     addr,
			Model:    string(d.Model),
			DeviceID: d.DeviceID,
		}))
	}
	return found, nil
}

// StartDiscoveryWorker runs DiscoverOnce immediately and then on every tick.
func (m *Manager) StartDiscoveryWorker(ctx context.Context, interval, timeout time.Duration, resolver ptx.Resolver) {
	interval = config.ClampInterval(interval, config.MinDiscoveryInterval)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		m.logger.Info("platform: discovery worker started", "interval", interval)

		run := func() {
			if _, err := m.DiscoverOnce(ctx, resolver, timeout); err != nil {
				m.logger.Error("platform: discovery failed", "error", err)
			}
		}
		run()
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("platform: discovery worker stopped")
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}

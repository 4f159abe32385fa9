package ptx

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	serviceName = "_miio._udp"
	domain      = "local."

	// DefaultDiscoveryTimeout bounds a single mDNS browse.
	DefaultDiscoveryTimeout = 5 * time.Second
)

// Resolver browses DNS-SD services. *zeroconf.Resolver satisfies it.
type Resolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// NewResolver returns a resolver on all multicast interfaces.
func NewResolver() (Resolver, error) {
	r, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	return r, nil
}

// DiscoveredDevice is a PTX switch announcing itself on the local network.
type DiscoveredDevice struct {
	Instance string   `json:"instance"`
	DeviceID string   `json:"device_id"`
	Model    Model    `json:"model"`
	Host     string   `json:"host"`
	IPs      []net.IP `json:"ips"`
	Port     int      `json:"port"`
}

// Address returns the preferred address to reach the device.
func (d DiscoveredDevice) Address() string {
	for _, ip := range d.IPs {
		if ip.To4() != nil {
			return ip.String()
		}
	}
	if len(d.IPs) > 0 {
		return d.IPs[0].String()
	}
	return d.Host
}

// parseInstance splits a miIO instance name such as
// "090615-switch-switch03_miio123456789" into model and device id.
func parseInstance(instance string) (Model, string, bool) {
	prefix, did, ok := strings.Cut(instance, "_miio")
	if !ok || prefix == "" {
		return "", "", false
	}
	model := Model(strings.ReplaceAll(prefix, "-", "."))
	if !model.Valid() {
		return "", "", false
	}
	return model, did, true
}

// Discover browses for miIO devices and returns the PTX switches found before
// the timeout elapses, sorted by instance name.
func Discover(ctx context.Context, resolver Resolver, timeout time.Duration, logger *slog.Logger) ([]DiscoveredDevice, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := resolver.Browse(browseCtx, serviceName, domain, entries); err != nil {
		return nil, fmt.Errorf("failed to start discovery: %w", err)
	}

	found := make(map[string]DiscoveredDevice)
	for {
		select {
		case <-browseCtx.Done():
			return collect(found), nil
		case entry, ok := <-entries:
			if !ok {
				return collect(found), nil
			}
			if entry == nil {
				continue
			}
			model, did, ok := parseInstance(entry.Instance)
			if !ok {
				logger.Debug("discovery: ignoring non-PTX device", "instance", entry.Instance)
				continue
			}
			ips := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
			ips = append(ips, entry.AddrIPv4...)
			ips = append(ips, entry.AddrIPv6...)
			d := DiscoveredDevice{
				Instance: entry.Instance,
				DeviceID: did,
				Model:    model,
				Host:     strings.TrimSuffix(entry.HostName, "."),
				IPs:      ips,
				Port:     entry.Port,
			}
			if _, seen := found[entry.Instance]; !seen {
				logger.Info("discovery: found switch", "instance", d.Instance, "model", d.Model, "address", d.Address())
			}
			found[entry.Instance] = d
		}
	}
}

func collect(found map[string]DiscoveredDevice) []DiscoveredDevice {
	out := make([]DiscoveredDevice, 0, len(found))
	for _, d := range found {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}

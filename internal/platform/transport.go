package platform

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/simulator"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// Dialer opens a request/response connection to one device. Implementations
// own encryption and session handling; the returned Sender must serialize
// requests. If it also implements ptx.InfoProvider, models can be detected.
type Dialer func(ctx context.Context, cfg config.DeviceConfig) (ptx.Sender, error)

type transportRegistry struct {
	mu      sync.RWMutex
	dialers map[string]Dialer
}

func newTransportRegistry() *transportRegistry {
	r := &transportRegistry{dialers: make(map[string]Dialer)}
	r.register(config.DefaultTransport, DialSimulated)
	return r
}

func (r *transportRegistry) register(name string, d Dialer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialers[name] = d
}

func (r *transportRegistry) lookup(name string) (Dialer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dialers[name]
	return d, ok
}

func (r *transportRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.dialers))
	for name := range r.dialers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DialSimulated creates an in-memory device for cfg. The model defaults to
// the three-channel switch and the MAC is derived from the host, so restarts
// keep the same channel identities.
func DialSimulated(_ context.Context, cfg config.DeviceConfig) (ptx.Sender, error) {
	model := ptx.Model(cfg.Model)
	if model == "" {
		model = ptx.ModelTriple
	}
	return simulator.New(model, simulatedMAC(cfg.Host))
}

func simulatedMAC(host string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	sum := h.Sum32()
	return fmt.Sprintf("02:50:54:%02x:%02x:%02x", byte(sum>>16), byte(sum>>8), byte(sum))
}

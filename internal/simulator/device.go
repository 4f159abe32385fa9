// Package simulator provides an in-memory PTX switch that answers requests the
// way real firmware does, including its quirks. It backs the "simulated"
// transport and the end-to-end tests.
package simulator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// paddingValue is appended to every batched flag reply.
const paddingValue = 1

// Device is a simulated PTX switch. It implements ptx.Sender and ptx.InfoProvider.
type Device struct {
	mu sync.Mutex

	info     ptx.DeviceInfo
	channels int
	on       []bool
	names    []string

	// stale is the flag state served while lag > 0.
	stale []bool
	lag   int

	failure   error
	overrides map[string][]any
	requests  []string
}

// New creates a simulated device of the given model with every channel off
// and names "switch1".."switchN".
func New(model ptx.Model, mac string) (*Device, error) {
	d, err := ptx.LookupModel(string(model))
	if err != nil {
		return nil, err
	}
	dev := &Device{
		info: ptx.DeviceInfo{
			Model:           model,
			MACAddress:      mac,
			FirmwareVersion: "1.4.1_37",
			HardwareVersion: "esp32",
		},
		channels:  d.Channels,
		on:        make([]bool, d.Channels),
		names:     make([]string, d.Channels),
		overrides: make(map[string][]any),
	}
	for i := range dev.names {
		dev.names[i] = fmt.Sprintf("switch%d", i+1)
	}
	return dev, nil
}

// Info reports the simulated identity.
func (d *Device) Info(context.Context) (ptx.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return ptx.DeviceInfo{}, d.failure
	}
	return d.info, nil
}

// Send handles one request. Requests are serialized like on the real device.
func (d *Device) Send(ctx context.Context, method string, params []any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, method)

	if d.failure != nil {
		return nil, d.failure
	}
	if reply, ok := d.overrides[method]; ok {
		return append([]any(nil), reply...), nil
	}

	switch {
	case method == "get_prop":
		return d.getProp(params)
	case method == "SetSwitchAll":
		return d.setAll(params)
	case strings.HasPrefix(method, "SetSwitch"):
		i, err := d.channelFromMethod(method, "SetSwitch")
		if err != nil {
			return nil, err
		}
		return d.setSwitch(i, params)
	case strings.HasPrefix(method, "SetSwtichname"):
		i, err := d.channelFromMethod(method, "SetSwtichname")
		if err != nil {
			return nil, err
		}
		return d.setName(i, params)
	default:
		return nil, fmt.Errorf("simulator: unknown method %q", method)
	}
}

func (d *Device) getProp(params []any) ([]any, error) {
	if len(params) == 1 {
		if name, ok := params[0].(string); ok {
			i := ptx.PropertyName(name).Channel()
			if !ptx.PropertyName(name).IsName() || i < 1 || i > d.channels {
				return []any{}, nil
			}
			return []any{d.names[i-1]}, nil
		}
	}

	flags := d.on
	if d.lag > 0 {
		d.lag--
		flags = d.stale
	}

	reply := make([]any, 0, len(params)+1)
	for i := range params {
		if i < len(flags) {
			reply = append(reply, boolToInt(flags[i]))
		} else {
			reply = append(reply, 0)
		}
	}
	return append(reply, paddingValue), nil
}

func (d *Device) setSwitch(i int, params []any) ([]any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("simulator: SetSwitch%d expects one parameter", i)
	}
	v, ok := params[0].(int)
	if !ok || (v != 0 && v != 1) {
		return []any{"error"}, nil
	}
	d.on[i-1] = v == 1
	return []any{v}, nil
}

func (d *Device) setName(i int, params []any) ([]any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("simulator: SetSwtichname%d expects one parameter", i)
	}
	name, ok := params[0].(string)
	if !ok {
		return []any{"error"}, nil
	}
	d.names[i-1] = name
	return []any{0}, nil
}

func (d *Device) setAll(params []any) ([]any, error) {
	if len(params) != d.channels {
		return []any{"error"}, nil
	}
	reply := make([]any, 0, len(params))
	for i, p := range params {
		v, ok := p.(int)
		if !ok || (v != 0 && v != 1) {
			return []any{"error"}, nil
		}
		d.on[i] = v == 1
		reply = append(reply, v)
	}
	return reply, nil
}

func (d *Device) channelFromMethod(method, prefix string) (int, error) {
	i, err := strconv.Atoi(strings.TrimPrefix(method, prefix))
	if err != nil || i < 1 || i > d.channels {
		return 0, fmt.Errorf("simulator: unknown method %q", method)
	}
	return i, nil
}

// FailWith makes every subsequent request fail with err. A nil err restores
// normal operation.
func (d *Device) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failure = err
}

// OverrideReply pins the reply for method. A nil reply removes the override.
func (d *Device) OverrideReply(method string, reply []any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if reply == nil {
		delete(d.overrides, method)
		return
	}
	d.overrides[method] = append([]any(nil), reply...)
}

// SetLag makes the next n flag reads return the current state, ignoring
// writes made in between. This mimics firmware that reports stale status
// right after a toggle.
func (d *Device) SetLag(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lag = n
	d.stale = append([]bool(nil), d.on...)
}

// SetPower changes a channel from the "wall", bypassing the protocol.
func (d *Device) SetPower(i int, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= 1 && i <= d.channels {
		d.on[i-1] = on
	}
}

// Power returns the physical state of channel i.
func (d *Device) Power(i int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 1 || i > d.channels {
		return false
	}
	return d.on[i-1]
}

// ChannelName returns the stored name of channel i.
func (d *Device) ChannelName(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 1 || i > d.channels {
		return ""
	}
	return d.names[i-1]
}

// Requests returns the methods received so far, in order.
func (d *Device) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var (
	_ ptx.Sender       = (*Device)(nil)
	_ ptx.InfoProvider = (*Device)(nil)
)

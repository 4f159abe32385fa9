package ptx

import (
	"context"

	"github.com/ptxhome/ptxswitchd/internal/errors"
)

// Common errors
var (
	ErrUnsupportedChannel = errors.ErrUnsupportedChannel
	ErrUnsupportedModel   = errors.ErrUnsupportedModel
	ErrDeviceUnavailable  = errors.ErrDeviceUnavailable
	ErrInvalidInput       = errors.ErrInvalidInput
)

// Model identifies one of the PTX wall switch variants.
type Model string

const (
	ModelSingle     Model = "090615.switch.switch01"
	ModelDual       Model = "090615.switch.switch02"
	ModelTriple     Model = "090615.switch.switch03"
	ModelHardSingle Model = "090615.switch.xswitch01"
	ModelHardDual   Model = "090615.switch.xswitch02"
	ModelHardTriple Model = "090615.switch.xswitch03"
)

// MaxChannels is the highest channel index any PTX model exposes.
const MaxChannels = 3

// Descriptor is the fixed, ordered property list a model exposes.
type Descriptor struct {
	Model      Model
	Channels   int
	Properties []PropertyName
}

var modelOrder = []Model{
	ModelSingle,
	ModelDual,
	ModelTriple,
	ModelHardSingle,
	ModelHardDual,
	ModelHardTriple,
}

var modelChannels = map[Model]int{
	ModelSingle:     1,
	ModelDual:       2,
	ModelTriple:     3,
	ModelHardSingle: 1,
	ModelHardDual:   2,
	ModelHardTriple: 3,
}

var descriptors = buildDescriptors()

func buildDescriptors() map[Model]Descriptor {
	out := make(map[Model]Descriptor, len(modelChannels))
	for model, n := range modelChannels {
		props := make([]PropertyName, 0, 2*n)
		for i := 1; i <= n; i++ {
			props = append(props, FlagProperty(i))
		}
		for i := 1; i <= n; i++ {
			props = append(props, NameProperty(i))
		}
		out[model] = Descriptor{Model: model, Channels: n, Properties: props}
	}
	return out
}

// Models returns all supported models in a stable order.
func Models() []Model {
	out := make([]Model, len(modelOrder))
	copy(out, modelOrder)
	return out
}

// LookupModel returns the descriptor for a model identifier.
func LookupModel(model string) (Descriptor, error) {
	d, ok := descriptors[Model(model)]
	if !ok {
		return Descriptor{}, errors.UnsupportedModelf("model %q", model)
	}
	return d.clone(), nil
}

// Valid reports whether m is one of the known switch variants.
func (m Model) Valid() bool {
	_, ok := descriptors[m]
	return ok
}

func (m Model) String() string {
	return string(m)
}

func (d Descriptor) clone() Descriptor {
	props := make([]PropertyName, len(d.Properties))
	copy(props, d.Properties)
	d.Properties = props
	return d
}

// Has reports whether the descriptor lists the property.
func (d Descriptor) Has(name PropertyName) bool {
	for _, p := range d.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// HasChannel reports whether channel index i exists on this model.
func (d Descriptor) HasChannel(i int) bool {
	return d.Has(FlagProperty(i))
}

// FlagProperties returns the on/off properties in descriptor order.
func (d Descriptor) FlagProperties() []PropertyName {
	var out []PropertyName
	for _, p := range d.Properties {
		if p.IsFlag() {
			out = append(out, p)
		}
	}
	return out
}

// NameProperties returns the channel name properties in descriptor order.
func (d Descriptor) NameProperties() []PropertyName {
	var out []PropertyName
	for _, p := range d.Properties {
		if !p.IsFlag() {
			out = append(out, p)
		}
	}
	return out
}

// Sender issues one request/response call against the device protocol.
// Implementations own encryption, sessions and timeouts and must serialize
// requests on a single connection.
type Sender interface {
	Send(ctx context.Context, method string, params []any) ([]any, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, method string, params []any) ([]any, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, method string, params []any) ([]any, error) {
	return f(ctx, method, params)
}

// DeviceInfo is the identity a switch reports about itself.
type DeviceInfo struct {
	Model           Model  `json:"model"`
	MACAddress      string `json:"mac"`
	FirmwareVersion string `json:"fw_ver"`
	HardwareVersion string `json:"hw_ver"`
}

// InfoProvider is implemented by transports that can query device identity.
type InfoProvider interface {
	Info(ctx context.Context) (DeviceInfo, error)
}

package handlers

import (
	"context"

	"github.com/ptxhome/ptxswitchd/internal/entity"
	"github.com/ptxhome/ptxswitchd/internal/platform"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// DeviceService is the device side of the platform manager.
type DeviceService interface {
	Devices() []platform.Device
	DeviceStatus(ctx context.Context, host string) (*ptx.Status, error)
	SetDevicePower(ctx context.Context, host string, on bool) ([]entity.Snapshot, error)
}

// ListDevicesInput is the input for listing configured devices.
type ListDevicesInput struct{}

// ListDevicesOutput is the output for listing configured devices.
type ListDevicesOutput struct {
	Body []DeviceResponse
}

// DeviceStatusInput identifies a device by host.
type DeviceStatusInput struct {
	Host string `path:"host" doc:"Configured device address"`
}

// DeviceStatusOutput is the raw property record of a device.
type DeviceStatusOutput struct {
	Body DeviceStatusResponse
}

// SetDeviceStateInput is the input for switching every channel of a device.
type SetDeviceStateInput struct {
	Host string `path:"host" doc:"Configured device address"`
	Body struct {
		On bool `json:"on" doc:"Desired power state for every channel" required:"true"`
	}
}

// DeviceStateOutput lists the channels of a device after a command.
type DeviceStateOutput struct {
	Body []SwitchResponse
}

// DeviceHandler implements device-related HTTP handlers.
type DeviceHandler struct {
	Devices DeviceService
}

// ListDevices returns every configured device.
func (h *DeviceHandler) ListDevices(_ context.Context, _ *ListDevicesInput) (*ListDevicesOutput, error) {
	devices := h.Devices.Devices()
	out := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		out[i] = DeviceFromPlatform(d)
	}
	return &ListDevicesOutput{Body: out}, nil
}

// GetDeviceStatus reads every property of a device directly.
func (h *DeviceHandler) GetDeviceStatus(ctx context.Context, input *DeviceStatusInput) (*DeviceStatusOutput, error) {
	status, err := h.Devices.DeviceStatus(ctx, input.Host)
	if err != nil {
		return nil, toHumaError(err, "Error reading device status")
	}
	return &DeviceStatusOutput{Body: DeviceStatusFromPTX(input.Host, status)}, nil
}

// SetDeviceState turns every channel of a device on or off with one command.
func (h *DeviceHandler) SetDeviceState(ctx context.Context, input *SetDeviceStateInput) (*DeviceStateOutput, error) {
	snaps, err := h.Devices.SetDevicePower(ctx, input.Host, input.Body.On)
	if err != nil {
		return nil, toHumaError(err, "Error setting device state")
	}
	return &DeviceStateOutput{Body: SwitchesFromSnapshots(snaps)}, nil
}

// Ensure DeviceHandler implements the interface at compile time.
var _ DeviceHandlers = (*DeviceHandler)(nil)

// DeviceHandlers defines the interface for device operations.
type DeviceHandlers interface {
	ListDevices(ctx context.Context, input *ListDevicesInput) (*ListDevicesOutput, error)
	GetDeviceStatus(ctx context.Context, input *DeviceStatusInput) (*DeviceStatusOutput, error)
	SetDeviceState(ctx context.Context, input *SetDeviceStateInput) (*DeviceStateOutput, error)
}

package routes

import (
	"context"

	"github.com/ptxhome/ptxswitchd/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses; they are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		Switch:  &stubSwitchHandlers{},
		Device:  &stubDeviceHandlers{},
		Logging: &stubLoggingHandlers{},
	}
}

// --- Switch stubs ---

type stubSwitchHandlers struct{}

func (s *stubSwitchHandlers) ListSwitches(_ context.Context, _ *handlers.ListSwitchesInput) (*handlers.ListSwitchesOutput, error) {
	return nil, nil
}

func (s *stubSwitchHandlers) GetSwitch(_ context.Context, _ *handlers.SwitchIDInput) (*handlers.SwitchOutput, error) {
	return nil, nil
}

func (s *stubSwitchHandlers) SetSwitchState(_ context.Context, _ *handlers.SetSwitchStateInput) (*handlers.SwitchOutput, error) {
	return nil, nil
}

func (s *stubSwitchHandlers) RefreshSwitch(_ context.Context, _ *handlers.SwitchIDInput) (*handlers.SwitchOutput, error) {
	return nil, nil
}

func (s *stubSwitchHandlers) RenameSwitch(_ context.Context, _ *handlers.RenameSwitchInput) (*handlers.SwitchOutput, error) {
	return nil, nil
}

// --- Device stubs ---

type stubDeviceHandlers struct{}

func (s *stubDeviceHandlers) ListDevices(_ context.Context, _ *handlers.ListDevicesInput) (*handlers.ListDevicesOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) GetDeviceStatus(_ context.Context, _ *handlers.DeviceStatusInput) (*handlers.DeviceStatusOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetDeviceState(_ context.Context, _ *handlers.SetDeviceStateInput) (*handlers.DeviceStateOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

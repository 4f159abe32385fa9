package handlers

import (
	"context"

	"github.com/ptxhome/ptxswitchd/internal/entity"
)

// SwitchService is the channel side of the platform manager.
type SwitchService interface {
	Snapshots() []entity.Snapshot
	Snapshot(id string) (entity.Snapshot, error)
	SetPower(ctx context.Context, id string, on bool) (entity.Snapshot, error)
	Rename(ctx context.Context, id, name string) (entity.Snapshot, error)
	Refresh(ctx context.Context, id string) (entity.Snapshot, error)
}

// --- List Switches ---

// ListSwitchesInput is the input for listing all switch channels.
type ListSwitchesInput struct{}

// ListSwitchesOutput is the output for listing all switch channels.
type ListSwitchesOutput struct {
	Body []SwitchResponse
}

// --- Get Switch ---

// SwitchIDInput identifies a single switch channel.
type SwitchIDInput struct {
	ID string `path:"id" doc:"Switch channel identifier"`
}

// SwitchOutput is the output of operations on a single channel.
type SwitchOutput struct {
	Body SwitchResponse
}

// --- Set State ---

// SetSwitchStateInput is the input for turning a channel on or off.
type SetSwitchStateInput struct {
	ID   string `path:"id" doc:"Switch channel identifier"`
	Body struct {
		On bool `json:"on" doc:"Desired power state" required:"true"`
	}
}

// --- Rename ---

// RenameSwitchInput is the input for storing a new name on the device.
type RenameSwitchInput struct {
	ID   string `path:"id" doc:"Switch channel identifier"`
	Body struct {
		Name string `json:"name" doc:"New channel name" minLength:"1" maxLength:"64"`
	}
}

// SwitchHandler implements switch-related HTTP handlers.
type SwitchHandler struct {
	Switches SwitchService
}

// ListSwitches returns every channel ordered by identifier.
func (h *SwitchHandler) ListSwitches(_ context.Context, _ *ListSwitchesInput) (*ListSwitchesOutput, error) {
	return &ListSwitchesOutput{Body: SwitchesFromSnapshots(h.Switches.Snapshots())}, nil
}

// GetSwitch returns one channel.
func (h *SwitchHandler) GetSwitch(_ context.Context, input *SwitchIDInput) (*SwitchOutput, error) {
	snap, err := h.Switches.Snapshot(input.ID)
	if err != nil {
		return nil, toHumaError(err, "Switch not found")
	}
	return &SwitchOutput{Body: SwitchFromSnapshot(snap)}, nil
}

// SetSwitchState turns a channel on or off and returns its new state.
func (h *SwitchHandler) SetSwitchState(ctx context.Context, input *SetSwitchStateInput) (*SwitchOutput, error) {
	snap, err := h.Switches.SetPower(ctx, input.ID, input.Body.On)
	if err != nil {
		return nil, toHumaError(err, "Error setting switch state")
	}
	return &SwitchOutput{Body: SwitchFromSnapshot(snap)}, nil
}

// RefreshSwitch polls the device for a channel's state.
func (h *SwitchHandler) RefreshSwitch(ctx context.Context, input *SwitchIDInput) (*SwitchOutput, error) {
	snap, err := h.Switches.Refresh(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err, "Error refreshing switch")
	}
	return &SwitchOutput{Body: SwitchFromSnapshot(snap)}, nil
}

// RenameSwitch stores a new name for a channel on the device.
func (h *SwitchHandler) RenameSwitch(ctx context.Context, input *RenameSwitchInput) (*SwitchOutput, error) {
	snap, err := h.Switches.Rename(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, toHumaError(err, "Error renaming switch")
	}
	return &SwitchOutput{Body: SwitchFromSnapshot(snap)}, nil
}

// Ensure SwitchHandler implements the interface at compile time.
var _ SwitchHandlers = (*SwitchHandler)(nil)

// SwitchHandlers defines the interface for switch operations.
type SwitchHandlers interface {
	ListSwitches(ctx context.Context, input *ListSwitchesInput) (*ListSwitchesOutput, error)
	GetSwitch(ctx context.Context, input *SwitchIDInput) (*SwitchOutput, error)
	SetSwitchState(ctx context.Context, input *SetSwitchStateInput) (*SwitchOutput, error)
	RefreshSwitch(ctx context.Context, input *SwitchIDInput) (*SwitchOutput, error)
	RenameSwitch(ctx context.Context, input *RenameSwitchInput) (*SwitchOutput, error)
}

package ptx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ptxhome/ptxswitchd/internal/errors"
)

// Switch is a handle on one physical PTX switch. All channel adapters of a
// device share the same Switch, which must outlive them.
type Switch struct {
	desc   Descriptor
	sender Sender
	logger *slog.Logger
}

// NewSwitch creates a handle for a device of the given model.
func NewSwitch(model Model, sender Sender, logger *slog.Logger) (*Switch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sender == nil {
		return nil, errors.InvalidInputf("switch %s: nil sender", model)
	}
	d, err := LookupModel(string(model))
	if err != nil {
		return nil, err
	}
	return &Switch{desc: d, sender: sender, logger: logger}, nil
}

// Model returns the switch model.
func (s *Switch) Model() Model {
	return s.desc.Model
}

// Descriptor returns the property descriptor for the switch model.
func (s *Switch) Descriptor() Descriptor {
	return s.desc.clone()
}

// Status reads all properties of the switch.
func (s *Switch) Status(ctx context.Context) (*Status, error) {
	return ReadStatus(ctx, s.desc.Model, s.sender, s.logger)
}

// SetChannel turns channel index on or off. The bool result is true only when
// the switch acknowledged the command with 0 or 1.
func (s *Switch) SetChannel(ctx context.Context, index int, on bool) (bool, error) {
	if !s.desc.HasChannel(index) {
		s.logger.Debug("switch: channel not supported", "model", s.desc.Model, "index", index)
		return false, errors.UnsupportedChannelf("channel %d on %s", index, s.desc.Model)
	}

	method := fmt.Sprintf("SetSwitch%d", index)
	reply, err := s.sender.Send(ctx, method, []any{boolToInt(on)})
	if err != nil {
		return false, errors.DeviceUnavailablef("%s: %w", method, err)
	}

	if len(reply) == 0 || !isConfirmation(reply[0]) {
		s.logger.Debug("switch: toggle not confirmed", "index", index, "reply", reply)
		return false, nil
	}
	return true, nil
}

// TurnOn switches channel index on.
func (s *Switch) TurnOn(ctx context.Context, index int) (bool, error) {
	return s.SetChannel(ctx, index, true)
}

// TurnOff switches channel index off.
func (s *Switch) TurnOff(ctx context.Context, index int) (bool, error) {
	return s.SetChannel(ctx, index, false)
}

// RenameChannel sets the display name of channel index. The acknowledgement
// payload has no known meaning beyond being 0 or 1, so only that is checked.
func (s *Switch) RenameChannel(ctx context.Context, index int, name string) (bool, error) {
	if !s.desc.Has(NameProperty(index)) {
		s.logger.Debug("switch: channel not supported", "model", s.desc.Model, "index", index)
		return false, errors.UnsupportedChannelf("channel %d on %s", index, s.desc.Model)
	}
	if strings.TrimSpace(name) == "" {
		return false, errors.InvalidInputf("empty name for channel %d", index)
	}

	// The firmware spells the method this way.
	method := fmt.Sprintf("SetSwtichname%d", index)
	reply, err := s.sender.Send(ctx, method, []any{name})
	if err != nil {
		return false, errors.DeviceUnavailablef("%s: %w", method, err)
	}

	if len(reply) == 0 || !isConfirmation(reply[0]) {
		s.logger.Debug("switch: rename not confirmed", "index", index, "reply", reply)
		return false, nil
	}
	return true, nil
}

// SetAllChannels turns every channel on or off with a single command.
func (s *Switch) SetAllChannels(ctx context.Context, on bool) (bool, error) {
	params := make([]any, s.desc.Channels)
	for i := range params {
		params[i] = boolToInt(on)
	}

	reply, err := s.sender.Send(ctx, "SetSwitchAll", params)
	if err != nil {
		return false, errors.DeviceUnavailablef("SetSwitchAll: %w", err)
	}

	if len(reply) < len(params) {
		s.logger.Debug("switch: toggle all not confirmed", "reply", reply)
		return false, nil
	}
	for _, v := range reply[:len(params)] {
		if !isConfirmation(v) {
			s.logger.Debug("switch: toggle all not confirmed", "reply", reply)
			return false, nil
		}
	}
	return true, nil
}

// Info queries the device identity when the transport supports it.
func (s *Switch) Info(ctx context.Context) (DeviceInfo, error) {
	return QueryInfo(ctx, s.sender)
}

// QueryInfo queries device identity from a transport that implements InfoProvider.
func QueryInfo(ctx context.Context, sender Sender) (DeviceInfo, error) {
	p, ok := sender.(InfoProvider)
	if !ok {
		return DeviceInfo{}, errors.InvalidInputf("transport %T cannot report device info", sender)
	}
	info, err := p.Info(ctx)
	if err != nil {
		return DeviceInfo{}, errors.DeviceUnavailablef("miIO.info: %w", err)
	}
	return info, nil
}

// Package handlers provides typed Huma request/response structs and handler
// implementations for the ptxswitchd HTTP API.
package handlers

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ptxhome/ptxswitchd/internal/entity"
	"github.com/ptxhome/ptxswitchd/internal/errors"
	"github.com/ptxhome/ptxswitchd/internal/platform"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// --- Switch types ---

// SwitchResponse is the API representation of one switch channel.
type SwitchResponse struct {
	ID         string    `json:"id" doc:"Unique channel identifier"`
	Name       string    `json:"name" doc:"Channel name, derived from the device name and index"`
	Label      string    `json:"label,omitempty" doc:"Name stored on the device"`
	Model      string    `json:"model" doc:"Switch model identifier"`
	Host       string    `json:"host" doc:"Address of the device"`
	Index      int       `json:"index" doc:"Channel number on the device (1-based)"`
	On         *bool     `json:"on" doc:"Power state, null when unknown"`
	Available  bool      `json:"available" doc:"Whether the last device exchange succeeded"`
	LastUpdate time.Time `json:"last_update" doc:"Time of the last successful refresh"`
}

// SwitchFromSnapshot converts a channel snapshot to a SwitchResponse.
func SwitchFromSnapshot(s entity.Snapshot) SwitchResponse {
	resp := SwitchResponse{
		ID:         s.UniqueID,
		Name:       s.Name,
		Label:      s.Label,
		Model:      string(s.Model),
		Host:       s.Host,
		Index:      s.Index,
		Available:  s.Available,
		LastUpdate: s.LastUpdate,
	}
	if on, ok := s.State.Bool(); ok {
		resp.On = &on
	}
	return resp
}

// SwitchesFromSnapshots converts a list of snapshots.
func SwitchesFromSnapshots(snaps []entity.Snapshot) []SwitchResponse {
	result := make([]SwitchResponse, len(snaps))
	for i, s := range snaps {
		result[i] = SwitchFromSnapshot(s)
	}
	return result
}

// --- Device types ---

// DeviceResponse is the API representation of a configured device.
type DeviceResponse struct {
	Host      string          `json:"host" doc:"Address of the device"`
	Name      string          `json:"name" doc:"Configured device name"`
	Model     string          `json:"model" doc:"Switch model identifier"`
	Transport string          `json:"transport" doc:"Transport used to reach the device"`
	Info      *ptx.DeviceInfo `json:"info,omitempty" doc:"Identity reported by the device when the model was detected"`
	Switches  []string        `json:"switches" doc:"Channel identifiers belonging to the device"`
}

// DeviceFromPlatform converts a platform.Device to a DeviceResponse.
func DeviceFromPlatform(d platform.Device) DeviceResponse {
	ids := d.Channels
	if ids == nil {
		ids = []string{}
	}
	return DeviceResponse{
		Host:      d.Host,
		Name:      d.Name,
		Model:     string(d.Model),
		Transport: d.Transport,
		Info:      d.Info,
		Switches:  ids,
	}
}

// DeviceStatusResponse is the raw property record of a device.
type DeviceStatusResponse struct {
	Host       string         `json:"host" doc:"Address of the device"`
	Model      string         `json:"model" doc:"Switch model identifier"`
	Properties map[string]any `json:"properties" doc:"Property values keyed by property name, null when unknown"`
}

// DeviceStatusFromPTX flattens a ptx.Status into a response.
func DeviceStatusFromPTX(host string, s *ptx.Status) DeviceStatusResponse {
	props := make(map[string]any, len(s.Keys()))
	for _, k := range s.Keys() {
		v, _ := s.Value(k)
		if b, ok := v.Bool(); ok {
			props[string(k)] = b
		} else if t, ok := v.Text(); ok {
			props[string(k)] = t
		} else {
			props[string(k)] = nil
		}
	}
	return DeviceStatusResponse{Host: host, Model: string(s.Model()), Properties: props}
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// toHumaError maps domain errors onto HTTP status codes.
func toHumaError(err error, what string) error {
	msg := fmt.Sprintf("%s: %s", what, err)
	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(msg)
	case errors.IsInvalidInput(err), errors.IsUnsupportedChannel(err), errors.IsUnsupportedModel(err):
		return huma.Error400BadRequest(msg)
	case errors.IsNotConfirmed(err):
		return huma.Error502BadGateway(msg)
	case errors.IsDeviceUnavailable(err), errors.IsNotReady(err):
		return huma.Error503ServiceUnavailable(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}

package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/ptxhome/ptxswitchd/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the daemon, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns service health status. This endpoint does not require authentication."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Version ---
	mw.PublicGet(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date. This endpoint does not require authentication."),
		mw.WithOperationID("getVersion"))

	// --- Switches ---
	mw.ProtectedGet(api, "/api/v1/switches", h.Switch.ListSwitches,
		mw.WithTags("Switches"),
		mw.WithSummary("List all switch channels"),
		mw.WithDescription("Returns every channel of every configured device, ordered by identifier."),
		mw.WithOperationID("listSwitches"))

	mw.ProtectedGet(api, "/api/v1/switches/{id}", h.Switch.GetSwitch,
		mw.WithTags("Switches"),
		mw.WithSummary("Get a switch channel"),
		mw.WithOperationID("getSwitch"))

	mw.ProtectedPost(api, "/api/v1/switches/{id}/state", h.Switch.SetSwitchState,
		mw.WithTags("Switches"),
		mw.WithSummary("Turn a channel on or off"),
		mw.WithDescription("Sends the command to the device. Returns 502 when the device does not confirm it and 503 when it cannot be reached."),
		mw.WithOperationID("setSwitchState"))

	mw.ProtectedPost(api, "/api/v1/switches/{id}/refresh", h.Switch.RefreshSwitch,
		mw.WithTags("Switches"),
		mw.WithSummary("Refresh a channel"),
		mw.WithDescription("Polls the device for the channel's current state."),
		mw.WithOperationID("refreshSwitch"))

	mw.ProtectedPut(api, "/api/v1/switches/{id}/name", h.Switch.RenameSwitch,
		mw.WithTags("Switches"),
		mw.WithSummary("Rename a channel"),
		mw.WithDescription("Stores a new channel name on the device."),
		mw.WithOperationID("renameSwitch"))

	// --- Devices ---
	mw.ProtectedGet(api, "/api/v1/devices", h.Device.ListDevices,
		mw.WithTags("Devices"),
		mw.WithSummary("List configured devices"),
		mw.WithOperationID("listDevices"))

	mw.ProtectedGet(api, "/api/v1/devices/{host}/status", h.Device.GetDeviceStatus,
		mw.WithTags("Devices"),
		mw.WithSummary("Read raw device status"),
		mw.WithDescription("Reads every property the model exposes directly from the device. Unknown values are null."),
		mw.WithOperationID("getDeviceStatus"))

	mw.ProtectedPost(api, "/api/v1/devices/{host}/state", h.Device.SetDeviceState,
		mw.WithTags("Devices"),
		mw.WithSummary("Turn every channel of a device on or off"),
		mw.WithDescription("Sends a single command for all channels. Returns 502 when the device does not confirm it and 503 when it cannot be reached."),
		mw.WithOperationID("setDeviceState"))

	// --- Logging ---
	mw.ProtectedGet(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.ProtectedPut(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}

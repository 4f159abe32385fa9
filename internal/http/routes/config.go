// Package routes provides shared route registration for the ptxswitchd HTTP API.
// Both the daemon and the OpenAPI generator use the same route definitions,
// so the published document always matches the served API.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/ptxhome/ptxswitchd/internal/http/mw"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("ptxswitchd API", version)
	cfg.Info.Description = "REST API for PTX wall switches managed by the ptxswitchd daemon."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "API key authentication. Include your API key as `Authorization: Bearer <key>` or `X-API-Key: <key>`.",
		},
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Switches", Description: "Switch channel state and control"},
		{Name: "Devices", Description: "Configured devices and raw property reads"},
		{Name: "Logging", Description: "Runtime log level"},
	}

	return cfg
}

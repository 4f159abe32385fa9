// Package client talks to the ptxswitchd HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the set of daemon operations used by ptxctl.
type API interface {
	GetVersion() (*Version, error)
	GetSwitches() ([]Switch, error)
	GetSwitch(id string) (*Switch, error)
	SetSwitchState(id string, on bool) (*Switch, error)
	RefreshSwitch(id string) (*Switch, error)
	RenameSwitch(id, name string) (*Switch, error)
	GetDevices() ([]Device, error)
	GetDeviceStatus(host string) (*DeviceStatus, error)
	SetDeviceState(host string, on bool) ([]Switch, error)
}

// Switch is one channel as reported by the daemon.
type Switch struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Label      string    `json:"label,omitempty" yaml:"label,omitempty"`
	Model      string    `json:"model" yaml:"model"`
	Host       string    `json:"host" yaml:"host"`
	Index      int       `json:"index" yaml:"index"`
	On         *bool     `json:"on" yaml:"on"`
	Available  bool      `json:"available" yaml:"available"`
	LastUpdate time.Time `json:"last_update" yaml:"last_update"`
}

// State renders the tri-state power value.
func (s Switch) State() string {
	switch {
	case s.On == nil:
		return "unknown"
	case *s.On:
		return "on"
	default:
		return "off"
	}
}

// Device is a configured switch device.
type Device struct {
	Host      string   `json:"host" yaml:"host"`
	Name      string   `json:"name" yaml:"name"`
	Model     string   `json:"model" yaml:"model"`
	Transport string   `json:"transport" yaml:"transport"`
	Switches  []string `json:"switches" yaml:"switches"`
}

// DeviceStatus is the raw property record of a device.
type DeviceStatus struct {
	Host       string         `json:"host" yaml:"host"`
	Model      string         `json:"model" yaml:"model"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Version describes the daemon build.
type Version struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Status, e.Detail)
}

// HTTPClient represents an HTTP connection to ptxswitchd
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP creates a new HTTP client
func NewHTTP(logger *slog.Logger, baseURL string, apiKey string) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// request performs an HTTP request and decodes the JSON response
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	target := c.baseURL + path
	c.logger.Debug("client: HTTP request", "method", method, "url", target)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Debug("client: HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return &APIError{Status: httpResp.StatusCode, Detail: errorDetail(respBody)}
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorDetail extracts the message from a problem+json body.
func errorDetail(body []byte) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(body))
}

func switchPath(id string, suffix ...string) string {
	return "/api/v1/switches/" + strings.Join(append([]string{url.PathEscape(id)}, suffix...), "/")
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion() (*Version, error) {
	var resp Version
	if err := c.request(http.MethodGet, "/api/v1/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSwitches returns all channels.
func (c *HTTPClient) GetSwitches() ([]Switch, error) {
	var resp []Switch
	if err := c.request(http.MethodGet, "/api/v1/switches", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []Switch{}, nil
	}
	return resp, nil
}

// GetSwitch returns one channel.
func (c *HTTPClient) GetSwitch(id string) (*Switch, error) {
	var resp Switch
	if err := c.request(http.MethodGet, switchPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetSwitchState turns a channel on or off.
func (c *HTTPClient) SetSwitchState(id string, on bool) (*Switch, error) {
	var resp Switch
	if err := c.request(http.MethodPost, switchPath(id, "state"), map[string]any{"on": on}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshSwitch asks the daemon to poll a channel now.
func (c *HTTPClient) RefreshSwitch(id string) (*Switch, error) {
	var resp Switch
	if err := c.request(http.MethodPost, switchPath(id, "refresh"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenameSwitch stores a new channel name on the device.
func (c *HTTPClient) RenameSwitch(id, name string) (*Switch, error) {
	var resp Switch
	if err := c.request(http.MethodPut, switchPath(id, "name"), map[string]any{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDevices returns the configured devices.
func (c *HTTPClient) GetDevices() ([]Device, error) {
	var resp []Device
	if err := c.request(http.MethodGet, "/api/v1/devices", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []Device{}, nil
	}
	return resp, nil
}

// GetDeviceStatus reads the raw property record of a device.
func (c *HTTPClient) GetDeviceStatus(host string) (*DeviceStatus, error) {
	var resp DeviceStatus
	if err := c.request(http.MethodGet, "/api/v1/devices/"+url.PathEscape(host)+"/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetDeviceState turns every channel of a device on or off with one command.
func (c *HTTPClient) SetDeviceState(host string, on bool) ([]Switch, error) {
	var resp []Switch
	if err := c.request(http.MethodPost, "/api/v1/devices/"+url.PathEscape(host)+"/state", map[string]any{"on": on}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

var _ API = (*HTTPClient)(nil)

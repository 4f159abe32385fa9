package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ptxhome/ptxswitchd/pkg/client"
)

// captureStdout captures stdout during the execution of f, disables pterm color, and strips ANSI codes from the output.
func captureStdout(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Save original pterm settings and default table writer
	oldPrintColor := pterm.PrintColor
	oldOutput := pterm.Output
	oldDefaultTableWriter := pterm.DefaultTable.Writer

	pterm.PrintColor = false
	pterm.Output = true
	pterm.DefaultTable.Writer = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = oldStdout

	// Restore pterm
	pterm.PrintColor = oldPrintColor
	pterm.Output = oldOutput
	pterm.DefaultTable.Writer = oldDefaultTableWriter

	out := <-outC

	// Strip ANSI escape codes
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(out, "")
}

// mockClient implements client.API for CLI tests.
type mockClient struct {
	switches map[string]*client.Switch
	order    []string
	err      error
	calls    []string
}

var _ client.API = (*mockClient)(nil)

func boolPtr(b bool) *bool { return &b }

func newMockClient() *mockClient {
	updated := time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC)
	return &mockClient{
		switches: map[string]*client.Switch{
			"hall-1": {
				ID: "hall-1", Name: "hall_1", Label: "Ceiling", Model: "090615.switch.switch02",
				Host: "10.0.0.1", Index: 1, On: boolPtr(true), Available: true, LastUpdate: updated,
			},
			"hall-2": {
				ID: "hall-2", Name: "hall_2", Model: "090615.switch.switch02",
				Host: "10.0.0.1", Index: 2, On: nil, Available: false,
			},
		},
		order: []string{"hall-1", "hall-2"},
	}
}

func (m *mockClient) lookup(id string) (*client.Switch, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.switches[id]
	if !ok {
		return nil, &client.APIError{Status: 404, Detail: fmt.Sprintf("switch %s not found", id)}
	}
	return s, nil
}

func (m *mockClient) GetVersion() (*client.Version, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &client.Version{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}, nil
}

func (m *mockClient) GetSwitches() ([]client.Switch, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]client.Switch, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.switches[id])
	}
	return out, nil
}

func (m *mockClient) GetSwitch(id string) (*client.Switch, error) {
	return m.lookup(id)
}

func (m *mockClient) SetSwitchState(id string, on bool) (*client.Switch, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.calls = append(m.calls, fmt.Sprintf("set %s %v", id, on))
	s.On = boolPtr(on)
	s.Available = true
	return s, nil
}

func (m *mockClient) RefreshSwitch(id string) (*client.Switch, error) {
	m.calls = append(m.calls, "refresh "+id)
	return m.lookup(id)
}

func (m *mockClient) RenameSwitch(id, name string) (*client.Switch, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.calls = append(m.calls, fmt.Sprintf("rename %s %s", id, name))
	s.Label = name
	return s, nil
}

func (m *mockClient) GetDevices() ([]client.Device, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []client.Device{{
		Host: "10.0.0.1", Name: "hall", Model: "090615.switch.switch02", Transport: "simulated",
		Switches: []string{"hall-1", "hall-2"},
	}}, nil
}

func (m *mockClient) GetDeviceStatus(host string) (*client.DeviceStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if host != "10.0.0.1" {
		return nil, &client.APIError{Status: 404, Detail: "device not found"}
	}
	return &client.DeviceStatus{
		Host:  host,
		Model: "090615.switch.switch02",
		Properties: map[string]any{
			"is_on_1":     true,
			"is_on_2":     nil,
			"switchname1": "Ceiling",
			"switchname2": "switch2",
		},
	}, nil
}

func (m *mockClient) SetDeviceState(host string, on bool) ([]client.Switch, error) {
	if m.err != nil {
		return nil, m.err
	}
	if host != "10.0.0.1" {
		return nil, &client.APIError{Status: 404, Detail: "device not found"}
	}
	m.calls = append(m.calls, fmt.Sprintf("device %s %v", host, on))
	out := make([]client.Switch, 0, len(m.order))
	for _, id := range m.order {
		s := m.switches[id]
		if s.Host != host {
			continue
		}
		s.On = boolPtr(on)
		out = append(out, *s)
	}
	return out, nil
}

// runCommand executes cmd with the mock client and returns what it wrote.
func runCommand(cmd *cobra.Command, c client.API, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(WithClient(context.Background(), c))
	return out.String(), err
}

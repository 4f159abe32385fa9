package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSwitchListCommandParseable(t *testing.T) {
	out, err := runCommand(newSwitchListCommand(), newMockClient(), "-p")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `id="hall-1"`)
	assert.Contains(t, lines[0], "state=on")
	assert.Contains(t, lines[0], "last_update=1767348000")
	assert.Contains(t, lines[1], "state=unknown")
	assert.Contains(t, lines[1], "available=false")
	assert.Contains(t, lines[1], "last_update=0")
}

func TestSwitchListCommandTable(t *testing.T) {
	mock := newMockClient()
	out := captureStdout(func() {
		_, err := runCommand(newSwitchListCommand(), mock)
		require.NoError(t, err)
	})
	assert.Contains(t, out, "hall-1")
	assert.Contains(t, out, "Ceiling")
	assert.Contains(t, out, "unknown")
}

func TestSwitchListCommandYAML(t *testing.T) {
	root := NewRootCommand("dev", "none", "unknown")
	out, err := runCommand(root, newMockClient(), "switch", "list", "-o", "yaml")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "hall-1", decoded[0]["id"])
	assert.Equal(t, true, decoded[0]["on"])
	assert.Nil(t, decoded[1]["on"])
}

func TestSwitchListCommandError(t *testing.T) {
	mock := newMockClient()
	mock.err = errors.New("connection refused")
	_, err := runCommand(newSwitchListCommand(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get switches")
}

func TestSwitchGetCommand(t *testing.T) {
	out, err := runCommand(newSwitchGetCommand(), newMockClient(), "hall-1", "--parseable")
	require.NoError(t, err)
	assert.Contains(t, out, `label="Ceiling"`)
	assert.Contains(t, out, "channel=1")

	out = captureStdout(func() {
		_, err = runCommand(newSwitchGetCommand(), newMockClient(), "hall-2")
		require.NoError(t, err)
	})
	assert.Contains(t, out, "Last Update")
	assert.Contains(t, out, "N/A")

	_, err = runCommand(newSwitchGetCommand(), newMockClient(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSwitchOnOffCommands(t *testing.T) {
	mock := newMockClient()

	out, err := runCommand(newSwitchPowerCommand("off", false), mock, "hall-1")
	require.NoError(t, err)
	assert.Equal(t, "hall-1 is off\n", out)

	out, err = runCommand(newSwitchPowerCommand("on", true), mock, "hall-2")
	require.NoError(t, err)
	assert.Equal(t, "hall-2 is on\n", out)

	assert.Equal(t, []string{"set hall-1 false", "set hall-2 true"}, mock.calls)
}

func TestSwitchToggleCommand(t *testing.T) {
	mock := newMockClient()

	out, err := runCommand(newSwitchToggleCommand(), mock, "hall-1")
	require.NoError(t, err)
	assert.Equal(t, "hall-1 is off\n", out)

	_, err = runCommand(newSwitchToggleCommand(), mock, "hall-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestSwitchRefreshCommand(t *testing.T) {
	mock := newMockClient()
	out, err := runCommand(newSwitchRefreshCommand(), mock, "hall-1", "-p")
	require.NoError(t, err)
	assert.Contains(t, out, `id="hall-1"`)
	assert.Equal(t, []string{"refresh hall-1"}, mock.calls)
}

func TestSwitchRenameCommand(t *testing.T) {
	mock := newMockClient()
	out, err := runCommand(newSwitchRenameCommand(), mock, "hall-2", "Porch")
	require.NoError(t, err)
	assert.Equal(t, "hall-2 renamed to \"Porch\"\n", out)
	assert.Equal(t, "Porch", mock.switches["hall-2"].Label)

	_, err = runCommand(newSwitchRenameCommand(), mock, "hall-2", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestCommandWithoutClient(t *testing.T) {
	cmd := newSwitchListCommand()
	cmd.SetArgs(nil)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API client")
}

package commands

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptxhome/ptxswitchd/pkg/client"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0.0", "abc", "today")
	assert.Equal(t, "ptxctl", cmd.Use)

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"version", "switch", "device", "discover"}, names)

	for _, flag := range []string{"config", "url", "api-key", "log-level", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(NewRootCommand("0.9.0", "deadbeef", "2026-02-03"), newMockClient(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    0.9.0")
	assert.Contains(t, out, "Daemon:\n  Version:    1.2.3")

	mock := newMockClient()
	mock.err = errors.New("dial tcp: connection refused")
	out, err = runCommand(NewRootCommand("0.9.0", "deadbeef", "2026-02-03"), mock, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon: not reachable")
}

func TestRootCommandInvalidOutput(t *testing.T) {
	_, err := runCommand(NewRootCommand("dev", "none", "unknown"), newMockClient(), "switch", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRootCommandBuildsClient(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := NewRootCommand("dev", "none", "unknown")
	var captured client.API
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		captured, _ = clientFromCmd(cmd)
	}
	root.SetOut(io.Discard)
	root.SetArgs([]string{"version", "--url", "http://127.0.0.1:1", "--api-key", "k"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	require.NotNil(t, captured)
	assert.IsType(t, &client.HTTPClient{}, captured)
}

// fakeResolver replays canned entries and closes the channel.
type fakeResolver struct {
	entries []*zeroconf.ServiceEntry
}

func (f *fakeResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	go func() {
		defer close(entries)
		for _, e := range f.entries {
			select {
			case entries <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func TestDiscoverCommand(t *testing.T) {
	e := zeroconf.NewServiceEntry("090615-switch-switch03_miio123456", "_miio._udp", "local.")
	e.HostName = "ptx-switch.local."
	e.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.42")}
	other := zeroconf.NewServiceEntry("yeelink-light-color1_miio99", "_miio._udp", "local.")

	old := newResolver
	newResolver = func() (ptx.Resolver, error) {
		return &fakeResolver{entries: []*zeroconf.ServiceEntry{e, other}}, nil
	}
	t.Cleanup(func() { newResolver = old })

	out, err := runCommand(NewDiscoverCommand(), newMockClient(), "-p", "--timeout", time.Second.String())
	require.NoError(t, err)
	assert.Equal(t, "address=\"10.0.0.42\" model=\"090615.switch.switch03\" device_id=\"123456\" instance=\"090615-switch-switch03_miio123456\"\n", out)
}

func TestDiscoverCommandResolverError(t *testing.T) {
	old := newResolver
	newResolver = func() (ptx.Resolver, error) { return nil, errors.New("no multicast interface") }
	t.Cleanup(func() { newResolver = old })

	_, err := runCommand(NewDiscoverCommand(), newMockClient(), "-p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no multicast interface")
}

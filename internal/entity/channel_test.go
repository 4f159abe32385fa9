package entity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/ptxhome/ptxswitchd/internal/errors"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/internal/simulator"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChannel(t *testing.T, model ptx.Model, index int, bus *events.Bus) (*Channel, *simulator.Device) {
	t.Helper()
	dev, err := simulator.New(model, "AA:BB:CC:DD:EE:01")
	require.NoError(t, err)
	sw, err := ptx.NewSwitch(model, dev, testLogger())
	require.NoError(t, err)
	ch, err := New(Options{
		Switch:          sw,
		Index:           index,
		Name:            "hall",
		Host:            "192.168.1.40",
		HardwareAddress: "AA:BB:CC:DD:EE:01",
		Bus:             bus,
		Logger:          testLogger(),
	})
	require.NoError(t, err)
	return ch, dev
}

func TestNewChannelValidation(t *testing.T) {
	_, err := New(Options{Index: 1})
	assert.Error(t, err)

	dev, err := simulator.New(ptx.ModelDual, "")
	require.NoError(t, err)
	sw, err := ptx.NewSwitch(ptx.ModelDual, dev, testLogger())
	require.NoError(t, err)

	_, err = New(Options{Switch: sw, Index: 3})
	assert.ErrorIs(t, err, ptx.ErrUnsupportedChannel)
}

func TestChannelIdentity(t *testing.T) {
	ch, _ := newChannel(t, ptx.ModelTriple, 2, nil)

	assert.Equal(t, "090615.switch.switch03-aa:bb:cc:dd:ee:01-2", ch.UniqueID())
	assert.Equal(t, "hall_2", ch.Name())
	assert.Equal(t, 2, ch.Index())
	assert.Equal(t, "192.168.1.40", ch.Host())
}

func TestChannelUniqueIDFallsBackToHost(t *testing.T) {
	dev, err := simulator.New(ptx.ModelSingle, "")
	require.NoError(t, err)
	sw, err := ptx.NewSwitch(ptx.ModelSingle, dev, testLogger())
	require.NoError(t, err)

	ch, err := New(Options{Switch: sw, Index: 1, Name: "porch", Host: "10.0.0.9"})
	require.NoError(t, err)
	assert.Equal(t, "090615.switch.switch01-10.0.0.9-1", ch.UniqueID())
}

func TestChannelInitialState(t *testing.T) {
	ch, _ := newChannel(t, ptx.ModelSingle, 1, nil)
	assert.Equal(t, ptx.StateUnknown, ch.IsOn())
	assert.False(t, ch.Available())
}

// scripted answers flag reads from a queue so the skip-once behaviour can be
// observed exactly.
type scripted struct {
	mu    sync.Mutex
	flags [][]any
	calls []string
}

func (s *scripted) Send(_ context.Context, method string, params []any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)
	switch method {
	case "SetSwitch1":
		return []any{params[0]}, nil
	case "get_prop":
		if _, ok := params[0].(string); ok {
			return []any{"switch1"}, nil
		}
		reply := s.flags[0]
		if len(s.flags) > 1 {
			s.flags = s.flags[1:]
		}
		return reply, nil
	}
	return nil, errors.New("unexpected method")
}

func TestChannelSkipOnceRoundTrip(t *testing.T) {
	sender := &scripted{flags: [][]any{{0, 0, 0, 1}}}
	sw, err := ptx.NewSwitch(ptx.ModelTriple, sender, testLogger())
	require.NoError(t, err)
	ch, err := New(Options{Switch: sw, Index: 1, Name: "hall", Host: "h", Logger: testLogger()})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, ptx.StateUnknown, ch.IsOn())

	require.True(t, ch.TurnOn(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn())

	// First refresh after the command is skipped without any I/O.
	callsBefore := len(sender.calls)
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn())
	assert.Len(t, sender.calls, callsBefore)

	// Second refresh reflects the transport, which still reports off.
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOff, ch.IsOn())
	assert.True(t, ch.Available())
}

func TestChannelWithLaggingDevice(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelDual, 2, nil)
	ctx := context.Background()

	require.NoError(t, ch.Refresh(ctx))
	dev.SetLag(1)

	require.True(t, ch.TurnOn(ctx))
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn(), "skipped refresh keeps local state")

	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOff, ch.IsOn(), "stale device read wins once polled")

	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn())
}

func TestChannelTransportFailureKeepsState(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelTriple, 3, nil)
	ctx := context.Background()

	dev.SetPower(3, true)
	require.NoError(t, ch.Refresh(ctx))
	require.True(t, ch.Available())
	require.Equal(t, ptx.StateOn, ch.IsOn())

	dev.FailWith(errors.New("token mismatch"))
	err := ch.Refresh(ctx)
	assert.ErrorIs(t, err, ptx.ErrDeviceUnavailable)
	assert.False(t, ch.Available())
	assert.Equal(t, ptx.StateOn, ch.IsOn(), "last known state retained")

	dev.FailWith(nil)
	require.NoError(t, ch.Refresh(ctx))
	assert.True(t, ch.Available())
}

func TestChannelCommandFailures(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelSingle, 1, nil)
	ctx := context.Background()
	require.NoError(t, ch.Refresh(ctx))

	dev.OverrideReply("SetSwitch1", []any{"error"})
	assert.False(t, ch.TurnOn(ctx))
	assert.Equal(t, ptx.StateOff, ch.IsOn())
	assert.True(t, ch.Available(), "unconfirmed command is not a transport failure")

	dev.OverrideReply("SetSwitch1", nil)
	dev.FailWith(errors.New("timeout"))
	assert.False(t, ch.TurnOff(ctx))
	assert.False(t, ch.Available())

	// No skip is armed after a failed command.
	dev.FailWith(nil)
	dev.SetPower(1, true)
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn())
}

func TestChannelSetPowerCauses(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelDual, 2, nil)
	ctx := context.Background()
	require.NoError(t, ch.Refresh(ctx))

	dev.OverrideReply("SetSwitch2", []any{"error"})
	err := ch.SetPower(ctx, true)
	assert.True(t, perrors.IsNotConfirmed(err))
	assert.False(t, perrors.IsDeviceUnavailable(err))
	assert.True(t, ch.Available())

	dev.OverrideReply("SetSwitch2", nil)
	dev.FailWith(errors.New("timeout"))
	err = ch.SetPower(ctx, true)
	assert.True(t, perrors.IsDeviceUnavailable(err))
	assert.False(t, perrors.IsNotConfirmed(err))
	assert.False(t, ch.Available())

	dev.FailWith(nil)
	require.NoError(t, ch.SetPower(ctx, true))
	assert.Equal(t, ptx.StateOn, ch.IsOn())
	assert.True(t, dev.Power(2))
}

func TestChannelApplyConfirmed(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelTriple, 1, nil)
	ctx := context.Background()
	require.NoError(t, ch.Refresh(ctx))

	ch.ApplyConfirmed(true)
	assert.Equal(t, ptx.StateOn, ch.IsOn())
	assert.False(t, ch.Snapshot().LastUpdate.IsZero())

	// The device still reports off, but the next refresh is skipped.
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOn, ch.IsOn())
	require.NoError(t, ch.Refresh(ctx))
	assert.Equal(t, ptx.StateOff, ch.IsOn())
	assert.False(t, dev.Power(1))
}

func TestChannelMarkUnavailable(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelSingle, 1, nil)
	ctx := context.Background()
	dev.SetPower(1, true)
	require.NoError(t, ch.Refresh(ctx))

	ch.MarkUnavailable()
	assert.False(t, ch.Available())
	assert.Equal(t, ptx.StateOn, ch.IsOn())

	require.NoError(t, ch.Refresh(ctx))
	assert.True(t, ch.Available())
}

func TestChannelRename(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelDual, 1, nil)
	ctx := context.Background()

	assert.True(t, ch.Rename(ctx, "Porch"))
	assert.Equal(t, "Porch", dev.ChannelName(1))
	assert.Equal(t, "Porch", ch.Snapshot().Label)

	assert.False(t, ch.Rename(ctx, ""))

	dev.OverrideReply("SetSwtichname1", []any{"error"})
	assert.False(t, ch.Rename(ctx, "Garage"))
	assert.Equal(t, "Porch", ch.Snapshot().Label)
	assert.True(t, perrors.IsNotConfirmed(ch.SetName(ctx, "Garage")))
}

func TestChannelSnapshot(t *testing.T) {
	ch, dev := newChannel(t, ptx.ModelHardTriple, 2, nil)
	dev.SetPower(2, true)
	require.NoError(t, ch.Refresh(context.Background()))

	snap := ch.Snapshot()
	assert.Equal(t, ch.UniqueID(), snap.UniqueID)
	assert.Equal(t, "hall_2", snap.Name)
	assert.Equal(t, "switch2", snap.Label)
	assert.Equal(t, ptx.ModelHardTriple, snap.Model)
	assert.Equal(t, ptx.StateOn, snap.State)
	assert.True(t, snap.Available)
	assert.False(t, snap.LastUpdate.IsZero())
}

func TestChannelEvents(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	var got []events.Event
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	ch, dev := newChannel(t, ptx.ModelSingle, 1, bus)
	ctx := context.Background()

	require.NoError(t, ch.Refresh(ctx))
	require.NoError(t, ch.Refresh(ctx))
	require.True(t, ch.TurnOn(ctx))
	dev.FailWith(errors.New("gone"))
	_ = ch.Refresh(ctx) // skipped
	_ = ch.Refresh(ctx)

	mu.Lock()
	defer mu.Unlock()
	types := make([]events.EventType, 0, len(got))
	for _, e := range got {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{
		events.ChannelAvailabilityChanged,
		events.ChannelStateChanged,
		events.ChannelStateChanged,
		events.ChannelAvailabilityChanged,
	}, types)

	var data events.ChannelData
	require.NoError(t, got[2].Decode(&data))
	assert.Equal(t, ch.UniqueID(), data.UniqueID)
	require.NotNil(t, data.On)
	assert.True(t, *data.On)
}

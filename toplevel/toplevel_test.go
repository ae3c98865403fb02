package toplevel

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAppID(t *testing.T) {
	tests := []struct {
		in, id, gtk string
	}{
		{in: "firefox", id: "firefox"},
		{in: "gedit org.gnome.gedit", id: "gedit", gtk: "org.gnome.gedit"},
		{in: "a b c", id: "a", gtk: "b"},
		{in: "", id: ""},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			id, gtk := splitAppID(test.in)
			assert.Equal(t, test.id, id)
			assert.Equal(t, test.gtk, gtk)
		})
	}
}

func TestMatchesID(t *testing.T) {
	top := Toplevel{AppID: "gedit", GtkAppID: "org.gnome.gedit"}
	assert.True(t, top.MatchesID("gedit"))
	assert.True(t, top.MatchesID("org.gnome.gedit"))
	assert.False(t, top.MatchesID(""))
	assert.False(t, Toplevel{AppID: "foot"}.MatchesID(""))
}

func TestParseStates(t *testing.T) {
	data := binary.NativeEndian.AppendUint32(nil, uint32(StateActivated))
	data = binary.NativeEndian.AppendUint32(data, uint32(StateMaximized))

	states := parseStates(data)
	assert.Equal(t, []State{StateActivated, StateMaximized}, states)
	assert.True(t, Toplevel{States: states}.Has(StateActivated))
	assert.False(t, Toplevel{States: states}.Has(StateMinimized))
}

func TestTrackerSubscribe(t *testing.T) {
	tracker := Tracker{
		state:   make(map[uint32]Toplevel),
		changed: make(chan struct{}),
	}

	_, gen := tracker.State()
	errc := make(chan error, 1)
	go func() { errc <- tracker.Subscribe(context.Background(), gen) }()

	tracker.publish(4, &Toplevel{Title: "Terminal"})
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber was never notified")
	}

	state, gen := tracker.State()
	assert.Equal(t, "Terminal", state[4].Title)
	delete(state, 4)
	state, _ = tracker.State()
	assert.Len(t, state, 1)

	tracker.publish(4, nil)
	state, _ = tracker.State()
	assert.Empty(t, state)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, tracker.Subscribe(ctx, gen), "removal happened after gen")

	_, gen = tracker.State()
	assert.ErrorIs(t, tracker.Subscribe(ctx, gen), context.Canceled)
}

func TestTrackerChangeBeforeSubscribe(t *testing.T) {
	tracker := Tracker{
		state:   make(map[uint32]Toplevel),
		changed: make(chan struct{}),
	}

	_, gen := tracker.State()
	tracker.publish(1, &Toplevel{AppID: "foot"})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, tracker.Subscribe(ctx, gen))
}

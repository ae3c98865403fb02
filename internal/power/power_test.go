package power

import (
	"context"
	"path"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batDir = "/sys/class/power_supply/BAT0"

func writeSupply(t *testing.T, fs afero.Fs, dir string, attrs map[string]string) {
	t.Helper()
	for name, v := range attrs {
		require.NoError(t, afero.WriteFile(fs, path.Join(dir, name), []byte(v+"\n"), 0644))
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
		want  Snapshot
		err   bool
	}{
		{
			name:  "Battery",
			attrs: map[string]string{"type": "Battery", "capacity": "57", "status": "Discharging"},
			want:  Snapshot{Kind: KindBattery, Percentage: 57, Status: "Discharging"},
		},
		{
			name:  "Clamped",
			attrs: map[string]string{"type": "Battery", "capacity": "104", "status": "Full"},
			want:  Snapshot{Kind: KindBattery, Percentage: 100, Status: "Full"},
		},
		{
			name:  "No status",
			attrs: map[string]string{"type": "Battery", "capacity": "3"},
			want:  Snapshot{Kind: KindBattery, Percentage: 3, Status: "Unknown"},
		},
		{
			name:  "Mains",
			attrs: map[string]string{"type": "Mains", "online": "1"},
			want:  Snapshot{Kind: KindLine, Online: true},
		},
		{
			name:  "Bad capacity",
			attrs: map[string]string{"type": "Battery", "capacity": "lots"},
			err:   true,
		},
		{
			name:  "Unsupported",
			attrs: map[string]string{"type": "Wireless"},
			err:   true,
		},
		{
			name: "Missing",
			err:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeSupply(t, fs, batDir, tt.attrs)

			s, err := Read(fs, batDir)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestIconName(t *testing.T) {
	tests := []struct {
		s    Snapshot
		icon string
	}{
		{Snapshot{}, "ac-adapter"},
		{Snapshot{Kind: KindLine, Online: true}, "ac-adapter"},
		{Snapshot{Kind: KindBattery, Percentage: 100, Status: "Full"}, "battery-full-charging"},
		{Snapshot{Kind: KindBattery, Percentage: 70, Status: "Discharging"}, "battery-good"},
		{Snapshot{Kind: KindBattery, Percentage: 45, Status: "Charging"}, "battery-low-charging"},
		{Snapshot{Kind: KindBattery, Percentage: 12}, "battery-caution"},
		{Snapshot{Kind: KindBattery, Percentage: 2}, "battery-empty"},
	}

	for _, tt := range tests {
		t.Run(tt.icon, func(t *testing.T) {
			assert.Equal(t, tt.icon, tt.s.IconName())
		})
	}
}

func TestServiceNotifies(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSupply(t, fs, batDir, map[string]string{"type": "Battery", "capacity": "80", "status": "Discharging"})

	s := NewService(fs, batDir, 5*time.Millisecond)
	state, gen := s.State()
	assert.Equal(t, 80.0, state.Percentage)
	assert.False(t, s.Refresh())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go s.Run(ctx)

	sub := make(chan error, 1)
	go func() { sub <- s.Subscribe(ctx, gen) }()

	for capacity := 79; capacity > 0; capacity-- {
		writeSupply(t, fs, batDir, map[string]string{"capacity": strconv.Itoa(capacity)})

		select {
		case err := <-sub:
			require.NoError(t, err)
			state, _ := s.State()
			assert.Less(t, state.Percentage, 80.0)
			return
		case <-time.After(20 * time.Millisecond):
		}
	}
	t.Fatal("subscriber was never notified")
}

func TestServiceChangeBeforeSubscribe(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSupply(t, fs, batDir, map[string]string{"type": "Battery", "capacity": "50", "status": "Discharging"})

	s := NewService(fs, batDir, time.Hour)
	state, gen := s.State()
	assert.Equal(t, 50.0, state.Percentage)

	writeSupply(t, fs, batDir, map[string]string{"capacity": "20"})
	require.True(t, s.Refresh())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Subscribe(ctx, gen), "change made after State must not be missed")

	state, next := s.State()
	assert.Equal(t, 20.0, state.Percentage)
	assert.Greater(t, next, gen)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Subscribe(ctx, next), context.Canceled)
}

func TestServiceMissingSupply(t *testing.T) {
	s := NewService(afero.NewMemMapFs(), batDir, 0)
	state, gen := s.State()
	assert.Equal(t, KindNone, state.Kind)
	assert.Equal(t, "ac-adapter", state.IconName())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Subscribe(ctx, gen), context.Canceled)
}

// Package power reports the state of the system's battery from sysfs.
package power

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"deedles.dev/waysmoke/internal/logger"
	"github.com/spf13/afero"
)

const DefaultInterval = 30 * time.Second

type Kind int

const (
	// KindNone means that no power supply could be read.
	KindNone Kind = iota
	KindBattery
	KindLine
)

// Snapshot is the state of a power supply at some point in time.
type Snapshot struct {
	Kind Kind

	// Percentage and Status are only set for batteries. Status is the
	// raw value of the status attribute, such as "Charging".
	Percentage float64
	Status     string

	// Online is only set for line power.
	Online bool
}

// Charging reports whether a battery is being charged or is full and
// plugged in.
func (s Snapshot) Charging() bool {
	return s.Kind == KindBattery && (s.Status == "Charging" || s.Status == "Full")
}

// IconName returns the name of the freedesktop icon that represents s.
func (s Snapshot) IconName() string {
	if s.Kind != KindBattery {
		return "ac-adapter"
	}

	var level string
	switch p := s.Percentage; {
	case p >= 95:
		level = "battery-full"
	case p >= 60:
		level = "battery-good"
	case p >= 30:
		level = "battery-low"
	case p >= 10:
		level = "battery-caution"
	default:
		level = "battery-empty"
	}
	if s.Charging() {
		level += "-charging"
	}
	return level
}

func (s Snapshot) String() string {
	switch s.Kind {
	case KindBattery:
		return fmt.Sprintf("%.0f%% (%v)", s.Percentage, s.Status)
	case KindLine:
		if s.Online {
			return "on line power"
		}
		return "line power offline"
	}
	return "unknown"
}

// Read reads the power supply at dir, a directory under
// /sys/class/power_supply.
func Read(fs afero.Fs, dir string) (Snapshot, error) {
	typ, err := readAttr(fs, dir, "type")
	if err != nil {
		return Snapshot{}, err
	}

	switch typ {
	case "Battery":
		capacity, err := readAttr(fs, dir, "capacity")
		if err != nil {
			return Snapshot{}, err
		}
		p, err := strconv.ParseFloat(capacity, 64)
		if err != nil {
			return Snapshot{}, fmt.Errorf("parse capacity %q: %w", capacity, err)
		}

		status, err := readAttr(fs, dir, "status")
		if err != nil {
			status = "Unknown"
		}

		return Snapshot{
			Kind:       KindBattery,
			Percentage: min(max(p, 0), 100),
			Status:     status,
		}, nil

	case "Mains", "USB":
		online, err := readAttr(fs, dir, "online")
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Kind: KindLine, Online: online == "1"}, nil
	}

	return Snapshot{}, fmt.Errorf("unsupported power supply type %q", typ)
}

func readAttr(fs afero.Fs, dir, name string) (string, error) {
	data, err := afero.ReadFile(fs, path.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("read %v: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Service polls a power supply and notifies subscribers when its state
// changes. State and Subscribe are safe to call from any goroutine.
//
// Every change bumps a generation counter. State returns the
// generation that the snapshot belongs to and Subscribe waits for a
// later one, so a change that lands between the two calls is not
// lost.
type Service struct {
	fs       afero.Fs
	dir      string
	interval time.Duration

	m       sync.Mutex
	state   Snapshot
	gen     uint64
	changed chan struct{}
}

// NewService returns a Service for the power supply at dir. The
// initial state is read immediately.
func NewService(fs afero.Fs, dir string, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := Service{
		fs:       fs,
		dir:      dir,
		interval: interval,
		changed:  make(chan struct{}),
	}
	s.Refresh()
	return &s
}

// State returns the most recently read state and its generation.
func (s *Service) State() (Snapshot, uint64) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.state, s.gen
}

// Subscribe blocks until the generation is later than since or ctx is
// canceled. It returns immediately if it already is.
func (s *Service) Subscribe(ctx context.Context, since uint64) error {
	s.m.Lock()
	if s.gen > since {
		s.m.Unlock()
		return nil
	}
	changed := s.changed
	s.m.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-changed:
		return nil
	}
}

// Refresh reads the power supply again and reports whether its state
// changed. A supply that cannot be read has KindNone.
func (s *Service) Refresh() bool {
	state, err := Read(s.fs, s.dir)
	if err != nil {
		logger.Debug("read power supply", "dir", s.dir, "err", err)
	}

	s.m.Lock()
	defer s.m.Unlock()

	if state == s.state {
		return false
	}
	s.state = state
	s.gen++
	close(s.changed)
	s.changed = make(chan struct{})
	return true
}

// Run polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if s.Refresh() {
				state, gen := s.State()
				logger.Debug("power state changed", "state", state, "gen", gen)
			}
		}
	}
}

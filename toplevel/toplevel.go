// Package toplevel tracks the windows of other clients through the
// wlr-foreign-toplevel-management-unstable-v1 protocol.
package toplevel

import (
	"context"
	"encoding/binary"
	"strings"
	"sync"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/wire"
	"golang.org/x/exp/maps"
)

const (
	ManagerInterface = "zwlr_foreign_toplevel_manager_v1"
	managerVersion   = 3

	HandleInterface = "zwlr_foreign_toplevel_handle_v1"
)

type State uint32

const (
	StateMaximized State = iota
	StateMinimized
	StateActivated
	StateFullscreen
)

// Toplevel is a snapshot of a window's properties as of its last done
// event.
type Toplevel struct {
	Handle   *Handle
	Title    string
	AppID    string
	GtkAppID string
	Outputs  []*wl.Output
	States   []State
}

// MatchesID reports whether id is either of the window's app IDs.
func (t Toplevel) MatchesID(id string) bool {
	return id == t.AppID || (t.GtkAppID != "" && id == t.GtkAppID)
}

func (t Toplevel) Has(state State) bool {
	for _, s := range t.States {
		if s == state {
			return true
		}
	}
	return false
}

// Tracker keeps the set of open windows. Protocol events are handled
// on the goroutine that dispatches the connection, but State and
// Subscribe may be called from anywhere. Each change bumps a
// generation counter that State reports and Subscribe waits past.
type Tracker struct {
	manager *Manager

	m       sync.Mutex
	state   map[uint32]Toplevel
	gen     uint64
	changed chan struct{}
}

func NewTracker(client *wl.Client, registry *wl.Registry, name, version uint32) *Tracker {
	t := Tracker{
		state:   make(map[uint32]Toplevel),
		changed: make(chan struct{}),
	}
	t.manager = &Manager{
		Proxy:   wl.NewProxy(client, wl.BindVersion(version, managerVersion)),
		tracker: &t,
	}
	registry.Bind(name, ManagerInterface, t.manager.Version(), t.manager)
	return &t
}

// State returns the windows that are currently open keyed by handle
// ID along with the generation of that set.
func (t *Tracker) State() (map[uint32]Toplevel, uint64) {
	t.m.Lock()
	defer t.m.Unlock()

	return maps.Clone(t.state), t.gen
}

// Subscribe blocks until the generation of the set of windows is later
// than since or ctx is canceled.
func (t *Tracker) Subscribe(ctx context.Context, since uint64) error {
	t.m.Lock()
	if t.gen > since {
		t.m.Unlock()
		return nil
	}
	changed := t.changed
	t.m.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-changed:
		return nil
	}
}

func (t *Tracker) publish(id uint32, top *Toplevel) {
	t.m.Lock()
	defer t.m.Unlock()

	if top == nil {
		delete(t.state, id)
	} else {
		t.state[id] = *top
	}

	t.gen++
	close(t.changed)
	t.changed = make(chan struct{})
}

// Stop asks the compositor to stop sending events.
func (t *Tracker) Stop() {
	t.manager.Client().Enqueue(wl.NewRequest(t.manager, 0, "stop"))
}

type Manager struct {
	wl.Proxy
	tracker *Tracker
}

func (m *Manager) Interface() string {
	return ManagerInterface
}

func (m *Manager) MethodName(op uint16) string {
	switch op {
	case 0:
		return "toplevel"
	case 1:
		return "finished"
	}
	return "unknown"
}

func (m *Manager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		h := Handle{Proxy: wl.NewProxy(m.Client(), m.Version()), tracker: m.tracker}
		h.SetID(id)
		h.pending.Handle = &h
		m.Client().Add(&h)
		return nil

	case 1:
		logger.Debug("foreign toplevel manager finished")
		m.Client().Delete(m.ID())
		return nil

	default:
		return wl.UnknownEvent(ManagerInterface, msg.Op())
	}
}

// Handle is a window belonging to another client.
type Handle struct {
	wl.Proxy
	tracker *Tracker
	pending Toplevel
}

func (h *Handle) Interface() string {
	return HandleInterface
}

func (h *Handle) MethodName(op uint16) string {
	switch op {
	case 0:
		return "title"
	case 1:
		return "app_id"
	case 2:
		return "output_enter"
	case 3:
		return "output_leave"
	case 4:
		return "state"
	case 5:
		return "done"
	case 6:
		return "closed"
	case 7:
		return "parent"
	}
	return "unknown"
}

func (h *Handle) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		h.pending.Title = msg.ReadString()

	case 1:
		h.pending.AppID, h.pending.GtkAppID = splitAppID(msg.ReadString())

	case 2, 3:
		id := msg.ReadUint()
		output, _ := h.Client().Get(id).(*wl.Output)
		if output == nil {
			break
		}
		h.pending.Outputs = removeOutput(h.pending.Outputs, output)
		if msg.Op() == 2 {
			h.pending.Outputs = append(h.pending.Outputs, output)
		}

	case 4:
		h.pending.States = parseStates(msg.ReadArray())

	case 5:
		top := h.pending
		top.Outputs = append([]*wl.Output(nil), top.Outputs...)
		top.States = append([]State(nil), top.States...)
		h.tracker.publish(h.ID(), &top)

	case 6:
		h.tracker.publish(h.ID(), nil)
		h.Client().Enqueue(wl.NewRequest(h, 7, "destroy"))
		h.Client().Delete(h.ID())

	case 7:
		msg.ReadUint()

	default:
		return wl.UnknownEvent(HandleInterface, msg.Op())
	}

	return msg.Err()
}

func (h *Handle) SetMaximized(maximized bool) {
	if maximized {
		h.Client().Enqueue(wl.NewRequest(h, 0, "set_maximized"))
		return
	}
	h.Client().Enqueue(wl.NewRequest(h, 1, "unset_maximized"))
}

func (h *Handle) SetMinimized(minimized bool) {
	if minimized {
		h.Client().Enqueue(wl.NewRequest(h, 2, "set_minimized"))
		return
	}
	h.Client().Enqueue(wl.NewRequest(h, 3, "unset_minimized"))
}

// Activate focuses the window on behalf of seat.
func (h *Handle) Activate(seat *wl.Seat) {
	msg := wl.NewRequest(h, 4, "activate", seat)
	msg.WriteObject(seat)
	h.Client().Enqueue(msg)
}

func (h *Handle) Close() {
	h.Client().Enqueue(wl.NewRequest(h, 5, "close"))
}

// splitAppID separates the GTK application ID that some compositors
// append to the app ID after a space.
func splitAppID(appID string) (id, gtk string) {
	id, gtk, _ = strings.Cut(appID, " ")
	if strings.Contains(gtk, " ") {
		logger.Warn("app_id with more than one space", "app_id", appID)
		gtk, _, _ = strings.Cut(gtk, " ")
	}
	return id, gtk
}

func parseStates(data []byte) []State {
	states := make([]State, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		states = append(states, State(binary.NativeEndian.Uint32(data[i:])))
	}
	return states
}

func removeOutput(outputs []*wl.Output, output *wl.Output) []*wl.Output {
	r := outputs[:0]
	for _, o := range outputs {
		if o != output {
			r = append(r, o)
		}
	}
	return r
}

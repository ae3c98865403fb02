package dock

import (
	"context"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"deedles.dev/waysmoke/internal/apps"
	"deedles.dev/waysmoke/internal/power"
	"deedles.dev/waysmoke/pointer"
	"deedles.dev/waysmoke/toplevel"
	"deedles.dev/waysmoke/ui"
	"deedles.dev/waysmoke/wstk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource[T any] struct {
	m       sync.Mutex
	state   T
	gen     uint64
	changed chan struct{}
}

func newFakeSource[T any](state T) *fakeSource[T] {
	return &fakeSource[T]{state: state, changed: make(chan struct{})}
}

func (f *fakeSource[T]) State() (T, uint64) {
	f.m.Lock()
	defer f.m.Unlock()
	return f.state, f.gen
}

func (f *fakeSource[T]) Subscribe(ctx context.Context, since uint64) error {
	f.m.Lock()
	if f.gen > since {
		f.m.Unlock()
		return nil
	}
	changed := f.changed
	f.m.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-changed:
		return nil
	}
}

func (f *fakeSource[T]) set(state T) {
	f.m.Lock()
	defer f.m.Unlock()

	f.state = state
	f.gen++
	close(f.changed)
	f.changed = make(chan struct{})
}

type fakeApps map[string]*apps.App

func (f fakeApps) Lookup(id string) (*apps.App, error) {
	app, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%v: %w", id, apps.ErrNotFound)
	}
	return app, nil
}

func (f fakeApps) Icon(name string) string {
	if name == "" {
		return ""
	}
	return "/icons/" + name + ".png"
}

type testDock struct {
	*Dock
	toplevels *fakeSource[map[uint32]toplevel.Toplevel]
	battery   *fakeSource[power.Snapshot]
	activated []toplevel.Toplevel
	launched  []string
}

var knownApps = fakeApps{
	"firefox":            {ID: "firefox", Name: "Firefox", Icon: "firefox", Exec: "firefox %u"},
	"Alacritty":          {ID: "Alacritty", Name: "Alacritty", Icon: "Alacritty", Exec: "alacritty"},
	"org.gnome.Nautilus": {ID: "org.gnome.Nautilus", Name: "Files", Icon: "org.gnome.Nautilus", Exec: "nautilus"},
}

func newTestDock(t *testing.T, pinned []string, tops map[uint32]toplevel.Toplevel) *testDock {
	t.Helper()

	td := testDock{
		toplevels: newFakeSource(tops),
		battery:   newFakeSource(power.Snapshot{Kind: power.KindBattery, Percentage: 50, Status: "Discharging"}),
	}
	svc := Services{
		Toplevels: td.toplevels,
		Power:     td.battery,
		Apps:      knownApps,
		Activate:  func(top toplevel.Toplevel) { td.activated = append(td.activated, top) },
		Launch: func(app *apps.App) error {
			td.launched = append(td.launched, app.ID)
			return nil
		},
		Pinned:   pinned,
		Icons:    map[string]string{"Alacritty": "/custom/alacritty.png"},
		IconSize: 48,
	}
	td.Dock = New(&svc)
	return &td
}

func (td *testDock) ids() []string {
	ids := make([]string, 0, len(td.apps))
	for _, app := range td.apps {
		ids = append(ids, app.ID())
	}
	return ids
}

// areas lays the dock out on a surface of the given width.
func (td *testDock) areas(width int) areas {
	return td.layoutAreas(width, BarHeight+td.dockAndGapHeight()+PopoverHeightMax)
}

func TestUpdateApps(t *testing.T) {
	tops := map[uint32]toplevel.Toplevel{
		7: {Title: "Terminal", AppID: "Alacritty"},
		3: {Title: "Mozilla Firefox", AppID: "firefox"},
		9: {Title: "Unknown", AppID: "mystery"},
		4: {Title: "Files", AppID: "nautilus", GtkAppID: "org.gnome.Nautilus"},
	}
	td := newTestDock(t, []string{"firefox", "telegramdesktop"}, tops)
	assert.Equal(t, []string{"firefox", "org.gnome.Nautilus", "Alacritty"}, td.ids())

	delete(tops, 7)
	delete(tops, 3)
	td.updateApps()
	assert.Equal(t, []string{"firefox", "org.gnome.Nautilus"}, td.ids())
}

func TestGeometry(t *testing.T) {
	td := newTestDock(t, []string{"firefox", "Alacritty"}, nil)
	require.Len(t, td.docklets(), 3)

	assert.Equal(t, 64, td.dockHeight())
	assert.Equal(t, 3*56+2*DockPadding+2*DockPadding, td.width())
	assert.Equal(t, DockPadding+28, td.centerOf(0))
	assert.Equal(t, DockPadding+2*(56+DockPadding)+28, td.centerOf(2))
}

func TestInputRegion(t *testing.T) {
	td := newTestDock(t, []string{"firefox"}, nil)
	bar := image.Rect(0, 492, 1000, 502)

	assert.Equal(t, []image.Rectangle{bar}, td.InputRegion(1000, 502))

	td.OnPointerEnter(context.Background())
	a := td.areas(1000)
	region := td.InputRegion(1000, 502)
	require.Len(t, region, 2)
	assert.Equal(t, bar, region[0])
	assert.Equal(t, td.width(), a.dock.Dx())
	assert.Equal(t, td.dockHeight(), a.dock.Dy())
	assert.Equal(t, a.dock.Inset(-dockInputPadding), region[1])
	assert.True(t, a.popover.Empty())

	require.NoError(t, td.Update(context.Background(), Msg{Index: 0, Inner: DockletMsg{Kind: Hover}}))
	a = td.areas(1000)
	region = td.InputRegion(1000, 502)
	require.Len(t, region, 3)
	assert.False(t, a.popover.Empty())
	assert.Equal(t, a.popover.Inset(-popoverInputPadding), region[2])

	td.OnPointerLeave(context.Background())
	assert.Equal(t, []image.Rectangle{bar}, td.InputRegion(1000, 502))
	assert.Equal(t, areas{}, td.areas(1000))
}

func TestViewIsPure(t *testing.T) {
	td := newTestDock(t, []string{"firefox"}, nil)
	td.OnPointerEnter(context.Background())
	require.NoError(t, td.Update(context.Background(), Msg{Index: 0, Inner: DockletMsg{Kind: Hover}}))

	size := image.Pt(1000, 502)
	first := ui.Build(td.View(), size, nil).Draw(ui.NoCursor)
	region := td.InputRegion(size.X, size.Y)

	// Drawing a view at another size must not leak into the input
	// region computed for the real one.
	ui.Build(td.View(), image.Pt(300, 502), nil).Draw(ui.NoCursor)
	assert.Equal(t, region, td.InputRegion(size.X, size.Y))

	again := ui.Build(td.View(), size, nil).Draw(ui.NoCursor)
	assert.Empty(t, ui.Damage(first, again))
}

func TestHoverNeedsFocus(t *testing.T) {
	td := newTestDock(t, []string{"firefox"}, nil)

	require.NoError(t, td.Update(context.Background(), Msg{Index: 0, Inner: DockletMsg{Kind: Hover}}))
	assert.Equal(t, -1, td.hoveredDocklet())

	td.OnTouchEnter(context.Background())
	assert.Equal(t, 0, td.hoveredDocklet())

	td.OnTouchLeave(context.Background())
	assert.Equal(t, -1, td.hoveredDocklet())
}

func TestPopoverCentered(t *testing.T) {
	td := newTestDock(t, []string{"firefox", "Alacritty", "org.gnome.Nautilus"}, nil)
	td.OnPointerEnter(context.Background())

	for i := range td.docklets() {
		require.NoError(t, td.Update(context.Background(), Msg{Index: i, Inner: DockletMsg{Kind: Hover}}))
		a := td.areas(1000)

		center := a.dock.Min.X + td.centerOf(i)
		popover := (a.popover.Min.X + a.popover.Max.X) / 2
		assert.InDelta(t, center, popover, 1, "docklet %v", i)
	}
}

func TestClick(t *testing.T) {
	td := newTestDock(t, []string{"firefox", "Alacritty"}, map[uint32]toplevel.Toplevel{
		1: {Title: "One", AppID: "firefox"},
		2: {Title: "Two", AppID: "firefox"},
	})
	td.OnPointerEnter(context.Background())
	dock := td.areas(1000).dock

	click := func(i int) []Msg {
		pos := image.Pt(dock.Min.X+td.centerOf(i), dock.Min.Y+td.dockHeight()/2)
		view := ui.Build(td.View(), image.Pt(1000, 502), nil)
		return view.Update([]ui.Event{
			ui.CursorMoved{Pos: pos},
			ui.ButtonPressed{Button: pointer.ButtonLeft},
			ui.ButtonReleased{Button: pointer.ButtonLeft},
		}, ui.NoCursor)
	}

	msgs := click(0)
	assert.Equal(t, []Msg{
		{Index: 0, Inner: DockletMsg{Kind: Hover}},
		{Index: 0, Inner: DockletMsg{Kind: ActivateApp}},
	}, msgs)
	for _, msg := range msgs {
		require.NoError(t, td.Update(context.Background(), msg))
	}
	require.Len(t, td.activated, 1)
	assert.Equal(t, "One", td.activated[0].Title)
	assert.Empty(t, td.launched)

	for _, msg := range click(1) {
		require.NoError(t, td.Update(context.Background(), msg))
	}
	assert.Equal(t, []string{"Alacritty"}, td.launched)

	require.NoError(t, td.Update(context.Background(), Msg{Index: 0, Inner: DockletMsg{Kind: ActivateToplevel, Toplevel: 1}}))
	require.Len(t, td.activated, 2)
	assert.Equal(t, "Two", td.activated[1].Title)

	require.NoError(t, td.Update(context.Background(), Msg{Index: 0, Inner: DockletMsg{Kind: ActivateToplevel, Toplevel: 5}}))
	require.NoError(t, td.Update(context.Background(), Msg{Index: 42, Inner: DockletMsg{Kind: ActivateApp}}))
	assert.Len(t, td.activated, 2)
}

func TestRetainedImages(t *testing.T) {
	td := newTestDock(t, []string{"firefox", "Alacritty"}, nil)

	var paths []string
	for _, img := range td.RetainedImages() {
		paths = append(paths, img.Path())
	}
	assert.Equal(t, []string{"/icons/firefox.png", "/custom/alacritty.png", "/icons/battery-good.png"}, paths)
}

func runTask(t *testing.T, td *testDock, change func()) wstk.Action {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		task wstk.Task
		err  error
	}
	done := make(chan result, 1)
	go func() {
		task, err := td.Run(ctx)
		done <- result{task, err}
	}()

	change()
	r := <-done
	require.NoError(t, r.err)
	require.NotNil(t, r.task)
	return r.task()
}

func TestRunToplevels(t *testing.T) {
	td := newTestDock(t, nil, nil)
	assert.Empty(t, td.ids())

	action := runTask(t, td, func() {
		td.toplevels.set(map[uint32]toplevel.Toplevel{
			1: {Title: "Files", AppID: "org.gnome.Nautilus"},
		})
	})
	assert.Equal(t, wstk.Rerender, action)
	assert.Equal(t, []string{"org.gnome.Nautilus"}, td.ids())
}

func TestRunPower(t *testing.T) {
	td := newTestDock(t, nil, nil)
	icon := td.Dock.power.RetainedIcon()
	assert.Equal(t, "/icons/battery-good.png", icon.Path())

	action := runTask(t, td, func() {
		td.battery.set(power.Snapshot{Kind: power.KindBattery, Percentage: 5, Status: "Charging"})
	})
	assert.Equal(t, wstk.Rerender, action)
	assert.Equal(t, "/icons/battery-empty-charging.png", td.Dock.power.RetainedIcon().Path())
}

func TestRunChangeBetweenRuns(t *testing.T) {
	td := newTestDock(t, nil, nil)

	// Nothing is watching when these land.
	td.battery.set(power.Snapshot{Kind: power.KindBattery, Percentage: 20, Status: "Discharging"})
	td.toplevels.set(map[uint32]toplevel.Toplevel{
		1: {Title: "Firefox", AppID: "firefox"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	for range 2 {
		task, err := td.Run(ctx)
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, wstk.Rerender, task())
	}
	assert.Equal(t, []string{"firefox"}, td.ids())
	assert.Equal(t, "/icons/battery-caution.png", td.Dock.power.RetainedIcon().Path())

	task, err := td.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, task)
}

func TestRunCanceled(t *testing.T) {
	td := newTestDock(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task, err := td.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, task)
}

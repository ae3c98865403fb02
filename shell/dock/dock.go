// Package dock implements a dock that slides up from the bottom of
// each output. A thin bar is always shown and reserves space. The
// docklets appear above it while the pointer or a finger is on the
// surface.
package dock

import (
	"context"
	"image"
	"maps"
	"slices"

	"deedles.dev/waysmoke/internal/apps"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/internal/power"
	"deedles.dev/waysmoke/layershell"
	"deedles.dev/waysmoke/shell/style"
	"deedles.dev/waysmoke/toplevel"
	"deedles.dev/waysmoke/ui"
	"deedles.dev/waysmoke/wstk"
)

const (
	DefaultIconSize = 48

	PopoverHeightMax = 420
	ToplevelsWidth   = 290
	AppPadding       = 4
	DockPadding      = 4
	DockGap          = 8
	BarHeight        = 10

	barHandleWidth  = 192
	barHandleHeight = 4

	// Padding added around the visible parts of the dock when
	// computing the input region.
	dockInputPadding    = 12
	popoverInputPadding = 6
)

// Toplevels is the set of open windows. State returns a generation
// along with the set, and Subscribe blocks until the generation is
// later than since.
type Toplevels interface {
	State() (map[uint32]toplevel.Toplevel, uint64)
	Subscribe(ctx context.Context, since uint64) error
}

// Power is the state of the system's battery.
type Power interface {
	State() (power.Snapshot, uint64)
	Subscribe(ctx context.Context, since uint64) error
}

// Apps finds applications and their icons.
type Apps interface {
	Lookup(id string) (*apps.App, error)
	Icon(name string) string
}

// Services are the parts of the system that the dock shows and
// controls. They are shared by the docks on every output.
type Services struct {
	// Toplevels and Power may be nil.
	Toplevels Toplevels
	Power     Power

	Apps     Apps
	Activate func(toplevel.Toplevel)
	Launch   func(*apps.App) error

	// Pinned apps are shown even when they are not running.
	Pinned []string

	// Icons maps app IDs to image paths that override their icons.
	Icons map[string]string

	IconSize int
}

// Context is passed to docklets when they are drawn and updated.
type Context struct {
	Services *Services

	// Toplevels are sorted by handle ID so that indices into them are
	// stable between updates.
	Toplevels []toplevel.Toplevel
}

func (c *Context) iconSize() int {
	if c.Services.IconSize <= 0 {
		return DefaultIconSize
	}
	return c.Services.IconSize
}

// Docklet is an item in the dock.
type Docklet interface {
	Widget(c *Context) ui.Element[DockletMsg]
	Width(c *Context) int

	// Popover returns the contents of the popover shown above the
	// docklet while it is hovered, or nil for no popover.
	Popover(c *Context) ui.Element[DockletMsg]

	RetainedIcon() *ui.Image
	Update(c *Context, msg DockletMsg)
}

type DockletMsgKind int

const (
	Hover DockletMsgKind = iota
	ActivateApp
	ActivateToplevel
)

type DockletMsg struct {
	Kind DockletMsgKind

	// Toplevel is the index among the app's windows for
	// ActivateToplevel.
	Toplevel int
}

// Msg is a message from the docklet at Index.
type Msg struct {
	Index int
	Inner DockletMsg
}

// Dock is the dock surface for one output.
type Dock struct {
	wstk.SurfaceBase[Msg]

	ctx Context

	pointed bool
	touched bool
	hovered int

	apps        []*AppDocklet
	toplevelGen uint64
	power       *PowerDocklet
}

func New(svc *Services) *Dock {
	d := Dock{
		ctx:     Context{Services: svc},
		hovered: -1,
		power:   newPowerDocklet(svc),
	}
	d.updateApps()
	return &d
}

func (d *Dock) Layer() layershell.Layer { return layershell.LayerTop }
func (d *Dock) Namespace() string       { return "waysmoke-dock" }

func (d *Dock) dockHeight() int {
	return d.ctx.iconSize() + AppPadding*2 + DockPadding*2
}

func (d *Dock) dockAndGapHeight() int {
	return d.dockHeight() + DockGap
}

func (d *Dock) Setup(ls *layershell.Surface) {
	ls.SetAnchor(layershell.AnchorLeft | layershell.AnchorRight | layershell.AnchorBottom)
	ls.SetSize(0, uint32(BarHeight+d.dockAndGapHeight()+PopoverHeightMax))
	ls.SetExclusiveZone(BarHeight)
}

func sortedToplevels(state map[uint32]toplevel.Toplevel) []toplevel.Toplevel {
	ids := slices.Sorted(maps.Keys(state))
	tops := make([]toplevel.Toplevel, 0, len(ids))
	for _, id := range ids {
		tops = append(tops, state[id])
	}
	return tops
}

// updateApps reloads the set of windows and adjusts the app docklets
// to show the pinned apps followed by any other running apps.
func (d *Dock) updateApps() {
	d.hovered = -1

	svc := d.ctx.Services
	if svc.Toplevels != nil {
		var tops map[uint32]toplevel.Toplevel
		tops, d.toplevelGen = svc.Toplevels.State()
		d.ctx.Toplevels = sortedToplevels(tops)
	}

	has := func(id string) bool {
		return slices.ContainsFunc(d.apps, func(a *AppDocklet) bool { return a.ID() == id })
	}

	for _, id := range svc.Pinned {
		if has(id) {
			continue
		}
		if app := d.lookup(id); app != nil {
			d.apps = append(d.apps, app)
		}
	}

	for _, top := range d.ctx.Toplevels {
		if slices.ContainsFunc(d.apps, func(a *AppDocklet) bool { return top.MatchesID(a.ID()) }) {
			continue
		}

		app := d.lookup(top.AppID)
		if app == nil && top.GtkAppID != "" {
			app = d.lookup(top.GtkAppID)
		}
		if app != nil && !has(app.ID()) {
			d.apps = append(d.apps, app)
		}
	}

	d.apps = slices.DeleteFunc(d.apps, func(a *AppDocklet) bool {
		if slices.Contains(svc.Pinned, a.ID()) {
			return false
		}
		return !slices.ContainsFunc(d.ctx.Toplevels, func(top toplevel.Toplevel) bool {
			return top.MatchesID(a.ID())
		})
	})
}

func (d *Dock) lookup(id string) *AppDocklet {
	if id == "" || d.ctx.Services.Apps == nil {
		return nil
	}

	app, err := d.ctx.Services.Apps.Lookup(id)
	if err != nil {
		logger.Debug("no application for dock", "id", id, "err", err)
		return nil
	}
	return newAppDocklet(d.ctx.Services, app)
}

func (d *Dock) docklets() []Docklet {
	docklets := make([]Docklet, 0, len(d.apps)+1)
	for _, app := range d.apps {
		docklets = append(docklets, app)
	}
	return append(docklets, d.power)
}

// width is the width of the dock including its padding.
func (d *Dock) width() int {
	docklets := d.docklets()
	var w int
	for _, docklet := range docklets {
		w += docklet.Width(&d.ctx)
	}
	return w + DockPadding*(max(len(docklets), 1)-1) + DockPadding*2
}

// centerOf returns the horizontal center of the docklet at index i
// relative to the left edge of the dock.
func (d *Dock) centerOf(i int) int {
	docklets := d.docklets()
	x := DockPadding
	for _, docklet := range docklets[:i] {
		x += docklet.Width(&d.ctx) + DockPadding
	}
	return x + docklets[i].Width(&d.ctx)/2
}

func (d *Dock) active() bool {
	return d.pointed || d.touched
}

// hoveredDocklet returns the index of the docklet that the popover is
// shown for, or -1.
func (d *Dock) hoveredDocklet() int {
	if !d.active() || d.hovered < 0 || d.hovered >= len(d.docklets()) {
		return -1
	}
	return d.hovered
}

func indexed(i int) func(DockletMsg) Msg {
	return func(m DockletMsg) Msg { return Msg{Index: i, Inner: m} }
}

// areas are the bounds of the parts of the dock above the bar that
// accept input. They are empty when hidden.
type areas struct {
	dock    image.Rectangle
	popover image.Rectangle
}

// layoutAreas lays the dock out on a surface of the given size and
// returns where its dock and popover ended up.
func (d *Dock) layoutAreas(width, height int) areas {
	var a areas
	ui.Build(d.view(&a), image.Pt(width, height), nil).Draw(ui.NoCursor)
	return a
}

func (d *Dock) View() ui.Element[Msg] {
	return d.view(nil)
}

// view builds the dock. If a is not nil, drawing the result records
// the dock's areas in it.
func (d *Dock) view(a *areas) ui.Element[Msg] {
	var dockBounds, popoverBounds *image.Rectangle
	if a != nil {
		dockBounds, popoverBounds = &a.dock, &a.popover
	}

	var col []ui.Element[Msg]

	var popover ui.Element[Msg]
	if i := d.hoveredDocklet(); i >= 0 {
		if content := d.docklets()[i].Popover(&d.ctx); content != nil {
			shift := d.centerOf(i) - d.width()/2
			popover = popoverView(shift, ui.Map(content, indexed(i)), popoverBounds)
		}
	}
	if popover == nil {
		popover = ui.Space[Msg]{W: ui.Fill, H: ui.Px(PopoverHeightMax)}
	}
	col = append(col, popover)

	if d.active() {
		docklets := d.docklets()
		row := make([]ui.Element[Msg], 0, len(docklets))
		for i, docklet := range docklets {
			row = append(row, ui.Map(docklet.Widget(&d.ctx), indexed(i)))
		}

		dock := ui.Container[Msg]{
			Content: ui.Region[Msg]{
				Bounds: dockBounds,
				Content: ui.Container[Msg]{
					Content: ui.Row[Msg]{
						Children: row,
						Spacing:  DockPadding,
						Align:    ui.Center,
					},
					Padding: DockPadding,
					Style:   style.Dock(style.Dark),
				},
			},
			W:      ui.Fill,
			H:      ui.Px(d.dockHeight()),
			AlignX: ui.Center,
			AlignY: ui.Center,
		}
		col = append(col, dock, ui.Space[Msg]{H: ui.Px(DockGap)})
	} else {
		col = append(col, ui.Space[Msg]{H: ui.Px(d.dockAndGapHeight())})
	}

	bar := ui.Container[Msg]{
		Content: ui.Shape[Msg]{
			Primitive: ui.Quad(image.Rect(0, 0, barHandleWidth, barHandleHeight), style.Bright, 2),
			W:         ui.Px(barHandleWidth),
			H:         ui.Px(barHandleHeight),
		},
		W:      ui.Fill,
		H:      ui.Px(BarHeight),
		AlignX: ui.Center,
		AlignY: ui.Center,
		Style:  ui.Style{Background: style.Bar},
	}
	col = append(col, bar)

	return ui.Column[Msg]{Children: col, W: ui.Fill}
}

// popoverView positions content above the dock so that it is centered
// over a docklet whose center is shift pixels right of the dock's.
func popoverView(shift int, content ui.Element[Msg], region *image.Rectangle) ui.Element[Msg] {
	box := ui.Container[Msg]{
		Content: content,
		Padding: DockPadding,
		Style:   style.Dock(style.Dark),
	}
	nub := ui.Shape[Msg]{
		Primitive: ui.Quad(image.Rect(0, 0, 16, 8), style.Dark, 4),
		W:         ui.Px(16),
		H:         ui.Px(8),
	}

	col := ui.Region[Msg]{
		Bounds: region,
		Content: ui.Column[Msg]{
			Children: []ui.Element[Msg]{box, nub},
			Align:    ui.Center,
		},
	}

	// The row is centered, so a spacer moves the popover by half of
	// its width.
	var row []ui.Element[Msg]
	if shift > 0 {
		row = append(row, ui.Space[Msg]{W: ui.Px(shift * 2)})
	}
	row = append(row, col)
	if shift < 0 {
		row = append(row, ui.Space[Msg]{W: ui.Px(-shift * 2)})
	}

	return ui.Container[Msg]{
		Content: ui.Row[Msg]{Children: row},
		W:       ui.Fill,
		H:       ui.Px(PopoverHeightMax),
		AlignX:  ui.Center,
		AlignY:  ui.End,
	}
}

func pad(r image.Rectangle, n int) image.Rectangle {
	if r.Min.X < n || r.Min.Y < n {
		return r
	}
	return r.Inset(-n)
}

func (d *Dock) InputRegion(width, height int) []image.Rectangle {
	top := d.dockAndGapHeight() + PopoverHeightMax
	region := []image.Rectangle{image.Rect(0, top, width, top+BarHeight)}

	if !d.active() {
		return region
	}

	a := d.layoutAreas(width, height)
	if !a.dock.Empty() {
		region = append(region, pad(a.dock, dockInputPadding))
	}
	if !a.popover.Empty() {
		region = append(region, pad(a.popover, popoverInputPadding))
	}
	return region
}

func (d *Dock) RetainedImages() []*ui.Image {
	var images []*ui.Image
	for _, docklet := range d.docklets() {
		if icon := docklet.RetainedIcon(); icon != nil {
			images = append(images, icon)
		}
	}
	return images
}

func (d *Dock) Update(ctx context.Context, msg Msg) error {
	docklets := d.docklets()
	if msg.Index < 0 || msg.Index >= len(docklets) {
		return nil
	}

	if msg.Inner.Kind == Hover {
		d.hovered = msg.Index
		return nil
	}
	docklets[msg.Index].Update(&d.ctx, msg.Inner)
	return nil
}

type source int

const (
	sourceToplevels source = iota
	sourcePower
)

// Run waits for the set of windows or the power state to change.
func (d *Dock) Run(ctx context.Context) (wstk.Task, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := d.ctx.Services
	changed := make(chan source, 2)
	watch := func(src source, since uint64, subscribe func(context.Context, uint64) error) {
		if subscribe(ctx, since) == nil {
			changed <- src
		}
	}
	if svc.Toplevels != nil {
		go watch(sourceToplevels, d.toplevelGen, svc.Toplevels.Subscribe)
	}
	if svc.Power != nil {
		go watch(sourcePower, d.power.gen, svc.Power.Subscribe)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case src := <-changed:
		return func() wstk.Action {
			switch src {
			case sourceToplevels:
				d.updateApps()
			case sourcePower:
				d.power.refresh()
			}
			return wstk.Rerender
		}, nil
	}
}

func (d *Dock) OnPointerEnter(ctx context.Context) {
	d.pointed = true
}

func (d *Dock) OnPointerLeave(ctx context.Context) {
	d.pointed = false
	d.hovered = -1
}

func (d *Dock) OnTouchEnter(ctx context.Context) {
	d.touched = true
}

func (d *Dock) OnTouchLeave(ctx context.Context) {
	d.touched = false
}

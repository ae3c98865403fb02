package wstk

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"
	"time"

	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/pointer"
	"deedles.dev/waysmoke/render"
	"deedles.dev/waysmoke/ui"
	"github.com/charmbracelet/log"
)

// Compositor draws primitive trees onto a surface.
type Compositor interface {
	Configure(size image.Point, scale int) error
	Retain([]*ui.Image)
	Present(prim ui.Primitive, damage []image.Rectangle) error
	Close()
}

type state int

const (
	stateUninitialized state = iota
	stateAwaitingConfigure
	stateReady
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateAwaitingConfigure:
		return "awaiting configure"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Payloads posted to an Instance.
type configureEvent struct {
	serial uint32
	size   image.Point
}

type closedEvent struct{}

type pointerEnter struct {
	pos image.Point
}

type pointerLeave struct{}

type pointerMotion struct {
	pos image.Point
}

type pointerButton struct {
	button  pointer.Button
	pressed bool
}

type pointerAxis struct {
	horizontal bool
	value      float64
}

type pointerAxisDiscrete struct {
	horizontal bool
	steps      int32
}

type pointerFrame struct{}

type keyboardFocus struct {
	focused bool
}

type keyEvent struct {
	key     uint32
	pressed bool
}

type modifiersEvent struct {
	mods ui.Modifiers
}

type touchDown struct {
	id  int32
	pos image.Point
}

type touchUp struct {
	id int32
}

type touchMotion struct {
	id  int32
	pos image.Point
}

type touchFrame struct{}

type touchCancel struct{}

type scaleChanged struct {
	scale int
}

type runResult struct {
	task Task
	err  error
}

type leaveExpired struct {
	gen uint64
}

// Options tune an Instance.
type Options struct {
	// LeaveDelay is how long the pointer must stay off of the
	// surface before OnPointerLeave is called.
	LeaveDelay time.Duration
}

// Instance drives a Surface on a single layer surface.
type Instance[M any] struct {
	surface    Surface[M]
	desktop    Desktop
	compositor Compositor
	post       func(payload any) bool
	opts       Options
	log        *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup

	state state
	size  image.Point
	scale int

	cache       *ui.Cache
	prev        *ui.Primitive
	queue       []ui.Event
	cursor      image.Point
	interaction ui.Interaction

	region      []image.Rectangle
	pointerOver bool
	pointed     bool
	leaveGen    uint64
	leaveTimer  *time.Timer
	scroll      pointer.ScrollDelta
	keyboard    bool
	mods        ui.Modifiers

	touchID     int32
	touching    bool
	touchLifted bool
}

// NewInstance creates a layer surface for surface on output and
// starts driving it. The instance is closed when its surface closes,
// when it fails, or when ctx is canceled.
func NewInstance[M any](ctx context.Context, env *Env, surface Surface[M], output *Output) (*Instance[M], error) {
	if output != nil && output.Obsolete {
		return nil, fmt.Errorf("output %v has been removed", output)
	}

	opts := Options{LeaveDelay: env.Config.Toolkit.LeaveDelay()}
	inst := newInstance(ctx, surface, opts, nil)
	inst.post = func(payload any) bool { return env.Bridge.Post(inst, payload) }
	if output != nil {
		inst.log = logger.Logger.With("output", output)
	}

	desktop := NewDesktopInstance(env, surface, output, inst)

	comp := render.New(env.Shm, desktop.RawHandle().Surface, env.Images)
	inst.scale = desktop.Scale()

	inst.start(desktop, comp)
	return inst, nil
}

func newInstance[M any](ctx context.Context, surface Surface[M], opts Options, post func(any) bool) *Instance[M] {
	ctx, cancel := context.WithCancel(ctx)
	return &Instance[M]{
		surface: surface,
		post:    post,
		opts:    opts,
		log:     logger.Logger,
		ctx:     ctx,
		cancel:  cancel,
		scale:   1,
		cache:   ui.NewCache(),
		cursor:  ui.NoCursor,
	}
}

// start attaches the protocol and drawing sides and starts the
// surface's background work.
func (inst *Instance[M]) start(desktop Desktop, comp Compositor) {
	inst.desktop = desktop
	inst.compositor = comp
	inst.state = stateAwaitingConfigure
	inst.startRun()
}

func (inst *Instance[M]) startRun() {
	inst.runs.Add(1)
	go func() {
		defer inst.runs.Done()

		task, err := inst.surface.Run(inst.ctx)
		if inst.ctx.Err() != nil {
			return
		}
		inst.post(runResult{task: task, err: err})
	}()
}

// Closed reports whether the instance has stopped and should be
// closed.
func (inst *Instance[M]) Closed() bool {
	return inst.state == stateClosed
}

// Close tears down the surface. It must be called on the loop
// goroutine.
func (inst *Instance[M]) Close() {
	inst.state = stateClosed
	inst.cancel()
	if inst.leaveTimer != nil {
		inst.leaveTimer.Stop()
	}

	if inst.compositor != nil {
		inst.compositor.Close()
	}
	if inst.desktop != nil {
		inst.desktop.Close()
		err := inst.desktop.Flush()
		if err != nil {
			inst.log.Warn("flush after close", "err", err)
		}
	}
}

// Handle handles a single event. Errors that only affect this
// instance close it instead of being returned.
func (inst *Instance[M]) Handle(ctx context.Context, payload any) error {
	if inst.state == stateClosed {
		return nil
	}

	err := inst.handle(ctx, payload)
	if err != nil {
		inst.log.Error("closing surface", "err", err)
		inst.state = stateClosed
	}
	return nil
}

func (inst *Instance[M]) handle(ctx context.Context, payload any) error {
	switch ev := payload.(type) {
	case configureEvent:
		return inst.configure(ctx, ev)
	case closedEvent:
		inst.state = stateClosed
		return nil
	case scaleChanged:
		return inst.rescale(ctx, ev.scale)

	case keyboardFocus:
		inst.keyboard = ev.focused
		return nil
	case keyEvent:
		return inst.key(ctx, ev)
	case modifiersEvent:
		inst.mods = ev.mods
		if !inst.keyboard {
			return nil
		}
		inst.queue = append(inst.queue, ui.ModifiersChanged{Modifiers: ev.mods})
		return inst.render(ctx)

	case pointerEnter:
		return inst.pointerEnter(ctx, ev)
	case pointerLeave:
		return inst.pointerLeave()
	case pointerMotion:
		if inst.pointerOver {
			inst.queue = append(inst.queue, ui.CursorMoved{Pos: ev.pos})
		}
		return nil
	case pointerButton:
		if !inst.pointerOver {
			return nil
		}
		if ev.pressed {
			inst.queue = append(inst.queue, ui.ButtonPressed{Button: ev.button})
		} else {
			inst.queue = append(inst.queue, ui.ButtonReleased{Button: ev.button})
		}
		return nil
	case pointerAxis:
		if inst.pointerOver {
			inst.scroll.AddPixels(ev.horizontal, ev.value)
		}
		return nil
	case pointerAxisDiscrete:
		if inst.pointerOver {
			inst.scroll.AddLines(ev.horizontal, ev.steps)
		}
		return nil
	case pointerFrame:
		if delta, ok := inst.scroll.Take(); ok {
			inst.queue = append(inst.queue, ui.WheelScrolled{Delta: delta})
		}
		return inst.render(ctx)
	case leaveExpired:
		if ev.gen != inst.leaveGen || !inst.pointed {
			return nil
		}
		inst.pointed = false
		inst.surface.OnPointerLeave(ctx)
		return inst.render(ctx)

	case touchDown:
		return inst.touchDown(ctx, ev)
	case touchMotion:
		if inst.touching && ev.id == inst.touchID {
			inst.queue = append(inst.queue, ui.CursorMoved{Pos: ev.pos})
		}
		return nil
	case touchUp:
		if inst.touching && ev.id == inst.touchID && !inst.touchLifted {
			inst.queue = append(inst.queue,
				ui.ButtonPressed{Button: pointer.ButtonLeft},
				ui.ButtonReleased{Button: pointer.ButtonLeft},
			)
			inst.touchLifted = true
		}
		return nil
	case touchFrame:
		return inst.touchFrame(ctx)
	case touchCancel:
		if !inst.touching {
			return nil
		}
		inst.touchLifted = true
		return inst.touchFrame(ctx)

	case runResult:
		return inst.runResult(ctx, ev)
	}

	return fmt.Errorf("unexpected event %T", payload)
}

func (inst *Instance[M]) configure(ctx context.Context, ev configureEvent) error {
	inst.desktop.AckConfigure(ev.serial)

	inst.size = ev.size
	err := inst.resize()
	if err != nil {
		return err
	}

	inst.state = stateReady
	return inst.render(ctx)
}

func (inst *Instance[M]) rescale(ctx context.Context, scale int) error {
	scale = max(scale, 1)
	if scale == inst.scale {
		return nil
	}
	inst.scale = scale

	if inst.state != stateReady {
		return nil
	}
	err := inst.resize()
	if err != nil {
		return err
	}
	return inst.render(ctx)
}

// resize reconfigures the compositor for the current size and scale
// and forces the next frame to be presented.
func (inst *Instance[M]) resize() error {
	inst.desktop.SetBufferScale(inst.scale)
	err := inst.compositor.Configure(inst.size, inst.scale)
	if err != nil {
		return fmt.Errorf("configure compositor: %w", err)
	}
	if r, ok := inst.surface.(Resizer); ok {
		r.Resize(inst.size, inst.scale)
	}
	inst.prev = nil
	return nil
}

func (inst *Instance[M]) key(ctx context.Context, ev keyEvent) error {
	if !inst.keyboard {
		return nil
	}

	if !ev.pressed {
		inst.queue = append(inst.queue, ui.KeyReleased{Key: ev.key, Modifiers: inst.mods})
		return inst.render(ctx)
	}

	inst.queue = append(inst.queue, ui.KeyPressed{Key: ev.key, Modifiers: inst.mods})
	if r, ok := keyRune(ev.key, inst.mods); ok {
		inst.queue = append(inst.queue, ui.CharacterReceived{Char: r})
	}
	return inst.render(ctx)
}

func (inst *Instance[M]) pointerEnter(ctx context.Context, ev pointerEnter) error {
	inst.pointerOver = true
	inst.leaveGen++
	if inst.leaveTimer != nil {
		inst.leaveTimer.Stop()
		inst.leaveTimer = nil
	}

	inst.queue = append(inst.queue, ui.CursorMoved{Pos: ev.pos})
	if !inst.pointed {
		inst.pointed = true
		inst.surface.OnPointerEnter(ctx)
	}
	return nil
}

func (inst *Instance[M]) pointerLeave() error {
	inst.pointerOver = false
	inst.queue = append(inst.queue, ui.CursorLeft{})

	inst.leaveGen++
	gen := inst.leaveGen
	if inst.leaveTimer != nil {
		inst.leaveTimer.Stop()
	}
	inst.leaveTimer = time.AfterFunc(inst.opts.LeaveDelay, func() {
		inst.post(leaveExpired{gen: gen})
	})
	return nil
}

func (inst *Instance[M]) touchDown(ctx context.Context, ev touchDown) error {
	if inst.touching {
		return nil
	}

	inst.touching = true
	inst.touchLifted = false
	inst.touchID = ev.id
	inst.surface.OnTouchEnter(ctx)
	inst.queue = append(inst.queue, ui.CursorMoved{Pos: ev.pos})
	return nil
}

func (inst *Instance[M]) touchFrame(ctx context.Context) error {
	err := inst.render(ctx)
	if err != nil || !inst.touching || !inst.touchLifted {
		return err
	}

	inst.touching = false
	inst.touchLifted = false
	inst.queue = append(inst.queue, ui.CursorLeft{})
	inst.surface.OnTouchLeave(ctx)
	return inst.render(ctx)
}

func (inst *Instance[M]) runResult(ctx context.Context, ev runResult) error {
	if ev.err != nil {
		return fmt.Errorf("run: %w", ev.err)
	}

	action := DoNothing
	if ev.task != nil {
		action = ev.task()
	}

	switch action {
	case Close:
		inst.state = stateClosed
		return nil
	case Rerender:
		err := inst.desktop.Flush()
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		err = inst.render(ctx)
		if err != nil {
			return err
		}
	}

	inst.startRun()
	return nil
}

// render runs one update and draw cycle, presenting the result if
// anything changed.
func (inst *Instance[M]) render(ctx context.Context) error {
	if inst.state != stateReady {
		return nil
	}

	inst.compositor.Retain(inst.surface.RetainedImages())

	view := ui.Build(inst.surface.View(), inst.size, inst.cache)
	events := inst.queue
	inst.queue = nil
	msgs := view.Update(events, inst.cursor)
	inst.cursor = view.Cursor()

	if len(msgs) > 0 {
		for _, msg := range msgs {
			err := inst.surface.Update(ctx, msg)
			if err != nil {
				return fmt.Errorf("update: %w", err)
			}
		}

		err := inst.desktop.Flush()
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		view = ui.Build(inst.surface.View(), inst.size, view.Cache())
	}
	inst.cache = view.Cache()

	prim := view.Draw(inst.cursor)
	present := inst.prev == nil
	var damage []image.Rectangle
	if !present {
		damage = ui.Damage(*inst.prev, prim)
		present = len(damage) > 0
	}

	if present {
		err := inst.compositor.Present(prim, damage)
		if err != nil {
			return fmt.Errorf("present: %w", err)
		}
		inst.prev = &prim

		in := view.Interaction(inst.cursor)
		if in != inst.interaction {
			inst.interaction = in
			inst.desktop.SetCursor(in)
		}
	}

	region := inst.surface.InputRegion(inst.size.X, inst.size.Y)
	if !regionEqual(region, inst.region) {
		inst.desktop.ApplyInputRegion(region)
		inst.desktop.Commit()
		inst.region = region
	}

	return nil
}

// regionEqual compares input regions, distinguishing between a nil
// region, which covers the whole surface, and an empty one.
func regionEqual(a, b []image.Rectangle) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return slices.Equal(a, b)
}

// Wait blocks until every Run call made by the instance has returned.
// It should only be called after Close.
func (inst *Instance[M]) Wait() {
	inst.runs.Wait()
}

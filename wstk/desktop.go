package wstk

import (
	"image"
	"os"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/layershell"
	"deedles.dev/waysmoke/pointer"
	"deedles.dev/waysmoke/ui"
	"deedles.dev/waysmoke/wire"
)

const defaultNamespace = "waysmoke"

// Desktop is the protocol side of an Instance.
type Desktop interface {
	AckConfigure(serial uint32)
	SetBufferScale(scale int)

	// ApplyInputRegion sets the input region of the surface. A nil
	// slice resets it to the entire surface.
	ApplyInputRegion(rects []image.Rectangle)

	SetCursor(ui.Interaction)
	Commit()
	Flush() error
	Close()
}

// Handle identifies the Wayland surface that a compositor backend
// draws to.
type Handle struct {
	Client  *wl.Client
	Surface *wl.Surface
}

// DesktopInstance owns a layer surface and the input devices that
// report events for it. Events are posted through the Env's bridge to
// a target Handler.
type DesktopInstance struct {
	env    *Env
	target Handler
	output *Output

	surface  *wl.Surface
	layer    *layershell.Surface
	pointer  *wl.Pointer
	keyboard *wl.Keyboard
	touch    *wl.Touch

	pointerSerial  uint32
	pointerFocused bool
	cursor         ui.Interaction

	entered map[*wl.Output]struct{}
	scale   int
}

// NewDesktopInstance creates a layer surface on output that reports
// its events to target. setup configures the layer surface before it
// is committed. If setup implements Layered, it selects the layer and
// namespace.
func NewDesktopInstance(env *Env, setup interface{ Setup(*layershell.Surface) }, output *Output, target Handler) *DesktopInstance {
	d := DesktopInstance{
		env:     env,
		target:  target,
		output:  output,
		entered: make(map[*wl.Output]struct{}),
		scale:   1,
	}

	d.surface = env.Compositor.CreateSurface()
	d.surface.Listener = surfaceListener{d: &d}
	env.watchScale(&d)
	d.scale = d.computeScale()

	layer, namespace := layershell.LayerTop, defaultNamespace
	if l, ok := setup.(Layered); ok {
		layer, namespace = l.Layer(), l.Namespace()
	}

	var wlout *wl.Output
	if output != nil {
		wlout = output.Output
	}
	d.layer = env.LayerShell.GetLayerSurface(d.surface, wlout, layer, namespace)
	d.layer.Listener = layerListener{d: &d}
	setup.Setup(d.layer)

	if env.Seat != nil {
		if env.SeatCaps.Has(wl.SeatCapabilityPointer) {
			d.pointer = env.Seat.GetPointer()
			d.pointer.Listener = pointerListener{d: &d}
		}
		if env.SeatCaps.Has(wl.SeatCapabilityKeyboard) {
			d.keyboard = env.Seat.GetKeyboard()
			d.keyboard.Listener = keyboardListener{d: &d}
		}
		if env.SeatCaps.Has(wl.SeatCapabilityTouch) {
			d.touch = env.Seat.GetTouch()
			d.touch.Listener = touchListener{d: &d}
		}
	}

	d.surface.Commit()

	return &d
}

func (d *DesktopInstance) post(payload any) {
	d.env.Bridge.Post(d.target, payload)
}

// RawHandle returns the surface for a compositor backend to draw to.
// It is valid until Close is called.
func (d *DesktopInstance) RawHandle() Handle {
	return Handle{Client: d.env.Client, Surface: d.surface}
}

// Scale returns the current buffer scale of the surface.
func (d *DesktopInstance) Scale() int {
	return d.scale
}

// computeScale returns the largest scale of the outputs that the
// surface is on, or the scale of its own output if it is not on any
// yet.
func (d *DesktopInstance) computeScale() int {
	scale := 0
	for o := range d.entered {
		if out := d.env.output(o); out != nil {
			scale = max(scale, out.Info.Scale)
		}
	}
	if scale == 0 && d.output != nil {
		scale = d.output.Info.Scale
	}
	return max(scale, 1)
}

func (d *DesktopInstance) updateScale() {
	scale := d.computeScale()
	if scale == d.scale {
		return
	}
	d.scale = scale
	d.post(scaleChanged{scale: scale})
}

func (d *DesktopInstance) outputScaleChanged(out *Output) {
	_, entered := d.entered[out.Output]
	if entered || out == d.output {
		d.updateScale()
	}
}

func (d *DesktopInstance) CreateRegion(rects []image.Rectangle) *wl.Region {
	return d.env.Compositor.CreateRegion(rects...)
}

// SetInputRegion sets the input region of the surface and then
// destroys r.
func (d *DesktopInstance) SetInputRegion(r *wl.Region) {
	d.surface.SetInputRegion(r)
	r.Destroy()
}

// ClearInputRegion makes the entire surface accept input.
func (d *DesktopInstance) ClearInputRegion() {
	d.surface.SetInputRegion(nil)
}

func (d *DesktopInstance) ApplyInputRegion(rects []image.Rectangle) {
	if rects == nil {
		d.ClearInputRegion()
		return
	}
	d.SetInputRegion(d.CreateRegion(rects))
}

func (d *DesktopInstance) Flush() error {
	return d.env.Client.Flush()
}

func (d *DesktopInstance) AckConfigure(serial uint32) {
	d.layer.AckConfigure(serial)
}

func (d *DesktopInstance) SetBufferScale(scale int) {
	d.surface.SetBufferScale(int32(scale))
}

func (d *DesktopInstance) Commit() {
	d.surface.Commit()
}

var cursorNames = map[ui.Interaction][]string{
	ui.InteractionIdle:    {"default", "left_ptr"},
	ui.InteractionPointer: {"pointer", "hand2", "left_ptr"},
	ui.InteractionText:    {"text", "xterm"},
}

// SetCursor shows the cursor for the given interaction while the
// pointer is over the surface.
func (d *DesktopInstance) SetCursor(in ui.Interaction) {
	d.cursor = in
	if !d.pointerFocused || d.pointer == nil || d.env.Cursors == nil {
		return
	}

	cur, err := d.env.Cursors.Get(in.String(), d.scale, cursorNames[in]...)
	if err != nil {
		logger.Debug("set cursor", "interaction", in, "err", err)
		return
	}
	d.pointer.SetCursor(d.pointerSerial, cur.Surface, int32(cur.Hot.X), int32(cur.Hot.Y))
}

// Close destroys the surface and everything attached to it.
func (d *DesktopInstance) Close() {
	if d.pointer != nil {
		d.pointer.Release()
		d.pointer = nil
	}
	if d.keyboard != nil {
		d.keyboard.Release()
		d.keyboard = nil
	}
	if d.touch != nil {
		d.touch.Release()
		d.touch = nil
	}

	d.layer.Destroy()
	d.surface.Destroy()
	d.env.unwatchScale(d)
}

type surfaceListener struct {
	d *DesktopInstance
}

func (lis surfaceListener) Enter(output *wl.Output) {
	lis.d.entered[output] = struct{}{}
	lis.d.updateScale()
}

func (lis surfaceListener) Leave(output *wl.Output) {
	delete(lis.d.entered, output)
	lis.d.updateScale()
}

type layerListener struct {
	d *DesktopInstance
}

func (lis layerListener) Configure(serial, width, height uint32) {
	lis.d.post(configureEvent{serial: serial, size: image.Pt(int(width), int(height))})
}

func (lis layerListener) Closed() {
	lis.d.post(closedEvent{})
}

type pointerListener struct {
	d *DesktopInstance
}

// post sends ev and, on seats that are too old to send frame events,
// a frame right behind it.
func (lis pointerListener) post(ev any) {
	lis.d.post(ev)
	if lis.d.pointer.Version() < 5 {
		lis.d.post(pointerFrame{})
	}
}

func (lis pointerListener) Enter(serial uint32, surface *wl.Surface, x, y wire.Fixed) {
	if surface != lis.d.surface {
		return
	}
	lis.d.pointerSerial = serial
	lis.d.pointerFocused = true
	lis.d.SetCursor(lis.d.cursor)
	lis.post(pointerEnter{pos: fixedPoint(x, y)})
}

func (lis pointerListener) Leave(serial uint32, surface *wl.Surface) {
	if surface != lis.d.surface {
		return
	}
	lis.d.pointerFocused = false
	lis.post(pointerLeave{})
}

func (lis pointerListener) Motion(time uint32, x, y wire.Fixed) {
	lis.post(pointerMotion{pos: fixedPoint(x, y)})
}

func (lis pointerListener) Button(serial, time, button uint32, state wl.PointerButtonState) {
	lis.post(pointerButton{
		button:  pointer.Button(button),
		pressed: state == wl.PointerButtonStatePressed,
	})
}

func (lis pointerListener) Axis(time uint32, axis wl.PointerAxis, value wire.Fixed) {
	lis.post(pointerAxis{
		horizontal: axis == wl.PointerAxisHorizontalScroll,
		value:      value.Float(),
	})
}

func (lis pointerListener) Frame() {
	lis.d.post(pointerFrame{})
}

func (lis pointerListener) AxisSource(source wl.PointerAxisSource) {}

func (lis pointerListener) AxisStop(time uint32, axis wl.PointerAxis) {}

func (lis pointerListener) AxisDiscrete(axis wl.PointerAxis, discrete int32) {
	lis.d.post(pointerAxisDiscrete{
		horizontal: axis == wl.PointerAxisHorizontalScroll,
		steps:      discrete,
	})
}

type keyboardListener struct {
	d *DesktopInstance
}

func (lis keyboardListener) Keymap(format wl.KeyboardKeymapFormat, file *os.File, size uint32) {
	file.Close()
}

func (lis keyboardListener) Enter(serial uint32, surface *wl.Surface, keys []byte) {
	if surface == lis.d.surface {
		lis.d.post(keyboardFocus{focused: true})
	}
}

func (lis keyboardListener) Leave(serial uint32, surface *wl.Surface) {
	if surface == lis.d.surface {
		lis.d.post(keyboardFocus{focused: false})
	}
}

func (lis keyboardListener) Key(serial, time, key uint32, state wl.KeyState) {
	lis.d.post(keyEvent{key: key, pressed: state == wl.KeyStatePressed})
}

func (lis keyboardListener) Modifiers(serial, depressed, latched, locked, group uint32) {
	lis.d.post(modifiersEvent{mods: ui.Modifiers(depressed | latched | locked)})
}

func (lis keyboardListener) RepeatInfo(rate, delay int32) {}

type touchListener struct {
	d *DesktopInstance
}

func (lis touchListener) Down(serial, time uint32, surface *wl.Surface, id int32, x, y wire.Fixed) {
	if surface != lis.d.surface {
		return
	}
	lis.d.post(touchDown{id: id, pos: fixedPoint(x, y)})
}

func (lis touchListener) Up(serial, time uint32, id int32) {
	lis.d.post(touchUp{id: id})
}

func (lis touchListener) Motion(time uint32, id int32, x, y wire.Fixed) {
	lis.d.post(touchMotion{id: id, pos: fixedPoint(x, y)})
}

func (lis touchListener) Frame() {
	lis.d.post(touchFrame{})
}

func (lis touchListener) Cancel() {
	lis.d.post(touchCancel{})
}

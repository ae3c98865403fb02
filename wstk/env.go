package wstk

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/cursor"
	"deedles.dev/waysmoke/internal/config"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/layershell"
	"deedles.dev/waysmoke/render"
	"deedles.dev/waysmoke/toplevel"
	"deedles.dev/waysmoke/wire"
)

// OutputInfo describes a monitor.
type OutputInfo struct {
	Name        string
	Description string
	Make        string
	Model       string
	Position    image.Point
	Size        image.Point
	Scale       int
}

// Output is a wl_output global.
type Output struct {
	// Global is the registry name of the output.
	Global uint32
	Output *wl.Output
	Info   OutputInfo

	// Done is set once the first complete set of information has
	// arrived. Obsolete is set when the compositor removes the
	// output.
	Done     bool
	Obsolete bool

	env     *Env
	pending OutputInfo
}

func (out *Output) String() string {
	if out.Info.Name != "" {
		return out.Info.Name
	}
	return fmt.Sprintf("output-%v", out.Global)
}

type outputListener struct {
	out *Output
}

func (lis outputListener) Geometry(x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform wl.OutputTransform) {
	lis.out.pending.Position = image.Pt(int(x), int(y))
	lis.out.pending.Make = make
	lis.out.pending.Model = model
}

func (lis outputListener) Mode(flags wl.OutputMode, width, height, refresh int32) {
	if flags&wl.OutputModeCurrent != 0 {
		lis.out.pending.Size = image.Pt(int(width), int(height))
	}
}

func (lis outputListener) Done() {
	out := lis.out
	scaleChanged := out.Info.Scale != out.pending.Scale
	out.Info = out.pending

	if !out.Done {
		out.Done = true
		out.env.outputAdded(out)
		return
	}
	if scaleChanged {
		out.env.outputScaleChanged(out)
	}
}

func (lis outputListener) Scale(factor int32) {
	lis.out.pending.Scale = max(int(factor), 1)
}

func (lis outputListener) Name(name string) {
	lis.out.pending.Name = name
}

func (lis outputListener) Description(description string) {
	lis.out.pending.Description = description
}

// OutputAdded is posted to output watchers when an output has become
// usable.
type OutputAdded struct {
	Output *Output
}

// OutputRemoved is posted to output watchers when the compositor
// removes an output.
type OutputRemoved struct {
	Output *Output
}

// scaleWatcher is notified on the loop goroutine when an output's
// scale changes.
type scaleWatcher interface {
	outputScaleChanged(*Output)
}

// Env is a connection to the compositor along with the globals that
// surfaces need. It is created once and shared by every instance.
type Env struct {
	Client     *wl.Client
	Registry   *wl.Registry
	Compositor *wl.Compositor
	Shm        *wl.Shm
	Seat       *wl.Seat
	SeatCaps   wl.SeatCapability
	LayerShell *layershell.Shell

	// Toplevels is nil if the compositor does not support the
	// foreign toplevel protocol.
	Toplevels *toplevel.Tracker

	// Cursors is nil if no cursor theme could be loaded.
	Cursors *cursor.Cache

	Images *render.ImageCache
	Config *config.Config
	Bridge *Bridge

	m              sync.Mutex
	outputs        map[uint32]*Output
	outputWatchers []Handler
	scaleWatchers  map[scaleWatcher]struct{}
}

// Connect dials the compositor and binds the globals that the toolkit
// needs.
func Connect(cfg *config.Config) (*Env, error) {
	client, err := wl.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	env, err := NewEnv(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	return env, nil
}

// NewEnv binds globals over an existing client connection.
func NewEnv(client *wl.Client, cfg *config.Config) (*Env, error) {
	if cfg == nil {
		cfg = config.Get()
	}

	env := Env{
		Client:        client,
		Config:        cfg,
		Images:        render.NewImageCache(cfg.Toolkit.ImageCacheSize),
		Bridge:        NewBridge(client),
		outputs:       make(map[uint32]*Output),
		scaleWatchers: make(map[scaleWatcher]struct{}),
	}

	env.Registry = client.Display().GetRegistry()
	env.Registry.Listener = registryListener{env: &env}

	err := client.RoundTrip()
	if err != nil {
		return nil, fmt.Errorf("get globals: %w", err)
	}

	// Second round trip collects output information and seat
	// capabilities.
	err = client.RoundTrip()
	if err != nil {
		return nil, fmt.Errorf("get global state: %w", err)
	}

	var missing []error
	if env.Compositor == nil {
		missing = append(missing, missingGlobal(wl.CompositorInterface))
	}
	if env.Shm == nil {
		missing = append(missing, missingGlobal(wl.ShmInterface))
	}
	if env.LayerShell == nil {
		missing = append(missing, missingGlobal(layershell.ShellInterface))
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	env.loadCursors()

	return &env, nil
}

func missingGlobal(iface string) error {
	return fmt.Errorf("compositor does not support %v", iface)
}

func (env *Env) loadCursors() {
	theme, err := cursor.LoadTheme(env.Config.Cursor.Theme, env.Config.Cursor.Size)
	if err != nil {
		logger.Warn("cursor theme unavailable", "err", err)
		return
	}
	env.Cursors = cursor.NewCache(theme, env.Compositor, env.Shm)
}

type registryListener struct {
	env *Env
}

func (lis registryListener) Global(name uint32, inter string, version uint32) {
	env := lis.env
	switch inter {
	case wl.CompositorInterface:
		env.Compositor = wl.BindCompositor(env.Client, env.Registry, name, version)
	case wl.ShmInterface:
		env.Shm = wl.BindShm(env.Client, env.Registry, name, version)
	case wl.SeatInterface:
		if env.Seat != nil {
			return
		}
		env.Seat = wl.BindSeat(env.Client, env.Registry, name, version)
		env.Seat.Listener = seatListener{env: env}
	case layershell.ShellInterface:
		env.LayerShell = layershell.BindShell(env.Client, env.Registry, name, version)
	case toplevel.ManagerInterface:
		env.Toplevels = toplevel.NewTracker(env.Client, env.Registry, name, version)
	case wl.OutputInterface:
		out := Output{
			Global:  name,
			Output:  wl.BindOutput(env.Client, env.Registry, name, version),
			env:     env,
			pending: OutputInfo{Scale: 1},
		}
		out.Output.Listener = outputListener{out: &out}

		env.m.Lock()
		env.outputs[name] = &out
		env.m.Unlock()
	}
}

func (lis registryListener) GlobalRemove(name uint32) {
	env := lis.env

	env.m.Lock()
	out, ok := env.outputs[name]
	delete(env.outputs, name)
	watchers := slices.Clone(env.outputWatchers)
	env.m.Unlock()

	if !ok {
		return
	}

	out.Obsolete = true
	out.Output.Release()
	for _, w := range watchers {
		env.Bridge.Post(w, OutputRemoved{Output: out})
	}
}

type seatListener struct {
	env *Env
}

func (lis seatListener) Capabilities(capabilities wl.SeatCapability) {
	lis.env.SeatCaps = capabilities
}

func (lis seatListener) Name(name string) {}

// Outputs returns every known output that has received its initial
// information and has not been removed.
func (env *Env) Outputs() []*Output {
	env.m.Lock()
	defer env.m.Unlock()

	outputs := make([]*Output, 0, len(env.outputs))
	for _, out := range env.outputs {
		if out.Done && !out.Obsolete {
			outputs = append(outputs, out)
		}
	}
	slices.SortFunc(outputs, compareOutputs)
	return outputs
}

// output returns the Output wrapping o.
func (env *Env) output(o *wl.Output) *Output {
	env.m.Lock()
	defer env.m.Unlock()

	for _, out := range env.outputs {
		if out.Output == o {
			return out
		}
	}
	return nil
}

// WatchOutputs arranges for OutputAdded and OutputRemoved events to be
// posted to h.
func (env *Env) WatchOutputs(h Handler) {
	env.m.Lock()
	defer env.m.Unlock()

	env.outputWatchers = append(env.outputWatchers, h)
}

func (env *Env) outputAdded(out *Output) {
	env.m.Lock()
	watchers := slices.Clone(env.outputWatchers)
	env.m.Unlock()

	for _, w := range watchers {
		env.Bridge.Post(w, OutputAdded{Output: out})
	}
}

func (env *Env) watchScale(w scaleWatcher) {
	env.m.Lock()
	defer env.m.Unlock()

	env.scaleWatchers[w] = struct{}{}
}

func (env *Env) unwatchScale(w scaleWatcher) {
	env.m.Lock()
	defer env.m.Unlock()

	delete(env.scaleWatchers, w)
}

func (env *Env) outputScaleChanged(out *Output) {
	env.m.Lock()
	watchers := make([]scaleWatcher, 0, len(env.scaleWatchers))
	for w := range env.scaleWatchers {
		watchers = append(watchers, w)
	}
	env.m.Unlock()

	for _, w := range watchers {
		w.outputScaleChanged(out)
	}
}

// Close disconnects from the compositor.
func (env *Env) Close() error {
	if env.Cursors != nil {
		env.Cursors.Destroy()
	}
	if env.Toplevels != nil {
		env.Toplevels.Stop()
	}
	env.Bridge.Stop()

	var errs []error
	errs = append(errs, env.Client.Flush())
	errs = append(errs, env.Client.Close())
	return errors.Join(errs...)
}

// fixedPoint converts surface-local fixed-point coordinates into a ui
// cursor position.
func fixedPoint(x, y wire.Fixed) image.Point {
	return image.Pt(x.Int(), y.Int())
}

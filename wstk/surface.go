// Package wstk connects ui views to layer shell surfaces. Each surface
// is driven by an Instance, which turns protocol events into ui
// events, runs the view's update cycle, and presents the result. A
// Supervisor keeps one instance alive per output.
package wstk

import (
	"context"
	"image"

	"deedles.dev/waysmoke/layershell"
	"deedles.dev/waysmoke/ui"
)

// Action tells an Instance what to do after a Task has run.
type Action int

const (
	DoNothing Action = iota
	Rerender
	Close
)

func (a Action) String() string {
	switch a {
	case DoNothing:
		return "do nothing"
	case Rerender:
		return "rerender"
	case Close:
		return "close"
	}
	return "unknown"
}

// Task is returned from Surface.Run and is called on the instance's
// loop, where it may safely modify the surface's state.
type Task func() Action

// Surface is the application side of an Instance.
//
// Every method except Run is called on the loop goroutine. Run is
// called on a goroutine of its own, one call at a time, and must not
// modify anything that View reads. Instead, it returns a Task that
// does so.
type Surface[M any] interface {
	// Setup configures the layer surface before its first commit.
	Setup(*layershell.Surface)

	View() ui.Element[M]

	// InputRegion returns the areas of the surface that accept
	// pointer and touch input. Nil means the entire surface.
	InputRegion(width, height int) []image.Rectangle

	// RetainedImages returns images that should be kept decoded
	// even while they are not being drawn.
	RetainedImages() []*ui.Image

	Update(ctx context.Context, msg M) error
	Run(ctx context.Context) (Task, error)

	OnPointerEnter(ctx context.Context)
	OnPointerLeave(ctx context.Context)
	OnTouchEnter(ctx context.Context)
	OnTouchLeave(ctx context.Context)
}

// Layered may be implemented by a Surface to choose the layer and
// namespace of its layer surface. The default is the top layer.
type Layered interface {
	Layer() layershell.Layer
	Namespace() string
}

// Resizer may be implemented by a Surface that prepares resources for
// its size. Resize is called on the loop goroutine whenever the size or
// scale changes, before the surface is next rendered.
type Resizer interface {
	Resize(size image.Point, scale int)
}

// SurfaceBase provides default implementations of the optional parts
// of Surface.
type SurfaceBase[M any] struct{}

func (SurfaceBase[M]) InputRegion(width, height int) []image.Rectangle { return nil }
func (SurfaceBase[M]) RetainedImages() []*ui.Image                     { return nil }
func (SurfaceBase[M]) Update(ctx context.Context, msg M) error         { return nil }
func (SurfaceBase[M]) OnPointerEnter(ctx context.Context)              {}
func (SurfaceBase[M]) OnPointerLeave(ctx context.Context)              {}
func (SurfaceBase[M]) OnTouchEnter(ctx context.Context)                {}
func (SurfaceBase[M]) OnTouchLeave(ctx context.Context)                {}

// Run blocks until ctx is canceled.
func (SurfaceBase[M]) Run(ctx context.Context) (Task, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// Package render rasterizes ui primitive trees into shared memory
// buffers and presents them on a Wayland surface.
package render

import (
	"errors"
	"fmt"
	"image"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/ui"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// maxBuffers is the largest number of buffers a swapchain will grow
// to when the compositor holds on to all of them.
const maxBuffers = 3

var ErrNotConfigured = errors.New("compositor has not been configured")

// Compositor draws primitive trees onto a single surface using a
// small swapchain of shm buffers.
type Compositor struct {
	shm     *wl.Shm
	surface *wl.Surface
	images  *ImageCache
	pins    *Pins

	size  image.Point
	scale int
	dc    *gg.Context
	bufs  []*wl.ImageBuffer
}

// New returns a compositor that presents to surface. images may be
// shared between compositors that run on the same goroutine.
func New(shm *wl.Shm, surface *wl.Surface, images *ImageCache) *Compositor {
	if images == nil {
		images = NewImageCache(0)
	}

	return &Compositor{
		shm:     shm,
		surface: surface,
		images:  images,
		pins:    images.NewPins(),
		scale:   1,
	}
}

// Configure sets the logical size and the buffer scale of the
// surface. The next Present draws everything.
func (c *Compositor) Configure(size image.Point, scale int) error {
	scale = max(scale, 1)
	if size == c.size && scale == c.scale && c.dc != nil {
		return nil
	}

	c.size = size
	c.scale = scale

	px := c.pixelSize()
	if c.dc != nil {
		err := c.dc.Close()
		if err != nil {
			logger.Debug("close drawing context", "err", err)
		}
	}
	c.dc = gg.NewContext(px.X, px.Y)

	for _, buf := range c.bufs {
		err := buf.Resize(int32(px.X), int32(px.Y))
		if err != nil {
			return fmt.Errorf("resize buffer: %w", err)
		}
	}

	return nil
}

func (c *Compositor) pixelSize() image.Point {
	return image.Pt(max(c.size.X, 1)*c.scale, max(c.size.Y, 1)*c.scale)
}

// Retain pins the given images in the image cache until the next call
// to Retain or Close. Images pinned by other compositors sharing the
// cache are not affected.
func (c *Compositor) Retain(imgs []*ui.Image) {
	err := c.pins.Retain(imgs)
	if err != nil {
		logger.Warn("retain images", "err", err)
	}
}

// Present draws prim, copies it into a free buffer, and commits the
// buffer with the given damage in logical coordinates. A nil damage
// list damages the whole surface.
func (c *Compositor) Present(prim ui.Primitive, damage []image.Rectangle) error {
	if c.dc == nil {
		return ErrNotConfigured
	}

	err := Paint(c.dc, prim, float64(c.scale), c.images)
	if err != nil {
		return fmt.Errorf("paint: %w", err)
	}

	buf, err := c.next()
	if err != nil {
		return err
	}
	copyFrame(buf, c.dc.Image())

	c.surface.Attach(buf.Buffer(), 0, 0)
	if len(damage) == 0 {
		damage = []image.Rectangle{{Max: c.size}}
	}
	for _, r := range damage {
		r = image.Rectangle{Min: r.Min.Mul(c.scale), Max: r.Max.Mul(c.scale)}
		c.surface.DamageBuffer(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()))
	}
	c.surface.Commit()
	buf.MarkBusy()

	return nil
}

// next returns a buffer that the compositor is not reading from.
func (c *Compositor) next() (*wl.ImageBuffer, error) {
	px := c.pixelSize()
	for _, buf := range c.bufs {
		if !buf.Busy() {
			return buf, buf.Resize(int32(px.X), int32(px.Y))
		}
	}

	if len(c.bufs) >= maxBuffers {
		logger.Debug("all buffers busy, reusing oldest")
		buf := c.bufs[0]
		c.bufs = append(c.bufs[1:], buf)
		return buf, nil
	}

	buf, err := wl.NewImageBuffer(c.shm, int32(px.X), int32(px.Y))
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	c.bufs = append(c.bufs, buf)
	return buf, nil
}

func copyFrame(buf *wl.ImageBuffer, src image.Image) {
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Bounds() != buf.Bounds() {
		draw.Draw(buf.Image(), buf.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}
	toARGB(buf.Pix(), rgba.Pix)
}

// toARGB converts premultiplied RGBA pixels to little-endian
// ARGB8888, which is BGRA in memory.
func toARGB(dst, src []byte) {
	n := min(len(dst), len(src))
	for i := 0; i+3 < n; i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

// Close releases the swapchain, the drawing context and the pinned
// images. It does not destroy the surface.
func (c *Compositor) Close() {
	c.pins.Release()

	for _, buf := range c.bufs {
		buf.Destroy()
	}
	c.bufs = nil

	if c.dc != nil {
		err := c.dc.Close()
		if err != nil {
			logger.Debug("close drawing context", "err", err)
		}
		c.dc = nil
	}
}

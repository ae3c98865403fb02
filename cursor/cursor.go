// Package cursor loads XCursor themes and turns their images into
// surfaces that can be handed to wl_pointer.set_cursor.
package cursor

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/shm"
	"deedles.dev/ximage/xcursor"
	"golang.org/x/sys/unix"
)

// ErrNotFound is returned when a theme has none of the requested
// cursors.
var ErrNotFound = errors.New("cursor not found in theme")

// Theme is a loaded XCursor theme at a nominal size.
type Theme struct {
	theme *xcursor.Theme
	size  int
}

// LoadTheme loads the named theme. An empty name selects
// $XCURSOR_THEME, falling back to the default theme. A size of zero
// selects $XCURSOR_SIZE, falling back to 24.
func LoadTheme(name string, size int) (*Theme, error) {
	if name == "" {
		name = os.Getenv("XCURSOR_THEME")
	}
	if size <= 0 {
		size = envSize()
	}

	theme, err := xcursor.LoadTheme(name)
	if err != nil {
		return nil, fmt.Errorf("load cursor theme %q: %w", name, err)
	}

	return &Theme{theme: theme, size: size}, nil
}

func envSize() int {
	size, err := strconv.Atoi(os.Getenv("XCURSOR_SIZE"))
	if err != nil || size <= 0 {
		return 24
	}
	return size
}

// Image is a single cursor frame in ARGB8888.
type Image struct {
	Pix    []byte
	Size   image.Point
	Stride int
	Hot    image.Point
}

// Image returns the first frame of the first of names that exists in
// the theme, at the theme's size multiplied by scale.
func (t *Theme) Image(scale int, names ...string) (*Image, error) {
	for _, name := range names {
		cursors, ok := t.theme.Cursors[name]
		if !ok {
			continue
		}

		images := cursors.Images[cursors.BestSize(t.size*max(scale, 1))]
		if len(images) == 0 {
			continue
		}

		cimg := images[0]
		return &Image{
			Pix:    cimg.Image.Pix,
			Size:   cimg.Image.Rect.Size(),
			Stride: cimg.Image.Stride(),
			Hot:    cimg.Hot,
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrNotFound, names)
}

// crop trims the right and bottom edges of img so that both of its
// dimensions are multiples of scale, which a surface with that buffer
// scale requires. The hotspot is clamped to the result. An image
// smaller than scale is returned unchanged.
func (img *Image) crop(scale int) *Image {
	size := image.Pt(img.Size.X-img.Size.X%scale, img.Size.Y-img.Size.Y%scale)
	if size == img.Size || size.X == 0 || size.Y == 0 {
		return img
	}

	return &Image{
		Pix:    img.Pix[:img.Stride*size.Y],
		Size:   size,
		Stride: img.Stride,
		Hot:    image.Pt(min(img.Hot.X, size.X-1), min(img.Hot.Y, size.Y-1)),
	}
}

// fitsScale reports whether img can be attached to a surface with the
// given buffer scale.
func (img *Image) fitsScale(scale int) bool {
	return img.Size.X%scale == 0 && img.Size.Y%scale == 0
}

type key struct {
	name  string
	scale int
}

// Cursor is a surface holding a cursor image.
type Cursor struct {
	Surface *wl.Surface
	Hot     image.Point
}

// Cache creates cursor surfaces on demand and keeps them for reuse.
type Cache struct {
	theme      *Theme
	compositor *wl.Compositor
	shm        *wl.Shm
	cursors    map[key]*Cursor
}

func NewCache(theme *Theme, compositor *wl.Compositor, shm *wl.Shm) *Cache {
	return &Cache{
		theme:      theme,
		compositor: compositor,
		shm:        shm,
		cursors:    make(map[key]*Cursor),
	}
}

// Get returns a surface showing the named cursor. The name is only a
// cache key; names lists the theme names to try in order.
func (c *Cache) Get(name string, scale int, names ...string) (*Cursor, error) {
	k := key{name: name, scale: max(scale, 1)}
	if cur, ok := c.cursors[k]; ok {
		return cur, nil
	}

	img, err := c.theme.Image(k.scale, names...)
	if err != nil {
		return nil, err
	}

	scale = k.scale
	img = img.crop(scale)
	if !img.fitsScale(scale) {
		scale = 1
	}

	cur, err := c.create(img, scale)
	if err != nil {
		return nil, fmt.Errorf("create cursor %q: %w", name, err)
	}
	c.cursors[k] = cur
	return cur, nil
}

func (c *Cache) create(img *Image, scale int) (*Cursor, error) {
	size := len(img.Pix)

	file, err := shm.Create()
	if err != nil {
		return nil, fmt.Errorf("create SHM file: %w", err)
	}
	defer file.Close()

	err = file.Truncate(int64(size))
	if err != nil {
		return nil, fmt.Errorf("truncate SHM file: %w", err)
	}

	mmap, err := shm.Map(file, size, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	defer mmap.Unmap()
	copy(mmap, img.Pix)

	pool := c.shm.CreatePool(file, int32(size))
	defer pool.Destroy()
	buf := pool.CreateBuffer(
		0,
		int32(img.Size.X),
		int32(img.Size.Y),
		int32(img.Stride),
		wl.ShmFormatArgb8888,
	)

	surface := c.compositor.CreateSurface()
	surface.SetBufferScale(int32(scale))
	surface.Attach(buf, 0, 0)
	surface.Commit()

	return &Cursor{
		Surface: surface,
		Hot:     img.Hot.Div(scale),
	}, nil
}

// Destroy destroys every cached surface.
func (c *Cache) Destroy() {
	for k, cur := range c.cursors {
		cur.Surface.Destroy()
		delete(c.cursors, k)
	}
}

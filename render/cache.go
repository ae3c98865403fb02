package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"sync"

	"deedles.dev/waysmoke/ui"
	"github.com/gogpu/gg"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultCacheSize is the capacity used when NewImageCache is given a
// non-positive size.
const DefaultCacheSize = 64

type pin struct {
	buf  *gg.ImageBuf
	refs int
}

// ImageCache holds decoded images and rasterized text runs. It is
// shared by every compositor in a process. Each compositor pins the
// images that its surface retains through its own Pins, and an image
// stays pinned while any owner retains it. Everything else lives in an
// LRU.
type ImageCache struct {
	m      sync.Mutex
	pinned map[uint64]*pin
	images *lru.Cache[uint64, *gg.ImageBuf]
	text   *lru.Cache[string, *gg.ImageBuf]
}

func NewImageCache(size int) *ImageCache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	// New only fails for non-positive sizes.
	images, _ := lru.New[uint64, *gg.ImageBuf](size)
	text, _ := lru.New[string, *gg.ImageBuf](size)

	return &ImageCache{
		pinned: make(map[uint64]*pin),
		images: images,
		text:   text,
	}
}

// NewPins returns an empty pinned set owned by the caller.
func (c *ImageCache) NewPins() *Pins {
	return &Pins{cache: c, ids: make(map[uint64]struct{})}
}

// Retained reports whether any owner currently pins img.
func (c *ImageCache) Retained(img *ui.Image) bool {
	c.m.Lock()
	defer c.m.Unlock()

	_, ok := c.pinned[img.ID()]
	return ok
}

// Image returns the decoded pixels of img.
func (c *ImageCache) Image(img *ui.Image) (*gg.ImageBuf, error) {
	c.m.Lock()
	defer c.m.Unlock()

	return c.image(img)
}

func (c *ImageCache) image(img *ui.Image) (*gg.ImageBuf, error) {
	if p, ok := c.pinned[img.ID()]; ok {
		return p.buf, nil
	}
	if buf, ok := c.images.Get(img.ID()); ok {
		return buf, nil
	}

	buf, err := load(img)
	if err != nil {
		return nil, err
	}
	c.images.Add(img.ID(), buf)
	return buf, nil
}

func (c *ImageCache) ref(img *ui.Image) error {
	if p, ok := c.pinned[img.ID()]; ok {
		p.refs++
		return nil
	}

	buf, err := c.image(img)
	if err != nil {
		return err
	}
	c.images.Remove(img.ID())
	c.pinned[img.ID()] = &pin{buf: buf, refs: 1}
	return nil
}

func (c *ImageCache) unref(id uint64) {
	p, ok := c.pinned[id]
	if !ok {
		return
	}

	p.refs--
	if p.refs > 0 {
		return
	}
	delete(c.pinned, id)
	c.images.Add(id, p.buf)
}

// Pins is one owner's set of pinned images.
type Pins struct {
	cache *ImageCache
	ids   map[uint64]struct{}
}

// Retain replaces the owner's pinned set with imgs, loading any that
// are not already cached. Images that no owner pins any longer are
// moved to the LRU.
func (p *Pins) Retain(imgs []*ui.Image) error {
	c := p.cache
	c.m.Lock()
	defer c.m.Unlock()

	ids := make(map[uint64]struct{}, len(imgs))
	var errs []error
	for _, img := range imgs {
		if img == nil {
			continue
		}
		if _, ok := ids[img.ID()]; ok {
			continue
		}

		err := c.ref(img)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids[img.ID()] = struct{}{}
	}

	for id := range p.ids {
		c.unref(id)
	}
	p.ids = ids

	if len(errs) > 0 {
		return fmt.Errorf("retain images: %w", errs[0])
	}
	return nil
}

// Release drops every image pinned by the owner.
func (p *Pins) Release() {
	p.Retain(nil)
}

func load(img *ui.Image) (*gg.ImageBuf, error) {
	if src := img.Source(); src != nil {
		return gg.ImageBufFromImage(src), nil
	}

	buf, err := gg.LoadImage(img.Path())
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", img.Path(), err)
	}
	return buf, nil
}

// Text returns a rasterized run of s in the toolkit's fixed-width face
// at its native size.
func (c *ImageCache) Text(s string, col color.NRGBA) *gg.ImageBuf {
	key := textKey(s, col)
	if buf, ok := c.text.Get(key); ok {
		return buf
	}

	buf := gg.ImageBufFromImage(rasterizeText(s, col))
	c.text.Add(key, buf)
	return buf
}

func textKey(s string, col color.NRGBA) string {
	c := uint32(col.R)<<24 | uint32(col.G)<<16 | uint32(col.B)<<8 | uint32(col.A)
	return strconv.FormatUint(uint64(c), 16) + ":" + s
}

func rasterizeText(s string, col color.NRGBA) *image.RGBA {
	face := basicfont.Face7x13
	size := ui.MeasureText(s, float64(face.Height))
	dst := image.NewRGBA(image.Rectangle{Max: image.Pt(max(size.X, 1), size.Y)})

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	return dst
}

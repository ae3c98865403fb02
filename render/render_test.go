package render

import (
	"image"
	"image/color"
	"testing"

	"deedles.dev/waysmoke/ui"
	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToARGB(t *testing.T) {
	src := []byte{1, 2, 3, 4, 10, 20, 30, 40}
	dst := make([]byte, len(src))
	toARGB(dst, src)
	assert.Equal(t, []byte{3, 2, 1, 4, 30, 20, 10, 40}, dst)
}

func TestPaintQuad(t *testing.T) {
	dc := gg.NewContext(20, 20)
	defer dc.Close()

	prim := ui.Group(ui.Quad(image.Rect(2, 2, 8, 8), color.NRGBA{255, 0, 0, 255}, 0))
	err := Paint(dc, prim, 2, NewImageCache(0))
	require.NoError(t, err)

	img := dc.Image()
	r, g, b, a := img.At(10, 10).RGBA()
	assert.Greater(t, r, uint32(0xF000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
	assert.Greater(t, a, uint32(0xF000))

	_, _, _, a = img.At(18, 18).RGBA()
	assert.Zero(t, a)
}

func TestImageCacheRetain(t *testing.T) {
	c := NewImageCache(4)
	pins := c.NewPins()
	a := ui.NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	b := ui.NewImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.NoError(t, pins.Retain([]*ui.Image{a, b}))
	assert.True(t, c.Retained(a))
	assert.True(t, c.Retained(b))

	bufA, err := c.Image(a)
	require.NoError(t, err)

	require.NoError(t, pins.Retain([]*ui.Image{b}))
	assert.False(t, c.Retained(a))
	assert.True(t, c.Retained(b))

	again, err := c.Image(a)
	require.NoError(t, err)
	assert.Same(t, bufA, again)
}

func TestImageCacheSharedPins(t *testing.T) {
	c := NewImageCache(4)
	first, second := c.NewPins(), c.NewPins()
	a := ui.NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	b := ui.NewImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	shared := ui.NewImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))

	require.NoError(t, first.Retain([]*ui.Image{a, shared}))
	require.NoError(t, second.Retain([]*ui.Image{b, shared}))
	assert.True(t, c.Retained(a), "pinning b must not unpin a")
	assert.True(t, c.Retained(b))
	assert.True(t, c.Retained(shared))

	require.NoError(t, second.Retain(nil))
	assert.True(t, c.Retained(a))
	assert.False(t, c.Retained(b))
	assert.True(t, c.Retained(shared), "still pinned by the first owner")

	first.Release()
	assert.False(t, c.Retained(a))
	assert.False(t, c.Retained(shared))
}

func TestImageCacheMissing(t *testing.T) {
	c := NewImageCache(4)
	missing := ui.ImageFromPath("/nonexistent/icon.png")

	_, err := c.Image(missing)
	assert.Error(t, err)
	assert.Error(t, c.NewPins().Retain([]*ui.Image{missing}))
	assert.False(t, c.Retained(missing))
}

func TestText(t *testing.T) {
	c := NewImageCache(4)
	white := color.NRGBA{255, 255, 255, 255}

	buf := c.Text("hi", white)
	assert.Same(t, buf, c.Text("hi", white))
	assert.NotSame(t, buf, c.Text("hi", color.NRGBA{0, 0, 0, 255}))

	img := rasterizeText("hi", white)
	assert.Equal(t, image.Rect(0, 0, 14, 13), img.Bounds())
}

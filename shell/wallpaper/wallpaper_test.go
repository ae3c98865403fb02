package wallpaper

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"deedles.dev/waysmoke/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop(t *testing.T) {
	tests := []struct {
		name string
		src  image.Rectangle
		size image.Point
		crop image.Rectangle
	}{
		{name: "Same", src: image.Rect(0, 0, 1920, 1080), size: image.Pt(1920, 1080), crop: image.Rect(0, 0, 1920, 1080)},
		{name: "Wider", src: image.Rect(0, 0, 2000, 1000), size: image.Pt(100, 100), crop: image.Rect(500, 0, 1500, 1000)},
		{name: "Taller", src: image.Rect(0, 0, 1000, 2000), size: image.Pt(200, 100), crop: image.Rect(0, 750, 1000, 1250)},
		{name: "Offset", src: image.Rect(10, 10, 30, 20), size: image.Pt(1, 1), crop: image.Rect(15, 10, 25, 20)},
		{name: "Empty size", src: image.Rect(0, 0, 4, 4), size: image.Point{}, crop: image.Rect(0, 0, 4, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.crop, Crop(tt.src, tt.size))
		})
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFit(t *testing.T) {
	w := New(solid(400, 100, color.White), DefaultColor)

	small := w.fit(image.Pt(50, 50))
	require.NotNil(t, small)
	assert.Equal(t, image.Rect(0, 0, 100, 100), small.Source().Bounds())
	assert.Same(t, small, w.fit(image.Pt(50, 50)))

	large := w.fit(image.Pt(500, 100))
	require.NotNil(t, large)
	assert.NotSame(t, small, large)
	assert.Equal(t, image.Rect(0, 0, 400, 80), large.Source().Bounds())

	assert.Equal(t, []*ui.Image{large}, w.RetainedImages())
}

func TestDraw(t *testing.T) {
	size := image.Pt(64, 32)

	plain := New(nil, DefaultColor)
	plain.Resize(size, 1)
	prim := ui.Build(plain.View(), size, nil).Draw(ui.NoCursor)
	require.Len(t, prim.Children, 1)
	assert.Equal(t, ui.KindQuad, prim.Children[0].Kind)
	assert.Equal(t, DefaultColor, prim.Children[0].Color)
	assert.Equal(t, image.Rectangle{Max: size}, prim.Bounds)
	assert.Empty(t, plain.RetainedImages())

	pic := New(solid(8, 8, color.Black), DefaultColor)
	pic.Resize(size, 1)
	prim = ui.Build(pic.View(), size, nil).Draw(ui.NoCursor)
	require.Len(t, prim.Children, 2)
	assert.Equal(t, ui.KindImage, prim.Children[1].Kind)
	assert.Equal(t, image.Rectangle{Max: size}, prim.Children[1].Bounds)

	again := ui.Build(pic.View(), size, nil).Draw(ui.NoCursor)
	assert.Empty(t, ui.Damage(prim, again))
}

func TestRetainedMatchesDrawn(t *testing.T) {
	w := New(solid(400, 100, color.White), DefaultColor)
	assert.Empty(t, w.RetainedImages())

	for _, size := range []image.Point{image.Pt(50, 50), image.Pt(500, 100)} {
		w.Resize(size, 1)
		retained := w.RetainedImages()
		require.Len(t, retained, 1)

		prim := ui.Build(w.View(), size, nil).Draw(ui.NoCursor)
		require.Len(t, prim.Children, 2)
		assert.Same(t, retained[0], prim.Children[1].Image, "size %v", size)

		// Drawing does not change what is retained.
		ui.Build(w.View(), image.Pt(10, 10), nil).Draw(ui.NoCursor)
		assert.Equal(t, retained, w.RetainedImages())
	}
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 165, A: 255}, ParseColor("Orange"))
	assert.Equal(t, DefaultColor, ParseColor(""))
	assert.Equal(t, DefaultColor, ParseColor("not a color"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, solid(3, 2, color.White)))
	require.NoError(t, file.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

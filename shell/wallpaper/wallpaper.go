// Package wallpaper draws an image or a solid color behind everything
// else on an output.
package wallpaper

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"deedles.dev/waysmoke/layershell"
	"deedles.dev/waysmoke/shell/style"
	"deedles.dev/waysmoke/ui"
	"deedles.dev/waysmoke/wstk"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxScale is the largest buffer scale that the wallpaper keeps full
// detail for. Larger images are reduced to the surface size at this
// scale.
const MaxScale = 2

var DefaultColor = color.NRGBA{R: colornames.Darkslategray.R, G: colornames.Darkslategray.G, B: colornames.Darkslategray.B, A: 255}

// Msg is the wallpaper's message type. Wallpapers do not produce any
// messages.
type Msg struct{}

// Load decodes the image at path. PNG, JPEG and WebP are supported.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", path, err)
	}
	return img, nil
}

// ParseColor returns the named color, or DefaultColor if the name is
// empty or unknown.
func ParseColor(name string) color.NRGBA {
	c, ok := style.Color(name)
	if !ok {
		return DefaultColor
	}
	return c
}

// Wallpaper is the background surface for one output.
type Wallpaper struct {
	wstk.SurfaceBase[Msg]

	source image.Image
	color  color.NRGBA

	size   image.Point
	fitted *ui.Image
}

// New returns a wallpaper that draws img over c. img may be nil.
func New(img image.Image, c color.NRGBA) *Wallpaper {
	return &Wallpaper{source: img, color: c}
}

func (w *Wallpaper) Layer() layershell.Layer { return layershell.LayerBackground }
func (w *Wallpaper) Namespace() string       { return "waysmoke-wallpaper" }

func (w *Wallpaper) Setup(ls *layershell.Surface) {
	ls.SetAnchor(layershell.AnchorAll)
	ls.SetSize(0, 0)
	ls.SetExclusiveZone(-1)
}

// Resize fits the image to the new size so that it is ready before
// the next frame is built.
func (w *Wallpaper) Resize(size image.Point, scale int) {
	w.fit(size)
}

func (w *Wallpaper) View() ui.Element[Msg] {
	return cover{color: w.color, img: w.fitted}
}

func (w *Wallpaper) RetainedImages() []*ui.Image {
	if w.fitted == nil {
		return nil
	}
	return []*ui.Image{w.fitted}
}

// fit returns the source image cropped to the aspect ratio of size
// and reduced to at most MaxScale times size. The result is cached
// until the size changes.
func (w *Wallpaper) fit(size image.Point) *ui.Image {
	if w.source == nil || size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if w.fitted != nil && size == w.size {
		return w.fitted
	}

	crop := Crop(w.source.Bounds(), size)
	target := size.Mul(MaxScale)
	if crop.Dx() < target.X {
		target = crop.Size()
	}

	dst := image.NewRGBA(image.Rectangle{Max: target})
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), w.source, crop, draw.Src, nil)

	w.size = size
	w.fitted = ui.NewImage(dst)
	return w.fitted
}

// Crop returns the largest centered rectangle within src with the
// aspect ratio of size.
func Crop(src image.Rectangle, size image.Point) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || size.X <= 0 || size.Y <= 0 {
		return src
	}

	w, h := sw, sw*size.Y/size.X
	if h > sh {
		w, h = sh*size.X/size.Y, sh
	}

	off := image.Pt((sw-w)/2, (sh-h)/2)
	return image.Rectangle{Max: image.Pt(w, h)}.Add(src.Min).Add(off)
}

// cover fills its bounds with a color and stretches img over it.
type cover struct {
	color color.NRGBA
	img   *ui.Image
}

func (c cover) Tag() string       { return "wallpaper" }
func (c cover) Width() ui.Length  { return ui.Fill }
func (c cover) Height() ui.Length { return ui.Fill }

func (c cover) Layout(bounds image.Point) ui.Node {
	return ui.Node{Bounds: image.Rectangle{Max: bounds}}
}

func (c cover) Draw(n ui.Node, st *ui.State, cursor image.Point) ui.Primitive {
	background := ui.Quad(n.Bounds, c.color, 0)
	if c.img == nil {
		return ui.Group(background)
	}
	return ui.Group(background, ui.Primitive{Kind: ui.KindImage, Bounds: n.Bounds, Image: c.img})
}

func (c cover) OnEvent(ui.Event, ui.Node, *ui.State, image.Point, func(Msg)) {}

func (c cover) Interaction(ui.Node, *ui.State, image.Point) ui.Interaction {
	return ui.InteractionIdle
}

package ui

import (
	"image"
	"image/color"
	"slices"
	"sync/atomic"
)

type PrimitiveKind int

const (
	KindGroup PrimitiveKind = iota
	KindQuad
	KindImage
	KindText
)

// Primitive is an immutable description of something to draw. Trees
// of primitives are produced by drawing a UserInterface and consumed
// by a compositor backend.
type Primitive struct {
	Kind   PrimitiveKind
	Bounds image.Rectangle

	// Quad
	Color       color.NRGBA
	Radius      float64
	BorderWidth float64
	BorderColor color.NRGBA

	// Image
	Image *Image

	// Text
	Text     string
	TextSize float64

	// Group
	Children []Primitive
}

// Group combines children into a single primitive whose bounds are
// the union of theirs. Empty children are dropped.
func Group(children ...Primitive) Primitive {
	g := Primitive{Kind: KindGroup, Children: make([]Primitive, 0, len(children))}
	for _, c := range children {
		if c.empty() {
			continue
		}
		g.Bounds = g.Bounds.Union(c.Bounds)
		g.Children = append(g.Children, c)
	}
	return g
}

func Quad(bounds image.Rectangle, c color.NRGBA, radius float64) Primitive {
	return Primitive{Kind: KindQuad, Bounds: bounds, Color: c, Radius: radius}
}

func (p Primitive) empty() bool {
	return p.Kind == KindGroup && len(p.Children) == 0
}

// Equal reports whether p and o draw identically. Images are compared
// by identity.
func (p Primitive) Equal(o Primitive) bool {
	if p.Kind != o.Kind || p.Bounds != o.Bounds {
		return false
	}

	switch p.Kind {
	case KindGroup:
		return slices.EqualFunc(p.Children, o.Children, Primitive.Equal)
	case KindQuad:
		return p.Color == o.Color && p.Radius == o.Radius &&
			p.BorderWidth == o.BorderWidth && p.BorderColor == o.BorderColor
	case KindImage:
		return p.Image == o.Image
	case KindText:
		return p.Text == o.Text && p.TextSize == o.TextSize && p.Color == o.Color
	}
	return false
}

// Damage returns the regions that differ between prev and next. It
// returns nil if the two trees draw identically.
func Damage(prev, next Primitive) []image.Rectangle {
	var damage []image.Rectangle
	diff(&damage, prev, next)
	return merge(damage)
}

func diff(damage *[]image.Rectangle, prev, next Primitive) {
	if prev.Kind == KindGroup && next.Kind == KindGroup && len(prev.Children) == len(next.Children) {
		for i := range prev.Children {
			diff(damage, prev.Children[i], next.Children[i])
		}
		return
	}

	if prev.Equal(next) {
		return
	}
	if !prev.Bounds.Empty() {
		*damage = append(*damage, prev.Bounds)
	}
	if !next.Bounds.Empty() && next.Bounds != prev.Bounds {
		*damage = append(*damage, next.Bounds)
	}
}

// merge combines overlapping rectangles until none overlap.
func merge(rects []image.Rectangle) []image.Rectangle {
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(rects); i++ {
			for j := len(rects) - 1; j > i; j-- {
				if !rects[i].Overlaps(rects[j]) {
					continue
				}
				rects[i] = rects[i].Union(rects[j])
				rects = slices.Delete(rects, j, j+1)
				merged = true
			}
		}
	}
	return rects
}

var imageIDs atomic.Uint64

// Image is a handle to a raster image. The pixels are either given
// directly or loaded lazily from Path by the compositor backend, which
// caches decoded images by ID.
type Image struct {
	id   uint64
	path string
	img  image.Image
}

func NewImage(img image.Image) *Image {
	return &Image{id: imageIDs.Add(1), img: img}
}

func ImageFromPath(path string) *Image {
	return &Image{id: imageIDs.Add(1), path: path}
}

func (img *Image) ID() uint64 {
	return img.id
}

func (img *Image) Path() string {
	return img.path
}

// Source returns the image data, if it was provided directly.
func (img *Image) Source() image.Image {
	return img.img
}

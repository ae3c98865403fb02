package ui

import (
	"image"
	"image/color"
	"math"

	"deedles.dev/waysmoke/pointer"
	"golang.org/x/image/font/basicfont"
)

// Style describes the background of a Container or Button.
type Style struct {
	Background  color.NRGBA
	Radius      float64
	BorderWidth float64
	BorderColor color.NRGBA
}

func (s Style) quad(r image.Rectangle) Primitive {
	if s.Background.A == 0 && s.BorderWidth == 0 {
		return Primitive{}
	}

	p := Quad(r, s.Background, s.Radius)
	p.BorderWidth = s.BorderWidth
	p.BorderColor = s.BorderColor
	return p
}

// Container positions a single child and optionally draws a
// background behind it.
type Container[M any] struct {
	Content Element[M]
	Padding int
	W, H    Length
	AlignX  Align
	AlignY  Align
	Style   Style
}

func (c Container[M]) Tag() string    { return "container" }
func (c Container[M]) Width() Length  { return c.W }
func (c Container[M]) Height() Length { return c.H }

func (c Container[M]) Layout(bounds image.Point) Node {
	pad := image.Pt(c.Padding*2, c.Padding*2)
	limit := image.Pt(c.W.limit(bounds.X), c.H.limit(bounds.Y)).Sub(pad)
	child := c.Content.Layout(image.Pt(max(limit.X, 0), max(limit.Y, 0)))

	content := child.Size().Add(pad)
	size := image.Pt(c.W.resolve(bounds.X, content.X), c.H.resolve(bounds.Y, content.Y))
	inner := size.Sub(pad)
	off := image.Pt(
		c.Padding+c.AlignX.offset(inner.X, child.Size().X),
		c.Padding+c.AlignY.offset(inner.Y, child.Size().Y),
	)

	return Node{
		Bounds:   image.Rectangle{Max: size},
		Children: []Node{child.Translate(off)},
	}
}

func (c Container[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return Group(
		c.Style.quad(n.Bounds),
		c.Content.Draw(n.Children[0], st.Child(0, c.Content.Tag()), cursor),
	)
}

func (c Container[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	c.Content.OnEvent(ev, n.Children[0], st.Child(0, c.Content.Tag()), cursor, publish)
}

func (c Container[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return c.Content.Interaction(n.Children[0], st.Child(0, c.Content.Tag()), cursor)
}

// Space is empty space.
type Space[M any] struct {
	W, H Length
}

func (s Space[M]) Tag() string    { return "space" }
func (s Space[M]) Width() Length  { return s.W }
func (s Space[M]) Height() Length { return s.H }

func (s Space[M]) Layout(bounds image.Point) Node {
	return Node{Bounds: image.Rect(0, 0, s.W.resolve(bounds.X, 0), s.H.resolve(bounds.Y, 0))}
}

func (s Space[M]) Draw(Node, *State, image.Point) Primitive {
	return Primitive{}
}

func (s Space[M]) OnEvent(Event, Node, *State, image.Point, func(M)) {}

func (s Space[M]) Interaction(Node, *State, image.Point) Interaction {
	return InteractionIdle
}

// Shape draws a fixed primitive. The primitive's bounds are relative
// to the element's position. A zero length on either axis fills.
type Shape[M any] struct {
	Primitive Primitive
	W, H      Length
}

func (s Shape[M]) Tag() string { return "shape" }

func (s Shape[M]) Width() Length {
	if s.W == (Length{}) {
		return Fill
	}
	return s.W
}

func (s Shape[M]) Height() Length {
	if s.H == (Length{}) {
		return Fill
	}
	return s.H
}

func (s Shape[M]) Layout(bounds image.Point) Node {
	return Node{Bounds: image.Rect(0, 0, s.Width().resolve(bounds.X, 0), s.Height().resolve(bounds.Y, 0))}
}

func (s Shape[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return translate(s.Primitive, n.Bounds.Min)
}

func (s Shape[M]) OnEvent(Event, Node, *State, image.Point, func(M)) {}
func (s Shape[M]) Interaction(Node, *State, image.Point) Interaction {
	return InteractionIdle
}

func translate(p Primitive, off image.Point) Primitive {
	p.Bounds = p.Bounds.Add(off)
	if len(p.Children) > 0 {
		children := make([]Primitive, len(p.Children))
		for i, c := range p.Children {
			children[i] = translate(c, off)
		}
		p.Children = children
	}
	return p
}

const defaultTextSize = 16

// Text is a single line of text in a fixed-width face.
type Text[M any] struct {
	Content string
	Size    float64
	Color   color.NRGBA
	W       Length
	AlignX  Align
}

func (t Text[M]) Tag() string    { return "text" }
func (t Text[M]) Width() Length  { return t.W }
func (t Text[M]) Height() Length { return Shrink }

func (t Text[M]) size() float64 {
	if t.Size <= 0 {
		return defaultTextSize
	}
	return t.Size
}

func (t Text[M]) Layout(bounds image.Point) Node {
	m := MeasureText(t.Content, t.size())
	return Node{Bounds: image.Rect(0, 0, t.W.resolve(bounds.X, m.X), min(m.Y, bounds.Y))}
}

func (t Text[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	m := MeasureText(t.Content, t.size())
	x := n.Bounds.Min.X + t.AlignX.offset(n.Bounds.Dx(), m.X)
	c := t.Color
	if c == (color.NRGBA{}) {
		c = color.NRGBA{255, 255, 255, 255}
	}
	return Primitive{
		Kind:     KindText,
		Bounds:   image.Rect(x, n.Bounds.Min.Y, x+m.X, n.Bounds.Min.Y+m.Y).Intersect(n.Bounds),
		Color:    c,
		Text:     t.Content,
		TextSize: t.size(),
	}
}

func (t Text[M]) OnEvent(Event, Node, *State, image.Point, func(M)) {}
func (t Text[M]) Interaction(Node, *State, image.Point) Interaction {
	return InteractionIdle
}

// MeasureText returns the size of s rendered at the given size.
func MeasureText(s string, size float64) image.Point {
	face := basicfont.Face7x13
	scale := size / float64(face.Height)
	var n int
	for range s {
		n++
	}
	return image.Pt(
		int(math.Ceil(float64(n*face.Advance)*scale)),
		int(math.Ceil(float64(face.Height)*scale)),
	)
}

// ImageView shows an image scaled to its bounds.
type ImageView[M any] struct {
	Image *Image
	W, H  Length
}

func (v ImageView[M]) Tag() string    { return "image" }
func (v ImageView[M]) Width() Length  { return v.W }
func (v ImageView[M]) Height() Length { return v.H }

func (v ImageView[M]) Layout(bounds image.Point) Node {
	var natural image.Point
	if v.Image != nil && v.Image.Source() != nil {
		natural = v.Image.Source().Bounds().Size()
	}
	return Node{Bounds: image.Rect(0, 0, v.W.resolve(bounds.X, natural.X), v.H.resolve(bounds.Y, natural.Y))}
}

func (v ImageView[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	if v.Image == nil {
		return Primitive{}
	}
	return Primitive{Kind: KindImage, Bounds: n.Bounds, Image: v.Image}
}

func (v ImageView[M]) OnEvent(Event, Node, *State, image.Point, func(M)) {}
func (v ImageView[M]) Interaction(Node, *State, image.Point) Interaction {
	return InteractionIdle
}

// Button publishes the result of OnPress when the left button is
// pressed and released over it.
type Button[M any] struct {
	Content Element[M]
	Padding int
	W, H    Length
	OnPress func() M

	Style   Style
	Hovered Style
	Pressed Style
}

func (b Button[M]) Tag() string    { return "button" }
func (b Button[M]) Width() Length  { return b.W }
func (b Button[M]) Height() Length { return b.H }

func (b Button[M]) container() Container[M] {
	return Container[M]{
		Content: b.Content,
		Padding: b.Padding,
		W:       b.W,
		H:       b.H,
		AlignX:  Center,
		AlignY:  Center,
	}
}

func (b Button[M]) Layout(bounds image.Point) Node {
	return b.container().Layout(bounds)
}

func (b Button[M]) style(n Node, st *State, cursor image.Point) Style {
	switch {
	case st.Pressed && b.Pressed != (Style{}):
		return b.Pressed
	case cursor.In(n.Bounds) && b.Hovered != (Style{}):
		return b.Hovered
	default:
		return b.Style
	}
}

func (b Button[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return Group(
		b.style(n, st, cursor).quad(n.Bounds),
		b.Content.Draw(n.Children[0], st.Child(0, b.Content.Tag()), cursor),
	)
}

func (b Button[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	b.Content.OnEvent(ev, n.Children[0], st.Child(0, b.Content.Tag()), cursor, publish)

	switch ev := ev.(type) {
	case ButtonPressed:
		if ev.Button == pointer.ButtonLeft && cursor.In(n.Bounds) {
			st.Pressed = true
		}
	case ButtonReleased:
		if ev.Button != pointer.ButtonLeft || !st.Pressed {
			return
		}
		st.Pressed = false
		if cursor.In(n.Bounds) && b.OnPress != nil {
			publish(b.OnPress())
		}
	}
}

func (b Button[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	if b.OnPress != nil && cursor.In(n.Bounds) {
		return InteractionPointer
	}
	return b.Content.Interaction(n.Children[0], st.Child(0, b.Content.Tag()), cursor)
}

// Listener publishes messages when the pointer enters or leaves its
// content.
type Listener[M any] struct {
	Content Element[M]
	OnEnter func() M
	OnLeave func() M
}

func (l Listener[M]) Tag() string    { return "listener" }
func (l Listener[M]) Width() Length  { return l.Content.Width() }
func (l Listener[M]) Height() Length { return l.Content.Height() }

func (l Listener[M]) Layout(bounds image.Point) Node {
	child := l.Content.Layout(bounds)
	return Node{Bounds: child.Bounds, Children: []Node{child}}
}

func (l Listener[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return l.Content.Draw(n.Children[0], st.Child(0, l.Content.Tag()), cursor)
}

func (l Listener[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	l.Content.OnEvent(ev, n.Children[0], st.Child(0, l.Content.Tag()), cursor, publish)

	hovered := cursor.In(n.Bounds)
	switch {
	case hovered && !st.Hovered && l.OnEnter != nil:
		publish(l.OnEnter())
	case !hovered && st.Hovered && l.OnLeave != nil:
		publish(l.OnLeave())
	}
	st.Hovered = hovered
}

func (l Listener[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return l.Content.Interaction(n.Children[0], st.Child(0, l.Content.Tag()), cursor)
}

// Region records the bounds of its content each time it is drawn.
type Region[M any] struct {
	Content Element[M]
	Bounds  *image.Rectangle
}

func (r Region[M]) Tag() string    { return r.Content.Tag() }
func (r Region[M]) Width() Length  { return r.Content.Width() }
func (r Region[M]) Height() Length { return r.Content.Height() }

func (r Region[M]) Layout(bounds image.Point) Node {
	return r.Content.Layout(bounds)
}

func (r Region[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	if r.Bounds != nil {
		*r.Bounds = n.Bounds
	}
	return r.Content.Draw(n, st, cursor)
}

func (r Region[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	r.Content.OnEvent(ev, n, st, cursor, publish)
}

func (r Region[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return r.Content.Interaction(n, st, cursor)
}

type mapped[A, M any] struct {
	inner Element[A]
	f     func(A) M
}

// Map converts the messages produced by e with f.
func Map[A, M any](e Element[A], f func(A) M) Element[M] {
	return mapped[A, M]{inner: e, f: f}
}

func (m mapped[A, M]) Tag() string    { return m.inner.Tag() }
func (m mapped[A, M]) Width() Length  { return m.inner.Width() }
func (m mapped[A, M]) Height() Length { return m.inner.Height() }

func (m mapped[A, M]) Layout(bounds image.Point) Node {
	return m.inner.Layout(bounds)
}

func (m mapped[A, M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return m.inner.Draw(n, st, cursor)
}

func (m mapped[A, M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	m.inner.OnEvent(ev, n, st, cursor, func(a A) { publish(m.f(a)) })
}

func (m mapped[A, M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return m.inner.Interaction(n, st, cursor)
}

package ui

import "image"

// Column lays out its children vertically.
type Column[M any] struct {
	Children []Element[M]
	Spacing  int
	Padding  int
	W, H     Length

	// Align positions children horizontally.
	Align Align
}

func (c Column[M]) Tag() string    { return "column" }
func (c Column[M]) Width() Length  { return c.W }
func (c Column[M]) Height() Length { return c.H }

func (c Column[M]) Layout(bounds image.Point) Node {
	return flexLayout(vertical, c.Children, c.Spacing, c.Padding, c.W, c.H, c.Align, bounds)
}

func (c Column[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return drawChildren(c.Children, n, st, cursor)
}

func (c Column[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	childEvents(c.Children, ev, n, st, cursor, publish)
}

func (c Column[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return childInteraction(c.Children, n, st, cursor)
}

// Row lays out its children horizontally.
type Row[M any] struct {
	Children []Element[M]
	Spacing  int
	Padding  int
	W, H     Length

	// Align positions children vertically.
	Align Align
}

func (r Row[M]) Tag() string    { return "row" }
func (r Row[M]) Width() Length  { return r.W }
func (r Row[M]) Height() Length { return r.H }

func (r Row[M]) Layout(bounds image.Point) Node {
	return flexLayout(horizontal, r.Children, r.Spacing, r.Padding, r.W, r.H, r.Align, bounds)
}

func (r Row[M]) Draw(n Node, st *State, cursor image.Point) Primitive {
	return drawChildren(r.Children, n, st, cursor)
}

func (r Row[M]) OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	childEvents(r.Children, ev, n, st, cursor, publish)
}

func (r Row[M]) Interaction(n Node, st *State, cursor image.Point) Interaction {
	return childInteraction(r.Children, n, st, cursor)
}

type axis bool

const (
	horizontal axis = true
	vertical   axis = false
)

func (a axis) main(p image.Point) int {
	if a == horizontal {
		return p.X
	}
	return p.Y
}

func (a axis) cross(p image.Point) int {
	if a == horizontal {
		return p.Y
	}
	return p.X
}

func (a axis) point(main, cross int) image.Point {
	if a == horizontal {
		return image.Pt(main, cross)
	}
	return image.Pt(cross, main)
}

type sized interface {
	Width() Length
	Height() Length
}

func (a axis) length(e sized) Length {
	if a == horizontal {
		return e.Width()
	}
	return e.Height()
}

// flexLayout places children one after another along a. Children that
// fill along the main axis split whatever space the others leave.
func flexLayout[M any](a axis, children []Element[M], spacing, padding int, w, h Length, align Align, avail image.Point) Node {
	limit := image.Pt(w.limit(avail.X), h.limit(avail.Y)).Sub(image.Pt(padding*2, padding*2))
	limit = image.Pt(max(limit.X, 0), max(limit.Y, 0))

	nodes := make([]Node, len(children))
	gaps := spacing * max(len(children)-1, 0)
	used := gaps
	var fill int
	for i, c := range children {
		if a.length(c).IsFill() {
			fill++
			continue
		}
		nodes[i] = c.Layout(a.point(max(a.main(limit)-used, 0), a.cross(limit)))
		used += a.main(nodes[i].Size())
	}

	if fill > 0 {
		remain := max(a.main(limit)-used, 0)
		share := remain / fill
		for i, c := range children {
			if !a.length(c).IsFill() {
				continue
			}
			nodes[i] = c.Layout(a.point(share, a.cross(limit)))
			used += a.main(nodes[i].Size())
		}
	}

	var crossSize int
	for _, n := range nodes {
		crossSize = max(crossSize, a.cross(n.Size()))
	}

	content := a.point(used, crossSize).Add(image.Pt(padding*2, padding*2))
	size := image.Pt(w.resolve(avail.X, content.X), h.resolve(avail.Y, content.Y))
	inner := a.cross(size) - padding*2

	pos := padding
	for i, n := range nodes {
		off := a.point(pos, padding+align.offset(inner, a.cross(n.Size())))
		nodes[i] = n.Translate(off)
		pos += a.main(n.Size()) + spacing
	}

	return Node{
		Bounds:   image.Rectangle{Max: size},
		Children: nodes,
	}
}

func drawChildren[M any](children []Element[M], n Node, st *State, cursor image.Point) Primitive {
	prims := make([]Primitive, 0, len(children))
	for i, c := range children {
		prims = append(prims, c.Draw(n.Children[i], st.Child(i, c.Tag()), cursor))
	}
	return Group(prims...)
}

func childEvents[M any](children []Element[M], ev Event, n Node, st *State, cursor image.Point, publish func(M)) {
	for i, c := range children {
		c.OnEvent(ev, n.Children[i], st.Child(i, c.Tag()), cursor, publish)
	}
}

func childInteraction[M any](children []Element[M], n Node, st *State, cursor image.Point) Interaction {
	for i, c := range children {
		in := c.Interaction(n.Children[i], st.Child(i, c.Tag()), cursor)
		if in != InteractionIdle {
			return in
		}
	}
	return InteractionIdle
}

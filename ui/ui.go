// Package ui is a small retained-mode widget toolkit. A view is built
// from Elements each time it is needed, laid out against a size, fed
// input events to produce messages, and drawn into a tree of
// Primitives. Widget state that must outlive a single view, such as
// whether a button is held down, lives in a Cache that is carried from
// one build to the next.
package ui

import "image"

// Element is a node of a view that produces messages of type M.
//
// Every method that takes a Node is given the Node that the same
// Element returned from Layout, translated to its final position.
type Element[M any] interface {
	// Tag identifies the kind of widget. Widget state is discarded
	// when the tag at a given position in the tree changes.
	Tag() string

	Width() Length
	Height() Length

	// Layout sizes the element to fit within bounds. The returned node's
	// bounds start at the origin.
	Layout(bounds image.Point) Node

	Draw(n Node, st *State, cursor image.Point) Primitive
	OnEvent(ev Event, n Node, st *State, cursor image.Point, publish func(M))
	Interaction(n Node, st *State, cursor image.Point) Interaction
}

// State is the persistent state of one widget and its descendants.
type State struct {
	tag      string
	children []*State

	Hovered bool
	Pressed bool
}

// Child returns the state of the ith child, resetting it if it
// previously belonged to a different kind of widget.
func (s *State) Child(i int, tag string) *State {
	for len(s.children) <= i {
		s.children = append(s.children, &State{})
	}

	c := s.children[i]
	if c.tag != tag {
		*c = State{tag: tag}
	}
	return c
}

// Cache holds widget state between builds. The zero value is an
// empty cache.
type Cache struct {
	root State
}

func NewCache() *Cache {
	return new(Cache)
}

// UserInterface is a laid out view.
type UserInterface[M any] struct {
	root   Element[M]
	node   Node
	state  *State
	cache  *Cache
	cursor image.Point
}

// Build lays out root to fill size, adopting the widget state in
// cache. A nil cache is treated as empty.
func Build[M any](root Element[M], size image.Point, cache *Cache) *UserInterface[M] {
	if cache == nil {
		cache = NewCache()
	}

	return &UserInterface[M]{
		root:   root,
		node:   root.Layout(size),
		state:  cache.root.Child(0, root.Tag()),
		cache:  cache,
		cursor: NoCursor,
	}
}

// Update feeds events to the view in order and returns the messages
// that they produced. cursor is the pointer position before the first
// event.
func (ui *UserInterface[M]) Update(events []Event, cursor image.Point) []M {
	var msgs []M
	publish := func(m M) { msgs = append(msgs, m) }

	ui.cursor = cursor
	for _, ev := range events {
		switch ev := ev.(type) {
		case CursorMoved:
			ui.cursor = ev.Pos
		case CursorLeft:
			ui.cursor = NoCursor
		}
		ui.root.OnEvent(ev, ui.node, ui.state, ui.cursor, publish)
	}
	return msgs
}

// Cursor returns the pointer position after the last call to Update.
func (ui *UserInterface[M]) Cursor() image.Point {
	return ui.cursor
}

func (ui *UserInterface[M]) Draw(cursor image.Point) Primitive {
	return ui.root.Draw(ui.node, ui.state, cursor)
}

func (ui *UserInterface[M]) Interaction(cursor image.Point) Interaction {
	return ui.root.Interaction(ui.node, ui.state, cursor)
}

// Cache returns the widget state for use by the next build.
func (ui *UserInterface[M]) Cache() *Cache {
	return ui.cache
}

// Node is the result of laying out an element.
type Node struct {
	Bounds   image.Rectangle
	Children []Node
}

func (n Node) Size() image.Point {
	return n.Bounds.Size()
}

// Translate moves n and all of its children by p.
func (n Node) Translate(p image.Point) Node {
	t := Node{Bounds: n.Bounds.Add(p)}
	if len(n.Children) > 0 {
		t.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			t.Children[i] = c.Translate(p)
		}
	}
	return t
}

type lengthKind int

const (
	lengthShrink lengthKind = iota
	lengthFill
	lengthPx
)

// Length is a sizing rule along one axis. The zero value is Shrink.
type Length struct {
	kind lengthKind
	px   int
}

var (
	Shrink = Length{kind: lengthShrink}
	Fill   = Length{kind: lengthFill}
)

// Px is an exact length in logical pixels.
func Px(n int) Length {
	return Length{kind: lengthPx, px: max(n, 0)}
}

func (l Length) IsFill() bool {
	return l.kind == lengthFill
}

// limit is the space available to content of an element of length l
// given avail space.
func (l Length) limit(avail int) int {
	if l.kind == lengthPx {
		return min(l.px, avail)
	}
	return avail
}

// resolve returns the final length given avail space and the size of
// the content.
func (l Length) resolve(avail, content int) int {
	switch l.kind {
	case lengthFill:
		return max(avail, 0)
	case lengthPx:
		return min(l.px, max(avail, 0))
	default:
		return min(content, max(avail, 0))
	}
}

type Align int

const (
	Start Align = iota
	Center
	End
)

func (a Align) offset(space, size int) int {
	switch a {
	case Center:
		return (space - size) / 2
	case End:
		return space - size
	default:
		return 0
	}
}

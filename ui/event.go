package ui

import (
	"image"

	"deedles.dev/waysmoke/pointer"
)

// NoCursor is the cursor position used when no pointer is over the
// surface.
var NoCursor = image.Pt(-1<<30, -1<<30)

// Event is an input event delivered to a UserInterface.
type Event interface {
	isEvent()
}

type CursorMoved struct {
	Pos image.Point
}

// CursorLeft is sent when the pointer leaves the surface.
type CursorLeft struct{}

type ButtonPressed struct {
	Button pointer.Button
}

type ButtonReleased struct {
	Button pointer.Button
}

type WheelScrolled struct {
	Delta pointer.ScrollDelta
}

// KeyPressed carries an evdev key code.
type KeyPressed struct {
	Key       uint32
	Modifiers Modifiers
}

type KeyReleased struct {
	Key       uint32
	Modifiers Modifiers
}

type ModifiersChanged struct {
	Modifiers Modifiers
}

type CharacterReceived struct {
	Char rune
}

func (CursorMoved) isEvent()       {}
func (CursorLeft) isEvent()        {}
func (ButtonPressed) isEvent()     {}
func (ButtonReleased) isEvent()    {}
func (WheelScrolled) isEvent()     {}
func (KeyPressed) isEvent()        {}
func (KeyReleased) isEvent()       {}
func (ModifiersChanged) isEvent()  {}
func (CharacterReceived) isEvent() {}

// Modifiers is a set of held modifier keys. The bits match the real
// modifier indices of the standard XKB keymaps.
type Modifiers uint32

const (
	ModShift   Modifiers = 1 << 0
	ModCaps    Modifiers = 1 << 1
	ModControl Modifiers = 1 << 2
	ModAlt     Modifiers = 1 << 3
	ModLogo    Modifiers = 1 << 6
)

func (m Modifiers) Has(o Modifiers) bool {
	return m&o == o
}

// Interaction is a hint for what the cursor should look like.
type Interaction int

const (
	InteractionIdle Interaction = iota
	InteractionPointer
	InteractionText
)

func (i Interaction) String() string {
	switch i {
	case InteractionIdle:
		return "idle"
	case InteractionPointer:
		return "pointer"
	case InteractionText:
		return "text"
	}
	return "unknown"
}

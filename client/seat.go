package wl

import (
	"os"

	"deedles.dev/waysmoke/wire"
)

const (
	SeatInterface = "wl_seat"
	seatVersion   = 5

	PointerInterface  = "wl_pointer"
	KeyboardInterface = "wl_keyboard"
	TouchInterface    = "wl_touch"
)

type SeatCapability uint32

const (
	SeatCapabilityPointer SeatCapability = 1 << iota
	SeatCapabilityKeyboard
	SeatCapabilityTouch
)

func (c SeatCapability) Has(o SeatCapability) bool {
	return c&o == o
}

type SeatListener interface {
	Capabilities(capabilities SeatCapability)
	Name(name string)
}

type Seat struct {
	Proxy
	Listener SeatListener
}

func BindSeat(client *Client, registry *Registry, name, version uint32) *Seat {
	seat := Seat{Proxy: NewProxy(client, BindVersion(version, seatVersion))}
	registry.Bind(name, SeatInterface, seat.version, &seat)
	return &seat
}

func (seat *Seat) Interface() string {
	return SeatInterface
}

func (seat *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "capabilities"
	case 1:
		return "name"
	}
	return "unknown"
}

func (seat *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		capabilities := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if seat.Listener != nil {
			seat.Listener.Capabilities(SeatCapability(capabilities))
		}
		return nil

	case 1:
		name := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if seat.Listener != nil {
			seat.Listener.Name(name)
		}
		return nil

	default:
		return UnknownEvent(SeatInterface, msg.Op())
	}
}

func (seat *Seat) GetPointer() *Pointer {
	p := Pointer{Proxy: NewProxy(seat.client, seat.version)}
	seat.client.Create(&p, func() *wire.MessageBuilder {
		msg := NewRequest(seat, 0, "get_pointer", &p)
		msg.WriteObject(&p)
		return msg
	})
	return &p
}

func (seat *Seat) GetKeyboard() *Keyboard {
	kb := Keyboard{Proxy: NewProxy(seat.client, seat.version)}
	seat.client.Create(&kb, func() *wire.MessageBuilder {
		msg := NewRequest(seat, 1, "get_keyboard", &kb)
		msg.WriteObject(&kb)
		return msg
	})
	return &kb
}

func (seat *Seat) GetTouch() *Touch {
	t := Touch{Proxy: NewProxy(seat.client, seat.version)}
	seat.client.Create(&t, func() *wire.MessageBuilder {
		msg := NewRequest(seat, 2, "get_touch", &t)
		msg.WriteObject(&t)
		return msg
	})
	return &t
}

func (seat *Seat) Release() {
	if seat.version >= 5 {
		seat.client.Enqueue(NewRequest(seat, 3, "release"))
	}
	seat.client.Delete(seat.id)
}

type PointerButtonState uint32

const (
	PointerButtonStateReleased PointerButtonState = iota
	PointerButtonStatePressed
)

type PointerAxis uint32

const (
	PointerAxisVerticalScroll PointerAxis = iota
	PointerAxisHorizontalScroll
)

type PointerAxisSource uint32

const (
	PointerAxisSourceWheel PointerAxisSource = iota
	PointerAxisSourceFinger
	PointerAxisSourceContinuous
	PointerAxisSourceWheelTilt
)

type PointerListener interface {
	Enter(serial uint32, surface *Surface, surfaceX, surfaceY wire.Fixed)
	Leave(serial uint32, surface *Surface)
	Motion(time uint32, surfaceX, surfaceY wire.Fixed)
	Button(serial, time, button uint32, state PointerButtonState)
	Axis(time uint32, axis PointerAxis, value wire.Fixed)
	Frame()
	AxisSource(source PointerAxisSource)
	AxisStop(time uint32, axis PointerAxis)
	AxisDiscrete(axis PointerAxis, discrete int32)
}

type Pointer struct {
	Proxy
	Listener PointerListener
}

func (p *Pointer) Interface() string {
	return PointerInterface
}

func (p *Pointer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	case 2:
		return "motion"
	case 3:
		return "button"
	case 4:
		return "axis"
	case 5:
		return "frame"
	case 6:
		return "axis_source"
	case 7:
		return "axis_stop"
	case 8:
		return "axis_discrete"
	}
	return "unknown"
}

func (p *Pointer) surface(id uint32) *Surface {
	s, _ := p.client.Get(id).(*Surface)
	return s
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		serial := msg.ReadUint()
		surface := msg.ReadUint()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Enter(serial, p.surface(surface), x, y)
		}

	case 1:
		serial := msg.ReadUint()
		surface := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Leave(serial, p.surface(surface))
		}

	case 2:
		time := msg.ReadUint()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Motion(time, x, y)
		}

	case 3:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		button := msg.ReadUint()
		state := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Button(serial, time, button, PointerButtonState(state))
		}

	case 4:
		time := msg.ReadUint()
		axis := msg.ReadUint()
		value := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Axis(time, PointerAxis(axis), value)
		}

	case 5:
		if p.Listener != nil {
			p.Listener.Frame()
		}

	case 6:
		source := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.AxisSource(PointerAxisSource(source))
		}

	case 7:
		time := msg.ReadUint()
		axis := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.AxisStop(time, PointerAxis(axis))
		}

	case 8:
		axis := msg.ReadUint()
		discrete := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.AxisDiscrete(PointerAxis(axis), discrete)
		}

	default:
		return UnknownEvent(PointerInterface, msg.Op())
	}

	return nil
}

// SetCursor sets the pointer image while the pointer is over one of
// the client's surfaces. A nil surface hides the cursor.
func (p *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32) {
	msg := NewRequest(p, 0, "set_cursor", serial, surface, hotspotX, hotspotY)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteInt(hotspotX)
	msg.WriteInt(hotspotY)
	p.client.Enqueue(msg)
}

func (p *Pointer) Release() {
	if p.version >= 3 {
		p.client.Enqueue(NewRequest(p, 1, "release"))
	}
	p.client.Delete(p.id)
}

type KeyboardKeymapFormat uint32

const (
	KeyboardKeymapFormatNoKeymap KeyboardKeymapFormat = iota
	KeyboardKeymapFormatXkbV1
)

type KeyState uint32

const (
	KeyStateReleased KeyState = iota
	KeyStatePressed
)

type KeyboardListener interface {
	Keymap(format KeyboardKeymapFormat, file *os.File, size uint32)
	Enter(serial uint32, surface *Surface, keys []byte)
	Leave(serial uint32, surface *Surface)
	Key(serial, time, key uint32, state KeyState)
	Modifiers(serial, depressed, latched, locked, group uint32)
	RepeatInfo(rate, delay int32)
}

type Keyboard struct {
	Proxy
	Listener KeyboardListener
}

func (kb *Keyboard) Interface() string {
	return KeyboardInterface
}

func (kb *Keyboard) MethodName(op uint16) string {
	switch op {
	case 0:
		return "keymap"
	case 1:
		return "enter"
	case 2:
		return "leave"
	case 3:
		return "key"
	case 4:
		return "modifiers"
	case 5:
		return "repeat_info"
	}
	return "unknown"
}

func (kb *Keyboard) surface(id uint32) *Surface {
	s, _ := kb.client.Get(id).(*Surface)
	return s
}

func (kb *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		format := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadUint()
		if err := msg.Err(); err != nil {
			if file != nil {
				file.Close()
			}
			return err
		}
		if kb.Listener == nil {
			file.Close()
			return nil
		}
		kb.Listener.Keymap(KeyboardKeymapFormat(format), file, size)

	case 1:
		serial := msg.ReadUint()
		surface := msg.ReadUint()
		keys := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		if kb.Listener != nil {
			kb.Listener.Enter(serial, kb.surface(surface), keys)
		}

	case 2:
		serial := msg.ReadUint()
		surface := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if kb.Listener != nil {
			kb.Listener.Leave(serial, kb.surface(surface))
		}

	case 3:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		key := msg.ReadUint()
		state := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if kb.Listener != nil {
			kb.Listener.Key(serial, time, key, KeyState(state))
		}

	case 4:
		serial := msg.ReadUint()
		depressed := msg.ReadUint()
		latched := msg.ReadUint()
		locked := msg.ReadUint()
		group := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if kb.Listener != nil {
			kb.Listener.Modifiers(serial, depressed, latched, locked, group)
		}

	case 5:
		rate := msg.ReadInt()
		delay := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if kb.Listener != nil {
			kb.Listener.RepeatInfo(rate, delay)
		}

	default:
		return UnknownEvent(KeyboardInterface, msg.Op())
	}

	return nil
}

func (kb *Keyboard) Release() {
	if kb.version >= 3 {
		kb.client.Enqueue(NewRequest(kb, 0, "release"))
	}
	kb.client.Delete(kb.id)
}

type TouchListener interface {
	Down(serial, time uint32, surface *Surface, id int32, x, y wire.Fixed)
	Up(serial, time uint32, id int32)
	Motion(time uint32, id int32, x, y wire.Fixed)
	Frame()
	Cancel()
}

type Touch struct {
	Proxy
	Listener TouchListener
}

func (t *Touch) Interface() string {
	return TouchInterface
}

func (t *Touch) MethodName(op uint16) string {
	switch op {
	case 0:
		return "down"
	case 1:
		return "up"
	case 2:
		return "motion"
	case 3:
		return "frame"
	case 4:
		return "cancel"
	case 5:
		return "shape"
	case 6:
		return "orientation"
	}
	return "unknown"
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		surface := msg.ReadUint()
		id := msg.ReadInt()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			s, _ := t.client.Get(surface).(*Surface)
			t.Listener.Down(serial, time, s, id, x, y)
		}

	case 1:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		id := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Up(serial, time, id)
		}

	case 2:
		time := msg.ReadUint()
		id := msg.ReadInt()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Motion(time, id, x, y)
		}

	case 3:
		if t.Listener != nil {
			t.Listener.Frame()
		}

	case 4:
		if t.Listener != nil {
			t.Listener.Cancel()
		}

	case 5, 6:
		// Shape and orientation are not used.

	default:
		return UnknownEvent(TouchInterface, msg.Op())
	}

	return nil
}

func (t *Touch) Release() {
	if t.version >= 3 {
		t.client.Enqueue(NewRequest(t, 0, "release"))
	}
	t.client.Delete(t.id)
}

package wl

import (
	"image"

	"deedles.dev/waysmoke/wire"
)

const (
	CompositorInterface = "wl_compositor"
	compositorVersion   = 4

	SurfaceInterface = "wl_surface"
	RegionInterface  = "wl_region"
)

type Compositor struct {
	Proxy
}

func BindCompositor(client *Client, registry *Registry, name, version uint32) *Compositor {
	compositor := Compositor{Proxy: NewProxy(client, BindVersion(version, compositorVersion))}
	registry.Bind(name, CompositorInterface, compositor.version, &compositor)
	return &compositor
}

func (c *Compositor) Interface() string {
	return CompositorInterface
}

func (c *Compositor) MethodName(op uint16) string {
	return "unknown"
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return UnknownEvent(CompositorInterface, msg.Op())
}

func (c *Compositor) CreateSurface() *Surface {
	s := Surface{Proxy: NewProxy(c.client, c.version)}
	c.client.Create(&s, func() *wire.MessageBuilder {
		msg := NewRequest(c, 0, "create_surface", &s)
		msg.WriteObject(&s)
		return msg
	})
	return &s
}

// CreateRegion creates a region containing the union of rects.
func (c *Compositor) CreateRegion(rects ...image.Rectangle) *Region {
	r := Region{Proxy: NewProxy(c.client, c.version)}
	c.client.Create(&r, func() *wire.MessageBuilder {
		msg := NewRequest(c, 1, "create_region", &r)
		msg.WriteObject(&r)
		return msg
	})
	for _, rect := range rects {
		r.Add(rect)
	}
	return &r
}

type SurfaceListener interface {
	Enter(output *Output)
	Leave(output *Output)
}

type Surface struct {
	Proxy
	Listener SurfaceListener
}

func (s *Surface) Interface() string {
	return SurfaceInterface
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0, 1:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		output, _ := s.client.Get(id).(*Output)
		if s.Listener == nil || output == nil {
			return nil
		}
		if msg.Op() == 0 {
			s.Listener.Enter(output)
		} else {
			s.Listener.Leave(output)
		}
		return nil

	default:
		return UnknownEvent(SurfaceInterface, msg.Op())
	}
}

func (s *Surface) Destroy() {
	s.client.Enqueue(NewRequest(s, 0, "destroy"))
	s.client.Delete(s.id)
}

// Attach attaches buf to the surface. A nil buf removes the current
// content.
func (s *Surface) Attach(buf *Buffer, x, y int32) {
	msg := NewRequest(s, 1, "attach", buf, x, y)
	msg.WriteObject(buf)
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.client.Enqueue(msg)
}

func (s *Surface) Damage(x, y, width, height int32) {
	msg := NewRequest(s, 2, "damage", x, y, width, height)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.Enqueue(msg)
}

// Frame requests a callback for when it is a good time to draw the
// next frame.
func (s *Surface) Frame() *Callback {
	callback := Callback{Proxy: NewProxy(s.client, 1)}
	s.client.Create(&callback, func() *wire.MessageBuilder {
		msg := NewRequest(s, 3, "frame", &callback)
		msg.WriteObject(&callback)
		return msg
	})
	return &callback
}

func (s *Surface) SetOpaqueRegion(r *Region) {
	msg := NewRequest(s, 4, "set_opaque_region", r)
	msg.WriteObject(r)
	s.client.Enqueue(msg)
}

// SetInputRegion sets the area of the surface that accepts input. A
// nil region makes the entire surface accept input.
func (s *Surface) SetInputRegion(r *Region) {
	msg := NewRequest(s, 5, "set_input_region", r)
	msg.WriteObject(r)
	s.client.Enqueue(msg)
}

func (s *Surface) Commit() {
	s.client.Enqueue(NewRequest(s, 6, "commit"))
}

func (s *Surface) SetBufferScale(scale int32) {
	msg := NewRequest(s, 8, "set_buffer_scale", scale)
	msg.WriteInt(scale)
	s.client.Enqueue(msg)
}

// DamageBuffer marks an area of the attached buffer, in buffer
// coordinates, as changed.
func (s *Surface) DamageBuffer(x, y, width, height int32) {
	if s.version < 4 {
		s.Damage(x, y, width, height)
		return
	}

	msg := NewRequest(s, 9, "damage_buffer", x, y, width, height)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.Enqueue(msg)
}

type Region struct {
	Proxy
}

func (r *Region) Interface() string {
	return RegionInterface
}

func (r *Region) MethodName(op uint16) string {
	return "unknown"
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	return UnknownEvent(RegionInterface, msg.Op())
}

func (r *Region) Destroy() {
	r.client.Enqueue(NewRequest(r, 0, "destroy"))
	r.client.Delete(r.id)
}

func (r *Region) Add(rect image.Rectangle) {
	r.rect(1, "add", rect)
}

func (r *Region) Subtract(rect image.Rectangle) {
	r.rect(2, "subtract", rect)
}

func (r *Region) rect(op uint16, method string, rect image.Rectangle) {
	rect = rect.Canon()
	msg := NewRequest(r, op, method, rect)
	msg.WriteInt(int32(rect.Min.X))
	msg.WriteInt(int32(rect.Min.Y))
	msg.WriteInt(int32(rect.Dx()))
	msg.WriteInt(int32(rect.Dy()))
	r.client.Enqueue(msg)
}

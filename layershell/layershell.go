// Package layershell implements the client side of the
// wlr-layer-shell-unstable-v1 protocol, which lets clients create
// surfaces that are anchored to the edges of an output.
package layershell

import (
	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/wire"
)

const (
	ShellInterface = "zwlr_layer_shell_v1"
	shellVersion   = 4

	SurfaceInterface = "zwlr_layer_surface_v1"
)

type Layer uint32

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	}
	return "unknown"
}

type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight

	AnchorAll = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone KeyboardInteractivity = iota
	KeyboardInteractivityExclusive
	KeyboardInteractivityOnDemand
)

type Shell struct {
	wl.Proxy
}

func BindShell(client *wl.Client, registry *wl.Registry, name, version uint32) *Shell {
	shell := Shell{Proxy: wl.NewProxy(client, wl.BindVersion(version, shellVersion))}
	registry.Bind(name, ShellInterface, shell.Version(), &shell)
	return &shell
}

func (shell *Shell) Interface() string {
	return ShellInterface
}

func (shell *Shell) MethodName(op uint16) string {
	return "unknown"
}

func (shell *Shell) Dispatch(msg *wire.MessageBuffer) error {
	return wl.UnknownEvent(ShellInterface, msg.Op())
}

// GetLayerSurface assigns the layer surface role to surface. If output
// is nil, the compositor picks one.
func (shell *Shell) GetLayerSurface(surface *wl.Surface, output *wl.Output, layer Layer, namespace string) *Surface {
	s := Surface{Proxy: wl.NewProxy(shell.Client(), shell.Version())}
	shell.Client().Create(&s, func() *wire.MessageBuilder {
		msg := wl.NewRequest(shell, 0, "get_layer_surface", &s, surface, output, layer, namespace)
		msg.WriteObject(&s)
		msg.WriteObject(surface)
		msg.WriteObject(output)
		msg.WriteUint(uint32(layer))
		msg.WriteString(namespace)
		return msg
	})
	return &s
}

func (shell *Shell) Destroy() {
	if shell.Version() >= 3 {
		shell.Client().Enqueue(wl.NewRequest(shell, 1, "destroy"))
	}
	shell.Client().Delete(shell.ID())
}

type SurfaceListener interface {
	Configure(serial, width, height uint32)
	Closed()
}

// Surface is a layer surface. Its configuration requests only take
// effect on the next commit of the underlying wl_surface.
type Surface struct {
	wl.Proxy
	Listener SurfaceListener
}

func (s *Surface) Interface() string {
	return SurfaceInterface
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "configure"
	case 1:
		return "closed"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		serial := msg.ReadUint()
		width := msg.ReadUint()
		height := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Configure(serial, width, height)
		}
		return nil

	case 1:
		if s.Listener != nil {
			s.Listener.Closed()
		}
		return nil

	default:
		return wl.UnknownEvent(SurfaceInterface, msg.Op())
	}
}

// SetSize sets the requested size. A zero dimension means that the
// surface should be stretched between its anchors on that axis.
func (s *Surface) SetSize(width, height uint32) {
	msg := wl.NewRequest(s, 0, "set_size", width, height)
	msg.WriteUint(width)
	msg.WriteUint(height)
	s.Client().Enqueue(msg)
}

func (s *Surface) SetAnchor(anchor Anchor) {
	msg := wl.NewRequest(s, 1, "set_anchor", anchor)
	msg.WriteUint(uint32(anchor))
	s.Client().Enqueue(msg)
}

func (s *Surface) SetExclusiveZone(zone int32) {
	msg := wl.NewRequest(s, 2, "set_exclusive_zone", zone)
	msg.WriteInt(zone)
	s.Client().Enqueue(msg)
}

func (s *Surface) SetMargin(top, right, bottom, left int32) {
	msg := wl.NewRequest(s, 3, "set_margin", top, right, bottom, left)
	msg.WriteInt(top)
	msg.WriteInt(right)
	msg.WriteInt(bottom)
	msg.WriteInt(left)
	s.Client().Enqueue(msg)
}

func (s *Surface) SetKeyboardInteractivity(ki KeyboardInteractivity) {
	if ki == KeyboardInteractivityOnDemand && s.Version() < 4 {
		ki = KeyboardInteractivityExclusive
	}

	msg := wl.NewRequest(s, 4, "set_keyboard_interactivity", ki)
	msg.WriteUint(uint32(ki))
	s.Client().Enqueue(msg)
}

func (s *Surface) AckConfigure(serial uint32) {
	msg := wl.NewRequest(s, 6, "ack_configure", serial)
	msg.WriteUint(serial)
	s.Client().Enqueue(msg)
}

func (s *Surface) Destroy() {
	s.Client().Enqueue(wl.NewRequest(s, 7, "destroy"))
	s.Client().Delete(s.ID())
}

// SetLayer moves the surface to another layer. It requires version 2.
func (s *Surface) SetLayer(layer Layer) {
	if s.Version() < 2 {
		return
	}

	msg := wl.NewRequest(s, 8, "set_layer", layer)
	msg.WriteUint(uint32(layer))
	s.Client().Enqueue(msg)
}

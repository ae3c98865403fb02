package wl

import (
	"deedles.dev/waysmoke/wire"
	"golang.org/x/exp/maps"
)

// Global describes an object advertised through the registry.
type Global struct {
	Interface string
	Version   uint32
}

type RegistryListener interface {
	Global(name uint32, inter string, version uint32)
	GlobalRemove(name uint32)
}

type Registry struct {
	Proxy
	Listener RegistryListener

	globals map[uint32]Global
}

func (registry *Registry) Interface() string {
	return RegistryInterface
}

func (registry *Registry) MethodName(op uint16) string {
	switch op {
	case 0:
		return "global"
	case 1:
		return "global_remove"
	}
	return "unknown"
}

func (registry *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		name := msg.ReadUint()
		inter := msg.ReadString()
		version := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		registry.globals[name] = Global{Interface: inter, Version: version}
		if registry.Listener != nil {
			registry.Listener.Global(name, inter, version)
		}
		return nil

	case 1:
		name := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		delete(registry.globals, name)
		if registry.Listener != nil {
			registry.Listener.GlobalRemove(name)
		}
		return nil

	default:
		return UnknownEvent(RegistryInterface, msg.Op())
	}
}

// Globals returns a copy of the currently advertised globals keyed by
// name.
func (registry *Registry) Globals() map[uint32]Global {
	return maps.Clone(registry.globals)
}

// Bind binds the global with the given name to obj, which must not
// yet have an ID.
func (registry *Registry) Bind(name uint32, inter string, version uint32, obj wire.Object) {
	registry.client.Create(obj, func() *wire.MessageBuilder {
		msg := NewRequest(registry, 0, "bind", name, inter, version, obj)
		msg.WriteUint(name)
		msg.WriteNewID(wire.NewID{Interface: inter, Version: version, ID: obj.ID()})
		return msg
	})
}

// BindVersion returns the version to bind a global at given what the
// server advertises and what the client supports.
func BindVersion(advertised, supported uint32) uint32 {
	return min(advertised, supported)
}

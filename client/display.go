package wl

import (
	"fmt"

	"deedles.dev/waysmoke/wire"
)

const (
	DisplayInterface  = "wl_display"
	RegistryInterface = "wl_registry"
	CallbackInterface = "wl_callback"
)

// ProtocolError is a fatal error reported by the compositor.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %v: code %v: %v", err.ObjectID, err.Code, err.Message)
}

type DisplayListener interface {
	Error(objectID, code uint32, message string)
}

type Display struct {
	Proxy
	Listener DisplayListener

	registry *Registry
}

func (display *Display) Interface() string {
	return DisplayInterface
}

func (display *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "error"
	case 1:
		return "delete_id"
	}
	return "unknown"
}

func (display *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		objectID := msg.ReadUint()
		code := msg.ReadUint()
		message := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if display.Listener != nil {
			display.Listener.Error(objectID, code, message)
		}
		return ProtocolError{ObjectID: objectID, Code: code, Message: message}

	case 1:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		display.client.Delete(id)
		return nil

	default:
		return UnknownEvent(DisplayInterface, msg.Op())
	}
}

// Sync requests a callback that fires once the server has processed
// every request sent before it.
func (display *Display) Sync() *Callback {
	callback := Callback{Proxy: NewProxy(display.client, 1)}
	display.client.Create(&callback, func() *wire.MessageBuilder {
		msg := NewRequest(display, 0, "sync", &callback)
		msg.WriteObject(&callback)
		return msg
	})
	return &callback
}

// GetRegistry returns the registry, creating it on the first call.
func (display *Display) GetRegistry() *Registry {
	if display.registry != nil {
		return display.registry
	}

	registry := Registry{
		Proxy:   NewProxy(display.client, 1),
		globals: make(map[uint32]Global),
	}
	display.client.Create(&registry, func() *wire.MessageBuilder {
		msg := NewRequest(display, 1, "get_registry", &registry)
		msg.WriteObject(&registry)
		return msg
	})
	display.registry = &registry
	return &registry
}

type CallbackListener interface {
	Done(data uint32)
}

type Callback struct {
	Proxy
	Listener CallbackListener
}

func (c *Callback) Interface() string {
	return CallbackInterface
}

func (c *Callback) MethodName(op uint16) string {
	if op == 0 {
		return "done"
	}
	return "unknown"
}

func (c *Callback) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return UnknownEvent(CallbackInterface, msg.Op())
	}

	data := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}
	if c.Listener != nil {
		c.Listener.Done(data)
	}
	return nil
}

// Then sets f as the callback's listener.
func (c *Callback) Then(f func(uint32)) {
	c.Listener = callbackFunc(f)
}

type callbackFunc func(uint32)

func (f callbackFunc) Done(data uint32) {
	f(data)
}

package wl

import "deedles.dev/waysmoke/wire"

// Proxy holds the state common to every client-side protocol object.
// It is meant to be embedded by types implementing wire.Object,
// including those of protocol extensions in other packages.
type Proxy struct {
	client  *Client
	id      uint32
	version uint32
}

func NewProxy(client *Client, version uint32) Proxy {
	return Proxy{client: client, version: version}
}

func (p *Proxy) ID() uint32 {
	return p.id
}

func (p *Proxy) SetID(id uint32) {
	p.id = id
}

func (p *Proxy) Delete() {}

func (p *Proxy) Client() *Client {
	return p.client
}

// Version is the protocol version that the object was created with.
func (p *Proxy) Version() uint32 {
	return p.version
}

// NewRequest starts a request message from sender. The method name
// and arguments are kept for debug output.
func NewRequest(sender wire.Object, op uint16, method string, args ...any) *wire.MessageBuilder {
	msg := wire.NewMessage(sender, op)
	msg.Method = method
	msg.Args = args
	return msg
}

// UnknownEvent returns the error for an unrecognized event opcode.
func UnknownEvent(iface string, op uint16) error {
	return wire.UnknownOpError{Interface: iface, Type: "event", Op: op}
}

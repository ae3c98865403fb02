// Package wire defines types helpful for dealing with the Wayland
// wire protocol. It is primarly intended for usage by the protocol
// binding packages.
package wire

import (
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// maxFDs is the most file descriptors that libwayland will send
// alongside a single chunk of data.
const maxFDs = 28

// Object represents a Wayland protocol object.
type Object interface {
	// ID returns the object's protocol ID. It is zero until the object
	// has been registered with a connection.
	ID() uint32

	// SetID is called when an ID is assigned to the object.
	SetID(id uint32)

	// Delete is called when the object's ID is released.
	Delete()

	// Interface returns the protocol name of the object's interface,
	// such as "wl_surface".
	Interface() string

	// Dispatch pertforms the operation requested by the message in the
	// buffer.
	Dispatch(msg *MessageBuffer) error

	// MethodName returns the name of the event with the given opcode.
	// It is used for debug output.
	MethodName(op uint16) string
}

// NewID is an untyped new_id argument, as used by wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// unixTee reads from c, but also reads out-of-band data
// simultaneously, handing any received file descriptors to fds.
type unixTee struct {
	c   *net.UnixConn
	fds func([]byte) error
}

func (t unixTee) Read(buf []byte) (int, error) {
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	n, oobn, _, _, err := t.c.ReadMsgUnix(buf, oob)
	if err != nil {
		return n, err
	}
	if (n == 0) && (len(buf) > 0) {
		return 0, io.EOF
	}
	if oobn > 0 {
		err = t.fds(oob[:oobn])
	}
	return n, err
}

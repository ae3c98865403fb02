package wire

import (
	"fmt"
)

// UnknownOpError is returned by Object.Dispatch if it is given a
// message with an opcode that its interface does not define.
type UnknownOpError struct {
	Interface string
	Type      string
	Op        uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("%v has no %v with opcode %v", err.Interface, err.Type, err.Op)
}

// UnknownSenderIDError is returned when an incoming message names an
// object ID that is not in use. Events for objects that were
// destroyed after the compositor sent them produce this error.
type UnknownSenderIDError struct {
	Sender uint32
	Op     uint16
}

func (err UnknownSenderIDError) Error() string {
	return fmt.Sprintf("event %v for unknown object %v", err.Op, err.Sender)
}

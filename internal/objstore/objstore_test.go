package objstore

import (
	"testing"

	"deedles.dev/waysmoke/wire"
	"github.com/stretchr/testify/assert"
)

type object struct {
	id      uint32
	deleted bool
}

func (obj *object) ID() uint32                             { return obj.id }
func (obj *object) SetID(id uint32)                        { obj.id = id }
func (obj *object) Delete()                                { obj.deleted = true }
func (obj *object) Interface() string                      { return "object" }
func (obj *object) Dispatch(msg *wire.MessageBuffer) error { return nil }
func (obj *object) MethodName(op uint16) string            { return "event" }

func TestStore(t *testing.T) {
	s := New(2)

	a := &object{}
	b := &object{}
	fixed := &object{id: 1}
	s.Add(a)
	s.Add(b)
	s.Add(fixed)

	assert.Equal(t, uint32(2), a.ID())
	assert.Equal(t, uint32(3), b.ID())
	assert.Equal(t, 3, s.Len())
	assert.Same(t, fixed, s.Get(1))

	s.Delete(2)
	assert.True(t, a.deleted)
	assert.Nil(t, s.Get(2))
	assert.Equal(t, 2, s.Len())

	s.Delete(99)
	assert.Equal(t, 2, s.Len())
}

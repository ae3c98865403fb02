// Package objstore tracks the protocol objects of a connection by ID.
package objstore

import (
	"sync"

	"deedles.dev/waysmoke/wire"
)

// Store maps object IDs to objects. It is safe for concurrent use so
// that objects can be created on goroutines other than the one that
// dispatches events.
type Store struct {
	m       sync.RWMutex
	objects map[uint32]wire.Object
	nextID  uint32
}

func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		nextID:  start,
	}
}

// Add registers obj, assigning it the next free ID if it does not
// already have one.
func (s *Store) Add(obj wire.Object) {
	s.m.Lock()
	defer s.m.Unlock()

	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
		s.nextID++
	}

	s.objects[id] = obj
}

func (s *Store) Get(id uint32) wire.Object {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.objects[id]
}

// Delete removes the object with the given ID and notifies it.
func (s *Store) Delete(id uint32) {
	s.m.Lock()
	obj := s.objects[id]
	delete(s.objects, id)
	s.m.Unlock()

	if obj != nil {
		obj.Delete()
	}
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	s.m.RLock()
	defer s.m.RUnlock()

	return len(s.objects)
}

// Dispatch hands msg to the object that sent it.
func (s *Store) Dispatch(msg *wire.MessageBuffer) (wire.Object, error) {
	obj := s.Get(msg.Sender())
	if obj == nil {
		return nil, wire.UnknownSenderIDError{Sender: msg.Sender(), Op: msg.Op()}
	}

	return obj, obj.Dispatch(msg)
}

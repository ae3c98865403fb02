package wl

import (
	"os"

	"deedles.dev/waysmoke/wire"
)

const (
	ShmInterface = "wl_shm"
	shmVersion   = 1

	ShmPoolInterface = "wl_shm_pool"
	BufferInterface  = "wl_buffer"
)

type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
)

type ShmListener interface {
	Format(format ShmFormat)
}

type Shm struct {
	Proxy
	Listener ShmListener
}

func BindShm(client *Client, registry *Registry, name, version uint32) *Shm {
	shm := Shm{Proxy: NewProxy(client, BindVersion(version, shmVersion))}
	registry.Bind(name, ShmInterface, shm.version, &shm)
	return &shm
}

func (shm *Shm) Interface() string {
	return ShmInterface
}

func (shm *Shm) MethodName(op uint16) string {
	if op == 0 {
		return "format"
	}
	return "unknown"
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return UnknownEvent(ShmInterface, msg.Op())
	}

	format := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}
	if shm.Listener != nil {
		shm.Listener.Format(ShmFormat(format))
	}
	return nil
}

// CreatePool shares size bytes of file with the compositor.
func (shm *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	pool := ShmPool{Proxy: NewProxy(shm.client, shm.version)}
	shm.client.Create(&pool, func() *wire.MessageBuilder {
		msg := NewRequest(shm, 0, "create_pool", &pool, file, size)
		msg.WriteObject(&pool)
		msg.WriteFile(file)
		msg.WriteInt(size)
		return msg
	})
	return &pool
}

type ShmPool struct {
	Proxy
}

func (pool *ShmPool) Interface() string {
	return ShmPoolInterface
}

func (pool *ShmPool) MethodName(op uint16) string {
	return "unknown"
}

func (pool *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return UnknownEvent(ShmPoolInterface, msg.Op())
}

func (pool *ShmPool) CreateBuffer(offset, width, height, stride int32, format ShmFormat) *Buffer {
	buf := Buffer{Proxy: NewProxy(pool.client, 1)}
	pool.client.Create(&buf, func() *wire.MessageBuilder {
		msg := NewRequest(pool, 0, "create_buffer", &buf, offset, width, height, stride, format)
		msg.WriteObject(&buf)
		msg.WriteInt(offset)
		msg.WriteInt(width)
		msg.WriteInt(height)
		msg.WriteInt(stride)
		msg.WriteUint(uint32(format))
		return msg
	})
	return &buf
}

func (pool *ShmPool) Destroy() {
	pool.client.Enqueue(NewRequest(pool, 1, "destroy"))
	pool.client.Delete(pool.id)
}

// Resize grows the pool. Pools can not shrink.
func (pool *ShmPool) Resize(size int32) {
	msg := NewRequest(pool, 2, "resize", size)
	msg.WriteInt(size)
	pool.client.Enqueue(msg)
}

type BufferListener interface {
	Release()
}

type Buffer struct {
	Proxy
	Listener BufferListener
}

func (buf *Buffer) Interface() string {
	return BufferInterface
}

func (buf *Buffer) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (buf *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return UnknownEvent(BufferInterface, msg.Op())
	}
	if buf.Listener != nil {
		buf.Listener.Release()
	}
	return nil
}

func (buf *Buffer) Destroy() {
	buf.client.Enqueue(NewRequest(buf, 0, "destroy"))
	buf.client.Delete(buf.id)
}

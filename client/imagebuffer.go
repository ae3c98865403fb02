package wl

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"deedles.dev/waysmoke/shm"
	"deedles.dev/ximage"
	"golang.org/x/sys/unix"
)

// ImageBuffer is a wl_buffer backed by shared memory that can be
// drawn into as an ARGB8888 image.
type ImageBuffer struct {
	w, h int32
	shm  *Shm
	pool *ShmPool
	buf  *Buffer
	file *os.File
	mmap shm.Mmap
	busy bool
}

func NewImageBuffer(s *Shm, w, h int32) (buf *ImageBuffer, err error) {
	buf = &ImageBuffer{
		w:   max(w, 1),
		h:   max(h, 1),
		shm: s,
	}
	defer func() {
		if err != nil {
			buf.Destroy()
		}
	}()

	file, err := shm.Create()
	if err != nil {
		return buf, fmt.Errorf("create SHM file: %w", err)
	}
	buf.file = file

	err = buf.file.Truncate(int64(buf.Len()))
	if err != nil {
		return buf, fmt.Errorf("truncate SHM file: %w", err)
	}

	mmap, err := shm.Map(file, int(buf.Len()), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return buf, fmt.Errorf("mmap SHM file: %w", err)
	}
	buf.mmap = mmap

	buf.pool = buf.shm.CreatePool(file, buf.Len())
	buf.createBuffer()

	return buf, nil
}

func (s *ImageBuffer) createBuffer() {
	s.buf = s.pool.CreateBuffer(0, s.w, s.h, s.Stride(), ShmFormatArgb8888)
	s.buf.Listener = imageBufferListener{s}
}

func (s *ImageBuffer) Destroy() {
	if s.mmap != nil {
		s.mmap.Unmap()
		s.mmap = nil
	}
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
	if s.pool != nil {
		s.pool.Destroy()
		s.pool = nil
	}
}

func (s *ImageBuffer) Buffer() *Buffer {
	return s.buf
}

// Busy reports whether the compositor may still be reading from the
// buffer.
func (s *ImageBuffer) Busy() bool {
	return s.busy
}

// MarkBusy records that the buffer has been attached and committed.
// The flag is cleared when the compositor releases the buffer.
func (s *ImageBuffer) MarkBusy() {
	s.busy = true
}

func (s *ImageBuffer) Stride() int32 {
	return s.w * 4
}

func (s *ImageBuffer) Len() int32 {
	return s.Stride() * s.h
}

func (s *ImageBuffer) Cap() int32 {
	return int32(cap(s.mmap))
}

func (s *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(s.w), int(s.h))
}

// Resize changes the dimensions of the buffer, reallocating the
// shared memory if it is too small.
func (s *ImageBuffer) Resize(w, h int32) error {
	w, h = max(w, 1), max(h, 1)
	if (w == s.w) && (h == s.h) {
		return nil
	}

	s.w = w
	s.h = h
	s.busy = false
	if s.Len() <= s.Cap() {
		s.mmap = s.mmap[:s.Len()]
		s.buf.Destroy()
		s.createBuffer()
		return nil
	}

	err := s.file.Truncate(int64(s.Len()))
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	err = s.mmap.Unmap()
	if err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	mmap, err := shm.Map(s.file, int(s.Len()), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		s.mmap = nil
		return fmt.Errorf("mmap: %w", err)
	}
	s.mmap = mmap

	s.buf.Destroy()
	s.pool.Resize(s.Len())
	s.createBuffer()

	return nil
}

// Pix returns the raw ARGB8888 pixel data of the buffer.
func (s *ImageBuffer) Pix() []byte {
	return s.mmap[:s.Len()]
}

// Image returns an image that draws directly into the shared memory.
func (s *ImageBuffer) Image() draw.Image {
	return &ximage.FormatImage{
		Format: ximage.ARGB8888,
		Rect:   s.Bounds(),
		Pix:    s.mmap,
	}
}

type imageBufferListener struct {
	s *ImageBuffer
}

func (lis imageBufferListener) Release() {
	lis.s.busy = false
}

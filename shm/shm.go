// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var fallbackSeq atomic.Uint64

// Create creates an anonymous file suitable for sharing with the
// compositor via wl_shm. It prefers memfd_create and falls back to an
// unlinked file under /dev/shm.
func Create() (*os.File, error) {
	fd, err := unix.MemfdCreate("waysmoke-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		return os.NewFile(uintptr(fd), "waysmoke-shm"), nil
	}

	path := "/dev/shm/waysmoke-" + strconv.Itoa(os.Getpid()) + "-" + strconv.FormatUint(fallbackSeq.Add(1), 10)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("create shm file: %w", err)
	}

	return file, os.Remove(path)
}

type Mmap []byte

// Map maps size bytes of file as shared memory.
func Map(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	if mmap == nil {
		return nil
	}
	return unix.Munmap(mmap[:cap(mmap)])
}

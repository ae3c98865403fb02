// Package bin reads and writes the 32-bit words that make up the
// Wayland wire format. Words are in host byte order.
package bin

import (
	"encoding/binary"
	"io"
)

// Word is the size of a single wire value in bytes.
const Word = 4

// Pad returns the number of zero bytes that follow a value of length
// n to align it to a word.
func Pad[T ~int | ~uint32](n T) T {
	return (Word - n%Word) % Word
}

// Aligned returns n rounded up to a whole number of words.
func Aligned[T ~int | ~uint32](n T) T {
	return n + Pad(n)
}

func Read[T ~int32 | ~uint32](r io.Reader) (T, error) {
	var data [Word]byte
	_, err := io.ReadFull(r, data[:])
	if err != nil {
		return 0, err
	}

	return T(binary.NativeEndian.Uint32(data[:])), nil
}

func Write[T ~int32 | ~uint32](w io.Writer, v T) error {
	data := binary.NativeEndian.AppendUint32(make([]byte, 0, Word), uint32(v))
	n, err := w.Write(data)
	if (err == nil) && (n < len(data)) {
		return io.ErrShortWrite
	}
	return err
}

package bin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	tests := []struct {
		n, pad, aligned uint32
	}{
		{0, 0, 0},
		{1, 3, 4},
		{4, 0, 4},
		{8, 0, 8},
		{11, 1, 12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.pad, Pad(tt.n), "pad %v", tt.n)
		assert.Equal(t, tt.aligned, Aligned(tt.n), "aligned %v", tt.n)
	}
	assert.Equal(t, 2, Pad(6))
}

func TestReadWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, uint32(0xdeadbeef)))
	require.NoError(t, Write(&buf, int32(-3)))
	assert.Equal(t, 2*Word, buf.Len())

	u, err := Read[uint32](&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u)

	i, err := Read[int32](&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), i)

	_, err = Read[uint32](bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}

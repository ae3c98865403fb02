package wire

import (
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type testObject struct {
	id uint32
}

func (obj *testObject) ID() uint32                        { return obj.id }
func (obj *testObject) SetID(id uint32)                   { obj.id = id }
func (obj *testObject) Delete()                           {}
func (obj *testObject) Interface() string                 { return "test_object" }
func (obj *testObject) Dispatch(msg *MessageBuffer) error { return nil }
func (obj *testObject) MethodName(op uint16) string       { return "event" }

func socketPair(t *testing.T) (*Conn, *Conn) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)

	conn := func(fd int) *Conn {
		file := os.NewFile(uintptr(fd), "socketpair")
		defer file.Close()

		c, err := net.FileConn(file)
		require.NoError(t, err)
		return NewConn(c.(*net.UnixConn))
	}

	a, b := conn(fds[0]), conn(fds[1])
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestMessageRoundTrip(t *testing.T) {
	a, b := socketPair(t)

	tmp, err := os.CreateTemp(t.TempDir(), "fd")
	require.NoError(t, err)
	defer tmp.Close()
	_, err = tmp.WriteString("keymap")
	require.NoError(t, err)

	sender := &testObject{id: 7}
	msg := NewMessage(sender, 3)
	msg.WriteUint(42)
	msg.WriteInt(-5)
	msg.WriteFixed(FixedFloat(-1.5))
	msg.WriteString("wl_surface")
	msg.WriteString("")
	msg.WriteArray([]byte{1, 2, 3})
	msg.WriteObject((*testObject)(nil))
	msg.WriteFile(tmp)
	require.NoError(t, msg.Build(a))

	buf, err := ReadMessage(b)
	require.NoError(t, err)

	assert.Equal(t, uint32(7), buf.Sender())
	assert.Equal(t, uint16(3), buf.Op())
	assert.Equal(t, uint32(42), buf.ReadUint())
	assert.Equal(t, int32(-5), buf.ReadInt())
	assert.Equal(t, -1.5, buf.ReadFixed().Float())
	assert.Equal(t, "wl_surface", buf.ReadString())
	assert.Equal(t, "", buf.ReadString())
	assert.Equal(t, []byte{1, 2, 3}, buf.ReadArray())
	assert.Equal(t, uint32(0), buf.ReadUint())

	file := buf.ReadFile()
	require.NoError(t, buf.Err())
	require.NotNil(t, file)
	defer file.Close()

	_, err = file.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "keymap", string(data))

	assert.Contains(t, buf.Debug(sender), `test_object@7.event(42, -5, -1.5, "wl_surface", "", [1 2 3], 0, `)
}

func TestReadPastEnd(t *testing.T) {
	a, b := socketPair(t)

	msg := NewMessage(&testObject{id: 1}, 0)
	msg.WriteUint(1)
	require.NoError(t, msg.Build(a))

	buf, err := ReadMessage(b)
	require.NoError(t, err)
	buf.ReadUint()
	buf.ReadUint()
	assert.ErrorIs(t, buf.Err(), io.ErrUnexpectedEOF)
}

func TestFixed(t *testing.T) {
	tests := []struct {
		name  string
		in    float64
		float float64
		int   int
	}{
		{name: "Zero", in: 0, float: 0, int: 0},
		{name: "Positive", in: 12.25, float: 12.25, int: 12},
		{name: "Negative", in: -3.5, float: -3.5, int: -4},
		{name: "SmallNegative", in: -0.25, float: -0.25, int: -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := FixedFloat(test.in)
			assert.Equal(t, test.float, f.Float())
			assert.Equal(t, test.int, f.Int())
		})
	}

	assert.Equal(t, 5.0, FixedInt(5).Float())
	assert.Equal(t, "2.5", FixedFloat(2.5).String())
}

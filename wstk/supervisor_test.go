package wstk

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestEnv(t *testing.T, outputs ...*Output) *Env {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)

	conn := func(fd int) *wire.Conn {
		file := os.NewFile(uintptr(fd), "socketpair")
		defer file.Close()

		c, err := net.FileConn(file)
		require.NoError(t, err)
		return wire.NewConn(c.(*net.UnixConn))
	}

	client := wl.NewClient(conn(fds[0]))
	peer := conn(fds[1])

	env := Env{
		Client:        client,
		Bridge:        NewBridge(client),
		outputs:       make(map[uint32]*Output),
		scaleWatchers: make(map[scaleWatcher]struct{}),
	}
	for _, out := range outputs {
		out.env = &env
		env.outputs[out.Global] = out
	}

	t.Cleanup(func() {
		env.Bridge.Stop()
		client.Close()
		peer.Close()
	})
	return &env
}

type fakeInstancer struct {
	closed     bool
	closeCalls int
}

func (inst *fakeInstancer) Handle(context.Context, any) error { return nil }
func (inst *fakeInstancer) Closed() bool                      { return inst.closed }
func (inst *fakeInstancer) Close()                            { inst.closeCalls++ }

type fakeFactory struct {
	m         sync.Mutex
	instances map[uint32]*fakeInstancer
	fail      map[uint32]bool
}

func (f *fakeFactory) create(ctx context.Context, out *Output) (Instancer, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if f.fail[out.Global] {
		return nil, errors.New("no surface for you")
	}

	inst := &fakeInstancer{}
	f.instances[out.Global] = inst
	return inst, nil
}

func (f *fakeFactory) get(global uint32) *fakeInstancer {
	f.m.Lock()
	defer f.m.Unlock()
	return f.instances[global]
}

type nopHandler struct{}

func (nopHandler) Handle(context.Context, any) error { return nil }

func globals(outputs []*Output) []uint32 {
	g := make([]uint32, 0, len(outputs))
	for _, out := range outputs {
		g = append(g, out.Global)
	}
	return g
}

func TestSupervisor(t *testing.T) {
	env := newTestEnv(t,
		&Output{Global: 1, Done: true},
		&Output{Global: 2, Done: true},
		&Output{Global: 3},
		&Output{Global: 5, Done: true, Obsolete: true},
	)
	f := fakeFactory{
		instances: make(map[uint32]*fakeInstancer),
		fail:      map[uint32]bool{2: true},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewSupervisor(ctx, env, f.create)
	assert.Equal(t, []uint32{1}, globals(s.Instances()))

	step := func() bool {
		t.Helper()
		running, err := s.Step(ctx)
		require.NoError(t, err)
		return running
	}

	out4 := Output{Global: 4, Done: true}
	env.Bridge.Post(s, OutputAdded{Output: &out4})
	assert.True(t, step())
	assert.Equal(t, []uint32{1, 4}, globals(s.Instances()))

	env.Bridge.Post(s, OutputAdded{Output: &out4})
	assert.True(t, step())
	assert.Len(t, s.Instances(), 2)

	f.get(1).closed = true
	env.Bridge.Post(nopHandler{}, nil)
	assert.True(t, step())
	assert.Equal(t, []uint32{4}, globals(s.Instances()))
	assert.Equal(t, 1, f.get(1).closeCalls)

	env.Bridge.Post(s, OutputRemoved{Output: &out4})
	assert.False(t, step())
	assert.Empty(t, s.Instances())
	assert.Equal(t, 1, f.get(4).closeCalls)
}

func TestSupervisorAllClosed(t *testing.T) {
	env := newTestEnv(t,
		&Output{Global: 1, Done: true},
		&Output{Global: 2, Done: true},
	)
	f := fakeFactory{instances: make(map[uint32]*fakeInstancer)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewSupervisor(ctx, env, f.create)
	require.Len(t, s.Instances(), 2)

	f.get(1).closed = true
	f.get(2).closed = true
	env.Bridge.Post(nopHandler{}, nil)

	running, err := s.Step(ctx)
	require.NoError(t, err)
	assert.False(t, running)
	assert.Empty(t, s.Instances())
	assert.Equal(t, 1, f.get(1).closeCalls)
	assert.Equal(t, 1, f.get(2).closeCalls)
}

func TestSupervisorIgnoresObsoleteOutputs(t *testing.T) {
	env := newTestEnv(t)
	f := fakeFactory{instances: make(map[uint32]*fakeInstancer)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewSupervisor(ctx, env, f.create)
	assert.Empty(t, s.Instances())

	out := Output{Global: 7, Done: true, Obsolete: true}
	env.Bridge.Post(s, OutputAdded{Output: &out})
	running, err := s.Step(ctx)
	require.NoError(t, err)
	assert.False(t, running)
	assert.Nil(t, f.get(7))
}

func TestBridgeStepCanceled(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.Bridge.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

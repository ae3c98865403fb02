package cq

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueBatches(t *testing.T) {
	q := New[int]()
	defer q.Stop()

	for i := range 5 {
		require.True(t, q.Push(i))
	}

	var got []int
	for len(got) < 5 {
		select {
		case batch := <-q.Get():
			got = append(got, batch...)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for batch")
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	select {
	case batch := <-q.Get():
		t.Fatalf("unexpected batch: %v", batch)
	default:
	}
}

func TestQueueStop(t *testing.T) {
	q := New[string]()
	q.Stop()
	q.Stop()

	<-q.Done()
	assert.False(t, q.Push("late"))
}

func TestFlush(t *testing.T) {
	var order []int
	errA := errors.New("a")
	errs := Flush([]func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errA },
		func() error { order = append(order, 3); return nil },
	})

	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, []error{errA}, errs)
}

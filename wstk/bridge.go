package wstk

import (
	"context"
	"errors"

	wl "deedles.dev/waysmoke/client"
	"deedles.dev/waysmoke/internal/cq"
)

// Handler receives events routed through a Bridge. Handle is always
// called on the goroutine that calls Bridge.Step.
type Handler interface {
	Handle(ctx context.Context, payload any) error
}

// Event is a payload addressed to a Handler.
type Event struct {
	Target  Handler
	Payload any
}

// Bridge merges protocol traffic and events posted from other
// goroutines into a single loop.
type Bridge struct {
	client *wl.Client
	queue  *cq.Queue[Event]
}

func NewBridge(client *wl.Client) *Bridge {
	return &Bridge{
		client: client,
		queue:  cq.New[Event](),
	}
}

// Post queues payload for target. It is safe to call from any
// goroutine and never blocks for long. It returns false if the bridge
// has been stopped.
func (b *Bridge) Post(target Handler, payload any) bool {
	return b.queue.Push(Event{Target: target, Payload: payload})
}

// Step waits for either protocol traffic or posted events and handles
// one batch of them. Queued requests are flushed before it returns.
func (b *Bridge) Step(ctx context.Context) error {
	var errs []error

	select {
	case <-ctx.Done():
		return ctx.Err()

	case batch := <-b.client.Events():
		errs = cq.Flush(batch)

	case batch := <-b.queue.Get():
		for _, ev := range batch {
			err := ev.Target.Handle(ctx, ev.Payload)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	err := b.client.Flush()
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Stop stops the bridge. Events that have not been handled are
// discarded.
func (b *Bridge) Stop() {
	b.queue.Stop()
}

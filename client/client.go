// Package wl implements the client side of the core Wayland protocol.
//
// All protocol I/O is funneled through a single queue. A goroutine
// reads messages from the socket and queues their dispatch, and
// requests are queued alongside them as they are made. Nothing is
// sent or dispatched until the owner of the Client drains the queue
// via Flush, RoundTrip, or Events, so listeners always run on the
// goroutine that does so.
package wl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"deedles.dev/waysmoke/internal/cq"
	"deedles.dev/waysmoke/internal/debug"
	"deedles.dev/waysmoke/internal/objstore"
	"deedles.dev/waysmoke/wire"
)

// ErrDisconnected is returned when the compositor closes the
// connection.
var ErrDisconnected = errors.New("disconnected from compositor")

// Client is a connection to a Wayland compositor.
type Client struct {
	done  chan struct{}
	close sync.Once

	conn    *wire.Conn
	objects *objstore.Store
	queue   *cq.Queue[func() error]

	// create serializes ID allocation with the request that announces
	// the new ID so that IDs reach the server in order.
	create sync.Mutex

	display *Display
}

// Dial connects to the compositor named by the environment.
func Dial() (*Client, error) {
	c, err := wire.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return NewClient(c), nil
}

// NewClient creates a Client on an existing connection and starts
// reading from it.
func NewClient(conn *wire.Conn) *Client {
	client := Client{
		done:    make(chan struct{}),
		conn:    conn,
		objects: objstore.New(1),
		queue:   cq.New[func() error](),
	}
	client.display = &Display{Proxy: NewProxy(&client, 1)}
	client.Add(client.display)
	go client.listen()

	return &client
}

func (client *Client) listen() {
	for {
		msg, err := wire.ReadMessage(client.conn)
		if err != nil {
			select {
			case <-client.done:
				return
			default:
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
				err = ErrDisconnected
			}
			client.queue.Push(func() error { return err })
			return
		}

		if !client.queue.Push(func() error { return client.dispatch(msg) }) {
			return
		}
	}
}

func (client *Client) dispatch(msg *wire.MessageBuffer) error {
	obj, err := client.objects.Dispatch(msg)
	if err != nil {
		var unknown wire.UnknownSenderIDError
		if errors.As(err, &unknown) {
			// Events can race with the destruction of their target.
			debug.Printf("ignoring event for unknown object %v", msg.Sender())
			return nil
		}
		return err
	}

	if debug.Enabled() {
		debug.Printf("%v", msg.Debug(obj))
	}
	return nil
}

// Display returns the wl_display singleton.
func (client *Client) Display() *Display {
	return client.display
}

// Events returns a channel that yields batches of queued protocol
// work. Each function in a batch must be run, in order, on the
// goroutine that owns the Client.
func (client *Client) Events() <-chan []func() error {
	return client.queue.Get()
}

// Done is closed once the Client is closed.
func (client *Client) Done() <-chan struct{} {
	return client.done
}

// Close closes the connection. Queued but unsent requests are
// discarded.
func (client *Client) Close() error {
	var err error
	client.close.Do(func() {
		close(client.done)
		client.queue.Stop()
		err = client.conn.Close()
	})
	return err
}

// Add registers obj with the client, assigning it an ID if it doesn't
// have one.
func (client *Client) Add(obj wire.Object) {
	client.objects.Add(obj)
}

// Create registers obj and then queues the request returned by req,
// which is expected to announce obj's ID to the server. It is safe to
// call from multiple goroutines.
func (client *Client) Create(obj wire.Object, req func() *wire.MessageBuilder) {
	client.create.Lock()
	defer client.create.Unlock()

	client.objects.Add(obj)
	client.Enqueue(req())
}

func (client *Client) Get(id uint32) wire.Object {
	return client.objects.Get(id)
}

// Delete forgets the object with the given ID.
func (client *Client) Delete(id uint32) {
	client.objects.Delete(id)
}

// Enqueue queues msg to be sent the next time the queue is drained.
func (client *Client) Enqueue(msg *wire.MessageBuilder) {
	client.queue.Push(func() error {
		debug.Printf(" -> %v", msg)
		return msg.Build(client.conn)
	})
}

// Flush sends queued requests and dispatches queued events without
// blocking.
func (client *Client) Flush() error {
	var errs []error
	for {
		select {
		case queue := <-client.queue.Get():
			errs = append(errs, cq.Flush(queue)...)
		default:
			return errors.Join(errs...)
		}
	}
}

// RoundTrip blocks until the server has processed every request made
// before it was called, dispatching events as they arrive.
func (client *Client) RoundTrip() error {
	done := make(chan struct{})
	client.display.Sync().Then(func(uint32) { close(done) })

	var errs []error
	for {
		select {
		case <-done:
			return errors.Join(errs...)

		case <-client.done:
			return errors.Join(append(errs, net.ErrClosed)...)

		case queue := <-client.queue.Get():
			errs = append(errs, cq.Flush(queue)...)
			if errors.Is(errors.Join(errs...), ErrDisconnected) {
				return errors.Join(errs...)
			}
		}
	}
}

package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	BufferSize int
	DropIfFull bool
}

// Dispatcher relays events to a Sink on its own goroutine. A nil
// Dispatcher is valid and discards everything.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	queue    chan Event
	stop     chan struct{}
	finished chan struct{}

	// mu guards closing queue against in-flight senders.
	mu     sync.RWMutex
	closed bool
	once   sync.Once

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, size),
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
	go d.relay()

	return d
}

// relay runs until Close closes the queue, so everything queued before
// Close reaches the sink.
func (d *Dispatcher) relay() {
	defer close(d.finished)

	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
		d.delivered.Add(1)
	}
}

// Emit queues event. With DropIfFull a full buffer drops the event and
// counts it; otherwise Emit blocks until there is room, ctx ends or the
// dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Close stops accepting events, flushes the buffer and waits for the
// relay goroutine.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		close(d.stop)

		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()

		<-d.finished
	})
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

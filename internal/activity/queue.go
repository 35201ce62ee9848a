package activity

import (
    "context"
    "errors"
    "log"
    "sync"
    "sync/atomic"
    "time"
)

// DefaultQueueSize is the number of events a Queue buffers before dropping.
const DefaultQueueSize = 256

// publishTimeout bounds a single hand-off to the wrapped publisher.
const publishTimeout = 5 * time.Second

var (
    // ErrQueueFull is returned when an event is dropped because the buffer is full.
    ErrQueueFull = errors.New("activity queue full")
    // ErrQueueClosed is returned by Publish after Close.
    ErrQueueClosed = errors.New("activity queue closed")
)

// Queue buffers events for a Publisher and delivers them from one worker.
// Publish never waits on the broker.
type Queue struct {
    next    Publisher
    events  chan Event
    stop    chan struct{}
    done    chan struct{}
    once    sync.Once
    dropped atomic.Int64
}

func NewQueue(next Publisher, size int) *Queue {
    if size <= 0 {
        size = DefaultQueueSize
    }
    q := &Queue{
        next:   next,
        events: make(chan Event, size),
        stop:   make(chan struct{}),
        done:   make(chan struct{}),
    }
    go q.run()
    return q
}

// Publish enqueues ev.  It returns ErrQueueFull instead of blocking.
func (q *Queue) Publish(_ context.Context, ev Event) error {
    select {
    case <-q.stop:
        return ErrQueueClosed
    default:
    }
    select {
    case q.events <- ev:
        return nil
    default:
        if n := q.dropped.Add(1); n == 1 || n%100 == 0 {
            log.Printf("activity: queue full, %d events dropped", n)
        }
        return ErrQueueFull
    }
}

// Dropped reports how many events were discarded.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

func (q *Queue) run() {
    defer close(q.done)
    for {
        select {
        case ev := <-q.events:
            q.deliver(ev)
        case <-q.stop:
            for {
                select {
                case ev := <-q.events:
                    q.deliver(ev)
                default:
                    return
                }
            }
        }
    }
}

func (q *Queue) deliver(ev Event) {
    ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
    defer cancel()
    _ = q.next.Publish(ctx, ev)
}

// Close delivers what is already buffered and stops the worker.
func (q *Queue) Close() error {
    q.once.Do(func() { close(q.stop) })
    <-q.done
    return nil
}

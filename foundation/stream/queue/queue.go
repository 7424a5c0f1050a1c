// Package queue implements an in process stream source backed by a
// buffered channel.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/foundation/stream"
)

// Queue represents a stream source that is fed by calls to Publish. This
// implements the stream.Source interface.
type Queue struct {
	name string

	mu     sync.Mutex
	offset int64
	closed bool

	msgs chan stream.Message
	shut chan struct{}
	once sync.Once
}

// New constructs a queue that can buffer size messages before Publish
// starts to block.
func New(name string, size int) *Queue {
	if size < 0 {
		size = 0
	}

	return &Queue{
		name: name,
		msgs: make(chan stream.Message, size),
		shut: make(chan struct{}),
	}
}

// Name returns the name of the source.
func (q *Queue) Name() string {
	return q.name
}

// Publish adds the value to the end of the queue. Offsets are handed out in
// the order values are accepted.
func (q *Queue) Publish(ctx context.Context, value []byte) (int64, error) {

	// The lock is held while waiting so offsets match delivery order.
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, stream.ErrClosed
	}

	msg := stream.Message{
		Source: q.name,
		Topic:  q.name,
		Offset: q.offset,
		Value:  value,
		Time:   time.Now().UTC(),
	}

	select {
	case q.msgs <- msg:
		q.offset++
		return msg.Offset, nil

	case <-q.shut:
		return 0, stream.ErrClosed

	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Fetch returns the next message in the queue. Messages that were
// buffered before Close are still delivered.
func (q *Queue) Fetch(ctx context.Context) (stream.Message, error) {
	select {
	case msg := <-q.msgs:
		return msg, nil
	default:
	}

	select {
	case msg := <-q.msgs:
		return msg, nil

	case <-q.shut:
		select {
		case msg := <-q.msgs:
			return msg, nil
		default:
			return stream.Message{}, stream.ErrClosed
		}

	case <-ctx.Done():
		return stream.Message{}, ctx.Err()
	}
}

// Commit has nothing to do since messages are removed when fetched.
func (q *Queue) Commit(ctx context.Context, msg stream.Message) error {
	return nil
}

// Close stops the queue from accepting new messages.
func (q *Queue) Close() error {
	q.once.Do(func() {
		close(q.shut)
	})

	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	return nil
}

// Len returns the number of messages waiting to be fetched.
func (q *Queue) Len() int {
	return len(q.msgs)
}

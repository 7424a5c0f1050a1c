// Package stream defines the contract between message sources and the
// components that consume them.
package stream

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Fetch once a source has been closed.
var ErrClosed = errors.New("stream source closed")

// Message represents a single record delivered by a source.
type Message struct {
	Source    string
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

// Source represents the behavior required of anything that delivers
// messages in order. Fetch blocks until a message is available, the
// context is cancelled, or the source is closed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
	Close() error
}

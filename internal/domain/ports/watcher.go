package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to the raw-text file behind a watched deck.
// Bursts of writes are debounced into one event.
type FileWatcher interface {
	// Watch emits events for path until ctx ends or Stop is called. Stop closes the channel.
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent is one debounced change
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType classifies a change. A delete followed by a write inside one
// debounce window is reported as Created.
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

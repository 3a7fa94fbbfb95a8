// Package storage defines interfaces for the sinks that consume readings.
package storage

import (
	"context"
	"sync"

	"github.com/chrissnell/polarfeed/internal/types"
)

// StorageEngineInterface is an interface that provides a few standardized
// methods for the various reading sinks
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.Reading
}

// SnapshotSource provides read access to the current window snapshots,
// keyed by feed name. Implementations hand out copies; callers may retain
// and mutate what they receive.
type SnapshotSource interface {
	FeedNames() []string
	Snapshot(feed string) (types.Snapshot, bool)
	WindowCapacity(feed string) (int, bool)
}

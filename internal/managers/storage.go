package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/storage"
	"github.com/chrissnell/polarfeed/internal/storage/archive"
	"github.com/chrissnell/polarfeed/internal/storage/livetcp"
	"github.com/chrissnell/polarfeed/internal/storage/window"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading

	windows   map[string]*window.Engine
	feedOrder []string
	archive   *archive.Engine
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager populated with a window engine
// per configured feed plus any optional backends (archive, livetcp).
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*StorageManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	s := &StorageManager{
		windows: make(map[string]*window.Engine),
	}

	// Initialize our channel for passing readings to the distributor
	s.ReadingDistributor = make(chan types.Reading, 20)

	// Start our reading distributor to fan received readings out to the
	// storage backends
	go s.startReadingDistributor(ctx, wg)

	// Every feed gets a bounded history window
	for _, feed := range cfgData.Feeds {
		eng, err := window.NewEngine(feed.Name, feed.Capacity)
		if err != nil {
			return nil, fmt.Errorf("could not create window engine for feed %s: %v", feed.Name, err)
		}
		s.windows[feed.Name] = eng
		s.feedOrder = append(s.feedOrder, feed.Name)
		s.Engines = append(s.Engines, StorageEngine{
			Engine: eng,
			C:      eng.StartStorageEngine(ctx, wg),
		})
	}

	if cfgData.Storage.Archive != nil && cfgData.Storage.Archive.ConnectionString != "" {
		eng, err := archive.NewEngine(*cfgData.Storage.Archive, logger)
		if err != nil {
			return nil, fmt.Errorf("could not add archive storage backend: %v", err)
		}
		s.archive = eng
		s.Engines = append(s.Engines, StorageEngine{
			Engine: eng,
			C:      eng.StartStorageEngine(ctx, wg),
		})
	}

	if cfgData.Storage.LiveTCP != nil && cfgData.Storage.LiveTCP.Port != 0 {
		eng, err := livetcp.NewEngine(*cfgData.Storage.LiveTCP, s, logger)
		if err != nil {
			return nil, fmt.Errorf("could not add livetcp storage backend: %v", err)
		}
		s.Engines = append(s.Engines, StorageEngine{
			Engine: eng,
			C:      eng.StartStorageEngine(ctx, wg),
		})
	}

	return s, nil
}

// GetReadingDistributor returns the reading distributor channel
func (s *StorageManager) GetReadingDistributor() chan types.Reading {
	return s.ReadingDistributor
}

// Archive returns the archive engine, or nil when archival is not
// configured.
func (s *StorageManager) Archive() *archive.Engine {
	return s.archive
}

// FeedNames implements storage.SnapshotSource, in configuration order.
func (s *StorageManager) FeedNames() []string {
	return append([]string(nil), s.feedOrder...)
}

// Snapshot implements storage.SnapshotSource.
func (s *StorageManager) Snapshot(feed string) (types.Snapshot, bool) {
	eng, ok := s.windows[feed]
	if !ok {
		return types.Snapshot{}, false
	}
	return eng.Snapshot()
}

// WindowCapacity returns the configured window capacity for a feed.
func (s *StorageManager) WindowCapacity(feed string) (int, bool) {
	eng, ok := s.windows[feed]
	if !ok {
		return 0, false
	}
	return eng.Capacity(), true
}

// startReadingDistributor receives readings from the feeds and fans them out
// to the storage backends
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, e := range s.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}

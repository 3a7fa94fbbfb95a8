package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/feeds"
	"github.com/chrissnell/polarfeed/internal/feeds/serialprobe"
	"github.com/chrissnell/polarfeed/internal/feeds/simulator"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
)

// FeedManager holds all configured feeds and starts them as a group.
type FeedManager struct {
	ctx    context.Context
	wg     *sync.WaitGroup
	logger *zap.SugaredLogger
	feeds  map[string]feeds.Feed
}

// NewFeedManager creates a FeedManager populated with every configured feed.
func NewFeedManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.Reading, logger *zap.SugaredLogger) (*FeedManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	fm := &FeedManager{
		ctx:    ctx,
		wg:     wg,
		logger: logger,
		feeds:  make(map[string]feeds.Feed),
	}

	for _, feedConfig := range cfgData.Feeds {
		feed, err := createFeedFromConfig(ctx, wg, feedConfig, distributor, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating feed [%s]: %w", feedConfig.Name, err)
		}
		fm.feeds[feedConfig.Name] = feed
	}

	return fm, nil
}

// StartFeeds starts every configured feed.
func (f *FeedManager) StartFeeds() error {
	for name, feed := range f.feeds {
		f.logger.Infof("Starting feed [%v]...", name)
		if err := feed.StartFeed(); err != nil {
			return fmt.Errorf("failed to start feed [%s]: %w", name, err)
		}
	}
	return nil
}

// createFeedFromConfig creates the appropriate feed based on feed type
func createFeedFromConfig(ctx context.Context, wg *sync.WaitGroup, feedConfig config.FeedData, distributor chan types.Reading, logger *zap.SugaredLogger) (feeds.Feed, error) {
	switch feedConfig.Type {
	case "simulator", "":
		log.Infof("Initializing simulator feed [%v]", feedConfig.Name)
		return simulator.NewFeed(ctx, wg, feedConfig, distributor, logger), nil
	case "serialprobe", "serial":
		log.Infof("Initializing serial probe feed [%v]", feedConfig.Name)
		return serialprobe.NewFeed(ctx, wg, feedConfig, distributor, logger), nil
	default:
		return nil, fmt.Errorf("unknown feed type: %s", feedConfig.Type)
	}
}

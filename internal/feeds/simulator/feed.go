// Package simulator implements a synthetic temperature feed. Each tick it
// draws a value from a bounded uniform range, rounds it to one decimal, and
// emits it as a Reading with the current wall-clock timestamp.
package simulator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chrissnell/polarfeed/internal/feeds"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
	"go.uber.org/zap"
)

// Default temperature bounds (°C) for an Antarctic research station.
const (
	defaultMinTemp = -18.0
	defaultMaxTemp = -16.0
)

// Feed generates synthetic readings on a fixed interval.
type Feed struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.FeedData
	ReadingDistributor chan<- types.Reading
	logger             *zap.SugaredLogger
}

// NewFeed creates a simulator feed from its device configuration.
func NewFeed(ctx context.Context, wg *sync.WaitGroup, cfg config.FeedData, distributor chan<- types.Reading, logger *zap.SugaredLogger) feeds.Feed {
	if cfg.MinTemp == 0 && cfg.MaxTemp == 0 {
		cfg.MinTemp = defaultMinTemp
		cfg.MaxTemp = defaultMaxTemp
	}
	if cfg.MaxTemp < cfg.MinTemp {
		cfg.MinTemp, cfg.MaxTemp = cfg.MaxTemp, cfg.MinTemp
	}

	return &Feed{
		ctx:                ctx,
		wg:                 wg,
		config:             cfg,
		ReadingDistributor: distributor,
		logger:             logger,
	}
}

func (f *Feed) FeedName() string {
	return f.config.Name
}

// StartFeed launches the tick loop.
func (f *Feed) StartFeed() error {
	log.Infof("Starting simulator feed [%v] (interval=%ds, range=[%.1f, %.1f])",
		f.config.Name, f.config.IntervalSecs, f.config.MinTemp, f.config.MaxTemp)

	f.wg.Add(1)
	go f.generateReadings()

	return nil
}

func (f *Feed) generateReadings() {
	defer f.wg.Done()

	ticker := time.NewTicker(time.Duration(f.config.IntervalSecs) * time.Second)
	defer ticker.Stop()

	// Emit one reading immediately so consumers have data before the
	// first full interval elapses.
	f.emit()

	for {
		select {
		case <-f.ctx.Done():
			log.Infof("cancellation request received. Stopping simulator feed [%v]", f.config.Name)
			return
		case <-ticker.C:
			f.emit()
		}
	}
}

func (f *Feed) emit() {
	r := types.Reading{
		Timestamp:   time.Now(),
		FeedName:    f.config.Name,
		FeedType:    "simulator",
		Temperature: f.generate(),
	}

	log.Debugf("Simulator [%s] sending reading to distributor: temp=%.1f°C", f.config.Name, r.Temperature)

	select {
	case f.ReadingDistributor <- r:
	case <-f.ctx.Done():
	}
}

// generate draws a value from the configured range, rounded to one decimal.
// Generation is total: it cannot fail and needs no retries.
func (f *Feed) generate() float64 {
	v := f.config.MinTemp + rand.Float64()*(f.config.MaxTemp-f.config.MinTemp)
	return math.Round(v*10) / 10
}

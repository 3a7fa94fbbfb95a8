// Package penguincache provides a dedicated controller for periodic penguin
// dataset sampling. It runs independently of the REST server: every tick it
// draws a fresh random sample from the loaded dataset and appends it to a
// bounded batch history that API handlers read from.
package penguincache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/history"
	"github.com/chrissnell/polarfeed/pkg/config"
	"github.com/chrissnell/polarfeed/pkg/penguins"
)

// SampleBatch is one tick's worth of sampled penguins.
type SampleBatch struct {
	BatchID   string             `json:"batch_id"`
	SampledAt time.Time          `json:"sampled_at"`
	Penguins  []penguins.Penguin `json:"penguins"`
}

// BatchArchiver persists sample batches. The archive storage engine
// implements this; the controller works fine without one.
type BatchArchiver interface {
	StorePenguinBatch(ctx context.Context, batchID string, sampledAt time.Time, rows []penguins.Penguin) error
}

// Controller manages the penguin sampling lifecycle
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	logger     *zap.SugaredLogger
	dataset    *penguins.Dataset
	sampleSize int
	interval   time.Duration
	archiver   BatchArchiver

	mu      sync.RWMutex
	batches *history.Window[SampleBatch]
}

// NewController creates a new penguin sampling controller.
// Returns nil if no penguin dataset is configured.
func NewController(
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg *config.PenguinsData,
	dataset *penguins.Dataset,
	archiver BatchArchiver,
	logger *zap.SugaredLogger,
) (*Controller, error) {
	if cfg == nil || dataset == nil {
		logger.Debug("No penguin dataset configured, penguin cache controller will not be created")
		return nil, nil
	}

	batches, err := history.NewWindow[SampleBatch](cfg.Capacity)
	if err != nil {
		return nil, err
	}

	return &Controller{
		ctx:        ctx,
		wg:         wg,
		logger:     logger,
		dataset:    dataset,
		sampleSize: cfg.SampleSize,
		interval:   time.Duration(cfg.IntervalSecs) * time.Second,
		archiver:   archiver,
		batches:    batches,
	}, nil
}

// StartController begins the sampling loop.
func (c *Controller) StartController() error {
	c.logger.Infof("Starting penguin sampler (%d rows every %v from %d-row dataset)",
		c.sampleSize, c.interval, c.dataset.Len())

	c.wg.Add(1)
	go c.run()

	return nil
}

func (c *Controller) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// First sample happens right away rather than one interval in.
	c.sampleOnce()

	for {
		select {
		case <-ticker.C:
			c.sampleOnce()
		case <-c.ctx.Done():
			c.logger.Info("cancellation request received. Stopping penguin sampler.")
			return
		}
	}
}

func (c *Controller) sampleOnce() {
	batch := SampleBatch{
		BatchID:   uuid.New().String(),
		SampledAt: time.Now(),
		Penguins:  c.dataset.Sample(c.sampleSize),
	}

	c.mu.Lock()
	c.batches.Append(batch)
	c.mu.Unlock()

	if c.archiver != nil {
		if err := c.archiver.StorePenguinBatch(c.ctx, batch.BatchID, batch.SampledAt, batch.Penguins); err != nil {
			c.logger.Errorf("could not archive penguin sample batch: %v", err)
		}
	}
}

// Batches returns the retained sample batches, oldest first.
func (c *Controller) Batches() []SampleBatch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batches.Snapshot()
}

// Latest returns the most recent sample batch. The second return value is
// false before the first tick.
func (c *Controller) Latest() (SampleBatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batches.Latest()
}

// Dataset returns the full loaded dataset.
func (c *Controller) Dataset() []penguins.Penguin {
	return c.dataset.Penguins()
}

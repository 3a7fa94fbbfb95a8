// Package archive persists readings and penguin sample batches to
// PostgreSQL (or TimescaleDB, which is wire-compatible).
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgtype"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
	"github.com/chrissnell/polarfeed/pkg/penguins"
)

// Engine is the archival storage backend.
type Engine struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewEngine connects to the archive database.
func NewEngine(cfg config.ArchiveData, logger *zap.SugaredLogger) (*Engine, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("archive storage requires a connection string")
	}

	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	log.Info("connecting to archive database...")
	db, err := gorm.Open(postgres.Open(cfg.ConnectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to archive database: %w", err)
	}
	log.Info("archive database connection successful")

	return &Engine{
		db:     db,
		logger: logger,
	}, nil
}

// StartStorageEngine starts the archival goroutine and returns the channel
// it consumes readings from.
func (e *Engine) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("Starting archive storage engine...")

	readingChan := make(chan types.Reading, 10)

	wg.Add(1)
	go e.processReadings(ctx, wg, readingChan)

	return readingChan
}

func (e *Engine) processReadings(ctx context.Context, wg *sync.WaitGroup, readingChan <-chan types.Reading) {
	defer wg.Done()

	for {
		select {
		case r := <-readingChan:
			if err := e.storeReading(r); err != nil {
				// Archival failures never interrupt the refresh cycle.
				e.logger.Errorf("could not archive reading from feed %v: %v", r.FeedName, err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Stopping archive storage engine")
			return
		}
	}
}

func (e *Engine) storeReading(r types.Reading) error {
	row := ArchivedReading{
		Time:        r.Timestamp,
		FeedName:    r.FeedName,
		FeedType:    r.FeedType,
		Temperature: r.Temperature,
	}
	return e.db.Create(&row).Error
}

// StorePenguinBatch persists one penguin sample batch as a JSONB document.
func (e *Engine) StorePenguinBatch(ctx context.Context, batchID string, sampledAt time.Time, rows []penguins.Penguin) error {
	doc, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("could not encode sample batch %s: %w", batchID, err)
	}

	var jsonb pgtype.JSONB
	if err := jsonb.Set(doc); err != nil {
		return fmt.Errorf("could not build JSONB value for batch %s: %w", batchID, err)
	}

	row := ArchivedSampleBatch{
		BatchID:   batchID,
		SampledAt: sampledAt,
		Rows:      jsonb,
	}
	return e.db.WithContext(ctx).Create(&row).Error
}

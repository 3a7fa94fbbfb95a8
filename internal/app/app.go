package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/controllers/penguincache"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/managers"
	"github.com/chrissnell/polarfeed/pkg/config"
	"github.com/chrissnell/polarfeed/pkg/penguins"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %v", err)
	}
	if len(cfgData.Feeds) == 0 {
		return fmt.Errorf("no feeds configured; at least one feed is required")
	}

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, &wg, a.configProvider, a.logger)
	if err != nil {
		return err
	}

	// Initialize the feed manager
	fm, err := managers.NewFeedManager(ctx, &wg, a.configProvider, storageManager.ReadingDistributor, a.logger)
	if err != nil {
		return err
	}
	go fm.StartFeeds()

	// Initialize the penguin sampler if a dataset was configured
	var penguinController *penguincache.Controller
	if cfgData.Penguins != nil && cfgData.Penguins.Dataset != "" {
		dataset, err := penguins.LoadFile(cfgData.Penguins.Dataset)
		if err != nil {
			return fmt.Errorf("error loading penguin dataset: %w", err)
		}

		var archiver penguincache.BatchArchiver
		if eng := storageManager.Archive(); eng != nil {
			archiver = eng
		}

		penguinController, err = penguincache.NewController(ctx, &wg, cfgData.Penguins, dataset, archiver, a.logger)
		if err != nil {
			return fmt.Errorf("error creating penguin sampler: %w", err)
		}
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, storageManager, penguinController, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

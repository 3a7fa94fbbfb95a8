package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/controllers/penguincache"
	"github.com/chrissnell/polarfeed/internal/controllers/restserver"
	"github.com/chrissnell/polarfeed/internal/storage"
	"github.com/chrissnell/polarfeed/pkg/config"
)

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerManager holds the configured controllers and starts them as a group.
type ControllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a controller manager populated from configuration.
// The penguin controller may be nil when no dataset is configured.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, source storage.SnapshotSource, penguinController *penguincache.Controller, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	cm := &ControllerManager{
		ctx:         ctx,
		wg:          wg,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	if penguinController != nil {
		cm.controllers = append(cm.controllers, penguinController)
	}

	for _, con := range cfgData.Controllers {
		controller, err := cm.createController(con, source, penguinController)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

// StartControllers starts every configured controller.
func (c *ControllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *ControllerManager) createController(cc config.ControllerData, source storage.SnapshotSource, penguinController *penguincache.Controller) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		return restserver.NewController(cm.ctx, cm.wg, cc.RESTServer, source, penguinController, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}

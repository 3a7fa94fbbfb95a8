// Package restserver exposes the dashboard API over HTTP: per-feed latest,
// history, and trend endpoints plus the penguin sample endpoints, with an
// optional gRPC health service multiplexed onto the same port.
package restserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/soheilhy/cmux"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/chrissnell/polarfeed/internal/controllers/penguincache"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/storage"
	"github.com/chrissnell/polarfeed/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	source     storage.SnapshotSource
	penguins   *penguincache.Controller
	logger     *zap.SugaredLogger
	handlers   *Handlers

	grpcServer   *grpc.Server
	healthServer *health.Server
	rootListener net.Listener
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc *config.RESTServerData, source storage.SnapshotSource, penguinController *penguincache.Controller, logger *zap.SugaredLogger) (*Controller, error) {
	if rc == nil {
		return nil, fmt.Errorf("rest controller requires a rest configuration section")
	}
	if source == nil {
		return nil, fmt.Errorf("rest controller requires a snapshot source")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: *rc,
		source:     source,
		penguins:   penguinController,
		logger:     logger,
	}

	// If a listen address was not provided, listen on all interfaces
	if ctrl.restConfig.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.ListenAddr = "0.0.0.0"
	}

	if ctrl.restConfig.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		ctrl.restConfig.Port = 8080
	}

	if ctrl.restConfig.GRPCHealth {
		if ctrl.restConfig.Cert != "" {
			logger.Warn("grpc-health shares the plaintext listener and cannot be combined with TLS; skipping health service")
		} else {
			ctrl.healthServer = health.NewServer()
			ctrl.grpcServer = grpc.NewServer()
			healthpb.RegisterHealthServer(ctrl.grpcServer, ctrl.healthServer)
		}
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")

	multiplexed := c.grpcServer != nil && c.restConfig.Cert == ""
	if multiplexed {
		l, err := net.Listen("tcp", c.Server.Addr)
		if err != nil {
			return fmt.Errorf("could not listen on %v: %w", c.Server.Addr, err)
		}
		c.rootListener = l
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		var err error
		switch {
		case c.restConfig.Cert != "" && c.restConfig.Key != "":
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		case multiplexed:
			err = c.serveMultiplexed(c.rootListener)
		default:
			err = c.Server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed && c.ctx.Err() == nil {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		if c.healthServer != nil {
			c.healthServer.Shutdown()
		}
		if c.grpcServer != nil {
			c.grpcServer.GracefulStop()
		}
		c.Server.Shutdown(context.Background())
		if c.rootListener != nil {
			c.rootListener.Close()
		}
	}()

	return nil
}

// serveMultiplexed serves HTTP and the gRPC health service on the same port.
// gRPC traffic is split off by its content-type; everything else falls
// through to the HTTP server.
func (c *Controller) serveMultiplexed(l net.Listener) error {
	m := cmux.New(l)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	c.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go c.grpcServer.Serve(grpcL)
	go c.Server.Serve(httpL)

	return m.Serve()
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/latest", c.handlers.GetLatest)
	router.HandleFunc("/history", c.handlers.GetHistory)
	router.HandleFunc("/trend", c.handlers.GetTrend)
	router.HandleFunc("/feeds", c.handlers.GetFeeds)

	router.HandleFunc("/penguins", c.handlers.GetPenguinBatches)
	router.HandleFunc("/penguins/dataset", c.handlers.GetPenguinDataset)

	router.HandleFunc("/", c.handlers.ServeIndex)

	// Browser dashboards fetch from other origins, so allow cross-origin
	// reads and log requests through the daemon's logger.
	logWriter := zap.NewStdLog(c.logger.Desugar()).Writer()
	handler := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(router)

	return gorillahandlers.CombinedLoggingHandler(logWriter, handler)
}

func (c *Controller) pageTitle() string {
	if c.restConfig.PageTitle != "" {
		return c.restConfig.PageTitle
	}
	return "polarfeed"
}

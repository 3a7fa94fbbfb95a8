// Package livetcp implements a TCP push sink. Connected clients receive the
// current window snapshots as length-prefixed MessagePack frames, re-sent on
// a fixed interval whenever new readings have arrived since the last frame.
//
// The server is built on gnet's event loop; connection registration and
// broadcast all happen on gnet's goroutines, so no locking is needed beyond
// the connection set.
package livetcp

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/gnet/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/storage"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
)

// Engine is the TCP push storage backend.
type Engine struct {
	gnet.BuiltinEventEngine

	eng      gnet.Engine
	addr     string
	interval time.Duration
	source   storage.SnapshotSource
	logger   *zap.SugaredLogger

	conns sync.Map // gnet.Conn -> struct{}
	dirty atomic.Bool
}

// NewEngine creates a live TCP push engine.
func NewEngine(cfg config.LiveTCPData, source storage.SnapshotSource, logger *zap.SugaredLogger) (*Engine, error) {
	if cfg.Port == 0 {
		return nil, fmt.Errorf("livetcp storage requires a port")
	}

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = "0.0.0.0"
	}

	return &Engine{
		addr:     fmt.Sprintf("tcp://%s:%d", listenAddr, cfg.Port),
		interval: time.Duration(cfg.IntervalSecs) * time.Second,
		source:   source,
		logger:   logger,
	}, nil
}

// StartStorageEngine starts the gnet event loop and returns the channel the
// engine consumes readings from. Incoming readings only flag that fresh data
// exists; the broadcast itself happens on gnet's ticker.
func (e *Engine) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Infof("Starting live TCP push engine on %v...", e.addr)

	readingChan := make(chan types.Reading, 10)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gnet.Run(e, e.addr, gnet.WithTicker(true)); err != nil {
			e.logger.Errorf("live TCP push engine stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-readingChan:
				e.dirty.Store(true)
			case <-ctx.Done():
				log.Info("cancellation request received. Stopping live TCP push engine")
				e.eng.Stop(context.Background())
				return
			}
		}
	}()

	return readingChan
}

// OnBoot saves the engine handle so shutdown can stop the event loop.
func (e *Engine) OnBoot(eng gnet.Engine) gnet.Action {
	e.eng = eng
	return gnet.None
}

// OnOpen registers a new client and immediately sends it the current state.
func (e *Engine) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	e.conns.Store(c, struct{}{})
	e.logger.Debugf("live TCP client connected: %v", c.RemoteAddr())

	frame, err := e.encodeFrame()
	if err != nil {
		e.logger.Errorf("could not encode snapshot frame for new client: %v", err)
		return nil, gnet.None
	}
	return frame, gnet.None
}

// OnClose drops a disconnected client.
func (e *Engine) OnClose(c gnet.Conn, err error) gnet.Action {
	e.conns.Delete(c)
	e.logger.Debugf("live TCP client disconnected: %v", c.RemoteAddr())
	return gnet.None
}

// OnTraffic discards anything clients send; the stream is one-way.
func (e *Engine) OnTraffic(c gnet.Conn) gnet.Action {
	c.Discard(-1)
	return gnet.None
}

// OnTick broadcasts the current snapshots when fresh readings arrived since
// the last frame.
func (e *Engine) OnTick() (time.Duration, gnet.Action) {
	if !e.dirty.Swap(false) {
		return e.interval, gnet.None
	}

	frame, err := e.encodeFrame()
	if err != nil {
		e.logger.Errorf("could not encode snapshot frame: %v", err)
		return e.interval, gnet.None
	}

	e.conns.Range(func(key, _ any) bool {
		c := key.(gnet.Conn)
		if err := c.AsyncWrite(frame, nil); err != nil {
			e.logger.Debugf("dropping live TCP client %v: %v", c.RemoteAddr(), err)
			e.conns.Delete(c)
			c.Close()
		}
		return true
	})

	return e.interval, gnet.None
}

// encodeFrame builds one length-prefixed MessagePack frame holding the
// current snapshot of every feed.
func (e *Engine) encodeFrame() ([]byte, error) {
	var snapshots []types.Snapshot
	for _, feed := range e.source.FeedNames() {
		if snap, ok := e.source.Snapshot(feed); ok {
			snapshots = append(snapshots, snap)
		}
	}

	var payload bytes.Buffer
	encoder := msgpack.NewEncoder(&payload)
	encoder.SetCustomStructTag("json")
	if err := encoder.Encode(snapshots); err != nil {
		return nil, err
	}

	frame := make([]byte, 4+payload.Len())
	binary.BigEndian.PutUint32(frame[:4], uint32(payload.Len()))
	copy(frame[4:], payload.Bytes())
	return frame, nil
}

// Package serialprobe implements a feed that reads temperature values from
// a serial-attached probe. The probe emits one reading per line, either a
// bare decimal value or a JSON object like {"temp": -17.2}.
package serialprobe

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chrissnell/polarfeed/internal/feeds"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

const reconnectWait = 30 * time.Second

// Feed reads temperature lines from a serial device.
type Feed struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	rwc                io.ReadWriteCloser
	config             config.FeedData
	ReadingDistributor chan<- types.Reading
	logger             *zap.SugaredLogger
}

// probeLine is the JSON form a probe may emit.
type probeLine struct {
	Temp float64 `json:"temp"`
}

// NewFeed creates a serial probe feed from its device configuration.
func NewFeed(ctx context.Context, wg *sync.WaitGroup, cfg config.FeedData, distributor chan<- types.Reading, logger *zap.SugaredLogger) feeds.Feed {
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

// StartFeed opens the serial port and launches the read loop.
func (f *Feed) StartFeed() error {
	log.Infof("Starting serial probe feed [%v] on %v...", f.config.Name, f.config.SerialDevice)

	f.wg.Add(1)
	go f.readLoop()

	return nil
}

func (f *Feed) readLoop() {
	defer f.wg.Done()

	for {
		if f.ctx.Err() != nil {
			return
		}

		if !f.connect() {
			return
		}

		f.scanReadings()

		// Reached EOF or a read error. Close and reconnect.
		f.rwc.Close()
		f.rwc = nil

		select {
		case <-f.ctx.Done():
			log.Infof("cancellation request received. Stopping serial probe feed [%v]", f.config.Name)
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// connect opens the serial port, retrying until it succeeds or the context
// is cancelled. Returns false on cancellation.
func (f *Feed) connect() bool {
	for {
		sc := &serial.Config{Name: f.config.SerialDevice, Baud: f.config.Baud}
		f.logger.Debugf("attempting to open serial port %s at %d baud", f.config.SerialDevice, f.config.Baud)

		rwc, err := serial.OpenPort(sc)
		if err == nil {
			f.rwc = rwc
			f.logger.Infof("connected to %v", f.config.SerialDevice)
			return true
		}

		f.logger.Errorf("failed to open serial port %s: %v", f.config.SerialDevice, err)
		f.logger.Errorf("sleeping %v and trying again", reconnectWait)

		select {
		case <-f.ctx.Done():
			f.logger.Info("cancellation request received during retry wait")
			return false
		case <-time.After(reconnectWait):
		}
	}
}

func (f *Feed) scanReadings() {
	scanner := bufio.NewScanner(f.rwc)
	for scanner.Scan() {
		if f.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		temp, ok := parseLine(line)
		if !ok {
			f.logger.Debugf("discarding unparseable probe line: %q", line)
			continue
		}

		r := types.Reading{
			Timestamp:   time.Now(),
			FeedName:    f.config.Name,
			FeedType:    "serial",
			Temperature: temp,
		}

		log.Debugf("Serial probe [%s] sending reading to distributor: temp=%.1f°C", f.config.Name, r.Temperature)

		select {
		case f.ReadingDistributor <- r:
		case <-f.ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		f.logger.Errorf("error reading from serial probe %v: %v; reconnecting", f.config.Name, err)
	}
}

// parseLine accepts either a bare decimal value or a JSON object with a
// "temp" field.
func parseLine(line string) (float64, bool) {
	if strings.HasPrefix(line, "{") {
		var p probeLine
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return 0, false
		}
		return p.Temp, true
	}

	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Package window implements the bounded history sink: a fixed-capacity FIFO
// buffer of the most recent readings for one feed, with a least-squares
// trend line recomputed on every insert.
package window

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/chrissnell/polarfeed/internal/history"
	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/internal/trend"
	"github.com/chrissnell/polarfeed/internal/types"
)

// Engine owns one feed's reading window. All mutation happens on the single
// goroutine draining the engine's channel; readers get deep-copied snapshots.
type Engine struct {
	feedName string
	window   *history.Window[types.Reading]

	mu       sync.RWMutex
	snapshot types.Snapshot
	hasData  bool
}

// NewEngine creates a window engine for the named feed with the given
// capacity.
func NewEngine(feedName string, capacity int) (*Engine, error) {
	w, err := history.NewWindow[types.Reading](capacity)
	if err != nil {
		return nil, err
	}

	return &Engine{
		feedName: feedName,
		window:   w,
	}, nil
}

// FeedName returns the feed this engine tracks.
func (e *Engine) FeedName() string {
	return e.feedName
}

// Capacity returns the window capacity.
func (e *Engine) Capacity() int {
	return e.window.Capacity()
}

// StartStorageEngine starts the engine and returns the channel it consumes
// readings from. Readings for other feeds are ignored.
func (e *Engine) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Infof("Starting window engine for feed [%v] (capacity=%d)...", e.feedName, e.window.Capacity())

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
			if r.FeedName != e.feedName {
				continue
			}
			e.accept(r)
		case <-ctx.Done():
			log.Infof("cancellation request received. Stopping window engine for feed [%v]", e.feedName)
			return
		}
	}
}

// accept appends a reading (evicting the oldest entry at capacity) and
// rebuilds the published snapshot: window contents, tabular projection,
// latest reading, and trend line.
func (e *Engine) accept(r types.Reading) {
	e.window.Append(r)
	readings := e.window.Snapshot()

	snap := types.Snapshot{
		FeedName: e.feedName,
		Readings: readings,
		Table:    buildTable(readings),
		Latest:   r,
		Trend:    computeTrend(readings),
		Updated:  time.Now(),
	}

	e.mu.Lock()
	e.snapshot = snap
	e.hasData = true
	e.mu.Unlock()
}

// Snapshot returns a copy of the current post-tick state. The second return
// value is false before the first reading arrives.
func (e *Engine) Snapshot() (types.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.hasData {
		return types.Snapshot{FeedName: e.feedName}, false
	}
	return copySnapshot(e.snapshot), true
}

func buildTable(readings []types.Reading) types.Table {
	table := types.Table{
		Columns: []string{"temp", "timestamp"},
		Rows:    make([][]string, 0, len(readings)),
	}
	for _, r := range readings {
		table.Rows = append(table.Rows, []string{
			formatTemp(r.Temperature),
			r.FormattedTimestamp(),
		})
	}
	return table
}

func computeTrend(readings []types.Reading) *types.TrendLine {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Temperature
	}

	line, ok := trend.Compute(values)
	if !ok {
		return nil
	}

	return &types.TrendLine{
		Slope:     line.Slope,
		Intercept: line.Intercept,
		Predicted: line.Predicted,
	}
}

func copySnapshot(s types.Snapshot) types.Snapshot {
	out := s

	out.Readings = make([]types.Reading, len(s.Readings))
	copy(out.Readings, s.Readings)

	out.Table.Rows = make([][]string, len(s.Table.Rows))
	for i, row := range s.Table.Rows {
		out.Table.Rows[i] = append([]string(nil), row...)
	}

	if s.Trend != nil {
		t := *s.Trend
		t.Predicted = append([]float64(nil), s.Trend.Predicted...)
		out.Trend = &t
	}

	return out
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

package simulator

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
	"go.uber.org/zap"
)

func newTestFeed(t *testing.T, cfg config.FeedData, distributor chan types.Reading) (*Feed, context.CancelFunc, *sync.WaitGroup) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	f := NewFeed(ctx, &wg, cfg, distributor, zap.NewNop().Sugar()).(*Feed)
	return f, cancel, &wg
}

func TestGenerateStaysInRange(t *testing.T) {
	f, cancel, _ := newTestFeed(t, config.FeedData{
		Name:         "sim",
		IntervalSecs: 1,
		MinTemp:      -18.0,
		MaxTemp:      -16.0,
	}, nil)
	defer cancel()

	for i := 0; i < 1000; i++ {
		v := f.generate()
		if v < -18.0 || v > -16.0 {
			t.Fatalf("generated value %v outside [-18, -16]", v)
		}
		// One decimal place.
		if math.Abs(v*10-math.Round(v*10)) > 1e-9 {
			t.Errorf("generated value %v not rounded to one decimal", v)
		}
	}
}

func TestGenerateDefaultsWhenBoundsUnset(t *testing.T) {
	f, cancel, _ := newTestFeed(t, config.FeedData{Name: "sim", IntervalSecs: 1}, nil)
	defer cancel()

	for i := 0; i < 100; i++ {
		v := f.generate()
		if v < defaultMinTemp || v > defaultMaxTemp {
			t.Fatalf("generated value %v outside default range [%v, %v]", v, defaultMinTemp, defaultMaxTemp)
		}
	}
}

func TestGenerateSwapsInvertedBounds(t *testing.T) {
	f, cancel, _ := newTestFeed(t, config.FeedData{
		Name:         "sim",
		IntervalSecs: 1,
		MinTemp:      -16.0,
		MaxTemp:      -18.0,
	}, nil)
	defer cancel()

	for i := 0; i < 100; i++ {
		v := f.generate()
		if v < -18.0 || v > -16.0 {
			t.Fatalf("generated value %v outside normalized range", v)
		}
	}
}

func TestStartFeedEmitsReadings(t *testing.T) {
	distributor := make(chan types.Reading, 10)
	f, cancel, wg := newTestFeed(t, config.FeedData{
		Name:         "mcmurdo-sim",
		IntervalSecs: 1,
		MinTemp:      -18.0,
		MaxTemp:      -16.0,
	}, distributor)

	if err := f.StartFeed(); err != nil {
		t.Fatalf("StartFeed: %v", err)
	}

	// The feed emits an initial reading without waiting for the ticker.
	select {
	case r := <-distributor:
		if r.FeedName != "mcmurdo-sim" || r.FeedType != "simulator" {
			t.Errorf("unexpected reading identity: %+v", r)
		}
		if r.Temperature < -18.0 || r.Temperature > -16.0 {
			t.Errorf("reading temperature %v outside configured range", r.Temperature)
		}
		if r.Timestamp.IsZero() {
			t.Error("reading has a zero timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reading emitted after start")
	}

	cancel()
	wg.Wait()
}

package penguincache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/pkg/config"
	"github.com/chrissnell/polarfeed/pkg/penguins"
)

func testDataset(t *testing.T) *penguins.Dataset {
	t.Helper()
	ds, err := penguins.LoadFile("../../../pkg/penguins/testdata/penguins.csv")
	if err != nil {
		t.Fatalf("loading test dataset: %v", err)
	}
	return ds
}

func testController(t *testing.T, cfg *config.PenguinsData, archiver BatchArchiver) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, testDataset(t), archiver, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if c == nil {
		t.Fatal("NewController returned nil controller for a configured sampler")
	}
	return c
}

func TestNewControllerUnconfigured(t *testing.T) {
	c, err := NewController(context.Background(), &sync.WaitGroup{}, nil, nil, nil, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Fatal("expected nil controller when no penguin config is present")
	}
}

func TestSampleOnce(t *testing.T) {
	cfg := &config.PenguinsData{Capacity: 10, SampleSize: 5, IntervalSecs: 10}
	c := testController(t, cfg, nil)

	if _, ok := c.Latest(); ok {
		t.Fatal("expected no batches before the first sample")
	}

	c.sampleOnce()

	batch, ok := c.Latest()
	if !ok {
		t.Fatal("expected a batch after sampling")
	}
	if batch.BatchID == "" {
		t.Error("expected a non-empty batch ID")
	}
	if len(batch.Penguins) != 5 {
		t.Errorf("expected 5 sampled penguins, got %d", len(batch.Penguins))
	}
	if batch.SampledAt.IsZero() {
		t.Error("expected a sample timestamp")
	}
}

func TestBatchHistoryBounded(t *testing.T) {
	cfg := &config.PenguinsData{Capacity: 3, SampleSize: 2, IntervalSecs: 10}
	c := testController(t, cfg, nil)

	for i := 0; i < 10; i++ {
		c.sampleOnce()
	}

	batches := c.Batches()
	if len(batches) != 3 {
		t.Fatalf("expected batch history capped at 3, got %d", len(batches))
	}

	// Each retained batch has a distinct ID
	seen := make(map[string]bool)
	for _, b := range batches {
		if seen[b.BatchID] {
			t.Errorf("duplicate batch ID %s", b.BatchID)
		}
		seen[b.BatchID] = true
	}
}

type recordingArchiver struct {
	mu      sync.Mutex
	batches []string
}

func (r *recordingArchiver) StorePenguinBatch(ctx context.Context, batchID string, sampledAt time.Time, rows []penguins.Penguin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batchID)
	return nil
}

func TestArchiverReceivesBatches(t *testing.T) {
	cfg := &config.PenguinsData{Capacity: 10, SampleSize: 5, IntervalSecs: 10}
	archiver := &recordingArchiver{}
	c := testController(t, cfg, archiver)

	c.sampleOnce()
	c.sampleOnce()

	if len(archiver.batches) != 2 {
		t.Fatalf("expected 2 archived batches, got %d", len(archiver.batches))
	}
}

package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/polarfeed/internal/types"
	"github.com/chrissnell/polarfeed/pkg/config"
)

type fakeSource struct {
	names     []string
	snapshots map[string]types.Snapshot
}

func (f *fakeSource) FeedNames() []string {
	return f.names
}

func (f *fakeSource) Snapshot(feed string) (types.Snapshot, bool) {
	snap, ok := f.snapshots[feed]
	return snap, ok
}

func (f *fakeSource) WindowCapacity(feed string) (int, bool) {
	for _, name := range f.names {
		if name == feed {
			return 5, true
		}
	}
	return 0, false
}

func testSource() *fakeSource {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	readings := []types.Reading{
		{Timestamp: ts, FeedName: "outdoor", FeedType: "simulator", Temperature: -17.5},
		{Timestamp: ts.Add(10 * time.Second), FeedName: "outdoor", FeedType: "simulator", Temperature: -17.0},
		{Timestamp: ts.Add(20 * time.Second), FeedName: "outdoor", FeedType: "simulator", Temperature: -16.5},
	}

	return &fakeSource{
		names: []string{"outdoor", "indoor"},
		snapshots: map[string]types.Snapshot{
			"outdoor": {
				FeedName: "outdoor",
				Readings: readings,
				Table: types.Table{
					Columns: []string{"temp", "timestamp"},
					Rows: [][]string{
						{"-17.5", "2024-03-01 12:00:00"},
						{"-17.0", "2024-03-01 12:00:10"},
						{"-16.5", "2024-03-01 12:00:20"},
					},
				},
				Latest: readings[2],
				Trend: &types.TrendLine{
					Slope:     0.5,
					Intercept: -17.5,
					Predicted: []float64{-17.5, -17.0, -16.5},
				},
				Updated: ts.Add(20 * time.Second),
			},
		},
	}
}

func testController(t *testing.T, source *fakeSource) *Controller {
	t.Helper()

	rc := &config.RESTServerData{Port: 8080}
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, rc, source, nil, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

func doRequest(t *testing.T, ctrl *Controller, url string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetLatest(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/latest?feed=outdoor")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp LatestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Feed != "outdoor" {
		t.Errorf("expected feed outdoor, got %s", resp.Feed)
	}
	if resp.Reading.Temperature != -16.5 {
		t.Errorf("expected latest temp -16.5, got %v", resp.Reading.Temperature)
	}
}

func TestGetLatestDefaultsToFirstFeed(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp LatestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Feed != "outdoor" {
		t.Errorf("expected first configured feed outdoor, got %s", resp.Feed)
	}
}

func TestGetLatestUnknownFeed(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/latest?feed=nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown feed, got %d", rec.Code)
	}
}

func TestGetLatestNoReadingsYet(t *testing.T) {
	ctrl := testController(t, testSource())

	// indoor is configured but has received nothing
	rec := doRequest(t, ctrl, "/latest?feed=indoor")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first reading, got %d", rec.Code)
	}
}

func TestGetHistory(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/history?feed=outdoor")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(resp.Readings))
	}
	if len(resp.Table.Rows) != 3 {
		t.Fatalf("expected 3 table rows, got %d", len(resp.Table.Rows))
	}
	if resp.Table.Rows[0][0] != "-17.5" {
		t.Errorf("expected oldest reading first, got %s", resp.Table.Rows[0][0])
	}
	if resp.Latest.Temperature != -16.5 {
		t.Errorf("expected latest temp -16.5, got %v", resp.Latest.Temperature)
	}
	if resp.Trend == nil {
		t.Fatal("expected a trend line in the history snapshot")
	}
	if resp.Trend.Slope != 0.5 {
		t.Errorf("expected slope 0.5, got %v", resp.Trend.Slope)
	}
	if len(resp.Trend.Predicted) != len(resp.Readings) {
		t.Errorf("expected one predicted value per reading, got %d for %d readings",
			len(resp.Trend.Predicted), len(resp.Readings))
	}
}

func TestGetHistoryEmptyFeed(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/history?feed=indoor")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an empty feed, got %d", rec.Code)
	}

	var resp HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Readings) != 0 {
		t.Errorf("expected no readings, got %d", len(resp.Readings))
	}
}

func TestGetTrend(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/trend?feed=outdoor")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TrendResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Trend == nil {
		t.Fatal("expected a trend line")
	}
	if resp.Trend.Slope != 0.5 {
		t.Errorf("expected slope 0.5, got %v", resp.Trend.Slope)
	}
	if resp.Points != 3 {
		t.Errorf("expected 3 points, got %d", resp.Points)
	}
}

func TestGetTrendEmptyFeed(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/trend?feed=indoor")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TrendResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Trend != nil {
		t.Error("expected null trend for an empty feed")
	}
}

func TestGetFeeds(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/feeds")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp FeedsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(resp.Feeds))
	}
	if resp.Feeds[0].Name != "outdoor" || resp.Feeds[0].Readings != 3 {
		t.Errorf("unexpected first feed: %+v", resp.Feeds[0])
	}
	if resp.Feeds[0].Capacity != 5 {
		t.Errorf("expected capacity 5, got %d", resp.Feeds[0].Capacity)
	}
	if resp.Feeds[1].LatestTemp != nil {
		t.Error("expected no latest temp for a feed without readings")
	}
}

func TestPenguinsNotConfigured(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/penguins")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when penguin sampling is unconfigured, got %d", rec.Code)
	}
}

func TestMsgPackFormat(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/latest?feed=outdoor&format=msgpack")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %s", ct)
	}
}

func TestIndexPage(t *testing.T) {
	ctrl := testController(t, testSource())

	rec := doRequest(t, ctrl, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("expected text/html, got %s", ct)
	}
}

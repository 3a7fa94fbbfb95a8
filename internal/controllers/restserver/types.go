package restserver

import (
	"time"

	"github.com/chrissnell/polarfeed/internal/controllers/penguincache"
	"github.com/chrissnell/polarfeed/internal/types"
)

// FeedInfo describes one configured feed for the /feeds endpoint.
type FeedInfo struct {
	Name       string     `json:"name"`
	Capacity   int        `json:"capacity"`
	Readings   int        `json:"readings"`
	LatestTemp *float64   `json:"latest_temp,omitempty"`
	Updated    *time.Time `json:"updated,omitempty"`
}

// FeedsResponse is the payload for the /feeds endpoint.
type FeedsResponse struct {
	Feeds []FeedInfo `json:"feeds"`
}

// LatestResponse is the payload for the /latest endpoint.
type LatestResponse struct {
	Feed    string        `json:"feed"`
	Reading types.Reading `json:"reading"`
}

// HistoryResponse is the payload for the /history endpoint: the full
// post-tick snapshot of one feed's window. Trend is null when the window
// holds no usable data.
type HistoryResponse struct {
	Feed     string           `json:"feed"`
	Readings []types.Reading  `json:"readings"`
	Table    types.Table      `json:"table"`
	Latest   types.Reading    `json:"latest"`
	Trend    *types.TrendLine `json:"trend"`
	Updated  time.Time        `json:"updated"`
}

// TrendResponse is the payload for the /trend endpoint. Trend is null when
// the window holds no usable data.
type TrendResponse struct {
	Feed   string           `json:"feed"`
	Points int              `json:"points"`
	Trend  *types.TrendLine `json:"trend"`
}

// PenguinBatchesResponse is the payload for the /penguins endpoint.
type PenguinBatchesResponse struct {
	Batches []penguincache.SampleBatch `json:"batches"`
}

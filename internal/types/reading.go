// Package types holds the data structures shared between feeds, sinks, and
// controllers.
package types

import "time"

// TimestampLayout is the wall-clock format used in tabular projections and
// API responses.
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is a single sampled temperature observation from a feed. Readings
// are immutable once created; feeds construct them and everything downstream
// only copies them.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	FeedName    string    `json:"feed"`
	FeedType    string    `json:"feed_type"`
	Temperature float64   `json:"temp"`
}

// FormattedTimestamp renders the reading's timestamp in the layout used by
// tabular views and the REST API.
func (r Reading) FormattedTimestamp() string {
	return r.Timestamp.Format(TimestampLayout)
}

// Table is a column-ordered projection of a reading window, ready for a
// data-grid style display.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// TrendLine is an ordinary-least-squares fit over a reading window, with one
// predicted value per reading, aligned by sequence index.
type TrendLine struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Predicted []float64 `json:"predicted"`
}

// Snapshot is the post-tick state of a reading window. It carries everything
// a presentation consumer needs: the ordered window contents, a tabular
// projection, the just-inserted reading, and the recomputed trend line
// (nil when the window holds no usable data).
type Snapshot struct {
	FeedName string     `json:"feed"`
	Readings []Reading  `json:"readings"`
	Table    Table      `json:"table"`
	Latest   Reading    `json:"latest"`
	Trend    *TrendLine `json:"trend"`
	Updated  time.Time  `json:"last_updated"`
}

package restserver

import (
	htmltemplate "html/template"
	"net/http"

	"github.com/chrissnell/polarfeed/internal/log"
	"github.com/chrissnell/polarfeed/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// resolveFeed picks the feed for a request: the ?feed= query parameter when
// present, otherwise the first configured feed.
func (h *Handlers) resolveFeed(req *http.Request) (string, bool) {
	feed := req.URL.Query().Get("feed")
	if feed != "" {
		for _, name := range h.controller.source.FeedNames() {
			if name == feed {
				return feed, true
			}
		}
		return "", false
	}

	names := h.controller.source.FeedNames()
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// GetFeeds lists the configured feeds and their current fill state.
func (h *Handlers) GetFeeds(w http.ResponseWriter, req *http.Request) {
	resp := FeedsResponse{Feeds: make([]FeedInfo, 0)}

	for _, name := range h.controller.source.FeedNames() {
		info := FeedInfo{Name: name}
		if capacity, ok := h.controller.source.WindowCapacity(name); ok {
			info.Capacity = capacity
		}
		if snap, ok := h.controller.source.Snapshot(name); ok {
			temp := snap.Latest.Temperature
			updated := snap.Updated
			info.Readings = len(snap.Readings)
			info.LatestTemp = &temp
			info.Updated = &updated
		}
		resp.Feeds = append(resp.Feeds, info)
	}

	h.formatter.WriteResponse(w, req, resp)
}

// GetLatest returns the most recent reading for a feed.
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	feed, ok := h.resolveFeed(req)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, "unknown feed")
		return
	}

	snap, ok := h.controller.source.Snapshot(feed)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no readings received yet")
		return
	}

	h.formatter.WriteResponse(w, req, LatestResponse{
		Feed:    feed,
		Reading: snap.Latest,
	})
}

// GetHistory returns the retained reading window for a feed, oldest first,
// along with its tabular projection.
func (h *Handlers) GetHistory(w http.ResponseWriter, req *http.Request) {
	feed, ok := h.resolveFeed(req)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, "unknown feed")
		return
	}

	snap, ok := h.controller.source.Snapshot(feed)
	if !ok {
		h.formatter.WriteResponse(w, req, HistoryResponse{Feed: feed, Readings: nil})
		return
	}

	h.formatter.WriteResponse(w, req, HistoryResponse{
		Feed:     feed,
		Readings: snap.Readings,
		Table:    snap.Table,
		Latest:   snap.Latest,
		Trend:    snap.Trend,
		Updated:  snap.Updated,
	})
}

// GetTrend returns the least-squares trend line over the retained window.
// Trend is null when the window is empty or holds unusable values.
func (h *Handlers) GetTrend(w http.ResponseWriter, req *http.Request) {
	feed, ok := h.resolveFeed(req)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, "unknown feed")
		return
	}

	resp := TrendResponse{Feed: feed}
	if snap, ok := h.controller.source.Snapshot(feed); ok {
		resp.Points = len(snap.Readings)
		resp.Trend = snap.Trend
	}

	h.formatter.WriteResponse(w, req, resp)
}

// GetPenguinBatches returns the retained penguin sample batches.
func (h *Handlers) GetPenguinBatches(w http.ResponseWriter, req *http.Request) {
	if h.controller.penguins == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "penguin sampling not configured")
		return
	}

	h.formatter.WriteResponse(w, req, PenguinBatchesResponse{
		Batches: h.controller.penguins.Batches(),
	})
}

// GetPenguinDataset returns the full loaded penguin dataset.
func (h *Handlers) GetPenguinDataset(w http.ResponseWriter, req *http.Request) {
	if h.controller.penguins == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "penguin sampling not configured")
		return
	}

	h.formatter.WriteResponse(w, req, h.controller.penguins.Dataset())
}

var indexTemplate = htmltemplate.Must(htmltemplate.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.PageTitle}}</title></head>
<body>
<h1>{{.PageTitle}}</h1>
<ul>
{{range .Feeds}}<li><a href="/history?feed={{.}}">{{.}}</a></li>
{{end}}</ul>
</body>
</html>
`))

// ServeIndex renders a minimal landing page listing the configured feeds.
func (h *Handlers) ServeIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	err := indexTemplate.Execute(w, struct {
		PageTitle string
		Feeds     []string
	}{
		PageTitle: h.controller.pageTitle(),
		Feeds:     h.controller.source.FeedNames(),
	})
	if err != nil {
		log.Errorf("error rendering index page: %v", err)
	}
}

// Package feeds defines the interface implemented by reading sources.
package feeds

// Feed is an interface that provides standard methods for the various
// reading source backends
type Feed interface {
	StartFeed() error
	FeedName() string
}

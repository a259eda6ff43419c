// Package sources implements the upstream fetchers: DuckDuckGo images and
// links, and YouTube videos.
package sources

import "github.com/anatolykoptev/go_media/internal/engine"

// NewAggregator wires the three production sources over one client.
func NewAggregator(c *engine.Client) *engine.Aggregator {
	return engine.NewAggregator(NewImageSource(c), NewLinkSource(c), NewVideoSource(c))
}

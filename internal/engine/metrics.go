package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests atomic.Int64
	EmptySearches  atomic.Int64
	FetchRequests  atomic.Int64
	FetchErrors    atomic.Int64
	TokenRequests  atomic.Int64
	TokenMisses    atomic.Int64
	ImageRequests  atomic.Int64
	ImagePages     atomic.Int64
	LinkRequests   atomic.Int64
	VideoRequests  atomic.Int64
	SourceFailures atomic.Int64
	Panics         atomic.Int64
}

var metricKeys = []string{
	"search_requests", "empty_searches",
	"fetch_requests", "fetch_errors",
	"token_requests", "token_misses",
	"image_requests", "image_pages",
	"link_requests", "video_requests",
	"source_failures", "panics",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests": metrics.SearchRequests.Load(),
		"empty_searches":  metrics.EmptySearches.Load(),
		"fetch_requests":  metrics.FetchRequests.Load(),
		"fetch_errors":    metrics.FetchErrors.Load(),
		"token_requests":  metrics.TokenRequests.Load(),
		"token_misses":    metrics.TokenMisses.Load(),
		"image_requests":  metrics.ImageRequests.Load(),
		"image_pages":     metrics.ImagePages.Load(),
		"link_requests":   metrics.LinkRequests.Load(),
		"video_requests":  metrics.VideoRequests.Load(),
		"source_failures": metrics.SourceFailures.Load(),
		"panics":          metrics.Panics.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrTokenRequests() { metrics.TokenRequests.Add(1) }
func IncrTokenMisses()   { metrics.TokenMisses.Add(1) }
func IncrImageRequests() { metrics.ImageRequests.Add(1) }
func IncrImagePages()    { metrics.ImagePages.Add(1) }
func IncrLinkRequests()  { metrics.LinkRequests.Add(1) }
func IncrVideoRequests() { metrics.VideoRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyQuery is returned by Aggregate for a blank query.
var ErrEmptyQuery = errors.New("missing query")

// NoResultsNote accompanies an empty result list.
const NoResultsNote = "No results found. Try a different keyword."

// videoStride is the slot spacing of videos among image results.
const videoStride = 3

// InternalError reports a panic recovered from a fetcher.
type InternalError struct {
	Source string
	Value  any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s fetcher panic: %v", e.Source, e.Value)
}

// Fetcher turns one upstream source into records.
// Implementations return at most max records.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, query string, max int) ([]Record, error)
}

// Absorb runs f and maps any error to an empty list, logging it.
// One source failing never fails the aggregation.
func Absorb(ctx context.Context, f Fetcher, query string, max int) []Record {
	recs, err := f.Fetch(ctx, query, max)
	if err != nil {
		metrics.SourceFailures.Add(1)
		slog.Warn("source failed",
			slog.String("source", f.Name()),
			slog.String("query", query),
			slog.Any("error", err))
		return []Record{}
	}
	if len(recs) > max {
		recs = recs[:max]
	}
	return recs
}

// Interleave inserts video i at position (i+1)*stride of the growing list,
// clamped to its current length. Later insertions see earlier ones.
func Interleave(images, videos []Record, stride int) []Record {
	out := make([]Record, len(images), len(images)+len(videos))
	copy(out, images)
	for i, v := range videos {
		pos := min((i+1)*stride, len(out))
		out = slices.Insert(out, pos, v)
	}
	return out
}

// Merge orders images with interleaved videos, then links.
func Merge(images, links, videos []Record) []Record {
	return append(Interleave(images, videos, videoStride), links...)
}

// Dedup keeps the first record per identity key and drops keyless records.
func Dedup(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Aggregator fans a query out to the image, link and video fetchers and merges the results.
type Aggregator struct {
	images Fetcher
	links  Fetcher
	videos Fetcher
}

// NewAggregator returns an Aggregator over the three sources.
func NewAggregator(images, links, videos Fetcher) *Aggregator {
	return &Aggregator{images: images, links: links, videos: videos}
}

// Aggregate returns the merged, deduplicated and capped results for query.
// Returns ErrEmptyQuery for a blank query and *InternalError if a fetcher panicked.
func (a *Aggregator) Aggregate(ctx context.Context, query string) (out SearchOutput, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchOutput{}, ErrEmptyQuery
	}
	metrics.SearchRequests.Add(1)

	_ = TrackOperation(ctx, "aggregate:"+query, func(ctx context.Context) error {
		out, err = a.aggregate(ctx, query)
		return err
	})
	return out, err
}

func (a *Aggregator) aggregate(ctx context.Context, query string) (SearchOutput, error) {
	var images, links, videos []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(a.images.Name(), func() { images = Absorb(gctx, a.images, query, MaxImages) }))
	g.Go(guard(a.links.Name(), func() { links = Absorb(gctx, a.links, query, MaxLinks) }))
	g.Go(guard(a.videos.Name(), func() { videos = Absorb(gctx, a.videos, query, MaxVideos) }))
	if err := g.Wait(); err != nil {
		return SearchOutput{}, err
	}

	results := Dedup(Merge(images, links, videos))
	slog.Debug("aggregated",
		slog.String("query", query),
		slog.Int("images", len(images)),
		slog.Int("links", len(links)),
		slog.Int("videos", len(videos)),
		slog.Int("unique", len(results)))

	if len(results) == 0 {
		metrics.EmptySearches.Add(1)
		return SearchOutput{Results: []Record{}, Note: NoResultsNote}, nil
	}
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return SearchOutput{Results: results}, nil
}

// guard converts a panic in fn into an *InternalError.
func guard(source string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				metrics.Panics.Add(1)
				err = &InternalError{Source: source, Value: r}
			}
		}()
		fn()
		return nil
	}
}

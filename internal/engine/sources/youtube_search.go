package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
)

const (
	ytWatchBase    = "https://www.youtube.com/watch?v="
	ytEmbedBase    = "https://www.youtube.com/embed/"
	ytSearchFilter = "EgIQAQ%3D%3D" // videos-only filter param
)

var (
	// ytInitialData entries.
	videoIDDataRE = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
	// Watch links in markup, relative or absolute.
	videoIDHrefRE = regexp.MustCompile(`href="(?:https?://(?:www\.)?youtube\.com)?/watch\?v=([a-zA-Z0-9_-]{11})`)
)

// VideoSource scrapes video identifiers from the YouTube results page.
type VideoSource struct {
	client *engine.Client
}

// NewVideoSource returns a video fetcher using c.
func NewVideoSource(c *engine.Client) *VideoSource {
	return &VideoSource{client: c}
}

func (s *VideoSource) Name() string { return "videos" }

// Fetch returns up to max videos for query. Video titles are not extracted.
func (s *VideoSource) Fetch(ctx context.Context, query string, max int) ([]engine.Record, error) {
	engine.IncrVideoRequests()

	base := strings.TrimRight(s.client.Config().Endpoints.YouTube, "/")
	searchURL := base + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter

	data, status, err := s.client.Get(ctx, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("youtube search status %d", status)
	}

	ids := extractVideoIDs(string(data), max)
	out := make([]engine.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, engine.NewVideo(ytWatchBase+id, ytEmbedBase+id))
	}
	return out, nil
}

// extractVideoIDs returns distinct ids in first-appearance order. The href
// pattern is used only when the embedded data has no ids at all.
func extractVideoIDs(body string, max int) []string {
	ids := collectIDs(videoIDDataRE, body, max)
	if len(ids) == 0 {
		ids = collectIDs(videoIDHrefRE, body, max)
	}
	return ids
}

func collectIDs(re *regexp.Regexp, body string, max int) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		if len(ids) >= max {
			break
		}
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}

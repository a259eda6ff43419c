package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_media/internal/engine"
)

// linkTitleSelector matches result title anchors on the HTML lite page.
const linkTitleSelector = "a.result__a"

// LinkSource scrapes the DuckDuckGo HTML lite results page.
type LinkSource struct {
	client *engine.Client
}

// NewLinkSource returns a link fetcher using c.
func NewLinkSource(c *engine.Client) *LinkSource {
	return &LinkSource{client: c}
}

func (s *LinkSource) Name() string { return "links" }

// Fetch returns up to max links from the results page for query.
func (s *LinkSource) Fetch(ctx context.Context, query string, max int) ([]engine.Record, error) {
	engine.IncrLinkRequests()

	base := strings.TrimRight(s.client.Config().Endpoints.DDGHTML, "/")
	pageURL, err := url.Parse(base + "/html/?q=" + url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("ddg html url: %w", err)
	}

	data, status, err := s.client.Get(ctx, pageURL.String(), map[string]string{"referer": base + "/"})
	if err != nil {
		return nil, fmt.Errorf("ddg html: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("ddg html status %d", status)
	}

	return parseLinkHTML(data, pageURL, max)
}

// parseLinkHTML extracts title anchors. Anchors without an href are skipped;
// an empty anchor text falls back to the URL.
func parseLinkHTML(data []byte, pageURL *url.URL, max int) ([]engine.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	out := make([]engine.Record, 0, max)
	doc.Find(linkTitleSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= max {
			return false
		}
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		target := resolveLink(pageURL, href)
		if target == "" {
			return true
		}
		title := strings.Join(strings.Fields(s.Text()), " ")
		if title == "" {
			title = target
		}
		out = append(out, engine.NewLink(target, title))
		return true
	})

	return out, nil
}

// resolveLink makes href absolute and unwraps DDG redirect links of the form
// //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func resolveLink(pageURL *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := pageURL.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if uddg := u.Query().Get("uddg"); uddg != "" {
			return uddg
		}
	}
	return u.String()
}

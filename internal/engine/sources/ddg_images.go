package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// ddgImagePage is one page of the i.js image API.
// Results is nil when the field is missing.
type ddgImagePage struct {
	Results *[]ddgImage `json:"results"`
	Next    string      `json:"next"`
}

type ddgImage struct {
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source"`
}

// ImageSource is the paginated client for the DuckDuckGo image API.
type ImageSource struct {
	client *engine.Client
	tokens *TokenResolver
}

// NewImageSource returns an image fetcher using c.
func NewImageSource(c *engine.Client) *ImageSource {
	return &ImageSource{client: c, tokens: NewTokenResolver(c)}
}

func (s *ImageSource) Name() string { return "images" }

// Fetch pages through i.js results until max images are collected, there is no
// next page, or the page limit is hit. A non-2xx page ends pagination with what
// was collected so far; transport and decode errors discard everything.
func (s *ImageSource) Fetch(ctx context.Context, query string, max int) ([]engine.Record, error) {
	engine.IncrImageRequests()

	token, ok := s.tokens.Resolve(ctx, query)
	if !ok {
		return []engine.Record{}, nil
	}

	cfg := s.client.Config()
	base, err := url.Parse(strings.TrimRight(cfg.Endpoints.DDG, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("ddg base url: %w", err)
	}
	params := url.Values{
		"l":   {cfg.ImageLocale},
		"o":   {"json"},
		"q":   {query},
		"vqd": {token},
		"f":   {",,,,,"},
		"p":   {"1"},
	}
	pageURL := base.ResolveReference(&url.URL{Path: "i.js", RawQuery: params.Encode()})

	headers := map[string]string{
		"accept":  "application/json, text/javascript, */*; q=0.01",
		"referer": base.String(),
	}

	out := make([]engine.Record, 0, max)
	for page := 1; ; page++ {
		if page > cfg.ImageMaxPages {
			slog.Debug("ddg images page limit reached",
				slog.String("query", query), slog.Int("pages", cfg.ImageMaxPages))
			break
		}
		engine.IncrImagePages()

		data, status, err := s.client.Get(ctx, pageURL.String(), headers)
		if err != nil {
			return nil, fmt.Errorf("ddg images page %d: %w", page, err)
		}
		if status < 200 || status >= 300 {
			slog.Debug("ddg images bad status", slog.Int("page", page), slog.Int("status", status))
			break
		}

		p, err := parseImagePage(data)
		if err != nil {
			return nil, fmt.Errorf("ddg images page %d: %w", page, err)
		}
		if p.Results == nil {
			break
		}
		for _, r := range *p.Results {
			if len(out) >= max {
				break
			}
			out = append(out, toImageRecord(r))
		}

		if p.Next == "" || len(out) >= max {
			break
		}
		next, err := nextPageURL(base, p.Next, token)
		if err != nil {
			return nil, err
		}
		pageURL = next
	}

	return out, nil
}

// parseImagePage decodes one i.js response body.
func parseImagePage(data []byte) (ddgImagePage, error) {
	var p ddgImagePage
	if err := json.Unmarshal(data, &p); err != nil {
		return ddgImagePage{}, fmt.Errorf("ddg images json parse: %w (body: %s)", err, engine.Snippet(data))
	}
	return p, nil
}

// toImageRecord maps an API entry: url prefers the full image, source prefers the page url.
func toImageRecord(r ddgImage) engine.Record {
	u := r.Image
	if u == "" {
		u = r.URL
	}
	src := r.URL
	if src == "" {
		src = r.Source
	}
	return engine.NewImage(u, r.Thumbnail, engine.CleanHTML(r.Title), src)
}

// nextPageURL resolves the API's next pointer against the DDG host and keeps
// the vqd token on it, since later pages are rejected without one.
func nextPageURL(base *url.URL, next, token string) (*url.URL, error) {
	ref, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("ddg images next pointer %q: %w", next, err)
	}
	u := base.ResolveReference(ref)
	q := u.Query()
	if q.Get("vqd") == "" {
		q.Set("vqd", token)
		u.RawQuery = q.Encode()
	}
	return u, nil
}

package sources

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// The single-quoted form is what DuckDuckGo embeds today; the others are older variants.
var vqdPatterns = []*regexp.Regexp{
	regexp.MustCompile(`vqd='([^']+)'`),
	regexp.MustCompile(`vqd="([^"]+)"`),
	regexp.MustCompile(`vqd=([a-zA-Z0-9_-]+)`),
}

// TokenResolver obtains the per-query vqd token required by the DuckDuckGo image API.
// Tokens are fetched fresh on every call and never cached.
type TokenResolver struct {
	client *engine.Client
}

// NewTokenResolver returns a resolver using c.
func NewTokenResolver(c *engine.Client) *TokenResolver {
	return &TokenResolver{client: c}
}

// Resolve fetches the landing page for query and returns the embedded vqd token.
// Any failure yields ("", false); nothing is returned as an error.
func (t *TokenResolver) Resolve(ctx context.Context, query string) (string, bool) {
	engine.IncrTokenRequests()

	base := strings.TrimRight(t.client.Config().Endpoints.DDG, "/")
	u := base + "/?q=" + url.QueryEscape(query) + "&iax=images&ia=images"

	data, status, err := t.client.Get(ctx, u, map[string]string{"referer": base + "/"})
	if err != nil {
		engine.IncrTokenMisses()
		slog.Debug("ddg vqd request failed", slog.Any("error", err))
		return "", false
	}
	if status != 200 {
		engine.IncrTokenMisses()
		slog.Debug("ddg vqd bad status", slog.Int("status", status))
		return "", false
	}

	token := extractVQD(string(data))
	if token == "" {
		engine.IncrTokenMisses()
		slog.Debug("ddg vqd token not found", slog.Int("bytes", len(data)))
		return "", false
	}
	return token, true
}

// extractVQD extracts the vqd token from a DuckDuckGo page.
func extractVQD(body string) string {
	for _, pat := range vqdPatterns {
		if m := pat.FindStringSubmatch(body); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

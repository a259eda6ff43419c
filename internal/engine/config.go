package engine

import (
	"net/http"
	"time"
)

// Per-source caps and the final result cap.
const (
	MaxImages  = 40
	MaxLinks   = 20
	MaxVideos  = 12
	MaxResults = 60
)

// Endpoints holds upstream base URLs. Tests point these at httptest servers.
type Endpoints struct {
	DDG     string // token landing page and i.js image API
	DDGHTML string // HTML lite results page
	YouTube string // video results page
}

// DefaultEndpoints returns the production upstreams.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		DDG:     "https://duckduckgo.com",
		DDGHTML: "https://html.duckduckgo.com",
		YouTube: "https://www.youtube.com",
	}
}

// Config holds all engine configuration, injected from main.
type Config struct {
	UserAgent     string
	FetchTimeout  time.Duration
	ImageMaxPages int
	ImageLocale   string
	Endpoints     Endpoints
	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain net/http transport
}

// withDefaults fills zero fields so a bare Config{} is usable.
func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = UserAgentChrome
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.ImageMaxPages <= 0 {
		c.ImageMaxPages = 10
	}
	if c.ImageLocale == "" {
		c.ImageLocale = "us-en"
	}
	def := DefaultEndpoints()
	if c.Endpoints.DDG == "" {
		c.Endpoints.DDG = def.DDG
	}
	if c.Endpoints.DDGHTML == "" {
		c.Endpoints.DDGHTML = def.DDGHTML
	}
	if c.Endpoints.YouTube == "" {
		c.Endpoints.YouTube = def.YouTube
	}
	if c.HTTPClient == nil {
		c.HTTPClient = newFetchClient()
	}
	return c
}

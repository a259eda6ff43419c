// go_media — image, link and video search aggregation proxy.
//
// Serves GET /api/search?q= (images from DuckDuckGo, links from the DuckDuckGo
// HTML page, videos from YouTube, merged into one list) plus the bundled SPA.
// Optionally exposes the same search as an MCP tool on MCP_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_media/internal/api"
	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/sources"
	"github.com/anatolykoptev/go_media/internal/mediaserver"
)

var (
	version = "dev"
	port    = env.Str("PORT", "3000")
	mcpPort = env.Str("MCP_PORT", "")
)

func main() {
	initLogger(env.Str("LOG_LEVEL", "info"))

	agg := sources.NewAggregator(engine.NewClient(loadEngineConfig()))

	if mcpPort != "" {
		go runMCP(agg)
	}

	if env.Str("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(agg), api.Options{
		StaticDir: env.Str("STATIC_DIR", "public"),
		IndexFile: env.Str("INDEX_FILE", "index.html"),
	})
	srv := api.NewServer(":"+port, router)

	go func() {
		slog.Info("starting go_media", slog.String("port", port), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}

func loadEngineConfig() engine.Config {
	c := engine.Config{
		UserAgent:     env.Str("USER_AGENT", engine.UserAgentChrome),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", 10*time.Second),
		ImageMaxPages: env.Int("IMAGE_MAX_PAGES", 10),
		ImageLocale:   env.Str("IMAGE_LOCALE", "us-en"),
		Endpoints: engine.Endpoints{
			DDG:     env.Str("DDG_URL", ""),
			DDGHTML: env.Str("DDG_HTML_URL", ""),
			YouTube: env.Str("YOUTUBE_URL", ""),
		},
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if env.Str("BROWSER_TLS", "") != "" {
		timeoutSec := int(c.FetchTimeout / time.Second)
		bc, err := engine.NewBrowserClient(max(timeoutSec, 1), env.Str("WEBSHARE_API_KEY", ""))
		if err != nil {
			slog.Error("stealth client init failed, using net/http", slog.Any("error", err))
		} else {
			c.BrowserClient = bc
			slog.Info("stealth browser client initialized")
		}
	}
	return c
}

func runMCP(agg *engine.Aggregator) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_media",
		Version: version,
	}, nil)
	mediaserver.RegisterTools(server, agg)
	slog.Info("mcp tools registered", slog.String("port", mcpPort))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_media",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("mcp server failed", slog.Any("error", err))
	}
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

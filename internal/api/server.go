// Package api exposes the aggregation pipeline over HTTP and serves the
// bundled single-page app.
package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 90 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Options configures the static surface.
type Options struct {
	StaticDir string // directory of bundled assets
	IndexFile string // entry file returned for unmatched routes
}

// NewRouter builds the gin engine with API routes, middleware and the SPA fallback.
func NewRouter(handler *Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware(), LoggerMiddleware(), CORSMiddleware())

	SetupRoutes(router, handler)

	if opts.StaticDir != "" {
		router.NoRoute(spaFallback(opts))
	}
	return router
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", handler.Metrics)

	api := router.Group("/api")
	{
		api.GET("/search", handler.Search)
	}
}

// NewServer wraps router in an http.Server listening on addr.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
}

// spaFallback serves existing files from the static directory and the index
// file for everything else.
func spaFallback(opts Options) gin.HandlerFunc {
	index := opts.IndexFile
	if index == "" {
		index = "index.html"
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		p := filepath.Join(opts.StaticDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			c.File(p)
			return
		}
		c.File(filepath.Join(opts.StaticDir, index))
	}
}

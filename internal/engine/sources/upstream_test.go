package sources

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// fakeUpstream serves all three upstreams from one httptest server.
type fakeUpstream struct {
	landing http.HandlerFunc // GET /
	images  http.HandlerFunc // GET /i.js
	html    http.HandlerFunc // GET /html/
	youtube http.HandlerFunc // GET /results

	landingHits atomic.Int32
	imageHits   atomic.Int32
}

func (f *fakeUpstream) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		f.landingHits.Add(1)
		serve(w, r, f.landing)
	})
	mux.HandleFunc("GET /i.js", func(w http.ResponseWriter, r *http.Request) {
		f.imageHits.Add(1)
		serve(w, r, f.images)
	})
	mux.HandleFunc("GET /html/", func(w http.ResponseWriter, r *http.Request) { serve(w, r, f.html) })
	mux.HandleFunc("GET /results", func(w http.ResponseWriter, r *http.Request) { serve(w, r, f.youtube) })

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func body(status int, s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(s))
	}
}

func tokenPage(token string) http.HandlerFunc {
	return body(http.StatusOK, `<html><script>var x=1;vqd='`+token+`';</script></html>`)
}

func testClient(srv *httptest.Server, maxPages int) *engine.Client {
	return engine.NewClient(engine.Config{
		ImageMaxPages: maxPages,
		Endpoints: engine.Endpoints{
			DDG:     srv.URL,
			DDGHTML: srv.URL,
			YouTube: srv.URL,
		},
	})
}

package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_media/internal/engine"
)

func imageJSON(from, n int, next string) string {
	items := make([]string, n)
	for i := range items {
		k := from + i
		items[i] = fmt.Sprintf(`{"image":"https://img.example/%d.jpg","thumbnail":"https://tse.example/%d","title":"Pic &amp; %d","url":"https://page.example/%d","source":"Bing"}`, k, k, k, k)
	}
	out := `{"results":[` + strings.Join(items, ",") + `]`
	if next != "" {
		out += `,"next":"` + next + `"`
	}
	return out + "}"
}

func TestImageSource_Paginates(t *testing.T) {
	var vqds, pages []string
	up := &fakeUpstream{landing: tokenPage("4-tok")}
	up.images = func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		vqds = append(vqds, q.Get("vqd"))
		if q.Get("s") == "" {
			pages = append(pages, "first")
			assert.Equal(t, "cats", q.Get("q"))
			assert.Equal(t, "json", q.Get("o"))
			assert.Equal(t, "us-en", q.Get("l"))
			body(http.StatusOK, imageJSON(1, 2, "i.js?q=cats&o=json&p=1&s=2"))(w, r)
			return
		}
		pages = append(pages, "second")
		body(http.StatusOK, imageJSON(3, 2, ""))(w, r)
	}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "cats", 40)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"first", "second"}, pages)
	assert.Equal(t, []string{"4-tok", "4-tok"}, vqds, "next page must carry the token")

	r := recs[0]
	assert.Equal(t, engine.KindImage, r.Type)
	assert.Equal(t, "https://img.example/1.jpg", r.URL)
	assert.Equal(t, "https://tse.example/1", r.Thumbnail)
	assert.Equal(t, "https://page.example/1", r.Source)
	require.NotNil(t, r.Title)
	assert.Equal(t, "Pic & 1", *r.Title)
}

func TestImageSource_StopsAtMax(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok"), images: body(http.StatusOK, imageJSON(1, 30, "i.js?s=30"))}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.Len(t, recs, 40)
	assert.EqualValues(t, 2, up.imageHits.Load())
}

func TestImageSource_PageLimit(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok"), images: body(http.StatusOK, imageJSON(1, 1, "i.js?s=1"))}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 3)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.EqualValues(t, 3, up.imageHits.Load(), "endless next chain must be bounded")
	assert.Len(t, recs, 3)
}

func TestImageSource_FirstPage503(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok"), images: body(http.StatusServiceUnavailable, "busy")}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestImageSource_LaterPageErrorKeepsCollected(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok")}
	up.images = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") == "" {
			body(http.StatusOK, imageJSON(1, 2, "i.js?s=2"))(w, r)
			return
		}
		body(http.StatusBadGateway, "")(w, r)
	}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestImageSource_NoToken(t *testing.T) {
	up := &fakeUpstream{landing: body(http.StatusOK, "<html>nothing</html>"), images: body(http.StatusOK, imageJSON(1, 5, ""))}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, up.imageHits.Load())
}

func TestImageSource_MalformedJSON(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok"), images: body(http.StatusOK, "not json")}
	srv := up.start(t)

	_, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	assert.Error(t, err)
}

func TestImageSource_MissingResults(t *testing.T) {
	up := &fakeUpstream{landing: tokenPage("4-tok"), images: body(http.StatusOK, `{"next":"i.js?s=10"}`)}
	srv := up.start(t)

	recs, err := NewImageSource(testClient(srv, 0)).Fetch(context.Background(), "q", 40)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.EqualValues(t, 1, up.imageHits.Load())
}

func TestToImageRecord_Fallbacks(t *testing.T) {
	r := toImageRecord(ddgImage{URL: "https://page.example", Source: "Bing", Title: "t"})
	assert.Equal(t, "https://page.example", r.URL)
	assert.Equal(t, "https://page.example", r.Source)

	r = toImageRecord(ddgImage{Image: "https://img.example/a.png", Source: "Bing"})
	assert.Equal(t, "https://img.example/a.png", r.URL)
	assert.Equal(t, "Bing", r.Source)
}

package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_media/internal/engine"
)

func TestExtractVideoIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want []string
	}{
		{
			name: "duplicates collapse",
			body: `{"videoId":"abc12345678"},{"videoId":"abc12345678"}`,
			max:  12,
			want: []string{"abc12345678"},
		},
		{
			name: "first appearance order",
			body: `"videoId":"BBBBBBBBBBB" "videoId":"AAAAAAAAAAA" "videoId":"BBBBBBBBBBB" "videoId":"C-_CCCCCCCC"`,
			max:  12,
			want: []string{"BBBBBBBBBBB", "AAAAAAAAAAA", "C-_CCCCCCCC"},
		},
		{
			name: "capped at max distinct",
			body: `"videoId":"AAAAAAAAAAA" "videoId":"AAAAAAAAAAA" "videoId":"BBBBBBBBBBB" "videoId":"CCCCCCCCCCC"`,
			max:  2,
			want: []string{"AAAAAAAAAAA", "BBBBBBBBBBB"},
		},
		{
			name: "href fallback",
			body: `<a href="/watch?v=hrefID00001&amp;t=1">x</a><a href="https://www.youtube.com/watch?v=hrefID00002">y</a>`,
			max:  12,
			want: []string{"hrefID00001", "hrefID00002"},
		},
		{
			name: "href ignored when data present",
			body: `"videoId":"dataID00001" <a href="/watch?v=hrefID00001">x</a>`,
			max:  12,
			want: []string{"dataID00001"},
		},
		{
			name: "nothing",
			body: `<html></html>`,
			max:  12,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVideoIDs(tt.body, tt.max))
		})
	}
}

func TestVideoSource_Fetch(t *testing.T) {
	var gotQuery string
	up := &fakeUpstream{youtube: func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		body(http.StatusOK, `var ytInitialData = {"a":{"videoId":"abc12345678"},"b":{"videoId":"abc12345678"}};`)(w, r)
	}}
	srv := up.start(t)

	recs, err := NewVideoSource(testClient(srv, 0)).Fetch(context.Background(), "lofi", 12)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "lofi", gotQuery)

	v := recs[0]
	assert.Equal(t, engine.KindVideo, v.Type)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", v.URL)
	assert.Equal(t, "https://www.youtube.com/embed/abc12345678", v.Embed)
	assert.Nil(t, v.Title)
}

func TestVideoSource_BadStatus(t *testing.T) {
	up := &fakeUpstream{youtube: body(http.StatusTooManyRequests, "")}
	_, err := NewVideoSource(testClient(up.start(t), 0)).Fetch(context.Background(), "q", 12)
	assert.Error(t, err)
}

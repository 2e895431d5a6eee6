package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestHTTPAttachmentFetcher_FetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.jpg":
			w.Header().Set("Content-Type", "image/jpeg; charset=binary")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/sniff":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(pngHeader)
		case "/big":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(strings.Repeat("x", 32)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPAttachmentFetcher(server.Client())

	t.Run("Content-Typeヘッダーを使う", func(t *testing.T) {
		data, mimeType, err := fetcher.FetchImage(context.Background(), server.URL+"/typed.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		assert.Equal(t, "image/jpeg", mimeType)
	})

	t.Run("octet-streamは内容から判定する", func(t *testing.T) {
		_, mimeType, err := fetcher.FetchImage(context.Background(), server.URL+"/sniff")
		require.NoError(t, err)
		assert.Equal(t, "image/png", mimeType)
	})

	t.Run("404はエラー", func(t *testing.T) {
		_, _, err := fetcher.FetchImage(context.Background(), server.URL+"/missing")
		assert.ErrorContains(t, err, "HTTP 404")
	})

	t.Run("サイズ上限", func(t *testing.T) {
		small := NewHTTPAttachmentFetcher(server.Client())
		small.maxBytes = 16
		_, _, err := small.FetchImage(context.Background(), server.URL+"/big")
		assert.ErrorContains(t, err, "大きすぎます")
	})
}

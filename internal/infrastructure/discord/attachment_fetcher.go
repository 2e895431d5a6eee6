package discord

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxAttachmentBytes は、ダウンロードを許可する添付ファイルの最大サイズです
const DefaultMaxAttachmentBytes = 20 << 20

// HTTPAttachmentFetcher は、Discordの添付ファイルURLから画像をダウンロードします
type HTTPAttachmentFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPAttachmentFetcher は新しいHTTPAttachmentFetcherインスタンスを作成します。
// client が nil の場合はタイムアウト付きのクライアントを使います
func NewHTTPAttachmentFetcher(client *http.Client) *HTTPAttachmentFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPAttachmentFetcher{client: client, maxBytes: DefaultMaxAttachmentBytes}
}

// FetchImage は、URLの内容とMIMEタイプを返します
func (f *HTTPAttachmentFetcher) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("添付ファイルのリクエスト作成に失敗: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("添付ファイルのダウンロードに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("添付ファイルのダウンロードに失敗: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("添付ファイルの読み込みに失敗: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("添付ファイルが大きすぎます (上限 %dMB)", f.maxBytes>>20)
	}

	return data, detectMimeType(resp.Header.Get("Content-Type"), data), nil
}

// detectMimeType は、Content-Typeヘッダーを優先し、なければ内容から判定します
func detectMimeType(header string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}

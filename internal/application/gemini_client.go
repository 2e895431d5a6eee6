package application

import (
	"context"

	"beautystudio/internal/domain"
)

// ImageGenerator は、画像生成APIとの通信を行うクライアントのインターフェースです
type ImageGenerator interface {
	// GenerateImage は、リクエストを1回だけ送信し、生成された画像をData URIで返します
	GenerateImage(ctx context.Context, apiKey string, request domain.ImageRequest) (string, error)
}

// ConnectionValidator は、APIキーで接続できるかを確認するインターフェースです
type ConnectionValidator interface {
	ValidateConnection(ctx context.Context, apiKey string) bool
}

// ImageFetcher は、添付ファイルのURLから画像をダウンロードするインターフェースです
type ImageFetcher interface {
	// FetchImage は、画像のバイト列とMIMEタイプを返します
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

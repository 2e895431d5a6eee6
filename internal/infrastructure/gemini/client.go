package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/config"
	"beautystudio/internal/infrastructure/logging"

	"google.golang.org/genai"
)

// contentGenerator は、genai.Models の GenerateContent を抽象化したインターフェースです
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// generatorFactory は、APIキーごとにcontentGeneratorを作成します
type generatorFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

// ImageClient は、Gemini APIで画像を生成するトランスポートです。
// APIキーは実行中に変更されるため、リクエストごとにSDKクライアントを作成します
type ImageClient struct {
	config       config.GeminiConfig
	newGenerator generatorFactory
}

// NewImageClient は新しいImageClientインスタンスを作成します
func NewImageClient(geminiConfig config.GeminiConfig) *ImageClient {
	if geminiConfig.ImageModelName == "" {
		geminiConfig.ImageModelName = config.DefaultImageModelName
	}
	if geminiConfig.PingModelName == "" {
		geminiConfig.PingModelName = config.DefaultPingModelName
	}
	return &ImageClient{
		config:       geminiConfig,
		newGenerator: newSDKGenerator,
	}
}

func newSDKGenerator(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの作成に失敗: %w", err)
	}
	return client.Models, nil
}

// GenerateImage は、画像パーツとプロンプトを1回だけ送信し、生成された画像をData URIで返します
func (c *ImageClient) GenerateImage(ctx context.Context, apiKey string, request domain.ImageRequest) (string, error) {
	contents, err := buildContents(request)
	if err != nil {
		return "", err
	}

	generator, err := c.newGenerator(ctx, apiKey)
	if err != nil {
		return "", err
	}

	logging.Infof("Gemini APIに画像生成をリクエスト中: model=%s, 画像=%d枚, プロンプト=%d文字, %s/%s",
		c.config.ImageModelName, request.ImageCount(), len(request.Prompt), request.AspectRatio, request.Resolution)

	resp, err := generator.GenerateContent(ctx, c.config.ImageModelName, contents, buildImageConfig(request))
	if err != nil {
		return "", translateAPIError(err)
	}

	logResponse(resp)
	return ClassifyResponse(resp)
}

// ValidateConnection は、小さなテキストリクエストでAPIキーが使えるかを確認します。
// 結果は表示用で、以降のリクエストの可否には影響しません
func (c *ImageClient) ValidateConnection(ctx context.Context, apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}

	generator, err := c.newGenerator(ctx, apiKey)
	if err != nil {
		logging.Warnf("接続確認用クライアントの作成に失敗: %v", err)
		return false
	}

	if _, err := generator.GenerateContent(ctx, c.config.PingModelName, genai.Text("ping"), nil); err != nil {
		logging.Warnf("接続確認に失敗: %v", err)
		return false
	}
	return true
}

// buildContents は、画像パーツを順番に並べ、最後にテキストパーツを置いた1件のユーザーコンテンツを作成します
func buildContents(request domain.ImageRequest) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(request.Images)+1)
	for _, image := range request.Images {
		data, err := image.Bytes()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: image.MimeType, Data: data},
		})
	}
	parts = append(parts, &genai.Part{Text: request.Prompt})

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// buildImageConfig は、アスペクト比・解像度と安全フィルターを含む生成設定を作成します
func buildImageConfig(request domain.ImageRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: request.AspectRatio.String(),
			ImageSize:   request.Resolution.String(),
		},
		SafetySettings: createSafetySettings(),
	}
}

// translateAPIError は、APIキーの無効やプロジェクト不明のエラーを ErrInvalidCredential に変換します
func translateAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("画像生成がタイムアウトしました: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("画像生成がキャンセルされました: %w", err)
	}

	if isCredentialError(err) {
		logging.Warnf("APIキーが無効です: %v", err)
		return fmt.Errorf("%w (%v)", domain.ErrInvalidCredential, err)
	}
	return fmt.Errorf("Gemini APIからの画像生成応答取得に失敗: %w", err)
}

// credentialErrorMarkers は、APIキーやプロジェクトの問題を示すエラーメッセージの断片です
var credentialErrorMarkers = []string{
	"Requested entity was not found",
	"API_KEY_INVALID",
	"API key not valid",
	"PERMISSION_DENIED",
}

func isCredentialError(err error) bool {
	message := err.Error()
	for _, marker := range credentialErrorMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

// logResponse は、応答の概要と安全評価をログに出力します
func logResponse(resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	logging.Debugf("Gemini APIレスポンス: Candidates数=%d", len(resp.Candidates))
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return
	}

	candidate := resp.Candidates[0]
	parts := 0
	if candidate.Content != nil {
		parts = len(candidate.Content.Parts)
	}
	logging.Infof("Gemini APIレスポンス: FinishReason=%s, Parts数=%d", candidate.FinishReason, parts)
	if len(candidate.SafetyRatings) > 0 {
		logging.Debugf("安全評価: %s", formatSafetyRatings(candidate.SafetyRatings))
	}
}

package domain

import (
	"context"
)

// APIKeySource はAPIキーの取得元です
type APIKeySource int

const (
	APIKeySourceNone APIKeySource = iota
	APIKeySourceStored
	APIKeySourceEnvironment
)

// DisplayName はAPIキーの取得元の表示名を返します
func (s APIKeySource) DisplayName() string {
	switch s {
	case APIKeySourceStored:
		return "ローカル保存"
	case APIKeySourceEnvironment:
		return "環境変数"
	default:
		return "未設定"
	}
}

// APIKeyStore は、Gemini APIキーを保持するインターフェースです。
// Get は ローカル保存値 → 環境変数のデフォルト → なし の順にフォールバックします
type APIKeyStore interface {
	// Get は、APIキーとその取得元を返します。キーがない場合は APIKeySourceNone を返します
	Get(ctx context.Context) (string, APIKeySource, error)

	// Set は、APIキーをローカルに保存します。空文字の場合は Clear と同じです
	Set(ctx context.Context, apiKey string) error

	// Clear は、ローカルに保存されたAPIキーを削除します
	Clear(ctx context.Context) error
}

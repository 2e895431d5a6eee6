package config

import (
	"os"
	"path/filepath"
	"time"
)

// GeminiConfig は、Gemini API関連の設定を定義します
type GeminiConfig struct {
	APIKey         string // 環境変数のデフォルトAPIキー（ローカル保存値が優先されます）
	ImageModelName string // 画像生成用モデル名
	PingModelName  string // 接続確認用モデル名
}

// StudioConfig は、スタジオセッション関連の設定を定義します
type StudioConfig struct {
	KeyStorePath   string        // APIキーの保存先
	MaxReferences  int           // モデル/衣装それぞれの参照画像の上限
	RequestTimeout time.Duration // 対話レイヤーで1リクエストに許容する時間
}

// DiscordConfig は、Discord関連の設定を定義します
type DiscordConfig struct {
	BotToken         string
	RegisterCommands bool // 起動時にスラッシュコマンドを登録するか
}

// LogConfig は、ログ出力の設定を定義します
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

const (
	DefaultImageModelName = "gemini-3-pro-image-preview"
	DefaultPingModelName  = "gemini-2.5-flash"
	DefaultMaxReferences  = 10
	DefaultRequestTimeout = 3 * time.Minute
)

// DefaultGeminiConfig は、デフォルトのGemini設定を返します
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		ImageModelName: DefaultImageModelName,
		PingModelName:  DefaultPingModelName,
	}
}

// DefaultStudioConfig は、デフォルトのスタジオ設定を返します
func DefaultStudioConfig() StudioConfig {
	return StudioConfig{
		KeyStorePath:   DefaultKeyStorePath(),
		MaxReferences:  DefaultMaxReferences,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// DefaultLogConfig は、デフォルトのログ設定を返します
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// DefaultKeyStorePath は、APIキーの保存先のデフォルトを返します。
// XDG_CONFIG_HOME が未設定ならカレントディレクトリ配下を使います
func DefaultKeyStorePath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "beautystudio", "api_key")
	}
	return filepath.Join(".beautystudio", "api_key")
}

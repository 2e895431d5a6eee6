package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"beautystudio/internal/infrastructure/config"

	"github.com/joho/godotenv"
)

// Config は、アプリケーション全体の設定を定義します
type Config struct {
	Discord config.DiscordConfig
	Gemini  config.GeminiConfig
	Studio  config.StudioConfig
	Log     config.LogConfig
}

// LoadConfig は、環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込み（ファイルが存在しない場合は無視）
	if err := godotenv.Load(); err != nil {
		// .envファイルが存在しない場合は警告のみ出力（エラーにはしない）
		fmt.Printf("警告: .envファイルの読み込みに失敗しました: %v\n", err)
	}

	cfg := loadFromEnv()

	// 必須設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv は、現在の環境変数から設定を組み立てます
func loadFromEnv() *Config {
	gemini := config.DefaultGeminiConfig()
	studio := config.DefaultStudioConfig()
	logCfg := config.DefaultLogConfig()

	return &Config{
		Discord: config.DiscordConfig{
			BotToken:         getEnvOrDefault("DISCORD_BOT_TOKEN", ""),
			RegisterCommands: getEnvAsBoolOrDefault("DISCORD_REGISTER_COMMANDS", true),
		},
		Gemini: config.GeminiConfig{
			APIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
			ImageModelName: getEnvOrDefault("GEMINI_IMAGE_MODEL_NAME", gemini.ImageModelName),
			PingModelName:  getEnvOrDefault("GEMINI_PING_MODEL_NAME", gemini.PingModelName),
		},
		Studio: config.StudioConfig{
			KeyStorePath:   getEnvOrDefault("API_KEY_STORE_PATH", studio.KeyStorePath),
			MaxReferences:  getEnvAsIntOrDefault("MAX_REFERENCE_IMAGES", studio.MaxReferences),
			RequestTimeout: getEnvAsDurationOrDefault("REQUEST_TIMEOUT", studio.RequestTimeout),
		},
		Log: config.LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", logCfg.Level)),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", logCfg.Format)),
		},
	}
}

// Validate は、設定の妥当性を検証します
func (c *Config) Validate() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN が設定されていません")
	}

	// GEMINI_API_KEY は任意（/set-api で保存したキーが優先されます）

	if c.Gemini.ImageModelName == "" {
		return fmt.Errorf("GEMINI_IMAGE_MODEL_NAME が設定されていません")
	}

	if c.Studio.KeyStorePath == "" {
		return fmt.Errorf("API_KEY_STORE_PATH が設定されていません")
	}

	if c.Studio.MaxReferences <= 0 {
		return fmt.Errorf("MAX_REFERENCE_IMAGES は正の整数である必要があります")
	}

	if c.Studio.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT は正の値である必要があります")
	}

	return nil
}

// getEnvOrDefault は、環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は、環境変数を整数として取得し、存在しない場合はデフォルト値を返します
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault は、環境変数を時間として取得し、存在しない場合はデフォルト値を返します
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault は、環境変数を真偽値として取得し、存在しない場合はデフォルト値を返します
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

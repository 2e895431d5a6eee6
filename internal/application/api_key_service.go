package application

import (
	"context"
	"fmt"
	"strings"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/logging"
)

// minAPIKeyLength は、明らかに不正なAPIキーを弾くための最小文字数です
const minAPIKeyLength = 10

// APIKeyStatus は、現在のAPIキーの状態です
type APIKeyStatus struct {
	Source domain.APIKeySource
	Masked string
}

// APIKeyApplicationService は、APIキーの管理を行うアプリケーションサービスです
type APIKeyApplicationService struct {
	store     domain.APIKeyStore
	validator ConnectionValidator
}

// NewAPIKeyApplicationService は新しいAPIKeyApplicationServiceインスタンスを作成します
func NewAPIKeyApplicationService(store domain.APIKeyStore, validator ConnectionValidator) *APIKeyApplicationService {
	return &APIKeyApplicationService{
		store:     store,
		validator: validator,
	}
}

// SaveAPIKey は、APIキーを保存します。空白のみの場合は保存済みのキーを削除します
func (s *APIKeyApplicationService) SaveAPIKey(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return s.DeleteAPIKey(ctx)
	}
	if len(apiKey) < minAPIKeyLength {
		return domain.NewValidationError("apiKey", "APIキーが短すぎます")
	}

	if err := s.store.Set(ctx, apiKey); err != nil {
		return fmt.Errorf("APIキーの保存に失敗: %w", err)
	}
	logging.Infof("APIキーを保存しました: %s", MaskAPIKey(apiKey))
	return nil
}

// DeleteAPIKey は、保存済みのAPIキーを削除します。以降は環境変数のデフォルトが使われます
func (s *APIKeyApplicationService) DeleteAPIKey(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("APIキーの削除に失敗: %w", err)
	}
	logging.Infof("保存済みのAPIキーを削除しました")
	return nil
}

// GetAPIKey は、現在有効なAPIキーとその取得元を返します
func (s *APIKeyApplicationService) GetAPIKey(ctx context.Context) (string, domain.APIKeySource, error) {
	return s.store.Get(ctx)
}

// Status は、現在のAPIキーの取得元とマスクした値を返します
func (s *APIKeyApplicationService) Status(ctx context.Context) (APIKeyStatus, error) {
	key, source, err := s.store.Get(ctx)
	if err != nil {
		return APIKeyStatus{}, err
	}
	return APIKeyStatus{Source: source, Masked: MaskAPIKey(key)}, nil
}

// TestConnection は、指定されたAPIキーで接続できるかを確認します。
// 結果は参考情報で、保存や以降の生成リクエストには影響しません
func (s *APIKeyApplicationService) TestConnection(ctx context.Context, apiKey string) (bool, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return false, domain.NewValidationError("apiKey", "テストするAPIキーを入力してください")
	}
	return s.validator.ValidateConnection(ctx, apiKey), nil
}

// TestCurrentConnection は、現在有効なAPIキーで接続できるかを確認します
func (s *APIKeyApplicationService) TestCurrentConnection(ctx context.Context) (bool, error) {
	key, source, err := s.store.Get(ctx)
	if err != nil {
		return false, err
	}
	if source == domain.APIKeySourceNone {
		return false, domain.ErrMissingCredential
	}
	return s.validator.ValidateConnection(ctx, key), nil
}

// MaskAPIKey は、APIキーの先頭と末尾4文字以外を隠します
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", len(apiKey)-8) + apiKey[len(apiKey)-4:]
}

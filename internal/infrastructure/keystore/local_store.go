package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"beautystudio/internal/domain"
)

// obfuscationPad は保存値をXORする固定パッドです。
// これは平文で読めないようにするだけの可逆変換で、暗号化ではありません
var obfuscationPad = []byte("beautystudio-local-key")

// LocalAPIKeyStore は、ローカルファイルにAPIキーを保存する domain.APIKeyStore の実装です。
// 保存値は難読化されているだけで、ファイルを読める人はキーを復元できます
type LocalAPIKeyStore struct {
	path       string
	envDefault string

	loadOnce sync.Once
	mutex    sync.RWMutex
	// loadErr は Set か Clear が成功するまで保持される
	loadErr error
	stored   string
}

// NewLocalAPIKeyStore は新しいLocalAPIKeyStoreインスタンスを作成します。
// envDefault はローカル保存値がない場合に使う環境変数由来のキーです
func NewLocalAPIKeyStore(path, envDefault string) *LocalAPIKeyStore {
	return &LocalAPIKeyStore{
		path:       path,
		envDefault: strings.TrimSpace(envDefault),
	}
}

// Get は、ローカル保存値 → 環境変数のデフォルト → なし の順にAPIキーを返します
func (s *LocalAPIKeyStore) Get(ctx context.Context) (string, domain.APIKeySource, error) {
	if ctx.Err() != nil {
		return "", domain.APIKeySourceNone, ctx.Err()
	}
	if err := s.load(); err != nil {
		return "", domain.APIKeySourceNone, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.stored != "" {
		return s.stored, domain.APIKeySourceStored, nil
	}
	if s.envDefault != "" {
		return s.envDefault, domain.APIKeySourceEnvironment, nil
	}
	return "", domain.APIKeySourceNone, nil
}

// Set は、APIキーを保存します。空白のみの場合は Clear と同じです
func (s *LocalAPIKeyStore) Set(ctx context.Context, apiKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return s.Clear(ctx)
	}
	// 壊れた保存ファイルは新しい値で上書きするため、読み込みエラーは無視する
	_ = s.load()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("APIキー保存先ディレクトリの作成に失敗: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(obfuscate(apiKey)), 0o600); err != nil {
		return fmt.Errorf("APIキーの保存に失敗: %w", err)
	}
	s.stored = apiKey
	s.loadErr = nil
	return nil
}

// Clear は、ローカルに保存されたAPIキーを削除します。保存値がない場合も成功します
func (s *LocalAPIKeyStore) Clear(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// 読み込み前にClearされても、後からファイルの値で上書きされないようにする
	s.loadOnce.Do(func() {})

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("APIキーの削除に失敗: %w", err)
	}
	s.stored = ""
	s.loadErr = nil
	return nil
}

// load は、初回アクセス時に一度だけ保存ファイルを読み込みます
func (s *LocalAPIKeyStore) load() error {
	s.loadOnce.Do(func() {
		raw, err := os.ReadFile(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			s.setLoadErr(fmt.Errorf("APIキーの読み込みに失敗: %w", err))
			return
		}

		key, err := deobfuscate(strings.TrimSpace(string(raw)))
		if err != nil {
			s.setLoadErr(fmt.Errorf("保存されたAPIキーを復元できません: %w", err))
			return
		}

		s.mutex.Lock()
		s.stored = key
		s.mutex.Unlock()
	})

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.loadErr
}

func (s *LocalAPIKeyStore) setLoadErr(err error) {
	s.mutex.Lock()
	s.loadErr = err
	s.mutex.Unlock()
}

func obfuscate(value string) string {
	return base64.StdEncoding.EncodeToString(xorPad([]byte(value)))
}

func deobfuscate(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(xorPad(raw)), nil
}

func xorPad(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ obfuscationPad[i%len(obfuscationPad)]
	}
	return out
}

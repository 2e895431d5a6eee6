package domain

import "context"

// StudioSessionRepository は、StudioSessionを保持するためのインターフェースです
type StudioSessionRepository interface {
	// GetOrCreate は、指定されたIDのセッションを返します。存在しない場合は新規作成します
	GetOrCreate(ctx context.Context, sessionID string) (*StudioSession, error)

	// Delete は、指定されたIDのセッションを破棄します
	Delete(ctx context.Context, sessionID string) error
}

package discord

import (
	"context"
	"sync"

	"beautystudio/internal/domain"
)

// MemoryStudioSessionRepository は、チャンネルIDごとのスタジオセッションをメモリに保持する
// domain.StudioSessionRepository の実装です。プロセスを再起動すると内容は失われます
type MemoryStudioSessionRepository struct {
	sessions      map[string]*domain.StudioSession
	maxReferences int
	mutex         sync.RWMutex
}

// NewMemoryStudioSessionRepository は新しいMemoryStudioSessionRepositoryインスタンスを作成します
func NewMemoryStudioSessionRepository(maxReferences int) *MemoryStudioSessionRepository {
	return &MemoryStudioSessionRepository{
		sessions:      make(map[string]*domain.StudioSession),
		maxReferences: maxReferences,
	}
}

// GetOrCreate は、指定されたチャンネルのセッションを返します。存在しない場合は初期状態で作成します
func (r *MemoryStudioSessionRepository) GetOrCreate(ctx context.Context, channelID string) (*domain.StudioSession, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mutex.RLock()
	session, exists := r.sessions[channelID]
	r.mutex.RUnlock()
	if exists {
		return session, nil
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// ロックを取り直す間に作成されている可能性がある
	if session, exists := r.sessions[channelID]; exists {
		return session, nil
	}
	session = domain.NewStudioSession(channelID, r.maxReferences)
	r.sessions[channelID] = session
	return session, nil
}

// Delete は、指定されたチャンネルのセッションを破棄します。存在しない場合も成功します
func (r *MemoryStudioSessionRepository) Delete(ctx context.Context, channelID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.sessions, channelID)
	return nil
}

// Count は、保持しているセッション数を返します
func (r *MemoryStudioSessionRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}

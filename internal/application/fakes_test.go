package application

import (
	"context"
	"errors"
	"sync"

	"beautystudio/internal/domain"
)

// fakeImageGenerator は、テスト用のモック画像生成クライアントです
type fakeImageGenerator struct {
	mu       sync.Mutex
	url      string
	err      error
	calls    int
	apiKey   string
	requests []domain.ImageRequest
	entered  chan struct{}
	block    chan struct{}
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, apiKey string, request domain.ImageRequest) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.apiKey = apiKey
	f.requests = append(f.requests, request)
	return f.url, f.err
}

func (f *fakeImageGenerator) lastRequest() domain.ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeConnectionValidator は、テスト用のモック接続確認です
type fakeConnectionValidator struct {
	ok   bool
	keys []string
}

func (f *fakeConnectionValidator) ValidateConnection(ctx context.Context, apiKey string) bool {
	f.keys = append(f.keys, apiKey)
	return f.ok
}

// fakeAPIKeyStore は、メモリ上のAPIキーストアです
type fakeAPIKeyStore struct {
	stored     string
	envDefault string
	getErr     error
}

func (f *fakeAPIKeyStore) Get(ctx context.Context) (string, domain.APIKeySource, error) {
	if f.getErr != nil {
		return "", domain.APIKeySourceNone, f.getErr
	}
	if f.stored != "" {
		return f.stored, domain.APIKeySourceStored, nil
	}
	if f.envDefault != "" {
		return f.envDefault, domain.APIKeySourceEnvironment, nil
	}
	return "", domain.APIKeySourceNone, nil
}

func (f *fakeAPIKeyStore) Set(ctx context.Context, apiKey string) error {
	f.stored = apiKey
	return nil
}

func (f *fakeAPIKeyStore) Clear(ctx context.Context) error {
	f.stored = ""
	return nil
}

// fakeSessionRepository は、テスト用のセッションリポジトリです
type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.StudioSession
	capacity int
}

func newFakeSessionRepository(capacity int) *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*domain.StudioSession), capacity: capacity}
}

func (r *fakeSessionRepository) GetOrCreate(ctx context.Context, id string) (*domain.StudioSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	s := domain.NewStudioSession(id, r.capacity)
	r.sessions[id] = s
	return s, nil
}

func (r *fakeSessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// fakeImageFetcher は、URLごとに固定の応答を返します
type fakeImageFetcher struct {
	responses map[string]fakeFetchResponse
}

type fakeFetchResponse struct {
	data     []byte
	mimeType string
	err      error
}

func (f *fakeImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	resp, ok := f.responses[url]
	if !ok {
		return nil, "", errors.New("not found: " + url)
	}
	return resp.data, resp.mimeType, resp.err
}

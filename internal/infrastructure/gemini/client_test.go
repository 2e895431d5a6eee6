package gemini

import (
	"context"
	"errors"
	"testing"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGenerator は、受け取った引数を記録して固定の応答を返します
type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func newTestClient(fake *fakeGenerator) (*ImageClient, *[]string) {
	var keys []string
	client := NewImageClient(config.GeminiConfig{})
	client.newGenerator = func(ctx context.Context, apiKey string) (contentGenerator, error) {
		keys = append(keys, apiKey)
		return fake, nil
	}
	return client, &keys
}

func TestImageClient_GenerateImage(t *testing.T) {
	fake := &fakeGenerator{resp: candidateWith(genai.FinishReasonStop, &genai.Part{
		InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("out")},
	})}
	client, keys := newTestClient(fake)

	request := domain.ImageRequest{
		Images: []domain.ImageData{
			{MimeType: "image/jpeg", Data: "QQ=="},
			{MimeType: "image/webp", Data: "Qg=="},
		},
		Prompt:      "prompt text",
		AspectRatio: domain.AspectRatioWide,
		Resolution:  domain.Resolution4K,
	}

	url, err := client.GenerateImage(context.Background(), "key-1", request)
	require.NoError(t, err)
	assert.Equal(t, domain.EncodeDataURL("image/png", []byte("out")), url)
	assert.Equal(t, []string{"key-1"}, *keys)

	assert.Equal(t, config.DefaultImageModelName, fake.model)
	require.Len(t, fake.contents, 1)
	assert.Equal(t, "user", fake.contents[0].Role)

	parts := fake.contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("A"), parts[0].InlineData.Data)
	assert.Equal(t, []byte("B"), parts[1].InlineData.Data)
	assert.Equal(t, "prompt text", parts[2].Text)

	require.NotNil(t, fake.config.ImageConfig)
	assert.Equal(t, "16:9", fake.config.ImageConfig.AspectRatio)
	assert.Equal(t, "4K", fake.config.ImageConfig.ImageSize)
	require.Len(t, fake.config.SafetySettings, 4)
	for _, s := range fake.config.SafetySettings {
		assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, s.Threshold)
	}
}

func TestImageClient_GenerateImage_InvalidBase64(t *testing.T) {
	fake := &fakeGenerator{}
	client, _ := newTestClient(fake)

	_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{
		Images: []domain.ImageData{{MimeType: "image/png", Data: "%%%"}},
		Prompt: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)
	assert.Zero(t, fake.calls)
}

func TestImageClient_GenerateImage_APIErrors(t *testing.T) {
	t.Run("エンティティ不明は無効なAPIキー", func(t *testing.T) {
		fake := &fakeGenerator{err: errors.New("Error 404, Message: Requested entity was not found., Status: NOT_FOUND")}
		client, _ := newTestClient(fake)

		_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("その他のエラーはラップされる", func(t *testing.T) {
		cause := errors.New("connection reset")
		fake := &fakeGenerator{err: cause}
		client, _ := newTestClient(fake)

		_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("タイムアウトとキャンセルは区別される", func(t *testing.T) {
		client, _ := newTestClient(&fakeGenerator{err: context.DeadlineExceeded})
		_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "タイムアウトしました")

		client, _ = newTestClient(&fakeGenerator{err: context.Canceled})
		_, err = client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "キャンセルされました")
		assert.NotContains(t, err.Error(), "タイムアウト")
	})

	t.Run("分類エラーはそのまま返す", func(t *testing.T) {
		fake := &fakeGenerator{resp: candidateWith(genai.FinishReasonStop, &genai.Part{Text: "no"})}
		client, _ := newTestClient(fake)

		_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
		var refusal *domain.ModelRefusalError
		assert.ErrorAs(t, err, &refusal)
	})
}

func TestImageClient_ValidateConnection(t *testing.T) {
	fake := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	client, keys := newTestClient(fake)

	assert.True(t, client.ValidateConnection(context.Background(), "good"))
	assert.Equal(t, config.DefaultPingModelName, fake.model)
	require.Len(t, fake.contents, 1)
	assert.Equal(t, "ping", fake.contents[0].Parts[0].Text)

	assert.False(t, client.ValidateConnection(context.Background(), "  "))
	assert.Equal(t, []string{"good"}, *keys)

	fake.err = errors.New("API key not valid")
	assert.False(t, client.ValidateConnection(context.Background(), "bad"))
}

func TestImageClient_FactoryError(t *testing.T) {
	client := NewImageClient(config.GeminiConfig{ImageModelName: "custom-model"})
	client.newGenerator = func(ctx context.Context, apiKey string) (contentGenerator, error) {
		return nil, errors.New("boom")
	}

	_, err := client.GenerateImage(context.Background(), "key", domain.ImageRequest{Prompt: "x"})
	assert.Error(t, err)
	assert.False(t, client.ValidateConnection(context.Background(), "key"))
	assert.Equal(t, "custom-model", client.config.ImageModelName)
}

package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"beautystudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultURL = "data:image/png;base64,UkVTVUxU"

func newStudioTestService(t *testing.T) (*StudioApplicationService, *fakeImageGenerator, *fakeAPIKeyStore, *fakeSessionRepository) {
	t.Helper()
	generator := &fakeImageGenerator{url: resultURL}
	keys := &fakeAPIKeyStore{stored: "stored-api-key"}
	repo := newFakeSessionRepository(10)
	return NewStudioApplicationService(repo, keys, generator), generator, keys, repo
}

func addRef(t *testing.T, repo *fakeSessionRepository, kind domain.ReferenceKind, url string) domain.ReferenceImage {
	t.Helper()
	session, err := repo.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	ref, err := session.AddReference(kind, url)
	require.NoError(t, err)
	return ref
}

func TestGenerateStandard(t *testing.T) {
	service, generator, _, _ := newStudioTestService(t)
	ctx := context.Background()

	_, err := service.UpdateSettings(ctx, "s1", func(s *domain.GenerationSettings) error {
		s.AspectRatio = domain.AspectRatioSquare
		s.Resolution = domain.Resolution4K
		return s.SetGridCount(4)
	})
	require.NoError(t, err)

	image, err := service.GenerateStandard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, resultURL, image.URL)
	assert.Equal(t, "[4カット] "+domain.DefaultConcept(), image.Label)

	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, "stored-api-key", generator.apiKey)
	request := generator.lastRequest()
	assert.Empty(t, request.Images)
	assert.Equal(t, domain.AspectRatioSquare, request.AspectRatio)
	assert.Equal(t, domain.Resolution4K, request.Resolution)
	assert.Contains(t, request.Prompt, "FORMAT: PHOTO COLLAGE")

	session, err := service.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, resultURL, session.Snapshot().CurrentImage)
	assert.Len(t, session.History(), 1)
}

func TestGenerateStandard_MissingCredential(t *testing.T) {
	service, generator, keys, _ := newStudioTestService(t)
	keys.stored = ""

	_, err := service.GenerateStandard(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, generator.calls)
}

func TestGenerateStandard_EnvironmentKey(t *testing.T) {
	service, generator, keys, _ := newStudioTestService(t)
	keys.stored = ""
	keys.envDefault = "env-api-key"

	_, err := service.GenerateStandard(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "env-api-key", generator.apiKey)
}

func TestGenerateStandard_ErrorKeepsSessionUsable(t *testing.T) {
	service, generator, _, _ := newStudioTestService(t)
	generator.err = &domain.ModelRefusalError{Explanation: "cannot"}

	_, err := service.GenerateStandard(context.Background(), "s1")
	var refusal *domain.ModelRefusalError
	require.ErrorAs(t, err, &refusal)
	assert.Contains(t, err.Error(), "cannot")

	session, _ := service.Session(context.Background(), "s1")
	assert.Empty(t, session.History())

	// すぐに同じ操作を再試行できる
	generator.err = nil
	_, err = service.GenerateStandard(context.Background(), "s1")
	assert.NoError(t, err)
}

func TestGenerateFromReferences_ValidationGate(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, repo *fakeSessionRepository)
		wantField string
	}{
		{
			name:      "モデル画像なし",
			setup:     func(t *testing.T, repo *fakeSessionRepository) {},
			wantField: "modelRefs",
		},
		{
			name: "モデル画像が未選択",
			setup: func(t *testing.T, repo *fakeSessionRepository) {
				ref := addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TQ==")
				addRef(t, repo, domain.ReferenceKindClothing, "data:image/png;base64,Qw==")
				session, _ := repo.GetOrCreate(context.Background(), "s1")
				_, err := session.ToggleReference(domain.ReferenceKindModel, ref.ID)
				require.NoError(t, err)
			},
			wantField: "modelRefs",
		},
		{
			name: "衣装画像もテキストもなし",
			setup: func(t *testing.T, repo *fakeSessionRepository) {
				addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TQ==")
				session, _ := repo.GetOrCreate(context.Background(), "s1")
				_, err := session.UpdateSettings(func(s *domain.GenerationSettings) error {
					s.ClothingPrompt = "   "
					return nil
				})
				require.NoError(t, err)
			},
			wantField: "clothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, generator, keys, repo := newStudioTestService(t)
			// 検証はAPIキーの確認より先
			keys.stored = ""
			tt.setup(t, repo)

			_, err := service.GenerateFromReferences(context.Background(), "s1")

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Zero(t, generator.calls)
		})
	}
}

func TestGenerateFromReferences(t *testing.T) {
	service, generator, _, repo := newStudioTestService(t)
	addRef(t, repo, domain.ReferenceKindModel, "data:image/jpeg;base64,TTE=")
	addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TTI=")
	addRef(t, repo, domain.ReferenceKindClothing, "data:image/webp;base64,QzE=")

	image, err := service.GenerateFromReferences(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, strings.Contains(image.Label, "Ref Mix"))

	request := generator.lastRequest()
	require.Len(t, request.Images, 3)
	assert.Equal(t, "image/jpeg", request.Images[0].MimeType)
	assert.Equal(t, "image/webp", request.Images[2].MimeType)
	assert.Contains(t, request.Prompt, "First 2 images")
	assert.Contains(t, request.Prompt, "The NEXT 1 images")
}

func TestGenerateFromReferences_ClothingTextOnly(t *testing.T) {
	service, generator, _, repo := newStudioTestService(t)
	addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TTE=")
	_, err := service.UpdateSettings(context.Background(), "s1", func(s *domain.GenerationSettings) error {
		s.ClothingPrompt = "black leather jacket"
		return nil
	})
	require.NoError(t, err)

	_, err = service.GenerateFromReferences(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, generator.lastRequest().Prompt, `OUTFIT DESCRIPTION: "black leather jacket"`)
}

func TestEditAndNextCut(t *testing.T) {
	service, generator, _, _ := newStudioTestService(t)
	ctx := context.Background()

	t.Run("現在の画像がなければ検証エラー", func(t *testing.T) {
		_, err := service.Edit(ctx, "s1", "make it brighter")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "currentImage", vErr.Field)
		assert.Zero(t, generator.calls)
	})

	_, err := service.GenerateStandard(ctx, "s1")
	require.NoError(t, err)

	t.Run("空の指示は検証エラー", func(t *testing.T) {
		_, err := service.NextCut(ctx, "s1", "  ")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "instruction", vErr.Field)
	})

	edited, err := service.Edit(ctx, "s1", "make it brighter")
	require.NoError(t, err)
	assert.Equal(t, "修正: make it brighter", edited.Label)
	request := generator.lastRequest()
	require.Len(t, request.Images, 1)
	assert.Equal(t, "UkVTVUxU", request.Images[0].Data)
	assert.Contains(t, request.Prompt, "USER EDIT REQUEST:\nmake it brighter")

	next, err := service.NextCut(ctx, "s1", "on the beach")
	require.NoError(t, err)
	assert.Equal(t, "次のカット: on the beach", next.Label)
	assert.Contains(t, generator.lastRequest().Prompt, "NEW SCENE / ACTION REQUIREMENTS:\non the beach")

	session, _ := service.Session(ctx, "s1")
	history := session.History()
	require.Len(t, history, 3)
	assert.Equal(t, next.Label, history[0].Label)
}

func TestOutfitExtraction(t *testing.T) {
	service, generator, _, repo := newStudioTestService(t)
	ctx := context.Background()

	t.Run("モデル画像が1枚でなければ検証エラー", func(t *testing.T) {
		_, err := service.ExtractOutfit(ctx, "s1")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "modelRefs", vErr.Field)
	})

	t.Run("抽出前の修正は検証エラー", func(t *testing.T) {
		_, err := service.EditOutfit(ctx, "s1", "navy")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "extractedOutfit", vErr.Field)
	})

	addRef(t, repo, domain.ReferenceKindModel, "data:image/jpeg;base64,TTE=")

	url, err := service.ExtractOutfit(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, resultURL, url)

	request := generator.lastRequest()
	assert.Equal(t, domain.AspectRatioSquare, request.AspectRatio)
	assert.Equal(t, domain.Resolution2K, request.Resolution)
	assert.Contains(t, request.Prompt, "Flat Lay")
	require.Len(t, request.Images, 1)
	assert.Equal(t, "image/jpeg", request.Images[0].MimeType)

	session, _ := service.Session(ctx, "s1")
	assert.Empty(t, session.History())
	assert.Equal(t, resultURL, session.Snapshot().ExtractedOutfit)

	generator.url = "data:image/png;base64,TkVX"
	edited, err := service.EditOutfit(ctx, "s1", "change to navy")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,TkVX", edited)
	assert.Equal(t, "UkVTVUxU", generator.lastRequest().Images[0].Data)

	ref, err := service.AdoptExtractedOutfit(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,TkVX", ref.URL)
	assert.Len(t, session.Snapshot().ClothingRefs, 1)
}

func TestGeneration_InProgressGuard(t *testing.T) {
	service, generator, _, _ := newStudioTestService(t)
	generator.entered = make(chan struct{})
	generator.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := service.GenerateStandard(context.Background(), "s1")
		assert.NoError(t, err)
	}()

	// 1件目がAPI呼び出し中になるまで待つ
	<-generator.entered

	_, err := service.GenerateStandard(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)

	// 別セッションは影響を受けない
	_, err = service.UpdateSettings(context.Background(), "s2", func(*domain.GenerationSettings) error { return nil })
	assert.NoError(t, err)

	close(generator.block)
	wg.Wait()
	assert.Equal(t, 1, generator.calls)
}

func TestGeneration_KeyStoreError(t *testing.T) {
	service, generator, keys, _ := newStudioTestService(t)
	keys.getErr = errors.New("disk error")

	_, err := service.GenerateStandard(context.Background(), "s1")
	assert.ErrorContains(t, err, "disk error")
	assert.Zero(t, generator.calls)
}

func TestSelectHistoryAndReset(t *testing.T) {
	service, generator, _, _ := newStudioTestService(t)
	ctx := context.Background()

	_, err := service.GenerateStandard(ctx, "s1")
	require.NoError(t, err)
	generator.url = "data:image/png;base64,U0VDT05E"
	_, err = service.GenerateStandard(ctx, "s1")
	require.NoError(t, err)

	selected, err := service.SelectHistory(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, resultURL, selected.URL)

	session, _ := service.Session(ctx, "s1")
	assert.Equal(t, resultURL, session.Snapshot().CurrentImage)

	require.NoError(t, service.ResetSession(ctx, "s1"))
	fresh, _ := service.Session(ctx, "s1")
	assert.Empty(t, fresh.History())
}

func TestPreviewPrompt(t *testing.T) {
	service, generator, _, repo := newStudioTestService(t)
	ctx := context.Background()

	standard, err := service.PreviewPrompt(ctx, "s1", GenerationModeStandard)
	require.NoError(t, err)
	assert.Contains(t, standard, "Concept/Location: "+domain.DefaultConcept()+".")

	_, err = service.PreviewPrompt(ctx, "s1", GenerationModeReference)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "modelRefs", vErr.Field)

	addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TQ==")
	addRef(t, repo, domain.ReferenceKindClothing, "data:image/png;base64,Qw==")
	reference, err := service.PreviewPrompt(ctx, "s1", GenerationModeReference)
	require.NoError(t, err)
	assert.Contains(t, reference, "First 1 images")

	assert.Zero(t, generator.calls)
}

func TestGenerate_Mode(t *testing.T) {
	service, generator, _, repo := newStudioTestService(t)
	addRef(t, repo, domain.ReferenceKindModel, "data:image/png;base64,TQ==")
	_, err := service.UpdateSettings(context.Background(), "s1", func(s *domain.GenerationSettings) error {
		s.ClothingPrompt = "denim"
		return nil
	})
	require.NoError(t, err)

	mode, err := ParseGenerationMode("Reference")
	require.NoError(t, err)
	image, err := service.Generate(context.Background(), "s1", mode)
	require.NoError(t, err)
	assert.Contains(t, image.Label, "Ref Mix")
	assert.Len(t, generator.lastRequest().Images, 1)

	mode, err = ParseGenerationMode("")
	require.NoError(t, err)
	assert.Equal(t, GenerationModeStandard, mode)

	_, err = ParseGenerationMode("video")
	assert.Error(t, err)
}

package application

import (
	"context"
	"fmt"
	"strings"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/logging"
)

// GenerationMode は、生成ボタンが実行する生成方式です
type GenerationMode int

const (
	GenerationModeStandard GenerationMode = iota
	GenerationModeReference
)

// ParseGenerationMode は "standard" / "reference" をGenerationModeに変換します
func ParseGenerationMode(value string) (GenerationMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "standard":
		return GenerationModeStandard, nil
	case "reference":
		return GenerationModeReference, nil
	}
	return 0, domain.NewValidationError("mode", fmt.Sprintf("生成モードが不正です: %s", value))
}

// StudioApplicationService は、スタジオセッションでの画像生成を担当するアプリケーションサービスです。
// すべての生成操作は1回のAPI呼び出しで、リトライは行いません
type StudioApplicationService struct {
	sessions  domain.StudioSessionRepository
	apiKeys   domain.APIKeyStore
	generator ImageGenerator
}

// NewStudioApplicationService は新しいStudioApplicationServiceインスタンスを作成します
func NewStudioApplicationService(sessions domain.StudioSessionRepository, apiKeys domain.APIKeyStore, generator ImageGenerator) *StudioApplicationService {
	return &StudioApplicationService{
		sessions:  sessions,
		apiKeys:   apiKeys,
		generator: generator,
	}
}

// Session は、指定されたセッションを返します。存在しない場合は作成します
func (s *StudioApplicationService) Session(ctx context.Context, sessionID string) (*domain.StudioSession, error) {
	return s.sessions.GetOrCreate(ctx, sessionID)
}

// ResetSession は、セッションの設定・参照画像・履歴をすべて破棄します
func (s *StudioApplicationService) ResetSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// UpdateSettings は、セッションの生成設定を更新します
func (s *StudioApplicationService) UpdateSettings(ctx context.Context, sessionID string, fn func(*domain.GenerationSettings) error) (domain.GenerationSettings, error) {
	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.GenerationSettings{}, err
	}
	return session.UpdateSettings(fn)
}

// SelectHistory は、履歴のn番目(0始まり)の画像を現在の画像にします
func (s *StudioApplicationService) SelectHistory(ctx context.Context, sessionID string, index int) (domain.GeneratedImage, error) {
	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.GeneratedImage{}, err
	}
	return session.SelectHistory(index)
}

// Generate は、指定されたモードで画像を生成します
func (s *StudioApplicationService) Generate(ctx context.Context, sessionID string, mode GenerationMode) (domain.GeneratedImage, error) {
	if mode == GenerationModeReference {
		return s.GenerateFromReferences(ctx, sessionID)
	}
	return s.GenerateStandard(ctx, sessionID)
}

// PreviewPrompt は、APIを呼び出さずに、現在の設定で送信されるプロンプトを返します
func (s *StudioApplicationService) PreviewPrompt(ctx context.Context, sessionID string, mode GenerationMode) (string, error) {
	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return "", err
	}

	snapshot := session.Snapshot()
	lens := domain.FindLens(snapshot.Settings.LensID)
	if mode == GenerationModeStandard {
		return domain.ComposeStandardPrompt(lens, snapshot.Settings), nil
	}

	if err := validateReferenceSelection(snapshot); err != nil {
		return "", err
	}
	payload, err := domain.ComposeReferencePrompt(lens, snapshot.Settings, snapshot.ModelRefs, snapshot.ClothingRefs)
	if err != nil {
		return "", err
	}
	return payload.Text, nil
}

// GenerateStandard は、現在の設定から通常モードの画像を生成します
func (s *StudioApplicationService) GenerateStandard(ctx context.Context, sessionID string) (domain.GeneratedImage, error) {
	return s.generate(ctx, sessionID, "通常生成", func(snapshot domain.StudioSnapshot) (generation, error) {
		settings := snapshot.Settings
		return generation{
			request: imageRequest(settings, nil, domain.ComposeStandardPrompt(domain.FindLens(settings.LensID), settings)),
			label:   domain.StandardLabel(settings),
		}, nil
	})
}

// GenerateFromReferences は、選択済みのモデル画像と衣装画像(または衣装テキスト)から画像を生成します
func (s *StudioApplicationService) GenerateFromReferences(ctx context.Context, sessionID string) (domain.GeneratedImage, error) {
	return s.generate(ctx, sessionID, "リファレンス生成", func(snapshot domain.StudioSnapshot) (generation, error) {
		if err := validateReferenceSelection(snapshot); err != nil {
			return generation{}, err
		}

		settings := snapshot.Settings
		payload, err := domain.ComposeReferencePrompt(domain.FindLens(settings.LensID), settings, snapshot.ModelRefs, snapshot.ClothingRefs)
		if err != nil {
			return generation{}, err
		}
		return generation{
			request: imageRequest(settings, payload.Images, payload.Text),
			label:   domain.ReferenceLabel(settings),
		}, nil
	})
}

// Edit は、現在の画像を指示に従って部分的に修正します
func (s *StudioApplicationService) Edit(ctx context.Context, sessionID, instruction string) (domain.GeneratedImage, error) {
	return s.generate(ctx, sessionID, "修正", func(snapshot domain.StudioSnapshot) (generation, error) {
		image, err := currentImage(snapshot, instruction, "修正内容を入力してください")
		if err != nil {
			return generation{}, err
		}

		settings := snapshot.Settings
		return generation{
			request: imageRequest(settings, []domain.ImageData{image}, domain.ComposeEditPrompt(domain.FindLens(settings.LensID), settings, instruction)),
			label:   domain.EditLabel(instruction),
		}, nil
	})
}

// NextCut は、現在の画像の人物を保ったまま、新しいシーンのカットを生成します
func (s *StudioApplicationService) NextCut(ctx context.Context, sessionID, newContext string) (domain.GeneratedImage, error) {
	return s.generate(ctx, sessionID, "次のカット", func(snapshot domain.StudioSnapshot) (generation, error) {
		image, err := currentImage(snapshot, newContext, "新しいシーンの説明を入力してください")
		if err != nil {
			return generation{}, err
		}

		settings := snapshot.Settings
		return generation{
			request: imageRequest(settings, []domain.ImageData{image}, domain.ComposeConsistentCharacterPrompt(domain.FindLens(settings.LensID), settings, newContext)),
			label:   domain.NextCutLabel(newContext),
		}, nil
	})
}

// ExtractOutfit は、選択中の1枚のモデル画像から衣装だけを商品写真として抽出します。
// 結果は履歴には追加せず、AdoptExtractedOutfit で衣装の参照画像に追加できます
func (s *StudioApplicationService) ExtractOutfit(ctx context.Context, sessionID string) (string, error) {
	image, err := s.generate(ctx, sessionID, "衣装抽出", func(snapshot domain.StudioSnapshot) (generation, error) {
		selected := domain.SelectedReferences(snapshot.ModelRefs)
		if len(selected) != 1 {
			return generation{}, domain.NewValidationError("modelRefs", "衣装を抽出するモデル画像を1枚だけ選択してください")
		}
		source, err := domain.ParseDataURL(selected[0].URL)
		if err != nil {
			return generation{}, err
		}
		return generation{request: outfitRequest(source, domain.ComposeOutfitExtractionPrompt()), outfit: true}, nil
	})
	if err != nil {
		return "", err
	}
	return image.URL, nil
}

// EditOutfit は、直前の衣装抽出結果を指示に従って修正します
func (s *StudioApplicationService) EditOutfit(ctx context.Context, sessionID, instruction string) (string, error) {
	image, err := s.generate(ctx, sessionID, "衣装修正", func(snapshot domain.StudioSnapshot) (generation, error) {
		if snapshot.ExtractedOutfit == "" {
			return generation{}, domain.NewValidationError("extractedOutfit", "先に衣装を抽出してください")
		}
		if strings.TrimSpace(instruction) == "" {
			return generation{}, domain.NewValidationError("instruction", "修正内容を入力してください")
		}
		source, err := domain.ParseDataURL(snapshot.ExtractedOutfit)
		if err != nil {
			return generation{}, err
		}
		return generation{request: outfitRequest(source, domain.ComposeOutfitEditPrompt(instruction)), outfit: true}, nil
	})
	if err != nil {
		return "", err
	}
	return image.URL, nil
}

// AdoptExtractedOutfit は、衣装抽出結果を衣装の参照画像に追加します
func (s *StudioApplicationService) AdoptExtractedOutfit(ctx context.Context, sessionID string) (domain.ReferenceImage, error) {
	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.ReferenceImage{}, err
	}
	return session.AdoptExtractedOutfit()
}

// generation は、1回の生成で送信するリクエストと結果の記録方法です
type generation struct {
	request domain.ImageRequest
	label   string
	outfit  bool // trueなら履歴ではなく衣装抽出結果として保存する
}

// generate は、すべての生成操作に共通する流れを実行します。
// スナップショットの取得 → 入力検証 → APIキーの確認 → 送信 → 結果の記録 の順で、
// 検証とAPIキーの確認に失敗した場合はAPIを呼び出しません
func (s *StudioApplicationService) generate(ctx context.Context, sessionID, operation string, build func(domain.StudioSnapshot) (generation, error)) (domain.GeneratedImage, error) {
	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	if !session.BeginGeneration() {
		return domain.GeneratedImage{}, domain.ErrGenerationInProgress
	}
	defer session.EndGeneration()

	gen, err := build(session.Snapshot())
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	apiKey, err := s.requireAPIKey(ctx)
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	logging.WithField("session", sessionID).Infof("%sを開始: 画像=%d枚", operation, gen.request.ImageCount())

	url, err := s.generator.GenerateImage(ctx, apiKey, gen.request)
	if err != nil {
		logging.WithError(err).WithField("session", sessionID).Warnf("%sに失敗", operation)
		return domain.GeneratedImage{}, fmt.Errorf("%sに失敗しました: %w", operation, err)
	}

	image := domain.GeneratedImage{URL: url, Label: gen.label}
	if gen.outfit {
		session.SetExtractedOutfit(url)
	} else {
		session.RecordResult(image)
	}

	logging.WithField("session", sessionID).Infof("%sが完了", operation)
	return image, nil
}

// requireAPIKey は、有効なAPIキーを返します。どこにも設定されていない場合は ErrMissingCredential です
func (s *StudioApplicationService) requireAPIKey(ctx context.Context) (string, error) {
	key, source, err := s.apiKeys.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("APIキーの取得に失敗: %w", err)
	}
	if source == domain.APIKeySourceNone || key == "" {
		return "", domain.ErrMissingCredential
	}
	return key, nil
}

// validateReferenceSelection は、リファレンス生成の前提条件を検証します
func validateReferenceSelection(snapshot domain.StudioSnapshot) error {
	if len(domain.SelectedReferences(snapshot.ModelRefs)) == 0 {
		return domain.NewValidationError("modelRefs", "モデル画像を最低1枚選択してください")
	}
	if len(domain.SelectedReferences(snapshot.ClothingRefs)) == 0 && strings.TrimSpace(snapshot.Settings.ClothingPrompt) == "" {
		return domain.NewValidationError("clothing", "衣装画像を選択するか、衣装の説明を入力してください")
	}
	return nil
}

// currentImage は、修正・次カットの対象となる現在の画像を返します
func currentImage(snapshot domain.StudioSnapshot, instruction, emptyMessage string) (domain.ImageData, error) {
	if snapshot.CurrentImage == "" {
		return domain.ImageData{}, domain.NewValidationError("currentImage", "先に画像を生成してください")
	}
	if strings.TrimSpace(instruction) == "" {
		return domain.ImageData{}, domain.NewValidationError("instruction", emptyMessage)
	}
	return domain.ParseDataURL(snapshot.CurrentImage)
}

func imageRequest(settings domain.GenerationSettings, images []domain.ImageData, prompt string) domain.ImageRequest {
	return domain.ImageRequest{
		Images:      images,
		Prompt:      prompt,
		AspectRatio: settings.AspectRatio,
		Resolution:  settings.Resolution,
	}
}

// outfitRequest は、衣装抽出・修正用の 1:1 / 2K 固定のリクエストを作成します
func outfitRequest(source domain.ImageData, prompt string) domain.ImageRequest {
	return domain.ImageRequest{
		Images:      []domain.ImageData{source},
		Prompt:      prompt,
		AspectRatio: domain.AspectRatioSquare,
		Resolution:  domain.Resolution2K,
	}
}

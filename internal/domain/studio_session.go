package domain

import (
	"sync"
)

// StudioSnapshot は、ある時点のセッション状態のコピーです。
// 生成リクエストはこのスナップショットから組み立てます
type StudioSnapshot struct {
	Settings        GenerationSettings
	ModelRefs       []ReferenceImage
	ClothingRefs    []ReferenceImage
	CurrentImage    string
	ExtractedOutfit string
}

// StudioSession は、1つの対話セッションが持つ設定・参照画像・履歴です
type StudioSession struct {
	ID string

	mu              sync.Mutex
	settings        GenerationSettings
	modelRefs       *ReferenceList
	clothingRefs    *ReferenceList
	history         History
	currentImage    string
	extractedOutfit string
	generating      bool
}

// NewStudioSession は初期設定のセッションを作成します
func NewStudioSession(id string, maxReferences int) *StudioSession {
	return &StudioSession{
		ID:           id,
		settings:     DefaultGenerationSettings(),
		modelRefs:    NewReferenceList(maxReferences),
		clothingRefs: NewReferenceList(maxReferences),
	}
}

// Snapshot は現在の状態のコピーを返します
func (s *StudioSession) Snapshot() StudioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StudioSnapshot{
		Settings:        s.settings.Clone(),
		ModelRefs:       s.modelRefs.Items(),
		ClothingRefs:    s.clothingRefs.Items(),
		CurrentImage:    s.currentImage,
		ExtractedOutfit: s.extractedOutfit,
	}
}

// UpdateSettings は設定を更新します。fnがエラーを返した場合は変更を破棄します
func (s *StudioSession) UpdateSettings(fn func(*GenerationSettings) error) (GenerationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	if err := fn(&next); err != nil {
		return s.settings.Clone(), err
	}
	if err := next.Validate(); err != nil {
		return s.settings.Clone(), err
	}
	s.settings = next
	return s.settings.Clone(), nil
}

func (s *StudioSession) references(kind ReferenceKind) *ReferenceList {
	if kind == ReferenceKindClothing {
		return s.clothingRefs
	}
	return s.modelRefs
}

// AddReference は参照画像を追加します
func (s *StudioSession) AddReference(kind ReferenceKind, url string) (ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.references(kind).Add(url)
}

// ToggleReference は参照画像の選択状態を反転します
func (s *StudioSession) ToggleReference(kind ReferenceKind, id string) (ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.references(kind).Toggle(id)
}

// RemoveReference は参照画像を削除します
func (s *StudioSession) RemoveReference(kind ReferenceKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.references(kind).Remove(id)
}

// RemainingReferenceSlots は追加可能な残り枚数を返します
func (s *StudioSession) RemainingReferenceSlots(kind ReferenceKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.references(kind).Remaining()
}

// BeginGeneration は生成中フラグを立てます。既に生成中ならfalseを返します
func (s *StudioSession) BeginGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return false
	}
	s.generating = true
	return true
}

// EndGeneration は生成中フラグを下ろします
func (s *StudioSession) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
}

// RecordResult は生成結果を現在の画像にし、履歴に追加します
func (s *StudioSession) RecordResult(image GeneratedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentImage = image.URL
	s.history.Add(image)
}

// SelectHistory は履歴のn番目(0始まり)を現在の画像にします
func (s *StudioSession) SelectHistory(index int) (GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := s.history.Images()
	if index < 0 || index >= len(images) {
		return GeneratedImage{}, NewValidationError("history", "指定された履歴が見つかりません")
	}
	s.currentImage = images[index].URL
	return images[index], nil
}

// History は生成履歴を返します
func (s *StudioSession) History() []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Images()
}

// SetExtractedOutfit は衣装抽出の結果を保存します
func (s *StudioSession) SetExtractedOutfit(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractedOutfit = url
}

// AdoptExtractedOutfit は衣装抽出の結果を衣装の参照画像に追加し、抽出結果をクリアします
func (s *StudioSession) AdoptExtractedOutfit() (ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.extractedOutfit == "" {
		return ReferenceImage{}, NewValidationError("extractedOutfit", "追加できる衣装抽出結果がありません")
	}
	ref, err := s.clothingRefs.Add(s.extractedOutfit)
	if err != nil {
		return ReferenceImage{}, err
	}
	s.extractedOutfit = ""
	return ref, nil
}

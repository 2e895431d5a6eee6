package domain

import (
	"fmt"
	"strings"
)

// AspectRatio は出力画像のアスペクト比です
type AspectRatio int

const (
	AspectRatioPortrait AspectRatio = iota
	AspectRatioTall
	AspectRatioSquare
	AspectRatioLandscape
	AspectRatioWide
)

// Resolution は出力画像の解像度です
type Resolution int

const (
	Resolution1K Resolution = iota
	Resolution2K
	Resolution4K
)

// GridSizing はコラージュのパネルサイズの決め方です
type GridSizing int

const (
	GridSizingUniform GridSizing = iota
	GridSizingRandom
)

// GridCount は1枚の画像に含めるカット数です
type GridCount int

// optionData はAspectRatio, Resolution, GridSizingのデータを保持します
type optionData struct {
	Value       string
	DisplayName string
}

var aspectRatios = []optionData{
	{"3:4", "縦 (3:4)"},
	{"9:16", "ソーシャルストーリー (9:16)"},
	{"1:1", "正方形 (1:1)"},
	{"4:3", "横 (4:3)"},
	{"16:9", "シネマティック (16:9)"},
}

var resolutions = []optionData{
	{"1K", "標準 (1K)"},
	{"2K", "高画質 (2K)"},
	{"4K", "超高画質 (4K)"},
}

var gridSizings = []optionData{
	{"uniform", "同じサイズ (Uniform)"},
	{"random", "ランダムサイズ (Random)"},
}

var gridCounts = []GridCount{1, 2, 3, 4, 6, 9}

// String はAspectRatioのAPI値を返します
func (a AspectRatio) String() string {
	if a.IsValid() {
		return aspectRatios[a].Value
	}
	return aspectRatios[AspectRatioPortrait].Value
}

// DisplayName はAspectRatioの表示名を返します
func (a AspectRatio) DisplayName() string {
	if a.IsValid() {
		return aspectRatios[a].DisplayName
	}
	return aspectRatios[AspectRatioPortrait].DisplayName
}

// IsValid はAspectRatioが定義済みの値かどうかを返します
func (a AspectRatio) IsValid() bool {
	return int(a) >= 0 && int(a) < len(aspectRatios)
}

// String はResolutionのAPI値を返します
func (r Resolution) String() string {
	if r.IsValid() {
		return resolutions[r].Value
	}
	return resolutions[Resolution2K].Value
}

// DisplayName はResolutionの表示名を返します
func (r Resolution) DisplayName() string {
	if r.IsValid() {
		return resolutions[r].DisplayName
	}
	return resolutions[Resolution2K].DisplayName
}

// IsValid はResolutionが定義済みの値かどうかを返します
func (r Resolution) IsValid() bool {
	return int(r) >= 0 && int(r) < len(resolutions)
}

func (g GridSizing) String() string {
	if g.IsValid() {
		return gridSizings[g].Value
	}
	return gridSizings[GridSizingUniform].Value
}

func (g GridSizing) DisplayName() string {
	if g.IsValid() {
		return gridSizings[g].DisplayName
	}
	return gridSizings[GridSizingUniform].DisplayName
}

func (g GridSizing) IsValid() bool {
	return int(g) >= 0 && int(g) < len(gridSizings)
}

// IsValid はGridCountが1/2/3/4/6/9のいずれかかを返します
func (c GridCount) IsValid() bool {
	for _, v := range gridCounts {
		if v == c {
			return true
		}
	}
	return false
}

// DisplayName はGridCountの表示名を返します
func (c GridCount) DisplayName() string {
	if c == 1 {
		return "1枚 (単独)"
	}
	return fmt.Sprintf("%d枚分割", int(c))
}

// AllAspectRatios はすべてのAspectRatioを返します
func AllAspectRatios() []AspectRatio {
	return []AspectRatio{
		AspectRatioPortrait,
		AspectRatioTall,
		AspectRatioSquare,
		AspectRatioLandscape,
		AspectRatioWide,
	}
}

// AllResolutions はすべてのResolutionを返します
func AllResolutions() []Resolution {
	return []Resolution{Resolution1K, Resolution2K, Resolution4K}
}

// AllGridSizings はすべてのGridSizingを返します
func AllGridSizings() []GridSizing {
	return []GridSizing{GridSizingUniform, GridSizingRandom}
}

// AllGridCounts はすべてのGridCountを返します
func AllGridCounts() []GridCount {
	return append([]GridCount(nil), gridCounts...)
}

// ParseAspectRatio は "3:4" のようなAPI値をAspectRatioに変換します
func ParseAspectRatio(value string) (AspectRatio, error) {
	for i, o := range aspectRatios {
		if o.Value == strings.TrimSpace(value) {
			return AspectRatio(i), nil
		}
	}
	return 0, NewValidationError("aspectRatio", fmt.Sprintf("未対応のアスペクト比です: %s", value))
}

// ParseResolution は "2K" のようなAPI値をResolutionに変換します
func ParseResolution(value string) (Resolution, error) {
	for i, o := range resolutions {
		if strings.EqualFold(o.Value, strings.TrimSpace(value)) {
			return Resolution(i), nil
		}
	}
	return 0, NewValidationError("resolution", fmt.Sprintf("未対応の解像度です: %s", value))
}

// ParseGridSizing は "uniform" / "random" をGridSizingに変換します
func ParseGridSizing(value string) (GridSizing, error) {
	for i, o := range gridSizings {
		if strings.EqualFold(o.Value, strings.TrimSpace(value)) {
			return GridSizing(i), nil
		}
	}
	return 0, NewValidationError("gridSizing", fmt.Sprintf("未対応のレイアウトです: %s", value))
}

// ParseGridCount はカット数を検証してGridCountに変換します
func ParseGridCount(n int) (GridCount, error) {
	c := GridCount(n)
	if !c.IsValid() {
		return 0, NewValidationError("gridCount", fmt.Sprintf("カット数は1, 2, 3, 4, 6, 9のいずれかを指定してください: %d", n))
	}
	return c, nil
}

// Cut は1カット分のアングルとポーズの設定です。
// Custom* が空白以外なら、プロンプト生成時に Preset* より優先されます
type Cut struct {
	PresetAngle string
	CustomAngle string
	PresetPose  string
	CustomPose  string
}

// NewDefaultCut は先頭のプリセットで初期化したカットを返します
func NewDefaultCut() Cut {
	return Cut{PresetAngle: DefaultCameraAngle(), PresetPose: DefaultPose()}
}

// GenerationSettings は、ユーザーが選択した生成パラメータです
type GenerationSettings struct {
	LensID      string
	AspectRatio AspectRatio
	Resolution  Resolution
	GridCount   GridCount
	GridSizing  GridSizing

	// Cuts は常に GridCount と同じ長さに保たれます
	Cuts []Cut

	AdditionalPrompt string // 最優先の全体指示
	ClothingPrompt   string // リファレンスモードの衣装テキスト

	Concept        string
	CustomLocation string
}

// DefaultGenerationSettings は、初期状態の設定を返します
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		LensID:      "rf85",
		AspectRatio: AspectRatioPortrait,
		Resolution:  Resolution2K,
		GridCount:   1,
		GridSizing:  GridSizingUniform,
		Cuts:        []Cut{NewDefaultCut()},
		Concept:     DefaultConcept(),
	}
}

// Clone は、Cutsを含めて設定を複製します
func (s GenerationSettings) Clone() GenerationSettings {
	c := s
	c.Cuts = append([]Cut(nil), s.Cuts...)
	return c
}

// SetGridCount は、カット数を変更し Cuts を同じ長さに揃えます。
// 既存のカットは先頭から保持し、増えた分はプリセット先頭の値で埋めます
func (s *GenerationSettings) SetGridCount(count GridCount) error {
	if !count.IsValid() {
		return NewValidationError("gridCount", fmt.Sprintf("カット数は1, 2, 3, 4, 6, 9のいずれかを指定してください: %d", int(count)))
	}

	cuts := make([]Cut, int(count))
	for i := range cuts {
		if i < len(s.Cuts) {
			cuts[i] = s.Cuts[i]
		} else {
			cuts[i] = NewDefaultCut()
		}
	}
	s.GridCount = count
	s.Cuts = cuts
	return nil
}

// SetConcept はプリセットのコンセプトを選択し、カスタムロケーションをクリアします
func (s *GenerationSettings) SetConcept(concept string) {
	s.Concept = concept
	s.CustomLocation = ""
}

// UpdateCut は指定インデックスのカットを更新します
func (s *GenerationSettings) UpdateCut(index int, fn func(*Cut)) error {
	if index < 0 || index >= len(s.Cuts) {
		return NewValidationError("cut", fmt.Sprintf("カット番号は1〜%dの範囲で指定してください", len(s.Cuts)))
	}
	fn(&s.Cuts[index])
	return nil
}

// EffectiveConcept は、カスタムロケーションが入力されていればそれを、なければコンセプトを返します
func (s GenerationSettings) EffectiveConcept() string {
	if custom := strings.TrimSpace(s.CustomLocation); custom != "" {
		return custom
	}
	return s.Concept
}

// EffectiveAngle は、インデックスiのカットで実際に使うカメラアングルを返します。
// カスタム値 → 同じインデックスのプリセット → 先頭カットのプリセット → カタログ先頭 の順に決まります
func (s GenerationSettings) EffectiveAngle(i int) string {
	if i >= 0 && i < len(s.Cuts) {
		if custom := strings.TrimSpace(s.Cuts[i].CustomAngle); custom != "" {
			return custom
		}
		if s.Cuts[i].PresetAngle != "" {
			return s.Cuts[i].PresetAngle
		}
	}
	if len(s.Cuts) > 0 && s.Cuts[0].PresetAngle != "" {
		return s.Cuts[0].PresetAngle
	}
	return DefaultCameraAngle()
}

// EffectivePose は、インデックスiのカットで実際に使うポーズを返します。
// 優先順位は EffectiveAngle と同じです
func (s GenerationSettings) EffectivePose(i int) string {
	if i >= 0 && i < len(s.Cuts) {
		if custom := strings.TrimSpace(s.Cuts[i].CustomPose); custom != "" {
			return custom
		}
		if s.Cuts[i].PresetPose != "" {
			return s.Cuts[i].PresetPose
		}
	}
	if len(s.Cuts) > 0 && s.Cuts[0].PresetPose != "" {
		return s.Cuts[0].PresetPose
	}
	return DefaultPose()
}

// Validate は、列挙値がすべて定義済みかを検証します
func (s GenerationSettings) Validate() error {
	if !s.AspectRatio.IsValid() {
		return NewValidationError("aspectRatio", "アスペクト比が不正です")
	}
	if !s.Resolution.IsValid() {
		return NewValidationError("resolution", "解像度が不正です")
	}
	if !s.GridCount.IsValid() {
		return NewValidationError("gridCount", "カット数が不正です")
	}
	if !s.GridSizing.IsValid() {
		return NewValidationError("gridSizing", "レイアウトが不正です")
	}
	return nil
}

package domain

import "fmt"

// GeneratedImage は生成履歴の1エントリです。作成後に変更されることはありません
type GeneratedImage struct {
	URL   string
	Label string
}

// History は新しい順に並ぶ追記専用の生成履歴です
type History struct {
	images []GeneratedImage
}

// Add は履歴の先頭にエントリを追加します
func (h *History) Add(image GeneratedImage) {
	h.images = append([]GeneratedImage{image}, h.images...)
}

// Images は履歴のコピーを返します
func (h *History) Images() []GeneratedImage {
	return append([]GeneratedImage(nil), h.images...)
}

// Len は履歴の件数を返します
func (h *History) Len() int {
	return len(h.images)
}

func gridLabel(s GenerationSettings) string {
	if s.GridCount > 1 {
		return fmt.Sprintf("%dカット", int(s.GridCount))
	}
	return "単独カット"
}

// StandardLabel は通常生成の履歴ラベルを返します
func StandardLabel(s GenerationSettings) string {
	return fmt.Sprintf("[%s] %s", gridLabel(s), s.EffectiveConcept())
}

// ReferenceLabel はリファレンス生成の履歴ラベルを返します
func ReferenceLabel(s GenerationSettings) string {
	return fmt.Sprintf("[%s] Ref Mix: %s", gridLabel(s), s.EffectiveConcept())
}

// EditLabel は修正の履歴ラベルを返します
func EditLabel(instruction string) string {
	return "修正: " + instruction
}

// NextCutLabel は同一キャラクターの次カット生成の履歴ラベルを返します
func NextCutLabel(newContext string) string {
	return "次のカット: " + newContext
}

package discord

import (
	"fmt"
	"strings"

	"beautystudio/internal/application"
	"beautystudio/internal/domain"
)

// formatSettings は、撮影設定の一覧を表示用にフォーマットします
func formatSettings(settings domain.GenerationSettings) string {
	lens := domain.FindLens(settings.LensID)

	var b strings.Builder
	b.WriteString("📷 **撮影設定**\n")
	b.WriteString(fmt.Sprintf("- レンズ: %s\n", lens.Name))
	b.WriteString(fmt.Sprintf("- アスペクト比: %s\n", settings.AspectRatio.DisplayName()))
	b.WriteString(fmt.Sprintf("- 解像度: %s\n", settings.Resolution.DisplayName()))
	if settings.GridCount > 1 {
		b.WriteString(fmt.Sprintf("- カット数: %s / %s\n", settings.GridCount.DisplayName(), settings.GridSizing.DisplayName()))
	} else {
		b.WriteString(fmt.Sprintf("- カット数: %s\n", settings.GridCount.DisplayName()))
	}
	b.WriteString(fmt.Sprintf("- コンセプト: %s\n", settings.EffectiveConcept()))

	for i := range settings.Cuts {
		b.WriteString(fmt.Sprintf("- カット%d: %s / %s\n", i+1, settings.EffectiveAngle(i), settings.EffectivePose(i)))
	}

	if text := strings.TrimSpace(settings.AdditionalPrompt); text != "" {
		b.WriteString(fmt.Sprintf("- 追加指示: %s\n", text))
	}
	if text := strings.TrimSpace(settings.ClothingPrompt); text != "" {
		b.WriteString(fmt.Sprintf("- 衣装テキスト: %s\n", text))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatSnapshot は、設定に参照画像と履歴の状況を加えてフォーマットします
func formatSnapshot(snapshot domain.StudioSnapshot, historyCount int) string {
	var b strings.Builder
	b.WriteString(formatSettings(snapshot.Settings))
	b.WriteString("\n\n🖼️ **参照画像**\n")
	b.WriteString(fmt.Sprintf("- モデル: %d枚 (選択中 %d枚)\n", len(snapshot.ModelRefs), len(domain.SelectedReferences(snapshot.ModelRefs))))
	b.WriteString(fmt.Sprintf("- 衣装: %d枚 (選択中 %d枚)\n", len(snapshot.ClothingRefs), len(domain.SelectedReferences(snapshot.ClothingRefs))))
	if snapshot.ExtractedOutfit != "" {
		b.WriteString("- 衣装抽出結果: あり（/studio-outfit-adopt で追加できます）\n")
	}
	b.WriteString(fmt.Sprintf("\n🕘 **履歴**: %d件", historyCount))
	return b.String()
}

// formatReferences は、参照画像の一覧をフォーマットします
func formatReferences(kind domain.ReferenceKind, refs []domain.ReferenceImage) string {
	header := fmt.Sprintf("🖼️ **%s画像** (%d枚, 選択中 %d枚)", kind.DisplayName(), len(refs), len(domain.SelectedReferences(refs)))
	if len(refs) == 0 {
		return header + "\nまだアップロードされていません。/studio-ref-add で追加してください。"
	}

	lines := []string{header}
	for i, ref := range refs {
		mark := "⬜"
		if ref.Selected {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %d. `%s`", mark, i+1, ref.ID))
	}
	return strings.Join(lines, "\n")
}

// formatHistory は、生成履歴を新しい順に番号つきでフォーマットします
func formatHistory(images []domain.GeneratedImage) string {
	if len(images) == 0 {
		return "🕘 まだ生成履歴がありません。"
	}

	lines := []string{"🕘 **生成履歴** (1が最新)"}
	for i, image := range images {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, image.Label))
	}
	return strings.Join(lines, "\n")
}

// formatLoadResult は、参照画像の一括追加の結果をフォーマットします
func formatLoadResult(kind domain.ReferenceKind, result application.ReferenceLoadResult) string {
	lines := []string{fmt.Sprintf("✅ %s画像を%d枚追加しました。", kind.DisplayName(), len(result.Added))}
	for _, ref := range result.Added {
		lines = append(lines, fmt.Sprintf("- `%s`", ref.ID))
	}
	if result.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("⚠️ 上限を超えたため%d枚は追加しませんでした。", result.Skipped))
	}
	for _, err := range result.Failed {
		lines = append(lines, fmt.Sprintf("⚠️ %v", err))
	}
	return strings.Join(lines, "\n")
}

// formatKeyStatus は、APIキーの設定状況をフォーマットします
func formatKeyStatus(status application.APIKeyStatus) string {
	if status.Source == domain.APIKeySourceNone {
		return "📊 **APIキー設定状況**\n\n❌ **APIキー**: 未設定\n/set-api で設定してください。"
	}
	return fmt.Sprintf("📊 **APIキー設定状況**\n\n✅ **APIキー**: %s\n📦 **取得元**: %s", status.Masked, status.Source.DisplayName())
}

package domain

import (
	"fmt"
	"strings"
)

// 以下の関数はすべて純粋関数です。同じ入力に対して常にバイト単位で同じ文字列を返します

// BuildStyleBlock は、レンズ情報だけをパラメータとする固定のエディトリアルスタイル指示を生成します
func BuildStyleBlock(lens LensConfig) string {
	var builder strings.Builder

	builder.WriteString("High-end commercial fashion photography.\n")
	builder.WriteString("Luxury fashion magazine editorial style.\n")
	builder.WriteString("K-POP idol aesthetic, sophisticated and trendy.\n")
	builder.WriteString("Flawless skin texture, vivid colors, professional studio lighting.\n")
	builder.WriteString("Bright and lively atmosphere, photo-realistic 8K resolution.\n")
	builder.WriteString("Ultra-detailed, sharp focus on eyes and face.\n")
	builder.WriteString("Crystal clear quality, clean composition.\n")
	builder.WriteString("\n")
	builder.WriteString("Subject details:\n")
	builder.WriteString("Professional female fashion model.\n")
	builder.WriteString("Elegant and confident pose.\n")
	builder.WriteString("Charming and attractive face, perfect makeup styling.\n")
	builder.WriteString("Detailed facial features, expressive eyes.\n")
	builder.WriteString("\n")
	builder.WriteString("Camera: Canon EOS R5.\n")
	builder.WriteString(fmt.Sprintf("Lens: %s (%s, %s).\n", lens.Name, lens.FocalLength, lens.Aperture))
	builder.WriteString(fmt.Sprintf("Technique: %s.", lens.Description))

	return builder.String()
}

// BuildLayoutBlock は、カット数に応じた構図の指示を生成します。
// 1カットならアングルとポーズを1組、複数カットならパネルごとに1行ずつ出力します
func BuildLayoutBlock(settings GenerationSettings) string {
	var builder strings.Builder

	if settings.GridCount <= 1 {
		builder.WriteString("Composition: Single full-frame high-quality photo.\n")
		builder.WriteString(fmt.Sprintf("Camera Angle: %s.\n", settings.EffectiveAngle(0)))
		builder.WriteString(fmt.Sprintf("Pose: %s.", settings.EffectivePose(0)))
		return builder.String()
	}

	sizing := "Split the image into equal-sized panels."
	if settings.GridSizing == GridSizingRandom {
		sizing = "Create a collage with varied sized panels (artistic layout)."
	}

	builder.WriteString("FORMAT: PHOTO COLLAGE / SPLIT SCREEN.\n")
	builder.WriteString(fmt.Sprintf("Count: %d distinct sub-images (panels) merged into one final image file.\n", int(settings.GridCount)))
	builder.WriteString(fmt.Sprintf("Layout: %s\n", sizing))
	builder.WriteString("\n")
	builder.WriteString("PANEL CONFIGURATIONS (Angle & Pose per cut):\n")
	for i := 0; i < int(settings.GridCount); i++ {
		builder.WriteString(fmt.Sprintf("Panel %d: Angle: %s, Pose: %s\n", i+1, settings.EffectiveAngle(i), settings.EffectivePose(i)))
	}
	builder.WriteString("\n")
	builder.WriteString("Ensure borders between panels are clean (white or thin black line or gapless).\n")
	builder.WriteString("Maintain consistent lighting and color grading across all panels.")

	return builder.String()
}

// BuildOverrideBlock は、追加指示が入力されている場合に、それが他のすべての
// ポーズ・アングル・レイアウト指定より優先されることを明示するブロックを生成します
func BuildOverrideBlock(settings GenerationSettings) string {
	request := strings.TrimSpace(settings.AdditionalPrompt)
	if request == "" {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("*** GLOBAL OVERRIDE INSTRUCTIONS (HIGHEST PRIORITY) ***\n")
	builder.WriteString(fmt.Sprintf("USER REQUEST: \"%s\"\n", request))
	builder.WriteString("\n")
	builder.WriteString("CRITICAL NOTE:\n")
	builder.WriteString("The \"USER REQUEST\" above takes ABSOLUTE PRECEDENCE over any specific camera angle, pose, or layout settings defined previously.\n")
	builder.WriteString("If the user request contradicts the selected pose or angle, IGNORE the selection and FOLLOW the user request.")
	return builder.String()
}

// joinSections は空のセクションを除いて空行区切りで連結します
func joinSections(sections ...string) string {
	nonEmpty := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// ComposeStandardPrompt は通常モードのプロンプトを生成します
func ComposeStandardPrompt(lens LensConfig, settings GenerationSettings) string {
	return joinSections(
		BuildStyleBlock(lens),
		fmt.Sprintf("Concept/Location: %s.", settings.EffectiveConcept()),
		BuildLayoutBlock(settings),
		BuildOverrideBlock(settings),
	)
}

// ReferencePayload は、リファレンスモードで送信する画像とテキストの組です。
// Images の並び(モデル画像 → 衣装画像)は Text の "First N images" / "NEXT M images" と一致します
type ReferencePayload struct {
	Images []ImageData
	Text   string
}

// ComposeReferencePrompt は、選択済みのモデル画像と衣装画像から、画像パーツとプロンプトを同時に組み立てます。
// 呼び出し側は、モデル画像が1枚以上、かつ衣装画像か衣装テキストのどちらかがあることを事前に検証してください
func ComposeReferencePrompt(lens LensConfig, settings GenerationSettings, modelRefs, clothingRefs []ReferenceImage) (ReferencePayload, error) {
	var payload ReferencePayload

	modelCount := 0
	for _, ref := range SelectedReferences(modelRefs) {
		data, err := ParseDataURL(ref.URL)
		if err != nil {
			return ReferencePayload{}, err
		}
		payload.Images = append(payload.Images, data)
		modelCount++
	}

	clothingCount := 0
	for _, ref := range SelectedReferences(clothingRefs) {
		data, err := ParseDataURL(ref.URL)
		if err != nil {
			return ReferencePayload{}, err
		}
		payload.Images = append(payload.Images, data)
		clothingCount++
	}

	clothingPrompt := strings.TrimSpace(settings.ClothingPrompt)

	var inputs strings.Builder
	inputs.WriteString("INPUT REFERENCES:\n")
	inputs.WriteString(fmt.Sprintf("- Group A: First %d images = Character Reference (Face, Hair, Body).\n", modelCount))

	var outfit strings.Builder
	if clothingCount > 0 {
		inputs.WriteString(fmt.Sprintf("- The NEXT %d images are the 'CLOTHING REFERENCE' (Target Outfit).", clothingCount))

		note := "Follow the clothing reference exactly."
		if clothingPrompt != "" {
			note = fmt.Sprintf("Additional Styling Details: \"%s\"", clothingPrompt)
		}
		outfit.WriteString("2. OUTFIT REPLACEMENT (VIRTUAL TRY-ON):\n")
		outfit.WriteString("   - Disregard the clothing worn in the 'IDENTITY REFERENCE' images.\n")
		outfit.WriteString("   - Dress the model in the items from the 'CLOTHING REFERENCE'.\n")
		outfit.WriteString("   - Accurately replicate the fabric, color, texture, and silhouette of the reference clothing.\n")
		outfit.WriteString("   - Ensure the clothing fits the model's body shape naturally.\n")
		outfit.WriteString(fmt.Sprintf("   (Note: %s)", note))
	} else {
		inputs.WriteString("- No specific clothing reference images provided.")

		outfit.WriteString("2. OUTFIT REPLACEMENT:\n")
		outfit.WriteString("   - The user has provided a text description for the new outfit.\n")
		outfit.WriteString(fmt.Sprintf("   - OUTFIT DESCRIPTION: \"%s\"\n", clothingPrompt))
		outfit.WriteString("   - Generate a high-fashion outfit matching this description, replacing the original clothes.")
	}

	var instructions strings.Builder
	instructions.WriteString("INSTRUCTIONS:\n")
	instructions.WriteString("Generate a high-end commercial fashion photo.\n")
	instructions.WriteString("1. CHARACTER: Generate a character that looks like the person in Group A. Maintain consistency in facial features, hairstyle, and body proportions.\n")
	instructions.WriteString(outfit.String())
	instructions.WriteString("\n3. COMPOSITION: Seamlessly integrate the character and outfit.")

	scene := "SCENE & COMPOSITION:\n" +
		fmt.Sprintf("Concept/Location: %s\n", settings.EffectiveConcept()) +
		BuildLayoutBlock(settings)

	styleNotes := "STYLE NOTES:\n" +
		"- Photorealistic, 8K resolution.\n" +
		"- Professional fashion lighting.\n" +
		"- Natural skin texture."

	payload.Text = joinSections(
		BuildStyleBlock(lens),
		"TASK: Fashion Editorial with Consistent Character.",
		inputs.String(),
		instructions.String(),
		scene,
		BuildOverrideBlock(settings),
		styleNotes,
	)
	return payload, nil
}

// ComposeEditPrompt は、生成済み画像を部分的に修正するためのプロンプトを生成します
func ComposeEditPrompt(lens LensConfig, settings GenerationSettings, editInstruction string) string {
	context := "ORIGINAL CONTEXT:\n" +
		fmt.Sprintf("Concept: %s\n", settings.EffectiveConcept()) +
		fmt.Sprintf("Primary Camera Angle: %s", settings.EffectiveAngle(0))

	request := "USER EDIT REQUEST:\n" + editInstruction

	constraint := "Maintain the original composition, lighting, and high-quality 8K aesthetic.\n" +
		"Only modify the specific details requested in the edit. Preserve everything else."

	return joinSections(BuildStyleBlock(lens), context, request, constraint)
}

// ComposeConsistentCharacterPrompt は、参照画像1枚のキャラクターを保ったまま
// ポーズ・アングル・背景を差し替えた新しいカットを生成するためのプロンプトを生成します
func ComposeConsistentCharacterPrompt(lens LensConfig, settings GenerationSettings, newContext string) string {
	task := "TASK:\n" +
		"The provided image is the Reference Model.\n" +
		"Generate a COMPLETELY NEW photo (or photo set) of this consistent character (face, hairstyle, physique)."

	layout := "LAYOUT & COMPOSITION:\n" + BuildLayoutBlock(settings)

	scene := "NEW SCENE / ACTION REQUIREMENTS:\n" + newContext

	critical := "CRITICAL INSTRUCTIONS:\n" +
		"1. Maintain consistent character identity (Face, Hair, Physique) with the reference image.\n" +
		"2. Change the Pose, Angle, and Background according to the \"New Scene\" and \"Layout\" requirements.\n" +
		"3. Maintain the \"Commercial Beauty Pictorial\" aesthetic."

	return joinSections(
		BuildStyleBlock(lens),
		task,
		layout,
		scene,
		BuildOverrideBlock(settings),
		critical,
	)
}

// ComposeOutfitExtractionPrompt は、人物を取り除き着用アイテムだけを商品写真にする固定プロンプトを返します
func ComposeOutfitExtractionPrompt() string {
	return joinSections(
		"TASK: Analyze the clothing, shoes, and accessories worn by the model in this image.\n"+
			"Generate a high-end commercial product photography shot of ONLY these items.",
		"STYLE:\n"+
			"- \"Flat Lay\" (items arranged neatly on a surface) OR \"Ghost Mannequin\" (invisible 3D form).\n"+
			"- High-fashion magazine catalog style.\n"+
			"- Professional studio lighting.\n"+
			"- Clean, neutral background (Off-white or light grey).",
		"CONTENT:\n"+
			"- Include the main outfit (Top, Bottom, Dress, Outerwear).\n"+
			"- Include visible accessories (Shoes, Bag, Jewelry, Hats).\n"+
			"- REMOVE the human body, face, hair, and skin.\n"+
			"- Focus strictly on the fashion items as a product display.",
	)
}

// ComposeOutfitEditPrompt は、商品写真のスタイルを保ったまま衣装画像を修正するプロンプトを返します
func ComposeOutfitEditPrompt(instruction string) string {
	return joinSections(
		"TASK: Edit this fashion product image according to the user's request.\n"+
			fmt.Sprintf("USER REQUEST: \"%s\"", instruction),
		"CONSTRAINTS:\n"+
			"- Maintain the \"Flat Lay\" or \"Product Photography\" style.\n"+
			"- Keep the background clean and neutral unless specified otherwise.\n"+
			"- High-quality commercial finish.",
	)
}

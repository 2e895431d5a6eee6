package discord

import (
	"fmt"
	"strings"

	"beautystudio/internal/domain"

	"github.com/bwmarrin/discordgo"
)

// clearMarker は、テキスト設定を空に戻すための入力値です
const clearMarker = "-"

// maxAttachmentOptions は、/studio-ref-add で一度に添付できる画像の数です
const maxAttachmentOptions = 4

// apiKeyCommands は、APIキー管理用のスラッシュコマンド定義を返します
func apiKeyCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "set-api",
			Description: "Gemini APIキーを保存します（空白を指定すると削除します）",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "api-key",
					Description: "Gemini APIキー",
					Required:    true,
				},
			},
		},
		{
			Name:        "del-api",
			Description: "保存したGemini APIキーを削除します",
		},
		{
			Name:        "test-api",
			Description: "Gemini APIキーで接続できるかを確認します",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "api-key",
					Description: "確認するAPIキー（省略時は現在のキー）",
				},
			},
		},
		{
			Name:        "status",
			Description: "Gemini APIキーの設定状況を表示します",
		},
	}
}

// studioCommands は、撮影スタジオ用のスラッシュコマンド定義を返します
func studioCommands() []*discordgo.ApplicationCommand {
	minCut := 1.0
	minHistory := 1.0

	return []*discordgo.ApplicationCommand{
		{
			Name:        "studio-settings",
			Description: "撮影設定を変更します（テキスト項目は - で空に戻せます）",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("lens", "レンズ", lensChoices()),
				stringOption("aspect-ratio", "アスペクト比", aspectRatioChoices()),
				stringOption("resolution", "解像度", resolutionChoices()),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "grid-count",
					Description: "1枚に含めるカット数",
					Choices:     gridCountChoices(),
				},
				stringOption("grid-sizing", "コラージュのパネルサイズ", gridSizingChoices()),
				stringOption("concept", "撮影コンセプト", conceptChoices()),
				stringOption("custom-location", "カスタムロケーション（コンセプトより優先）", nil),
				stringOption("additional-prompt", "全体への追加指示（最優先）", nil),
				stringOption("clothing-prompt", "衣装のテキスト指定（リファレンスモード）", nil),
			},
		},
		{
			Name:        "studio-cut",
			Description: "カットごとのアングルとポーズを変更します",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cut",
					Description: "カット番号（1から）",
					Required:    true,
					MinValue:    &minCut,
					MaxValue:    9,
				},
				stringOption("angle", "カメラアングル", stringChoices(domain.AllCameraAngles())),
				stringOption("pose", "ポーズ", stringChoices(domain.AllFashionPoses())),
				stringOption("custom-angle", "カスタムアングル（プリセットより優先）", nil),
				stringOption("custom-pose", "カスタムポーズ（プリセットより優先）", nil),
			},
		},
		{
			Name:        "studio-show",
			Description: "現在の撮影設定と画像を表示します",
		},
		{
			Name:        "studio-prompt",
			Description: "現在の設定で送信されるプロンプトを表示します",
			Options: []*discordgo.ApplicationCommandOption{
				modeOption(),
			},
		},
		{
			Name:        "studio-ref-add",
			Description: "参照画像をアップロードします",
			Options:     refAddOptions(),
		},
		{
			Name:        "studio-ref-list",
			Description: "参照画像の一覧を表示します",
			Options: []*discordgo.ApplicationCommandOption{
				kindOption(),
			},
		},
		{
			Name:        "studio-ref-toggle",
			Description: "参照画像の選択を切り替えます",
			Options: []*discordgo.ApplicationCommandOption{
				kindOption(),
				requiredStringOption("id", "参照画像のID"),
			},
		},
		{
			Name:        "studio-ref-remove",
			Description: "参照画像を削除します",
			Options: []*discordgo.ApplicationCommandOption{
				kindOption(),
				requiredStringOption("id", "参照画像のID"),
			},
		},
		{
			Name:        "studio-generate",
			Description: "画像を生成します",
			Options: []*discordgo.ApplicationCommandOption{
				modeOption(),
			},
		},
		{
			Name:        "studio-edit",
			Description: "現在の画像を指示に従って修正します",
			Options: []*discordgo.ApplicationCommandOption{
				requiredStringOption("instruction", "修正内容"),
			},
		},
		{
			Name:        "studio-next",
			Description: "同じモデルで次のカットを生成します",
			Options: []*discordgo.ApplicationCommandOption{
				requiredStringOption("scene", "次のシーン・アクション"),
			},
		},
		{
			Name:        "studio-extract-outfit",
			Description: "選択中のモデル画像1枚から衣装を抽出します",
		},
		{
			Name:        "studio-outfit-edit",
			Description: "抽出した衣装を修正します",
			Options: []*discordgo.ApplicationCommandOption{
				requiredStringOption("instruction", "修正内容"),
			},
		},
		{
			Name:        "studio-outfit-adopt",
			Description: "抽出した衣装を衣装の参照画像に追加します",
		},
		{
			Name:        "studio-history",
			Description: "生成履歴を表示します。番号を指定するとその画像を現在の画像にします",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "index",
					Description: "履歴の番号（1が最新）",
					MinValue:    &minHistory,
				},
			},
		},
		{
			Name:        "studio-reset",
			Description: "このチャンネルの設定・参照画像・履歴をリセットします",
		},
	}
}

func stringOption(name, description string, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Choices:     choices,
	}
}

func requiredStringOption(name, description string) *discordgo.ApplicationCommandOption {
	option := stringOption(name, description, nil)
	option.Required = true
	return option
}

func kindOption() *discordgo.ApplicationCommandOption {
	option := stringOption("kind", "参照画像の種類", []*discordgo.ApplicationCommandOptionChoice{
		{Name: domain.ReferenceKindModel.DisplayName(), Value: domain.ReferenceKindModel.String()},
		{Name: domain.ReferenceKindClothing.DisplayName(), Value: domain.ReferenceKindClothing.String()},
	})
	option.Required = true
	return option
}

func modeOption() *discordgo.ApplicationCommandOption {
	return stringOption("mode", "生成モード（省略時は通常）", []*discordgo.ApplicationCommandOptionChoice{
		{Name: "通常", Value: "standard"},
		{Name: "リファレンス", Value: "reference"},
	})
}

func refAddOptions() []*discordgo.ApplicationCommandOption {
	options := []*discordgo.ApplicationCommandOption{kindOption()}
	for n := 1; n <= maxAttachmentOptions; n++ {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        fmt.Sprintf("image%d", n),
			Description: fmt.Sprintf("画像%d", n),
			Required:    n == 1,
		})
	}
	return options
}

func lensChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, lens := range domain.AllLenses() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: lens.Name, Value: lens.ID})
	}
	return choices
}

func aspectRatioChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, a := range domain.AllAspectRatios() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: a.DisplayName(), Value: a.String()})
	}
	return choices
}

func resolutionChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, r := range domain.AllResolutions() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: r.DisplayName(), Value: r.String()})
	}
	return choices
}

func gridCountChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, c := range domain.AllGridCounts() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.DisplayName(), Value: int(c)})
	}
	return choices
}

func gridSizingChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, g := range domain.AllGridSizings() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: g.DisplayName(), Value: g.String()})
	}
	return choices
}

func conceptChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, group := range domain.AllConceptGroups() {
		for _, item := range group.Items {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%s: %s", group.Label, item),
				Value: item,
			})
		}
	}
	return choices
}

func stringChoices(values []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return choices
}

// commandOptions は、オプションを名前で引けるようにしたものです
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func newCommandOptions(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	values := make(commandOptions, len(options))
	for _, option := range options {
		values[option.Name] = option
	}
	return values
}

func (o commandOptions) stringValue(name string) (string, bool) {
	option, ok := o[name]
	if !ok {
		return "", false
	}
	return option.StringValue(), true
}

func (o commandOptions) intValue(name string) (int, bool) {
	option, ok := o[name]
	if !ok {
		return 0, false
	}
	return int(option.IntValue()), true
}

// clearable は、"-" を空文字として扱います
func clearable(value string) string {
	if strings.TrimSpace(value) == clearMarker {
		return ""
	}
	return value
}

// attachmentURLs は、添付ファイルオプションのURLをオプションの並び順で返します
func attachmentURLs(data discordgo.ApplicationCommandInteractionData) []string {
	if data.Resolved == nil {
		return nil
	}

	var urls []string
	for _, option := range data.Options {
		if option.Type != discordgo.ApplicationCommandOptionAttachment {
			continue
		}
		id, _ := option.Value.(string)
		if attachment, ok := data.Resolved.Attachments[id]; ok {
			urls = append(urls, attachment.URL)
		}
	}
	return urls
}

// applySettingsOptions は、/studio-settings のオプションを設定に反映します
func applySettingsOptions(settings *domain.GenerationSettings, options commandOptions) error {
	if v, ok := options.stringValue("lens"); ok {
		settings.LensID = domain.FindLens(v).ID
	}
	if v, ok := options.stringValue("aspect-ratio"); ok {
		ratio, err := domain.ParseAspectRatio(v)
		if err != nil {
			return err
		}
		settings.AspectRatio = ratio
	}
	if v, ok := options.stringValue("resolution"); ok {
		resolution, err := domain.ParseResolution(v)
		if err != nil {
			return err
		}
		settings.Resolution = resolution
	}
	if n, ok := options.intValue("grid-count"); ok {
		count, err := domain.ParseGridCount(n)
		if err != nil {
			return err
		}
		if err := settings.SetGridCount(count); err != nil {
			return err
		}
	}
	if v, ok := options.stringValue("grid-sizing"); ok {
		sizing, err := domain.ParseGridSizing(v)
		if err != nil {
			return err
		}
		settings.GridSizing = sizing
	}
	// コンセプトを選び直すとカスタムロケーションはクリアされる
	if v, ok := options.stringValue("concept"); ok {
		settings.SetConcept(v)
	}
	if v, ok := options.stringValue("custom-location"); ok {
		settings.CustomLocation = clearable(v)
	}
	if v, ok := options.stringValue("additional-prompt"); ok {
		settings.AdditionalPrompt = clearable(v)
	}
	if v, ok := options.stringValue("clothing-prompt"); ok {
		settings.ClothingPrompt = clearable(v)
	}
	return nil
}

// applyCutOptions は、/studio-cut のオプションを指定カットに反映します
func applyCutOptions(settings *domain.GenerationSettings, options commandOptions) error {
	n, ok := options.intValue("cut")
	if !ok {
		return domain.NewValidationError("cut", "カット番号を指定してください")
	}

	return settings.UpdateCut(n-1, func(cut *domain.Cut) {
		if v, ok := options.stringValue("angle"); ok {
			cut.PresetAngle = v
		}
		if v, ok := options.stringValue("pose"); ok {
			cut.PresetPose = v
		}
		if v, ok := options.stringValue("custom-angle"); ok {
			cut.CustomAngle = clearable(v)
		}
		if v, ok := options.stringValue("custom-pose"); ok {
			cut.CustomPose = clearable(v)
		}
	})
}

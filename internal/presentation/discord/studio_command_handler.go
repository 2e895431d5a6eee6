package discord

import (
	"context"
	"fmt"
	"time"

	"beautystudio/internal/application"
	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/logging"

	"github.com/bwmarrin/discordgo"
)

// interactionFunc は、1つのスラッシュコマンドを処理する関数です
type interactionFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// StudioCommandHandler は、撮影スタジオのスラッシュコマンドを処理するハンドラーです。
// セッションはチャンネルごとに分かれます
type StudioCommandHandler struct {
	studio         *application.StudioApplicationService
	loader         *application.ReferenceLoader
	responses      *ResponseHandler
	requestTimeout time.Duration
	handlers       map[string]interactionFunc
}

// NewStudioCommandHandler は新しいStudioCommandHandlerインスタンスを作成します
func NewStudioCommandHandler(
	studio *application.StudioApplicationService,
	loader *application.ReferenceLoader,
	responses *ResponseHandler,
	requestTimeout time.Duration,
) *StudioCommandHandler {
	h := &StudioCommandHandler{
		studio:         studio,
		loader:         loader,
		responses:      responses,
		requestTimeout: requestTimeout,
	}
	h.handlers = map[string]interactionFunc{
		"studio-settings":       h.handleSettings,
		"studio-cut":            h.handleCut,
		"studio-show":           h.handleShow,
		"studio-prompt":         h.handlePrompt,
		"studio-ref-add":        h.handleRefAdd,
		"studio-ref-list":       h.handleRefList,
		"studio-ref-toggle":     h.handleRefToggle,
		"studio-ref-remove":     h.handleRefRemove,
		"studio-generate":       h.handleGenerate,
		"studio-edit":           h.handleEdit,
		"studio-next":           h.handleNext,
		"studio-extract-outfit": h.handleExtractOutfit,
		"studio-outfit-edit":    h.handleOutfitEdit,
		"studio-outfit-adopt":   h.handleOutfitAdopt,
		"studio-history":        h.handleHistory,
		"studio-reset":          h.handleReset,
	}
	return h
}

// Commands は、このハンドラーが処理するコマンドの定義を返します
func (h *StudioCommandHandler) Commands() []*discordgo.ApplicationCommand {
	return studioCommands()
}

// Handle は、コマンドを処理します。このハンドラーのコマンドでなければfalseを返します
func (h *StudioCommandHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	handler, ok := h.handlers[i.ApplicationCommandData().Name]
	if !ok {
		return false
	}
	handler(s, i)
	return true
}

func (h *StudioCommandHandler) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := newCommandOptions(i.ApplicationCommandData().Options)

	settings, err := h.studio.UpdateSettings(context.Background(), i.ChannelID, func(settings *domain.GenerationSettings) error {
		return applySettingsOptions(settings, options)
	})
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, "✅ 設定を更新しました。\n\n"+formatSettings(settings), false)
}

func (h *StudioCommandHandler) handleCut(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := newCommandOptions(i.ApplicationCommandData().Options)

	settings, err := h.studio.UpdateSettings(context.Background(), i.ChannelID, func(settings *domain.GenerationSettings) error {
		return applyCutOptions(settings, options)
	})
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, "✅ カット設定を更新しました。\n\n"+formatSettings(settings), false)
}

func (h *StudioCommandHandler) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, err := h.studio.Session(context.Background(), i.ChannelID)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	snapshot := session.Snapshot()
	summary := formatSnapshot(snapshot, len(session.History()))
	if snapshot.CurrentImage == "" {
		h.responses.Respond(s, i, summary, false)
		return
	}

	if err := h.responses.Defer(s, i, false); err != nil {
		logging.Errorf("%v", err)
		return
	}
	h.responses.EditImage(s, i, summary, snapshot.CurrentImage, "current")
}

func (h *StudioCommandHandler) handlePrompt(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := newCommandOptions(i.ApplicationCommandData().Options)
	modeValue, _ := options.stringValue("mode")

	mode, err := application.ParseGenerationMode(modeValue)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	prompt, err := h.studio.PreviewPrompt(context.Background(), i.ChannelID, mode)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	if err := h.responses.Defer(s, i, false); err != nil {
		logging.Errorf("%v", err)
		return
	}
	h.responses.EditText(s, i, "📝 **送信されるプロンプト**\n"+prompt)
}

func (h *StudioCommandHandler) handleRefAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	options := newCommandOptions(data.Options)
	kindValue, _ := options.stringValue("kind")

	kind, err := domain.ParseReferenceKind(kindValue)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	if err := h.responses.Defer(s, i, false); err != nil {
		logging.Errorf("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	result, err := h.loader.AddReferences(ctx, i.ChannelID, kind, attachmentURLs(data))
	if err != nil {
		h.responses.EditError(s, i, err)
		return
	}
	h.responses.EditText(s, i, formatLoadResult(kind, result))
}

func (h *StudioCommandHandler) handleRefList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, session, err := h.referenceTarget(i)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	snapshot := session.Snapshot()
	refs := snapshot.ModelRefs
	if kind == domain.ReferenceKindClothing {
		refs = snapshot.ClothingRefs
	}
	h.responses.Respond(s, i, formatReferences(kind, refs), false)
}

func (h *StudioCommandHandler) handleRefToggle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, session, err := h.referenceTarget(i)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	id, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("id")
	ref, err := session.ToggleReference(kind, id)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	state := "選択を解除しました"
	if ref.Selected {
		state = "選択しました"
	}
	h.responses.Respond(s, i, fmt.Sprintf("✅ %s画像 `%s` を%s。", kind.DisplayName(), ref.ID, state), false)
}

func (h *StudioCommandHandler) handleRefRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, session, err := h.referenceTarget(i)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	id, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("id")
	if err := session.RemoveReference(kind, id); err != nil {
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, fmt.Sprintf("🗑️ %s画像 `%s` を削除しました。", kind.DisplayName(), id), false)
}

// referenceTarget は、kindオプションとチャンネルのセッションを取得します
func (h *StudioCommandHandler) referenceTarget(i *discordgo.InteractionCreate) (domain.ReferenceKind, *domain.StudioSession, error) {
	kindValue, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("kind")
	kind, err := domain.ParseReferenceKind(kindValue)
	if err != nil {
		return 0, nil, err
	}

	session, err := h.studio.Session(context.Background(), i.ChannelID)
	if err != nil {
		return 0, nil, err
	}
	return kind, session, nil
}

func (h *StudioCommandHandler) handleGenerate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	modeValue, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("mode")
	mode, err := application.ParseGenerationMode(modeValue)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	h.runImageCommand(s, i, "画像生成", func(ctx context.Context) (domain.GeneratedImage, error) {
		return h.studio.Generate(ctx, i.ChannelID, mode)
	})
}

func (h *StudioCommandHandler) handleEdit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	instruction, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("instruction")

	h.runImageCommand(s, i, "画像の修正", func(ctx context.Context) (domain.GeneratedImage, error) {
		return h.studio.Edit(ctx, i.ChannelID, instruction)
	})
}

func (h *StudioCommandHandler) handleNext(s *discordgo.Session, i *discordgo.InteractionCreate) {
	scene, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("scene")

	h.runImageCommand(s, i, "次のカットの生成", func(ctx context.Context) (domain.GeneratedImage, error) {
		return h.studio.NextCut(ctx, i.ChannelID, scene)
	})
}

func (h *StudioCommandHandler) handleExtractOutfit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.runImageCommand(s, i, "衣装の抽出", func(ctx context.Context) (domain.GeneratedImage, error) {
		url, err := h.studio.ExtractOutfit(ctx, i.ChannelID)
		return domain.GeneratedImage{URL: url, Label: "衣装抽出 (/studio-outfit-adopt で衣装画像に追加できます)"}, err
	})
}

func (h *StudioCommandHandler) handleOutfitEdit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	instruction, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("instruction")

	h.runImageCommand(s, i, "衣装の修正", func(ctx context.Context) (domain.GeneratedImage, error) {
		url, err := h.studio.EditOutfit(ctx, i.ChannelID, instruction)
		return domain.GeneratedImage{URL: url, Label: "衣装修正: " + instruction}, err
	})
}

func (h *StudioCommandHandler) handleOutfitAdopt(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ref, err := h.studio.AdoptExtractedOutfit(context.Background(), i.ChannelID)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, fmt.Sprintf("✅ 抽出した衣装を衣装画像 `%s` として追加しました。", ref.ID), false)
}

func (h *StudioCommandHandler) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	index, ok := newCommandOptions(i.ApplicationCommandData().Options).intValue("index")
	if !ok {
		session, err := h.studio.Session(context.Background(), i.ChannelID)
		if err != nil {
			h.responses.RespondError(s, i, err)
			return
		}
		h.responses.Respond(s, i, formatHistory(session.History()), false)
		return
	}

	image, err := h.studio.SelectHistory(context.Background(), i.ChannelID, index-1)
	if err != nil {
		h.responses.RespondError(s, i, err)
		return
	}

	if err := h.responses.Defer(s, i, false); err != nil {
		logging.Errorf("%v", err)
		return
	}
	h.responses.EditImage(s, i, fmt.Sprintf("🕘 **%s**\n現在の画像にしました。", image.Label), image.URL, fmt.Sprintf("history-%d", index))
}

func (h *StudioCommandHandler) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.studio.ResetSession(context.Background(), i.ChannelID); err != nil {
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, "🔄 このチャンネルのスタジオをリセットしました。", false)
}

// runImageCommand は、応答を保留してから画像生成を行い、結果の画像で応答を置き換えます
func (h *StudioCommandHandler) runImageCommand(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	operation string,
	run func(ctx context.Context) (domain.GeneratedImage, error),
) {
	if err := h.responses.Defer(s, i, false); err != nil {
		logging.Errorf("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	image, err := run(ctx)
	if err != nil {
		logging.Warnf("%sに失敗 (channel=%s): %v", operation, i.ChannelID, err)
		h.responses.EditError(s, i, err)
		return
	}

	logging.Infof("%sが完了しました (channel=%s, %s)", operation, i.ChannelID, time.Since(start).Round(time.Millisecond))
	h.responses.EditImage(s, i, fmt.Sprintf("✨ **%s**", image.Label), image.URL, "studio")
}

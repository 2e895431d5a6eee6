package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beautystudio/internal/application"
	"beautystudio/internal/infrastructure/logging"

	"github.com/bwmarrin/discordgo"
)

// SlashCommandHandler は、Discordのスラッシュコマンドを処理するハンドラーです。
// APIキー管理のコマンドを自身で処理し、スタジオのコマンドはStudioCommandHandlerに渡します
type SlashCommandHandler struct {
	session        *discordgo.Session
	apiKeyService  *application.APIKeyApplicationService
	studioHandler  *StudioCommandHandler
	responses      *ResponseHandler
	requestTimeout time.Duration
}

// NewSlashCommandHandler は新しいSlashCommandHandlerインスタンスを作成します
func NewSlashCommandHandler(
	session *discordgo.Session,
	apiKeyService *application.APIKeyApplicationService,
	studioHandler *StudioCommandHandler,
	responses *ResponseHandler,
	requestTimeout time.Duration,
) *SlashCommandHandler {
	return &SlashCommandHandler{
		session:        session,
		apiKeyService:  apiKeyService,
		studioHandler:  studioHandler,
		responses:      responses,
		requestTimeout: requestTimeout,
	}
}

// Commands は、登録するすべてのスラッシュコマンドを返します
func (h *SlashCommandHandler) Commands() []*discordgo.ApplicationCommand {
	commands := apiKeyCommands()
	if h.studioHandler != nil {
		commands = append(commands, h.studioHandler.Commands()...)
	}
	return commands
}

// SetupSlashCommands は、スラッシュコマンドを設定します
func (h *SlashCommandHandler) SetupSlashCommands() error {
	// BotのユーザーIDを取得
	user, err := h.session.User("@me")
	if err != nil {
		return fmt.Errorf("Botユーザー情報の取得に失敗: %w", err)
	}

	// グローバルコマンドとして登録
	for _, command := range h.Commands() {
		if _, err := h.session.ApplicationCommandCreate(user.ID, "", command); err != nil {
			logging.Errorf("スラッシュコマンド %s の登録に失敗: %v", command.Name, err)
			return err
		}
		logging.Infof("スラッシュコマンド %s を登録しました", command.Name)
	}

	return nil
}

// SetupSlashCommandHandlers は、スラッシュコマンドのハンドラーを設定します
func (h *SlashCommandHandler) SetupSlashCommandHandlers() {
	h.session.AddHandler(h.handleInteractionCreate)
}

// handleInteractionCreate は、インタラクション作成イベントを処理します
func (h *SlashCommandHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	switch name {
	case "set-api":
		h.handleSetAPICommand(s, i)
	case "del-api":
		h.handleDelAPICommand(s, i)
	case "test-api":
		h.handleTestAPICommand(s, i)
	case "status":
		h.handleStatusCommand(s, i)
	default:
		if h.studioHandler == nil || !h.studioHandler.Handle(s, i) {
			logging.Warnf("未知のスラッシュコマンド: %s", name)
		}
	}
}

// handleSetAPICommand は、/set-apiコマンドを処理します
func (h *SlashCommandHandler) handleSetAPICommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.hasAdminPermission(i.Member) {
		h.responses.Respond(s, i, "❌ このコマンドを実行するには管理者権限が必要です。", true)
		return
	}

	apiKey, _ := newCommandOptions(i.ApplicationCommandData().Options).stringValue("api-key")
	if err := h.apiKeyService.SaveAPIKey(context.Background(), apiKey); err != nil {
		logging.Errorf("APIキーの保存に失敗: %v", err)
		h.responses.RespondError(s, i, err)
		return
	}

	if strings.TrimSpace(apiKey) == "" {
		h.responses.Respond(s, i, "✅ 保存済みのGemini APIキーを削除しました。", true)
		return
	}
	h.responses.Respond(s, i, fmt.Sprintf("✅ Gemini APIキーを保存しました。\n🔑 %s", application.MaskAPIKey(apiKey)), true)
}

// handleDelAPICommand は、/del-apiコマンドを処理します
func (h *SlashCommandHandler) handleDelAPICommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.hasAdminPermission(i.Member) {
		h.responses.Respond(s, i, "❌ このコマンドを実行するには管理者権限が必要です。", true)
		return
	}

	if err := h.apiKeyService.DeleteAPIKey(context.Background()); err != nil {
		logging.Errorf("APIキーの削除に失敗: %v", err)
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, "✅ 保存済みのGemini APIキーを削除しました。\n環境変数のキーがあればそちらを使用します。", true)
}

// handleTestAPICommand は、/test-apiコマンドを処理します。結果は参考情報で、以降の生成には影響しません
func (h *SlashCommandHandler) handleTestAPICommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	apiKey, given := newCommandOptions(i.ApplicationCommandData().Options).stringValue("api-key")

	if err := h.responses.Defer(s, i, true); err != nil {
		logging.Errorf("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	var ok bool
	var err error
	if given {
		ok, err = h.apiKeyService.TestConnection(ctx, apiKey)
	} else {
		ok, err = h.apiKeyService.TestCurrentConnection(ctx)
	}
	if err != nil {
		h.responses.EditError(s, i, err)
		return
	}

	if ok {
		h.responses.EditText(s, i, "✅ Gemini APIに接続できました。")
		return
	}
	h.responses.EditText(s, i, "❌ Gemini APIに接続できませんでした。APIキーを確認してください。")
}

// handleStatusCommand は、/statusコマンドを処理します
func (h *SlashCommandHandler) handleStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	status, err := h.apiKeyService.Status(context.Background())
	if err != nil {
		logging.Errorf("APIキーの確認に失敗: %v", err)
		h.responses.RespondError(s, i, err)
		return
	}
	h.responses.Respond(s, i, formatKeyStatus(status), true)
}

// hasAdminPermission は、メンバーが管理者権限を持っているかをチェックします
func (h *SlashCommandHandler) hasAdminPermission(member *discordgo.Member) bool {
	if member == nil {
		return false
	}

	// 管理者権限をチェック（Permissionsはint64のビットフラグ）
	return member.Permissions&discordgo.PermissionAdministrator != 0
}

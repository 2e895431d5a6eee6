package discord

import (
	"beautystudio/internal/infrastructure/logging"

	"github.com/bwmarrin/discordgo"
)

// DiscordHandler は、Discordのイベントハンドラです
type DiscordHandler struct {
	session             *discordgo.Session
	slashCommandHandler *SlashCommandHandler
}

// NewDiscordHandler は新しいDiscordHandlerインスタンスを作成します
func NewDiscordHandler(session *discordgo.Session, slashCommandHandler *SlashCommandHandler) *DiscordHandler {
	return &DiscordHandler{
		session:             session,
		slashCommandHandler: slashCommandHandler,
	}
}

// SetupHandlers は、Discordのイベントハンドラを設定します
func (h *DiscordHandler) SetupHandlers() {
	h.session.AddHandler(h.handleReady)

	// スラッシュコマンドハンドラーを設定
	if h.slashCommandHandler != nil {
		h.slashCommandHandler.SetupSlashCommandHandlers()
	}
}

// handleReady は、接続完了時にBotのユーザー名を記録します
func (h *DiscordHandler) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	logging.Infof("Discordに接続しました: %s#%s (%d サーバー)", r.User.Username, r.User.Discriminator, len(r.Guilds))
}

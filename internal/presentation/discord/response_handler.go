package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/logging"

	"github.com/bwmarrin/discordgo"
)

// ResponseHandler は、インタラクションへの応答送信・フォーマット処理を担当するハンドラーです
type ResponseHandler struct{}

// DiscordMessageLimit は、Discordのメッセージ文字数制限です
const DiscordMessageLimit = 2000

// NewResponseHandler は新しいResponseHandlerインスタンスを作成します
func NewResponseHandler() *ResponseHandler {
	return &ResponseHandler{}
}

// Respond は、インタラクションに即時応答します
func (h *ResponseHandler) Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: h.truncate(content),
		},
	}
	if ephemeral {
		response.Data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		logging.Errorf("インタラクションへの応答に失敗: %v", err)
	}
}

// RespondError は、エラーをフォーマットして本人にだけ見える形で応答します
func (h *ResponseHandler) RespondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	h.Respond(s, i, h.formatError(err), true)
}

// Defer は、時間のかかる処理の前に「考え中」の応答を返します
func (h *ResponseHandler) Defer(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}

	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		return fmt.Errorf("応答の保留に失敗: %w", err)
	}
	return nil
}

// EditText は、保留した応答をテキストで置き換えます。長い場合は残りをフォローアップで送信します
func (h *ResponseHandler) EditText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	chunks := h.splitMessage(content)

	first := chunks[0]
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &first}); err != nil {
		logging.Errorf("応答の編集に失敗: %v", err)
		return
	}

	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk}); err != nil {
			logging.Errorf("フォローアップメッセージの送信に失敗: %v", err)
			return
		}
	}
}

// EditError は、保留した応答をエラーメッセージで置き換えます
func (h *ResponseHandler) EditError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	h.EditText(s, i, h.formatError(err))
}

// EditImage は、保留した応答を画像添付つきのメッセージで置き換えます
func (h *ResponseHandler) EditImage(s *discordgo.Session, i *discordgo.InteractionCreate, content, dataURL, baseName string) {
	file, err := imageFile(dataURL, baseName)
	if err != nil {
		h.EditError(s, i, err)
		return
	}

	content = h.truncate(content)
	edit := &discordgo.WebhookEdit{
		Content: &content,
		Files:   []*discordgo.File{file},
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		logging.Errorf("画像の送信に失敗: %v", err)
	}
}

// imageFile は、Data URIの画像をDiscordの添付ファイルに変換します
func imageFile(dataURL, baseName string) (*discordgo.File, error) {
	image, err := domain.ParseDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	raw, err := image.Bytes()
	if err != nil {
		return nil, err
	}

	return &discordgo.File{
		Name:        baseName + extensionFor(image.MimeType),
		ContentType: image.MimeType,
		Reader:      bytes.NewReader(raw),
	}, nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// truncate は、1メッセージに収まるように末尾を切り詰めます
func (h *ResponseHandler) truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= DiscordMessageLimit {
		return content
	}
	return string(runes[:DiscordMessageLimit-1]) + "…"
}

// splitMessage は、長いメッセージをDiscordの制限に合わせて分割します
func (h *ResponseHandler) splitMessage(message string) []string {
	if len(message) <= DiscordMessageLimit {
		return []string{message}
	}

	var chunks []string
	remaining := message

	for len(remaining) > 0 {
		if len(remaining) <= DiscordMessageLimit {
			chunks = append(chunks, remaining)
			break
		}

		// 2000バイト以内で最も近い改行位置を探す
		splitIndex := lastIndexWithin(remaining, '\n')

		// 改行が見つからない場合は、単語の境界で分割
		if splitIndex == 0 {
			splitIndex = lastIndexWithin(remaining, ' ')
		}

		// それでも見つからない場合は、文字の途中で切らない位置で強制的に分割
		if splitIndex == 0 {
			splitIndex = runeBoundary(remaining, DiscordMessageLimit)
		}

		chunks = append(chunks, remaining[:splitIndex])
		remaining = strings.TrimLeft(remaining[splitIndex:], " \n")
	}

	return chunks
}

// lastIndexWithin は、制限内で最後に現れるsepの直後の位置を返します。見つからなければ0です
func lastIndexWithin(s string, sep byte) int {
	for i := DiscordMessageLimit; i > 0; i-- {
		if s[i-1] == sep {
			return i
		}
	}
	return 0
}

func runeBoundary(s string, limit int) int {
	for i := limit; i > 0; i-- {
		// UTF-8の継続バイトは 10xxxxxx
		if s[i]&0xC0 != 0x80 {
			return i
		}
	}
	return limit
}

// isTimeoutError は、エラーがタイムアウトエラーかどうかを判定します
func (h *ResponseHandler) isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// タイムアウト関連のエラーメッセージを検出
	errorMsg := strings.ToLower(err.Error())
	timeoutKeywords := []string{
		"timeout",
		"タイムアウト",
		"deadline exceeded",
		"context deadline",
	}

	for _, keyword := range timeoutKeywords {
		if strings.Contains(errorMsg, keyword) {
			return true
		}
	}

	return false
}

// formatError は、エラーを適切なメッセージにフォーマットします
func (h *ResponseHandler) formatError(err error) string {
	var validationErr *domain.ValidationError
	var blockedErr *domain.ContentBlockedError
	var refusalErr *domain.ModelRefusalError

	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("⚠️ **入力を確認してください**\n%s", validationErr.Message)
	case errors.As(err, &blockedErr):
		return fmt.Sprintf("🚫 **生成がブロックされました**\n%s", blockedErr.Error())
	case errors.As(err, &refusalErr):
		return fmt.Sprintf("🙅 **モデルが生成を拒否しました**\n%s", refusalErr.Explanation)
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrInvalidCredential):
		return fmt.Sprintf("🔑 **APIキーを確認してください**\n%s", err.Error())
	case errors.Is(err, domain.ErrGenerationInProgress):
		return fmt.Sprintf("⏳ %s", err.Error())
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("🛑 **処理が中断されました**\n%s", err.Error())
	case h.isTimeoutError(err):
		return "⏰ **タイムアウトしました**\n\n画像の生成に時間がかかりすぎました。以下の対処法をお試しください：\n\n" +
			"- 解像度を下げてみる\n" +
			"- カット数を減らす\n" +
			"- しばらく待ってから再度お試しください"
	default:
		return fmt.Sprintf("❌ **エラーが発生しました**\n%s", err.Error())
	}
}

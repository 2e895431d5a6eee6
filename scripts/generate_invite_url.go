package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

// 招待時に要求する権限
const (
	permissionViewChannel = discordgo.PermissionViewChannel
	permissionSendMessage = discordgo.PermissionSendMessages
	permissionAttachFiles = discordgo.PermissionAttachFiles
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("警告: .envファイルの読み込みに失敗しました: %v", err)
	}

	// Bot Tokenを取得
	botToken := os.Getenv("DISCORD_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN が設定されていません")
	}

	// Discordセッションを作成
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		log.Fatalf("Discordセッションの作成に失敗: %v", err)
	}
	defer session.Close()

	// Botの情報を取得
	user, err := session.User("@me")
	if err != nil {
		log.Fatalf("Bot情報の取得に失敗: %v", err)
	}

	permissions := permissionViewChannel | permissionSendMessage | permissionAttachFiles

	fmt.Printf("🤖 Bot情報:\n")
	fmt.Printf("   名前: %s#%s\n", user.Username, user.Discriminator)
	fmt.Printf("   Client ID: %s\n", user.ID)
	fmt.Println()

	// スラッシュコマンドを使うため applications.commands スコープも要求する
	inviteURL := fmt.Sprintf("https://discord.com/api/oauth2/authorize?client_id=%s&permissions=%d&scope=bot%%20applications.commands", user.ID, permissions)

	fmt.Printf("🔗 Bot招待URL:\n")
	fmt.Printf("   %s\n", inviteURL)
	fmt.Println()

	fmt.Printf("📋 必要な権限:\n")
	fmt.Printf("   - View Channels (%d)\n", permissionViewChannel)
	fmt.Printf("   - Send Messages (%d)\n", permissionSendMessage)
	fmt.Printf("   - Attach Files (%d)\n", permissionAttachFiles)
	fmt.Printf("   - 合計: %d\n", permissions)
	fmt.Println()

	fmt.Printf("🎯 Botの使い方:\n")
	fmt.Printf("   1. /set-api でGemini APIキーを保存（または GEMINI_API_KEY を設定）\n")
	fmt.Printf("   2. /studio-settings と /studio-cut で撮影設定を決める\n")
	fmt.Printf("   3. /studio-ref-add でモデル・衣装の参照画像を追加\n")
	fmt.Printf("   4. /studio-generate で生成、/studio-edit や /studio-next で続ける\n")
}

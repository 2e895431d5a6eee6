package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"beautystudio/configs"
	"beautystudio/internal/application"
	discordInfra "beautystudio/internal/infrastructure/discord"
	"beautystudio/internal/infrastructure/gemini"
	"beautystudio/internal/infrastructure/keystore"
	"beautystudio/internal/infrastructure/logging"
	discordPres "beautystudio/internal/presentation/discord"

	"github.com/bwmarrin/discordgo"
)

func main() {
	// 設定を読み込み
	config, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger := logging.InitLogger(config.Log)
	logger.Info("Beauty Studio Botを起動中...")

	// Discordセッションを作成
	session, err := discordgo.New("Bot " + config.Discord.BotToken)
	if err != nil {
		logger.Fatalf("Discordセッションの作成に失敗: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	// Gemini画像生成クライアントを作成（APIキーはリクエストごとに渡します）
	imageClient := gemini.NewImageClient(config.Gemini)

	// リポジトリを作成
	apiKeyStore := keystore.NewLocalAPIKeyStore(config.Studio.KeyStorePath, config.Gemini.APIKey)
	sessionRepo := discordInfra.NewMemoryStudioSessionRepository(config.Studio.MaxReferences)
	fetcher := discordInfra.NewHTTPAttachmentFetcher(nil)

	// アプリケーションサービスを作成
	apiKeyService := application.NewAPIKeyApplicationService(apiKeyStore, imageClient)
	studioService := application.NewStudioApplicationService(sessionRepo, apiKeyStore, imageClient)
	referenceLoader := application.NewReferenceLoader(sessionRepo, fetcher)

	// Discordハンドラを作成
	responses := discordPres.NewResponseHandler()
	studioHandler := discordPres.NewStudioCommandHandler(studioService, referenceLoader, responses, config.Studio.RequestTimeout)
	slashCommandHandler := discordPres.NewSlashCommandHandler(session, apiKeyService, studioHandler, responses, config.Studio.RequestTimeout)

	handler := discordPres.NewDiscordHandler(session, slashCommandHandler)
	handler.SetupHandlers()

	// Discordに接続
	if err := session.Open(); err != nil {
		logger.Fatalf("Discordへの接続に失敗: %v", err)
	}
	defer session.Close()

	// スラッシュコマンドを設定
	if config.Discord.RegisterCommands {
		if err := slashCommandHandler.SetupSlashCommands(); err != nil {
			logger.Fatalf("スラッシュコマンドの設定に失敗: %v", err)
		}
	}

	if _, source, err := apiKeyService.GetAPIKey(context.Background()); err == nil {
		logger.Infof("APIキーの取得元: %s", source.DisplayName())
	}
	logger.Info("Botが準備完了しました。/studio-show で現在の設定を確認できます")

	// シグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 終了シグナルを待機
	<-stop
	logger.Info("終了シグナルを受信しました。Botを停止中...")
	logger.Infof("アクティブなスタジオセッション: %d", sessionRepo.Count())
}

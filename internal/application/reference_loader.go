package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"beautystudio/internal/domain"
	"beautystudio/internal/infrastructure/logging"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentDownloads は、同時にダウンロードする添付ファイルの数です
const maxConcurrentDownloads = 4

// ReferenceLoadResult は、参照画像の一括追加の結果です
type ReferenceLoadResult struct {
	Added   []domain.ReferenceImage // ダウンロードが完了した順
	Failed  []error
	Skipped int // 上限を超えたため処理しなかった枚数
}

// ReferenceLoader は、添付ファイルをダウンロードしてセッションの参照画像に追加します
type ReferenceLoader struct {
	sessions domain.StudioSessionRepository
	fetcher  ImageFetcher
}

// NewReferenceLoader は新しいReferenceLoaderインスタンスを作成します
func NewReferenceLoader(sessions domain.StudioSessionRepository, fetcher ImageFetcher) *ReferenceLoader {
	return &ReferenceLoader{sessions: sessions, fetcher: fetcher}
}

// AddReferences は、複数のURLを並行してダウンロードし、完了した順に参照画像リストの末尾へ追加します。
// 残り枠を超えた分は処理しません。個別の失敗は結果に含め、他の画像の追加は続けます。
// ctx が中断された場合は、それまでに追加できた分の結果とともにエラーを返します
func (l *ReferenceLoader) AddReferences(ctx context.Context, sessionID string, kind domain.ReferenceKind, urls []string) (ReferenceLoadResult, error) {
	session, err := l.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return ReferenceLoadResult{}, err
	}
	if len(urls) == 0 {
		return ReferenceLoadResult{}, domain.NewValidationError("references", "画像ファイルを添付してください")
	}

	remaining := session.RemainingReferenceSlots(kind)
	if remaining <= 0 {
		return ReferenceLoadResult{}, domain.NewValidationError("references", fmt.Sprintf("%s画像はこれ以上アップロードできません", kind.DisplayName()))
	}

	var result ReferenceLoadResult
	if len(urls) > remaining {
		result.Skipped = len(urls) - remaining
		urls = urls[:remaining]
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentDownloads)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			// 中断後は残りのダウンロードを始めない
			if err := ctx.Err(); err != nil {
				return err
			}
			dataURL, err := l.download(ctx, url)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				var ref domain.ReferenceImage
				if ref, err = session.AddReference(kind, dataURL); err == nil {
					result.Added = append(result.Added, ref)
					return nil
				}
			}
			logging.Warnf("参照画像の追加に失敗: %v", err)
			result.Failed = append(result.Failed, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.WithError(err).WithField("session", sessionID).Warnf("参照画像の追加が中断されました: 追加=%d", len(result.Added))
		return result, fmt.Errorf("参照画像の追加が中断されました: %w", err)
	}

	logging.Infof("参照画像を追加: session=%s, kind=%s, 追加=%d, 失敗=%d, スキップ=%d",
		sessionID, kind, len(result.Added), len(result.Failed), result.Skipped)
	return result, nil
}

// download は、URLの画像をData URIに変換します
func (l *ReferenceLoader) download(ctx context.Context, url string) (string, error) {
	data, mimeType, err := l.fetcher.FetchImage(ctx, url)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", domain.NewValidationError("references", fmt.Sprintf("画像ファイルではありません (%s)", mimeType))
	}
	return domain.EncodeDataURL(mimeType, data), nil
}

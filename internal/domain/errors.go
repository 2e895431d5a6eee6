package domain

import (
	"errors"
	"fmt"
)

// ドメイン固有のエラー型を定義
var (
	// ErrEmptyResult は、モデルが候補を1件も返さなかった場合のエラーです
	ErrEmptyResult = errors.New("モデルから結果が返されませんでした。安全設定が厳しいか、指定された内容の生成が拒否された可能性があります")

	// ErrInvalidImageFormat は、画像データ(Data URI)を解釈できない場合のエラーです
	ErrInvalidImageFormat = errors.New("画像データの形式が不正です。画像をもう一度アップロードしてください")

	// ErrMissingCredential は、APIキーがどこにも設定されていない場合のエラーです
	ErrMissingCredential = errors.New("Gemini APIキーが設定されていません。/set-api で設定してください")

	// ErrInvalidCredential は、APIキーが無効、またはプロジェクトが見つからない場合のエラーです
	ErrInvalidCredential = errors.New("APIキーが無効か、プロジェクトが見つかりません。有効なAPIキーを設定してください")

	// ErrGenerationInProgress は、同じセッションで生成が進行中の場合のエラーです
	ErrGenerationInProgress = errors.New("画像を生成中です。完了するまでお待ちください")

	// ErrReferenceNotFound は、指定されたIDの参照画像が存在しない場合のエラーです
	ErrReferenceNotFound = errors.New("指定された参照画像が見つかりません")
)

// ContentBlockedError は、プロンプトまたは生成結果が安全ポリシー等でブロックされた場合のエラーです
type ContentBlockedError struct {
	Reason  string
	Message string
}

func (e *ContentBlockedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("生成がブロックされました (理由: %s)", e.Reason)
}

// ModelRefusalError は、モデルが画像の代わりにテキストで説明を返した場合のエラーです
type ModelRefusalError struct {
	Explanation string
}

func (e *ModelRefusalError) Error() string {
	return "モデルが生成を拒否しました: " + e.Explanation
}

// NoImageDataError は、画像もテキストも返されなかった場合のエラーです
type NoImageDataError struct {
	FinishReason string
}

func (e *NoImageDataError) Error() string {
	reason := e.FinishReason
	if reason == "" {
		reason = "Unknown"
	}
	return fmt.Sprintf("モデルから画像データを受信できませんでした。FinishReason: %s", reason)
}

// ValidationError は、生成前の入力検証に失敗した場合のエラーです
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError は新しいValidationErrorを作成します
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"beautystudio/internal/domain"

	"google.golang.org/genai"
)

// ClassifyResponse は、画像生成APIの応答を成功(PNGのData URI)か、分類済みのエラーに変換します。
// 判定は以下の順で行い、最初に一致した規則で終了します。
//
//  1. 候補なし: ブロック理由があれば ContentBlockedError、なければ ErrEmptyResult
//  2. 終了理由が正常終了以外: ContentBlockedError
//  3. 最初のインライン画像パーツ: 成功
//  4. テキストのみ: ModelRefusalError
//  5. いずれもなし: NoImageDataError
func ClassifyResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", classifyMissingCandidate(resp)
	}

	candidate := resp.Candidates[0]
	if err := classifyFinishReason(candidate); err != nil {
		return "", err
	}

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil {
				// 応答のMIMEタイプに関わらずPNGとして扱う
				return domain.FormatDataURL(domain.DefaultImageMimeType, base64.StdEncoding.EncodeToString(part.InlineData.Data)), nil
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}

	if text.Len() > 0 {
		return "", &domain.ModelRefusalError{Explanation: text.String()}
	}
	return "", &domain.NoImageDataError{FinishReason: string(candidate.FinishReason)}
}

func classifyMissingCandidate(resp *genai.GenerateContentResponse) error {
	if resp == nil || resp.PromptFeedback == nil {
		return domain.ErrEmptyResult
	}

	reason := resp.PromptFeedback.BlockReason
	switch reason {
	case "", genai.BlockedReasonUnspecified:
		return domain.ErrEmptyResult
	case genai.BlockedReasonOther:
		return &domain.ContentBlockedError{
			Reason:  string(reason),
			Message: "生成がブロックされました (理由: OTHER)。プロンプトまたは参照画像がセンシティブな内容と判断された可能性があります。別のポーズや参照画像をお試しください",
		}
	default:
		return &domain.ContentBlockedError{
			Reason:  string(reason),
			Message: fmt.Sprintf("生成がブロックされました (理由: %s)。プロンプトが安全ポリシーに違反している可能性があります", reason),
		}
	}
}

func classifyFinishReason(candidate *genai.Candidate) error {
	reason := candidate.FinishReason
	switch reason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
		return nil
	case genai.FinishReasonSafety:
		return &domain.ContentBlockedError{
			Reason: string(reason),
			Message: fmt.Sprintf("安全フィルターによって生成がブロックされました。プロンプトを修正するか、別の参照画像をお試しください。詳細: %s",
				formatSafetyRatings(candidate.SafetyRatings)),
		}
	case genai.FinishReasonRecitation:
		return &domain.ContentBlockedError{
			Reason:  string(reason),
			Message: "著作権保護された内容の検出(RECITATION)により生成がブロックされました",
		}
	case genai.FinishReasonOther:
		return &domain.ContentBlockedError{
			Reason:  string(reason),
			Message: "生成がブロックされました (理由: OTHER)。参照画像がポリシー違反の可能性ありと判定された場合に発生します。別の参照画像をお試しください",
		}
	case genai.FinishReasonMaxTokens:
		return &domain.ContentBlockedError{
			Reason:  string(reason),
			Message: "応答が最大トークン数に達したため生成が中断されました。より短いプロンプトをお試しください",
		}
	default:
		return &domain.ContentBlockedError{Reason: string(reason)}
	}
}

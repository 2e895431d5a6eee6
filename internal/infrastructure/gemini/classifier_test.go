package gemini

import (
	"testing"

	"beautystudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func candidateWith(reason genai.FinishReason, parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: reason,
			Content:      &genai.Content{Parts: parts},
		}},
	}
}

func TestClassifyResponse_InlineImage(t *testing.T) {
	resp := candidateWith(genai.FinishReasonStop, &genai.Part{
		InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("A")},
	})

	url, err := ClassifyResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QQ==", url)
}

func TestClassifyResponse_FirstImageWins(t *testing.T) {
	resp := candidateWith("",
		&genai.Part{Text: "here you go"},
		&genai.Part{InlineData: &genai.Blob{Data: []byte("1")}},
		&genai.Part{InlineData: &genai.Blob{Data: []byte("2")}},
	)

	url, err := ClassifyResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, domain.EncodeDataURL("image/png", []byte("1")), url)
}

func TestClassifyResponse_NoCandidates(t *testing.T) {
	tests := []struct {
		name        string
		resp        *genai.GenerateContentResponse
		wantReason  string
		wantMessage string
		wantEmpty   bool
	}{
		{
			name:      "nil応答",
			resp:      nil,
			wantEmpty: true,
		},
		{
			name:      "ブロック理由なし",
			resp:      &genai.GenerateContentResponse{},
			wantEmpty: true,
		},
		{
			name: "OTHERは専用メッセージ",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonOther},
			},
			wantReason:  "OTHER",
			wantMessage: "センシティブな内容と判断された",
		},
		{
			name: "SAFETYは汎用メッセージ",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantReason:  "SAFETY",
			wantMessage: "安全ポリシーに違反",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClassifyResponse(tt.resp)
			if tt.wantEmpty {
				assert.ErrorIs(t, err, domain.ErrEmptyResult)
				return
			}
			var blocked *domain.ContentBlockedError
			require.ErrorAs(t, err, &blocked)
			assert.Equal(t, tt.wantReason, blocked.Reason)
			assert.Contains(t, blocked.Error(), tt.wantMessage)
		})
	}
}

func TestClassifyResponse_FinishReason(t *testing.T) {
	tests := []struct {
		reason      genai.FinishReason
		wantMessage string
	}{
		{genai.FinishReasonSafety, "安全フィルター"},
		{genai.FinishReasonRecitation, "RECITATION"},
		{genai.FinishReasonOther, "参照画像がポリシー違反"},
		{genai.FinishReasonMaxTokens, "最大トークン数"},
		{genai.FinishReasonProhibitedContent, "PROHIBITED_CONTENT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			// 画像パーツがあっても終了理由の判定が先
			resp := candidateWith(tt.reason, &genai.Part{InlineData: &genai.Blob{Data: []byte("x")}})
			_, err := ClassifyResponse(resp)

			var blocked *domain.ContentBlockedError
			require.ErrorAs(t, err, &blocked)
			assert.Equal(t, string(tt.reason), blocked.Reason)
			assert.Contains(t, blocked.Error(), tt.wantMessage)
		})
	}
}

func TestClassifyResponse_TextOnlyIsRefusal(t *testing.T) {
	resp := candidateWith(genai.FinishReasonStop,
		&genai.Part{Text: "I can't generate "},
		&genai.Part{Text: "that image."},
	)

	_, err := ClassifyResponse(resp)
	var refusal *domain.ModelRefusalError
	require.ErrorAs(t, err, &refusal)
	assert.Equal(t, "I can't generate that image.", refusal.Explanation)
}

func TestClassifyResponse_NoImageData(t *testing.T) {
	_, err := ClassifyResponse(candidateWith(genai.FinishReasonStop))
	var noImage *domain.NoImageDataError
	require.ErrorAs(t, err, &noImage)
	assert.Equal(t, "STOP", noImage.FinishReason)

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}
	_, err = ClassifyResponse(resp)
	require.ErrorAs(t, err, &noImage)
	assert.Contains(t, noImage.Error(), "Unknown")
}

func TestFormatSafetyRatings(t *testing.T) {
	assert.Equal(t, "詳細情報なし", formatSafetyRatings(nil))
	assert.Equal(t, "性的表現: 高レベル, ハラスメント: 低レベル", formatSafetyRatings([]*genai.SafetyRating{
		{Category: genai.HarmCategorySexuallyExplicit, Probability: genai.HarmProbabilityHigh},
		nil,
		{Category: genai.HarmCategoryHarassment, Probability: genai.HarmProbabilityLow},
	}))
}

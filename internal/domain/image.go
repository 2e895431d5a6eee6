package domain

// ImageRequest は、画像生成APIへ送る1回分のリクエストです。
// Images はプロンプト本文が参照する順序のまま送信されます
type ImageRequest struct {
	Images      []ImageData
	Prompt      string
	AspectRatio AspectRatio
	Resolution  Resolution
}

// ImageCount はリクエストに含まれる画像の枚数を返します
func (r ImageRequest) ImageCount() int {
	return len(r.Images)
}

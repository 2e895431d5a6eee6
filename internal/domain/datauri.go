package domain

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// DefaultImageMimeType は、MIMEタイプが判別できない場合に使用する値です
const DefaultImageMimeType = "image/png"

var (
	canonicalDataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)
	headerMimePattern       = regexp.MustCompile(`:(.*?);`)
)

// ImageData は、Data URIから取り出したMIMEタイプとBase64ペイロードです
type ImageData struct {
	MimeType string
	Data     string
}

// ParseDataURL は、"data:<mime>;base64,<payload>" 形式の文字列を分解します。
// 正規形に一致しない場合は最初のカンマで分割するフォールバックを試みます
func ParseDataURL(dataURL string) (ImageData, error) {
	if m := canonicalDataURLPattern.FindStringSubmatch(dataURL); m != nil {
		return ImageData{MimeType: m[1], Data: m[2]}, nil
	}

	header, payload, found := strings.Cut(dataURL, ",")
	if !found || payload == "" {
		return ImageData{}, ErrInvalidImageFormat
	}

	mimeType := DefaultImageMimeType
	if m := headerMimePattern.FindStringSubmatch(header); m != nil && m[1] != "" {
		mimeType = m[1]
	}
	return ImageData{MimeType: mimeType, Data: payload}, nil
}

// FormatDataURL は、MIMEタイプとBase64ペイロードからData URIを組み立てます
func FormatDataURL(mimeType, data string) string {
	return "data:" + mimeType + ";base64," + data
}

// EncodeDataURL は、バイト列をBase64エンコードしてData URIにします
func EncodeDataURL(mimeType string, raw []byte) string {
	return FormatDataURL(mimeType, base64.StdEncoding.EncodeToString(raw))
}

// Bytes は、Base64ペイロードをデコードします
func (d ImageData) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, ErrInvalidImageFormat
	}
	return raw, nil
}

// DataURL は、ImageDataをData URI形式に戻します
func (d ImageData) DataURL() string {
	return FormatDataURL(d.MimeType, d.Data)
}

package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ReferenceKind は参照画像の用途です
type ReferenceKind int

const (
	ReferenceKindModel ReferenceKind = iota
	ReferenceKindClothing
)

func (k ReferenceKind) String() string {
	if k == ReferenceKindClothing {
		return "clothing"
	}
	return "model"
}

// DisplayName は参照画像の用途の表示名を返します
func (k ReferenceKind) DisplayName() string {
	if k == ReferenceKindClothing {
		return "衣装"
	}
	return "モデル"
}

// ParseReferenceKind は "model" / "clothing" をReferenceKindに変換します
func ParseReferenceKind(value string) (ReferenceKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "model":
		return ReferenceKindModel, nil
	case "clothing":
		return ReferenceKindClothing, nil
	}
	return 0, NewValidationError("kind", fmt.Sprintf("参照画像の種類が不正です: %s", value))
}

// ReferenceImage は、ユーザーがアップロードした参照画像です
type ReferenceImage struct {
	ID       string
	URL      string // Data URI
	Selected bool
}

// NewReferenceID は参照画像用のランダムなトークンを生成します
func NewReferenceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// SelectedReferences は選択済みの参照画像だけを順序を保って返します
func SelectedReferences(refs []ReferenceImage) []ReferenceImage {
	var selected []ReferenceImage
	for _, r := range refs {
		if r.Selected {
			selected = append(selected, r)
		}
	}
	return selected
}

// ReferenceList は、上限付きの順序付き参照画像リストです
type ReferenceList struct {
	items    []ReferenceImage
	capacity int
}

// NewReferenceList は新しいReferenceListを作成します
func NewReferenceList(capacity int) *ReferenceList {
	return &ReferenceList{capacity: capacity}
}

// Add は参照画像を選択状態で末尾に追加します
func (l *ReferenceList) Add(url string) (ReferenceImage, error) {
	if l.Remaining() <= 0 {
		return ReferenceImage{}, NewValidationError("references", fmt.Sprintf("最大%d枚までしかアップロードできません", l.capacity))
	}
	ref := ReferenceImage{ID: NewReferenceID(), URL: url, Selected: true}
	l.items = append(l.items, ref)
	return ref, nil
}

// Toggle は選択状態を反転します
func (l *ReferenceList) Toggle(id string) (ReferenceImage, error) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Selected = !l.items[i].Selected
			return l.items[i], nil
		}
	}
	return ReferenceImage{}, ErrReferenceNotFound
}

// Remove は参照画像を削除します
func (l *ReferenceList) Remove(id string) error {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return ErrReferenceNotFound
}

// Items はすべての参照画像のコピーを返します
func (l *ReferenceList) Items() []ReferenceImage {
	return append([]ReferenceImage(nil), l.items...)
}

// Selected は選択済みの参照画像を返します
func (l *ReferenceList) Selected() []ReferenceImage {
	return SelectedReferences(l.items)
}

// Len は登録済みの枚数を返します
func (l *ReferenceList) Len() int {
	return len(l.items)
}

// Remaining は追加可能な残り枚数を返します
func (l *ReferenceList) Remaining() int {
	return l.capacity - len(l.items)
}

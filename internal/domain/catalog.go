package domain

// LensConfig は、レンズカタログの1エントリです。読み取り専用の参照データとして扱います
type LensConfig struct {
	ID          string
	Name        string
	FocalLength string
	Aperture    string
	Description string
}

// ConceptGroup は、撮影コンセプトのグループ（屋内/屋外）です
type ConceptGroup struct {
	Key   string
	Label string
	Items []string
}

var lenses = []LensConfig{
	{
		ID:          "rf85",
		Name:        "Canon RF 85mm f/1.2L USM",
		FocalLength: "85mm",
		Aperture:    "f/1.2",
		Description: "The ultimate portrait lens. Creamy background blur (bokeh), stunning sharpness in the eyes, flattering compression of the subject",
	},
	{
		ID:          "rf50",
		Name:        "Canon RF 50mm f/1.2L USM",
		FocalLength: "50mm",
		Aperture:    "f/1.2",
		Description: "Standard field of view with a magical sense of depth. Suited to half-body shots with a natural perspective",
	},
	{
		ID:          "rf35",
		Name:        "Canon RF 35mm f/1.4L VCM",
		FocalLength: "35mm",
		Aperture:    "f/1.4",
		Description: "Wide-angle environmental portrait. Dynamic composition that lets the background and outfit stand out",
	},
	{
		ID:          "rf135",
		Name:        "Canon RF 135mm f/1.8L IS USM",
		FocalLength: "135mm",
		Aperture:    "f/1.8",
		Description: "Strong telephoto compression. Completely separates subject from background for a dreamy atmosphere",
	},
}

var cameraAngles = []string{
	"ランダム (AI推奨)",
	"アイレベル (Standard Eye-Level) - 最も自然な視線",
	"ローアングル (Low Angle) - 脚が長く見え、堂々とした印象",
	"ハイアングル (High Angle) - 顔が引き立ち、可愛らしい印象",
	"ダッチアングル (Dutch Angle) - 躍動的でヒップな雰囲気",
	"クローズアップ (Extreme Close-up) - 顔のディテールを強調",
	"バストショット (Bust Shot) - 上半身中心のポートレート",
	"ニーショット (Knee Shot) - 膝上、ファッションとプロポーションを強調",
	"フルショット (Full Shot) - 全身と背景の調和",
	"オーバーヘッド (Overhead) - 頭上から見下ろす構図",
}

var fashionPoses = []string{
	"ランダム (AI推奨)",
	"正面を見つめる (Front View)",
	"横顔 (Side Profile)",
	"振り返る (Looking Back)",
	"全身ウォーキング (Walking Full Body)",
	"椅子に座る (Sitting on Chair)",
	"床に座る (Sitting on Floor)",
	"脚を組む (Crossed Legs)",
	"頬杖をつく (Hand on Chin)",
	"髪をかき上げる (Hand in Hair)",
	"顔のクローズアップ (Face Close-up)",
	"目を閉じて感じる (Eyes Closed)",
	"躍動的なジャンプ (Dynamic Jump)",
	"ポケットに手を入れる (Hands in Pocket)",
	"腕を組む (Arms Crossed)",
	"小物を持つ (Holding Prop)",
}

var conceptGroups = []ConceptGroup{
	{
		Key:   "indoor",
		Label: "屋内 (Indoor)",
		Items: []string{
			"クリーンなスタジオ (Studio Clean)",
			"ラグジュアリーホテル (Luxury Hotel)",
			"雰囲気のあるカフェ (Cozy Cafe)",
			"モダンなリビング (Modern Living Room)",
			"華やかなパーティールーム (Fancy Party Room)",
			"クラシックな図書館 (Classic Library)",
			"日差しの入る窓辺 (Sunlit Window)",
		},
	},
	{
		Key:   "outdoor",
		Label: "屋外 (Outdoor)",
		Items: []string{
			"ネオンシティの夜景 (Neon City Night)",
			"日差しあふれる庭園 (Sunlit Garden)",
			"青い海辺 (Blue Beach)",
			"桜舞う街並み (Cherry Blossom Street)",
			"都会のルーフトップ (City Rooftop)",
			"森の小道 (Forest Path)",
			"高級リゾートのプール (Luxury Resort Pool)",
		},
	},
}

// AllLenses はすべてのレンズを返します
func AllLenses() []LensConfig {
	return append([]LensConfig(nil), lenses...)
}

// FindLens は、IDに一致するレンズを返します。見つからない場合は先頭のレンズを返します
func FindLens(id string) LensConfig {
	for _, l := range lenses {
		if l.ID == id {
			return l
		}
	}
	return lenses[0]
}

// AllCameraAngles はプリセットのカメラアングルを返します
func AllCameraAngles() []string {
	return append([]string(nil), cameraAngles...)
}

// AllFashionPoses はプリセットのポーズを返します
func AllFashionPoses() []string {
	return append([]string(nil), fashionPoses...)
}

// AllConceptGroups はコンセプトのグループを返します
func AllConceptGroups() []ConceptGroup {
	groups := make([]ConceptGroup, len(conceptGroups))
	for i, g := range conceptGroups {
		groups[i] = ConceptGroup{Key: g.Key, Label: g.Label, Items: append([]string(nil), g.Items...)}
	}
	return groups
}

// DefaultCameraAngle は先頭のプリセットアングルです
func DefaultCameraAngle() string { return cameraAngles[0] }

// DefaultPose は先頭のプリセットポーズです
func DefaultPose() string { return fashionPoses[0] }

// DefaultConcept は屋内グループ先頭のコンセプトです
func DefaultConcept() string { return conceptGroups[0].Items[0] }

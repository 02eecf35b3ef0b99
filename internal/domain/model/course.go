package model

import "fmt"

// EditMode 編集セッションの操作モード
type EditMode string

const (
	// ModeRouteDrawing 地図タップでルートを描くモード
	ModeRouteDrawing EditMode = "route_drawing"
	// ModeSpotPlacing 地図タップでスポットを置くモード
	ModeSpotPlacing EditMode = "spot_placing"
)

// IsValid サポートされているモードかどうかをチェック
func (m EditMode) IsValid() bool {
	return m == ModeRouteDrawing || m == ModeSpotPlacing
}

// RoutePoint ルートを構成する1タップ分の座標。シーケンス内のインデックスが唯一の識別子
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate 緯度経度が有効範囲内かどうかをチェック
func (p RoutePoint) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("緯度は-90から90の範囲で指定してください: %f", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("経度は-180から180の範囲で指定してください: %f", p.Longitude)
	}
	return nil
}

// Spot ルートとは独立に置かれるラベル付きの立ち寄りスポット
type Spot struct {
	Point   RoutePoint `json:"point"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
}

// Place 場所検索の結果1件
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReverseGeocodeResult 逆ジオコーディングの結果
// 道路名住所が取得できない地点もあるため、各フィールドは空文字列になり得る
type ReverseGeocodeResult struct {
	RoadAddressName    string `json:"road_address_name"`
	GeneralAddressName string `json:"general_address_name"`
	DistrictName       string `json:"district_name"`
}

// DisplayAddress 表示用の住所文字列を組み立てる
// 道路名住所を優先し、なければ一般住所を使う。行政区名があれば括弧付きで後ろに付ける
func (r *ReverseGeocodeResult) DisplayAddress() string {
	name := r.RoadAddressName
	if name == "" {
		name = r.GeneralAddressName
	}
	if name == "" {
		return ""
	}
	if r.DistrictName != "" {
		return fmt.Sprintf("%s (%s)", name, r.DistrictName)
	}
	return name
}

// SpotSnapshot 提出フロー向けスナップショット内のスポット表現
type SpotSnapshot struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Point   [2]float64 `json:"point"` // [lng, lat]
}

// CourseSnapshot セッションの現在状態の読み取り専用スナップショット
// 座標は保存系と同じ [lng, lat] 順で出力する
type CourseSnapshot struct {
	RoutePoints [][2]float64   `json:"route_points"`
	Addresses   []string       `json:"addresses"`
	Spots       []SpotSnapshot `json:"spots"`
}

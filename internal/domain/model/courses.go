package model

import "time"

// Course 提出された散歩コース（確定済みのルートとスポット）
type Course struct {
	ID             string       `json:"id" db:"id"`                           // ユニークなコースID
	Title          string       `json:"title" db:"title"`                     // コースのタイトル
	Area           string       `json:"area" db:"area"`                       // エリア名
	Description    string       `json:"description" db:"description"`         // コースの説明
	Hashtags       []string     `json:"hashtags" db:"hashtags"`               // ハッシュタグ
	RoutePoints    [][2]float64 `json:"route_points" db:"route_points"`       // ルート座標 [lng, lat] の配列
	Addresses      []string     `json:"addresses" db:"addresses"`             // 各地点の解決済み住所
	Spots          []Spot       `json:"spots" db:"spots"`                     // 立ち寄りスポット
	DistanceMeters int          `json:"distance_meters" db:"distance_meters"` // 概算距離
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`           // 投稿日時
}

// CreateCourseRequest コース作成リクエスト
type CreateCourseRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Hashtags    []string       `json:"hashtags"`
	Snapshot    CourseSnapshot `json:"snapshot" validate:"required"`
}

// CreateCourseResponse コース作成レスポンス
type CreateCourseResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	CourseID string `json:"course_id"`
}

// CourseSummary 境界ボックス検索で返すコースの一覧表現
type CourseSummary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	AreaName       string   `json:"area_name"`
	Date           string   `json:"date"`
	Hashtags       []string `json:"hashtags"`
	DistanceMeters int      `json:"distance_meters"`
	SpotCount      int      `json:"spot_count"`
}

// CourseDetail コース詳細
type CourseDetail struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	AreaName       string       `json:"area_name"`
	Date           string       `json:"date"`
	Description    string       `json:"description"`
	Hashtags       []string     `json:"hashtags"`
	RoutePoints    [][2]float64 `json:"route_points"`
	Addresses      []string     `json:"addresses"`
	Spots          []Spot       `json:"spots"`
	DistanceMeters int          `json:"distance_meters"`
}

// GetCoursesResponse コース一覧レスポンス
type GetCoursesResponse struct {
	Courses []CourseSummary `json:"courses"`
}

// GeoPolygon PostGIS GEOMETRY(Polygon) 型に対応する構造体
type GeoPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

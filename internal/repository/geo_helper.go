package repository

import (
	"github.com/paulmach/orb"

	"walkcourse-editor/internal/domain/model"
)

// GeoPoint PostGIS POINT 型の JSON 表現
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// RoutePointToGeoPoint model.RoutePoint を PostGIS POINT 形式に変換
func RoutePointToGeoPoint(point model.RoutePoint) *GeoPoint {
	p := orb.Point{point.Longitude, point.Latitude}
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{p.Lon(), p.Lat()},
	}
}

// GeoPointToRoutePoint PostGIS POINT を model.RoutePoint に変換
func GeoPointToRoutePoint(geoPoint *GeoPoint) *model.RoutePoint {
	if geoPoint == nil || len(geoPoint.Coordinates) < 2 {
		return nil
	}

	p := orb.Point{geoPoint.Coordinates[0], geoPoint.Coordinates[1]}
	return &model.RoutePoint{
		Latitude:  p.Lat(),
		Longitude: p.Lon(),
	}
}

// CreateRouteBoundsPolygon ルート全地点を含む境界ボックスのPolygonを作成
func CreateRouteBoundsPolygon(points [][2]float64) *model.GeoPolygon {
	if len(points) == 0 {
		return nil
	}

	first := orb.Point{points[0][0], points[0][1]}
	bound := orb.Bound{Min: first, Max: first}
	for _, p := range points[1:] {
		bound = bound.Extend(orb.Point{p[0], p[1]})
	}

	// 少し余裕を持たせる（約100m程度）
	padding := 0.001 // 約111m
	bound = bound.Pad(padding)

	minLng := bound.Min.Lon()
	minLat := bound.Min.Lat()
	maxLng := bound.Max.Lon()
	maxLat := bound.Max.Lat()

	coordinates := [][][]float64{
		{
			{minLng, minLat}, // 左下
			{maxLng, minLat}, // 右下
			{maxLng, maxLat}, // 右上
			{minLng, maxLat}, // 左上
			{minLng, minLat}, // 閉じる
		},
	}

	return &model.GeoPolygon{
		Type:        "Polygon",
		Coordinates: coordinates,
	}
}

// CourseDB Course を DB 保存用に変換した構造体
type CourseDB struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Area           string            `json:"area"`
	Description    string            `json:"description"`
	Hashtags       []string          `json:"hashtags"`
	RoutePoints    [][2]float64      `json:"route_points"`
	Addresses      []string          `json:"addresses"`
	Spots          []model.Spot      `json:"spots"`
	DistanceMeters int               `json:"distance_meters"`
	StartLocation  *GeoPoint         `json:"start_location"`
	EndLocation    *GeoPoint         `json:"end_location"`
	RouteBounds    *model.GeoPolygon `json:"route_bounds"`
}

// CourseToCourseDB model.Course を DB 保存用に変換
// 開始・終了位置はルートの先頭・末尾から導出し、境界ボックスは全地点から計算する
func CourseToCourseDB(course *model.Course) *CourseDB {
	var startGeo, endGeo *GeoPoint
	if len(course.RoutePoints) > 0 {
		first := course.RoutePoints[0]
		last := course.RoutePoints[len(course.RoutePoints)-1]
		startGeo = RoutePointToGeoPoint(model.RoutePoint{Latitude: first[1], Longitude: first[0]})
		endGeo = RoutePointToGeoPoint(model.RoutePoint{Latitude: last[1], Longitude: last[0]})
	}

	return &CourseDB{
		ID:             course.ID,
		Title:          course.Title,
		Area:           course.Area,
		Description:    course.Description,
		Hashtags:       course.Hashtags,
		RoutePoints:    course.RoutePoints,
		Addresses:      course.Addresses,
		Spots:          course.Spots,
		DistanceMeters: course.DistanceMeters,
		StartLocation:  startGeo,
		EndLocation:    endGeo,
		RouteBounds:    CreateRouteBoundsPolygon(course.RoutePoints),
	}
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
	"walkcourse-editor/internal/infrastructure/database"
)

type SupabaseCoursesRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseCoursesRepository(client *database.SupabaseClient) repository.CoursesRepository {
	return &SupabaseCoursesRepository{
		client: client,
	}
}

func (r *SupabaseCoursesRepository) Create(ctx context.Context, course *model.Course) error {
	// Course を DB 保存用の形式に変換（地理情報を含む）
	courseDB := CourseToCourseDB(course)

	data, err := json.Marshal(courseDB)
	if err != nil {
		return fmt.Errorf("コースデータのJSONマーシャル失敗: %w", err)
	}

	_, _, err = r.client.GetClient().From("courses").Insert(string(data), false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("コースデータの作成失敗: %w", err)
	}

	return nil
}

func (r *SupabaseCoursesRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var courses []model.Course
	data, count, err := r.client.GetClient().From("courses").Select("*", "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("コースデータの取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &courses); err != nil {
		return nil, fmt.Errorf("コースデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(courses) == 0 {
		return nil, fmt.Errorf("コースID %s が見つかりません", id)
	}

	return &courses[0], nil
}

func (r *SupabaseCoursesRepository) GetCoursesByBoundingBox(ctx context.Context, minLng, minLat, maxLng, maxLat float64) ([]model.CourseSummary, error) {
	// 入力値の検証
	if minLng >= maxLng || minLat >= maxLat {
		return nil, fmt.Errorf("無効な境界ボックス: min値がmax値以上です")
	}

	// 座標値の範囲チェック（経度: -180〜180, 緯度: -90〜90）
	if minLng < -180 || maxLng > 180 || minLat < -90 || maxLat > 90 {
		return nil, fmt.Errorf("座標値が有効範囲外です")
	}

	// orb.Bound を使用して境界ボックスを作成
	bound := orb.Bound{
		Min: orb.Point{minLng, minLat},
		Max: orb.Point{maxLng, maxLat},
	}

	polygon := bound.ToPolygon()
	wktString := wkt.MarshalString(polygon)

	// PostGIS ST_Intersects関数を使用して境界ボックス内のコースを検索
	var courses []model.Course
	data, count, err := r.client.GetClient().From("courses").
		Select("id,title,area,description,hashtags,distance_meters,spots,created_at", "exact", false).
		Filter("route_bounds", "st_intersects", fmt.Sprintf("ST_GeomFromText('%s', 4326)", wktString)).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("境界ボックス検索エラー: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &courses); err != nil {
		return nil, fmt.Errorf("コースデータのJSONアンマーシャル失敗: %w", err)
	}

	summaries := make([]model.CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, courseToSummary(&course))
	}

	return summaries, nil
}

func (r *SupabaseCoursesRepository) GetCourseDetail(ctx context.Context, id string) (*model.CourseDetail, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.CourseDetail{
		ID:             course.ID,
		Title:          course.Title,
		AreaName:       course.Area,
		Date:           formatCourseDate(course.CreatedAt),
		Description:    course.Description,
		Hashtags:       course.Hashtags,
		RoutePoints:    course.RoutePoints,
		Addresses:      course.Addresses,
		Spots:          course.Spots,
		DistanceMeters: course.DistanceMeters,
	}, nil
}

// courseToSummary Course を一覧表示用の CourseSummary に変換
func courseToSummary(course *model.Course) model.CourseSummary {
	return model.CourseSummary{
		ID:             course.ID,
		Title:          course.Title,
		AreaName:       course.Area,
		Date:           formatCourseDate(course.CreatedAt),
		Hashtags:       course.Hashtags,
		DistanceMeters: course.DistanceMeters,
		SpotCount:      len(course.Spots),
	}
}

func formatCourseDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

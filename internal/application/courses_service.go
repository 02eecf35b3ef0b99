package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
)

// CoursesService 散歩コースに関するビジネスロジックを提供するサービス
type CoursesService interface {
	// CreateCourse 編集セッションのスナップショットからコースを新規作成
	CreateCourse(ctx context.Context, req *model.CreateCourseRequest) (*model.CreateCourseResponse, error)

	// GetCoursesByBoundingBox 境界ボックス内のコース一覧を取得
	GetCoursesByBoundingBox(ctx context.Context, minLng, minLat, maxLng, maxLat float64) ([]model.CourseSummary, error)

	// GetCourseDetail コースの詳細を取得
	GetCourseDetail(ctx context.Context, id string) (*model.CourseDetail, error)
}

// coursesServiceImpl CoursesServiceの実装
type coursesServiceImpl struct {
	coursesRepo repository.CoursesRepository
}

// NewCoursesService CoursesServiceの新しいインスタンスを作成
func NewCoursesService(coursesRepo repository.CoursesRepository) CoursesService {
	return &coursesServiceImpl{
		coursesRepo: coursesRepo,
	}
}

// CreateCourse コースを作成
func (s *coursesServiceImpl) CreateCourse(ctx context.Context, req *model.CreateCourseRequest) (*model.CreateCourseResponse, error) {
	// 入力バリデーション
	if err := s.validateCreateCourseRequest(req); err != nil {
		return nil, fmt.Errorf("リクエストの検証失敗: %w", err)
	}

	courseID := uuid.New().String()

	course := &model.Course{
		ID:             courseID,
		Title:          req.Title,
		Area:           s.estimateAreaName(req.Snapshot.Addresses),
		Description:    req.Description,
		Hashtags:       req.Hashtags,
		RoutePoints:    req.Snapshot.RoutePoints,
		Addresses:      req.Snapshot.Addresses,
		Spots:          s.spotsFromSnapshot(req.Snapshot.Spots),
		DistanceMeters: s.estimateDistanceMeters(req.Snapshot.RoutePoints),
		CreatedAt:      time.Now(),
	}

	if err := s.coursesRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("コースの保存失敗: %w", err)
	}

	return &model.CreateCourseResponse{
		Status:   "success",
		CourseID: courseID,
	}, nil
}

// GetCoursesByBoundingBox 境界ボックス内のコース一覧を取得
func (s *coursesServiceImpl) GetCoursesByBoundingBox(ctx context.Context, minLng, minLat, maxLng, maxLat float64) ([]model.CourseSummary, error) {
	if err := s.validateBoundingBox(minLng, minLat, maxLng, maxLat); err != nil {
		return nil, fmt.Errorf("境界ボックスの検証失敗: %w", err)
	}

	courses, err := s.coursesRepo.GetCoursesByBoundingBox(ctx, minLng, minLat, maxLng, maxLat)
	if err != nil {
		return nil, fmt.Errorf("コースの取得失敗: %w", err)
	}

	return courses, nil
}

// GetCourseDetail コースの詳細を取得
func (s *coursesServiceImpl) GetCourseDetail(ctx context.Context, id string) (*model.CourseDetail, error) {
	// IDの形式チェック
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("無効なコースID形式: %s", id)
	}

	detail, err := s.coursesRepo.GetCourseDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コース詳細の取得失敗: %w", err)
	}

	return detail, nil
}

// validateCreateCourseRequest リクエストのバリデーション
func (s *coursesServiceImpl) validateCreateCourseRequest(req *model.CreateCourseRequest) error {
	if req.Title == "" {
		return fmt.Errorf("タイトルは必須です")
	}
	if len(req.Snapshot.RoutePoints) < 2 {
		return fmt.Errorf("ルートには2地点以上が必要です")
	}
	if len(req.Snapshot.Addresses) != len(req.Snapshot.RoutePoints) {
		return fmt.Errorf("住所の数がルート地点の数と一致していません")
	}
	for _, spot := range req.Snapshot.Spots {
		if spot.Title == "" {
			return fmt.Errorf("スポットのタイトルは必須です")
		}
	}
	return nil
}

// validateBoundingBox 境界ボックスのバリデーション
func (s *coursesServiceImpl) validateBoundingBox(minLng, minLat, maxLng, maxLat float64) error {
	if minLng >= maxLng {
		return fmt.Errorf("経度の最小値は最大値より小さい必要があります")
	}
	if minLat >= maxLat {
		return fmt.Errorf("緯度の最小値は最大値より小さい必要があります")
	}
	if minLng < -180 || maxLng > 180 {
		return fmt.Errorf("経度は-180から180の範囲内である必要があります")
	}
	if minLat < -90 || maxLat > 90 {
		return fmt.Errorf("緯度は-90から90の範囲内である必要があります")
	}
	return nil
}

// estimateAreaName 解決済み住所からエリア名を推定
// 最初に解決できた住所の末尾要素（地区名）を使う
func (s *coursesServiceImpl) estimateAreaName(addresses []string) string {
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if open := strings.LastIndex(addr, "("); open >= 0 && strings.HasSuffix(addr, ")") {
			return strings.TrimSpace(addr[open+1 : len(addr)-1])
		}
		return addr
	}
	return "未知のエリア"
}

// estimateDistanceMeters ルート地点列の概算距離を計算
func (s *coursesServiceImpl) estimateDistanceMeters(points [][2]float64) int {
	total := 0.0
	for i := 1; i < len(points); i++ {
		prev := orb.Point{points[i-1][0], points[i-1][1]}
		curr := orb.Point{points[i][0], points[i][1]}
		total += geo.Distance(prev, curr)
	}
	return int(total)
}

// spotsFromSnapshot スナップショットのスポットをコース用に変換
func (s *coursesServiceImpl) spotsFromSnapshot(snapshots []model.SpotSnapshot) []model.Spot {
	spots := make([]model.Spot, len(snapshots))
	for i, snap := range snapshots {
		spots[i] = model.Spot{
			Point: model.RoutePoint{
				Latitude:  snap.Point[1],
				Longitude: snap.Point[0],
			},
			Title:   snap.Title,
			Content: snap.Content,
		}
	}
	return spots
}

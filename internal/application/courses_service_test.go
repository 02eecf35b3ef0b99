package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkcourse-editor/internal/application"
	"walkcourse-editor/internal/domain/model"
)

// stubCoursesRepo テスト用のCoursesRepository実装
type stubCoursesRepo struct {
	created *model.Course
}

func (r *stubCoursesRepo) Create(ctx context.Context, course *model.Course) error {
	r.created = course
	return nil
}

func (r *stubCoursesRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return nil, fmt.Errorf("コースが見つかりません: %s", id)
}

func (r *stubCoursesRepo) GetCoursesByBoundingBox(ctx context.Context, minLng, minLat, maxLng, maxLat float64) ([]model.CourseSummary, error) {
	return []model.CourseSummary{}, nil
}

func (r *stubCoursesRepo) GetCourseDetail(ctx context.Context, id string) (*model.CourseDetail, error) {
	return &model.CourseDetail{ID: id}, nil
}

func validCreateRequest() *model.CreateCourseRequest {
	return &model.CreateCourseRequest{
		Title: "鴨川沿いの散歩",
		Snapshot: model.CourseSnapshot{
			RoutePoints: [][2]float64{{135.768, 35.011}, {135.770, 35.015}},
			Addresses:   []string{"河原町通 (中京区)", "木屋町通 (中京区)"},
			Spots: []model.SpotSnapshot{
				{Title: "喫茶店", Content: "モーニングが有名", Point: [2]float64{135.769, 35.012}},
			},
		},
	}
}

func TestCreateCourse_BuildsCourseFromSnapshot(t *testing.T) {
	repo := &stubCoursesRepo{}
	svc := application.NewCoursesService(repo)

	resp, err := svc.CreateCourse(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.CourseID)

	require.NotNil(t, repo.created)
	assert.Equal(t, resp.CourseID, repo.created.ID)
	assert.Equal(t, "中京区", repo.created.Area)
	assert.Len(t, repo.created.RoutePoints, 2)
	require.Len(t, repo.created.Spots, 1)
	assert.Equal(t, 35.012, repo.created.Spots[0].Point.Latitude)
	assert.Equal(t, 135.769, repo.created.Spots[0].Point.Longitude)

	// 2地点間はおよそ480mのはず（ゼロや極端な値でないことを見る）
	assert.Greater(t, repo.created.DistanceMeters, 100)
	assert.Less(t, repo.created.DistanceMeters, 2000)
}

func TestCreateCourse_ValidatesRequest(t *testing.T) {
	svc := application.NewCoursesService(&stubCoursesRepo{})
	ctx := context.Background()

	req := validCreateRequest()
	req.Title = ""
	_, err := svc.CreateCourse(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.Snapshot.RoutePoints = req.Snapshot.RoutePoints[:1]
	req.Snapshot.Addresses = req.Snapshot.Addresses[:1]
	_, err = svc.CreateCourse(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.Snapshot.Addresses = req.Snapshot.Addresses[:1]
	_, err = svc.CreateCourse(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.Snapshot.Spots[0].Title = ""
	_, err = svc.CreateCourse(ctx, req)
	assert.Error(t, err)
}

func TestCreateCourse_AreaFallsBackWhenNoAddresses(t *testing.T) {
	repo := &stubCoursesRepo{}
	svc := application.NewCoursesService(repo)

	req := validCreateRequest()
	req.Snapshot.Addresses = []string{"", ""}

	_, err := svc.CreateCourse(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "未知のエリア", repo.created.Area)
}

func TestGetCoursesByBoundingBox_ValidatesBounds(t *testing.T) {
	svc := application.NewCoursesService(&stubCoursesRepo{})
	ctx := context.Background()

	_, err := svc.GetCoursesByBoundingBox(ctx, 135.8, 35.0, 135.7, 35.1)
	assert.Error(t, err)

	_, err = svc.GetCoursesByBoundingBox(ctx, 135.7, 35.1, 135.8, 35.0)
	assert.Error(t, err)

	_, err = svc.GetCoursesByBoundingBox(ctx, -200, 35.0, 135.8, 35.1)
	assert.Error(t, err)

	courses, err := svc.GetCoursesByBoundingBox(ctx, 135.7, 35.0, 135.8, 35.1)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestGetCourseDetail_ValidatesUUID(t *testing.T) {
	svc := application.NewCoursesService(&stubCoursesRepo{})

	_, err := svc.GetCourseDetail(context.Background(), "not-a-uuid")
	assert.Error(t, err)

	_, err = svc.GetCourseDetail(context.Background(), "0b2e7c1a-54d7-4b2f-9b56-6f35c26c7e11")
	assert.NoError(t, err)
}

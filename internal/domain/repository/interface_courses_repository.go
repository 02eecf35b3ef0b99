package repository

import (
	"context"

	"walkcourse-editor/internal/domain/model"
)

type CoursesRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetCoursesByBoundingBox(ctx context.Context, minLng, minLat, maxLng, maxLat float64) ([]model.CourseSummary, error)
	GetCourseDetail(ctx context.Context, id string) (*model.CourseDetail, error)
}

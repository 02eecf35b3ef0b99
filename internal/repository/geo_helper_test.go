package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/repository"
)

func TestRoutePointGeoPointRoundTrip(t *testing.T) {
	point := model.RoutePoint{Latitude: 35.011, Longitude: 135.768}

	geoPoint := repository.RoutePointToGeoPoint(point)
	require.NotNil(t, geoPoint)
	assert.Equal(t, "Point", geoPoint.Type)
	// GeoJSONは [lng, lat] 順
	assert.Equal(t, []float64{135.768, 35.011}, geoPoint.Coordinates)

	back := repository.GeoPointToRoutePoint(geoPoint)
	require.NotNil(t, back)
	assert.Equal(t, point, *back)
}

func TestGeoPointToRoutePoint_InvalidInput(t *testing.T) {
	assert.Nil(t, repository.GeoPointToRoutePoint(nil))
	assert.Nil(t, repository.GeoPointToRoutePoint(&repository.GeoPoint{Coordinates: []float64{135.768}}))
}

func TestCreateRouteBoundsPolygon(t *testing.T) {
	t.Run("空のルートはnil", func(t *testing.T) {
		assert.Nil(t, repository.CreateRouteBoundsPolygon(nil))
	})

	t.Run("全地点を含むパディング付きの閉じたポリゴンになる", func(t *testing.T) {
		points := [][2]float64{
			{135.768, 35.011},
			{135.770, 35.015},
			{135.765, 35.013},
		}

		polygon := repository.CreateRouteBoundsPolygon(points)
		require.NotNil(t, polygon)
		assert.Equal(t, "Polygon", polygon.Type)
		require.Len(t, polygon.Coordinates, 1)

		ring := polygon.Coordinates[0]
		require.Len(t, ring, 5)
		assert.Equal(t, ring[0], ring[4])

		minLng, minLat := ring[0][0], ring[0][1]
		maxLng, maxLat := ring[2][0], ring[2][1]
		for _, p := range points {
			assert.Less(t, minLng, p[0])
			assert.Greater(t, maxLng, p[0])
			assert.Less(t, minLat, p[1])
			assert.Greater(t, maxLat, p[1])
		}
	})
}

func TestCourseToCourseDB(t *testing.T) {
	course := &model.Course{
		ID:    "c1",
		Title: "鴨川沿いの散歩",
		RoutePoints: [][2]float64{
			{135.768, 35.011},
			{135.770, 35.015},
		},
		Addresses:      []string{"河原町通 (中京区)", "木屋町通 (中京区)"},
		DistanceMeters: 480,
		CreatedAt:      time.Now(),
	}

	courseDB := repository.CourseToCourseDB(course)

	require.NotNil(t, courseDB.StartLocation)
	require.NotNil(t, courseDB.EndLocation)
	assert.Equal(t, []float64{135.768, 35.011}, courseDB.StartLocation.Coordinates)
	assert.Equal(t, []float64{135.770, 35.015}, courseDB.EndLocation.Coordinates)
	require.NotNil(t, courseDB.RouteBounds)
	assert.Equal(t, "Polygon", courseDB.RouteBounds.Type)
}

package repository

import (
	"context"

	"walkcourse-editor/internal/domain/model"
)

type PlacesRepository interface {
	GetByID(ctx context.Context, id string) (*model.Place, error)
	GetNearbyPlaces(ctx context.Context, lat, lng float64, radiusMeters int) ([]model.Place, error)
	SearchByName(ctx context.Context, name string, limit int) ([]model.Place, error)
}

package repository

import (
	"context"

	"walkcourse-editor/internal/domain/model"
)

// GeoLookupClient 逆ジオコーディングと場所検索の外部コラボレーター
// ネットワーク越しのためレイテンシがあり、失敗や空結果を返し得る
type GeoLookupClient interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*model.ReverseGeocodeResult, error)
	SearchPlacesByText(ctx context.Context, text string) ([]model.Place, error)
	SearchPlacesByLocation(ctx context.Context, lat, lng float64) ([]model.Place, error)
}

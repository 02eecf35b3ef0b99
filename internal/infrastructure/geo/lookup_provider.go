package geo

import (
	"context"
	"fmt"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
)

const nearbySearchRadiusMeters = 500

// LookupProvider GeoLookupClient の本番実装
// 逆ジオコーディングとテキスト検索はNominatimへ、位置ベースの場所検索は
// PostGISの場所テーブルへ委譲する。場所リポジトリが無い構成では
// 位置検索は空結果に降格する。
type LookupProvider struct {
	nominatim *NominatimClient
	places    repository.PlacesRepository
}

// NewLookupProvider 新しいLookupProviderを作成する。placesはnil可
func NewLookupProvider(nominatim *NominatimClient, places repository.PlacesRepository) repository.GeoLookupClient {
	return &LookupProvider{
		nominatim: nominatim,
		places:    places,
	}
}

func (p *LookupProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.ReverseGeocodeResult, error) {
	return p.nominatim.ReverseGeocode(ctx, lat, lng)
}

func (p *LookupProvider) SearchPlacesByText(ctx context.Context, text string) ([]model.Place, error) {
	return p.nominatim.SearchPlacesByText(ctx, text)
}

func (p *LookupProvider) SearchPlacesByLocation(ctx context.Context, lat, lng float64) ([]model.Place, error) {
	if p.places == nil {
		return nil, nil
	}
	places, err := p.places.GetNearbyPlaces(ctx, lat, lng, nearbySearchRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("周辺の場所検索に失敗: %w", err)
	}
	return places, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
	"walkcourse-editor/internal/infrastructure/database"
)

type PostgresPlacesRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPlacesRepository(client *database.PostgreSQLClient) repository.PlacesRepository {
	return &PostgresPlacesRepository{
		client: client,
	}
}

// PlaceResult PostGIS関数の結果を受け取るための構造体
type PlaceResult struct {
	ID             string
	Name           string
	Address        sql.NullString
	Location       string
	DistanceMeters float64
}

// ToPlace PlaceResultをmodel.Placeに変換
func (pr *PlaceResult) ToPlace() (*model.Place, error) {
	var location GeoPoint
	if err := json.Unmarshal([]byte(pr.Location), &location); err != nil {
		return nil, fmt.Errorf("location JSONBパースエラー: %w", err)
	}

	point := GeoPointToRoutePoint(&location)
	if point == nil {
		return nil, fmt.Errorf("場所 %s の座標が不正です", pr.ID)
	}

	place := &model.Place{
		ID:        pr.ID,
		Name:      pr.Name,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	}
	if pr.Address.Valid {
		place.Address = pr.Address.String
	}

	return place, nil
}

func (r *PostgresPlacesRepository) GetByID(ctx context.Context, id string) (*model.Place, error) {
	query := `SELECT id, name, address, ST_AsGeoJSON(location)::jsonb FROM places WHERE id = $1`

	row := r.client.DB.QueryRowContext(ctx, query, id)

	var result PlaceResult
	err := row.Scan(&result.ID, &result.Name, &result.Address, &result.Location)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("場所ID %s が見つかりません", id)
		}
		return nil, fmt.Errorf("場所データの取得失敗: %w", err)
	}

	return result.ToPlace()
}

// GetNearbyPlaces 指定座標の周辺にある場所を距離順で検索する
func (r *PostgresPlacesRepository) GetNearbyPlaces(ctx context.Context, lat, lng float64, radiusMeters int) ([]model.Place, error) {
	// 直接SQLでPostGIS関数を使用した効率的な検索
	query := `
		SELECT
			p.id, p.name, p.address,
			ST_AsGeoJSON(p.location)::jsonb as location,
			ST_Distance(
				ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'),
				p.location::geography
			) as distance_meters
		FROM places p
		WHERE ST_DWithin(
			ST_GeogFromText('POINT(' || $2 || ' ' || $1 || ')'),
			p.location::geography,
			$3
		)
		ORDER BY distance_meters
		LIMIT 50
	`

	rows, err := r.client.DB.QueryContext(ctx, query, lat, lng, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("周辺の場所検索失敗: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var result PlaceResult
		err := rows.Scan(&result.ID, &result.Name, &result.Address, &result.Location, &result.DistanceMeters)
		if err != nil {
			return nil, fmt.Errorf("場所データスキャンエラー: %w", err)
		}

		place, err := result.ToPlace()
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("場所データの読み取りエラー: %w", err)
	}

	return places, nil
}

// SearchByName 名前の部分一致で場所を検索する
func (r *PostgresPlacesRepository) SearchByName(ctx context.Context, name string, limit int) ([]model.Place, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, name, address, ST_AsGeoJSON(location)::jsonb
		FROM places
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`

	rows, err := r.client.DB.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("場所の名前検索失敗: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var result PlaceResult
		err := rows.Scan(&result.ID, &result.Name, &result.Address, &result.Location)
		if err != nil {
			return nil, fmt.Errorf("場所データスキャンエラー: %w", err)
		}

		place, err := result.ToPlace()
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("場所データの読み取りエラー: %w", err)
	}

	return places, nil
}

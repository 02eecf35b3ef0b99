package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkcourse-editor/internal/infrastructure/database"
	"walkcourse-editor/internal/repository"
)

// 実データベースへの接続が必要なインテグレーションテスト
// 環境変数が設定されていない場合はスキップする
func setupPlacesRepository(t *testing.T) *database.PostgreSQLClient {
	t.Helper()

	godotenv.Load("../../.env")

	if os.Getenv("SUPABASE_URL") == "" || os.Getenv("SUPABASE_DB_PASSWORD") == "" {
		t.Skip("SUPABASE_URL / SUPABASE_DB_PASSWORD が未設定のためスキップ")
	}

	client, err := database.NewPostgreSQLClient()
	require.NoError(t, err, "PostgreSQLクライアントの初期化に失敗")
	t.Cleanup(func() { client.Close() })

	return client
}

func TestGetNearbyPlaces_Integration(t *testing.T) {
	client := setupPlacesRepository(t)
	repo := repository.NewPostgresPlacesRepository(client)

	// 京都市中心部周辺で検索
	places, err := repo.GetNearbyPlaces(context.Background(), 35.011, 135.768, 500)
	require.NoError(t, err)

	for _, place := range places {
		assert.NotEmpty(t, place.ID)
		assert.NotEmpty(t, place.Name)
		assert.InDelta(t, 35.011, place.Latitude, 0.1)
		assert.InDelta(t, 135.768, place.Longitude, 0.1)
	}
}

func TestSearchByName_Integration(t *testing.T) {
	client := setupPlacesRepository(t)
	repo := repository.NewPostgresPlacesRepository(client)

	places, err := repo.SearchByName(context.Background(), "公園", 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(places), 5)
}

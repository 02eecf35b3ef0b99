package geo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkcourse-editor/internal/infrastructure/geo"
)

const reverseResponseBody = `{
	"display_name": "1, Teheran-ro, Yeoksam-dong, Gangnam-gu, Seoul, South Korea",
	"address": {
		"house_number": "1",
		"road": "Teheran-ro",
		"suburb": "Yeoksam-dong",
		"borough": "Gangnam-gu",
		"city": "Seoul"
	}
}`

const searchResponseBody = `[
	{
		"lat": "35.0116",
		"lon": "135.7681",
		"display_name": "Kyoto Station, Shimogyo Ward, Kyoto, Japan",
		"class": "railway",
		"type": "station"
	}
]`

func newStubNominatimServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "reverse") {
			w.Write([]byte(reverseResponseBody))
			return
		}
		w.Write([]byte(searchResponseBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReverseGeocode_MapsAddressFields(t *testing.T) {
	srv := newStubNominatimServer(t)
	client, err := geo.NewNominatimClient(srv.URL)
	require.NoError(t, err)

	result, err := client.ReverseGeocode(context.Background(), 37.50, 127.03)
	require.NoError(t, err)

	assert.Equal(t, "Teheran-ro 1", result.RoadAddressName)
	assert.Equal(t, "Gangnam-gu", result.DistrictName)
	assert.Equal(t, "Teheran-ro 1 (Gangnam-gu)", result.DisplayAddress())
}

func TestSearchPlacesByText_ParsesResults(t *testing.T) {
	srv := newStubNominatimServer(t)
	client, err := geo.NewNominatimClient(srv.URL)
	require.NoError(t, err)

	places, err := client.SearchPlacesByText(context.Background(), "Kyoto Station")
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, "Kyoto Station", places[0].Name)
	assert.Equal(t, 35.0116, places[0].Latitude)
	assert.Equal(t, 135.7681, places[0].Longitude)
	assert.Contains(t, places[0].Address, "Shimogyo Ward")
}

func TestSearchPlacesByText_CanceledContext(t *testing.T) {
	// 応答しないサーバーでも、ctxの期限で検索が打ち切られる
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client, err := geo.NewNominatimClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.SearchPlacesByText(ctx, "Kyoto")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 300*time.Millisecond)
}

package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/handler"
	"walkcourse-editor/internal/usecase"
)

// stubGeoLookup テスト用のGeoLookupClient実装
type stubGeoLookup struct{}

func (s *stubGeoLookup) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.ReverseGeocodeResult, error) {
	return &model.ReverseGeocodeResult{GeneralAddressName: fmt.Sprintf("住所 %.2f", lat)}, nil
}

func (s *stubGeoLookup) SearchPlacesByText(ctx context.Context, text string) ([]model.Place, error) {
	return []model.Place{{ID: "p1", Name: text}}, nil
}

func (s *stubGeoLookup) SearchPlacesByLocation(ctx context.Context, lat, lng float64) ([]model.Place, error) {
	return nil, nil
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessionUseCase := usecase.NewSessionUseCase(&stubGeoLookup{}, nil)
	sessionHandler := handler.NewSessionHandler(sessionUseCase)

	r := gin.New()
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.OpenSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.DELETE("/:id", sessionHandler.CloseSession)
		sessions.POST("/:id/taps", sessionHandler.HandleMapTap)
		sessions.PUT("/:id/mode", sessionHandler.SetMode)
		sessions.POST("/:id/route/revert", sessionHandler.RevertLastRoutePoint)
		sessions.DELETE("/:id/spots/:index", sessionHandler.RemoveSpot)
		sessions.PUT("/:id/spots/:index/title", sessionHandler.UpdateSpotTitle)
		sessions.GET("/:id/snapshot", sessionHandler.GetSnapshot)
	}
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var view usecase.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotEmpty(t, view.SessionID)
	return view.SessionID
}

func TestOpenSession_Returns201WithView(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var view usecase.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, model.ModeRouteDrawing, view.Mode)
	assert.Equal(t, -1, view.SelectedSpot)
}

func TestHandleMapTap_ReturnsUpdatedView(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/sessions/"+id+"/taps",
		`{"latitude": 34.70, "longitude": 135.50}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view usecase.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.RoutePoints, 1)
	assert.Equal(t, 135.50, view.RoutePoints[0].Longitude)
	assert.NotEmpty(t, view.MapCommands)
}

func TestHandleMapTap_RejectsOutOfRangeCoordinates(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/sessions/"+id+"/taps",
		`{"latitude": 123.0, "longitude": 135.50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_parameter")
}

func TestHandleMapTap_UnknownSessionReturns404(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/sessions/missing/taps",
		`{"latitude": 34.70, "longitude": 135.50}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "session_not_found")
}

func TestSetMode_ValidatesMode(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodPut, "/sessions/"+id+"/mode", `{"mode": "flying"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPut, "/sessions/"+id+"/mode", `{"mode": "spot_placing"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view usecase.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, model.ModeSpotPlacing, view.Mode)
}

func TestRemoveSpot_RejectsInvalidIndex(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodDelete, "/sessions/"+id+"/spots/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/sessions/"+id+"/spots/-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSpotTitle_RoundTrip(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodPut, "/sessions/"+id+"/mode", `{"mode": "spot_placing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, r, http.MethodPost, "/sessions/"+id+"/taps",
		`{"latitude": 34.70, "longitude": 135.50}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPut, "/sessions/"+id+"/spots/0/title", `{"value": "カフェ"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view usecase.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Spots, 1)
	assert.Equal(t, "カフェ", view.Spots[0].Title)
}

func TestGetSnapshot_UsesLngLatOrder(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/sessions/"+id+"/taps",
		`{"latitude": 34.70, "longitude": 135.50}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/sessions/"+id+"/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot model.CourseSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.RoutePoints, 1)
	assert.Equal(t, [2]float64{135.50, 34.70}, snapshot.RoutePoints[0])
}

// ctxAwareGeoLookup ctxの取り消しを監視しながら遅延応答するスタブ
// リクエストの寿命を超えて実行されるルックアップの検証に使う
type ctxAwareGeoLookup struct {
	delay time.Duration
}

func (g *ctxAwareGeoLookup) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.ReverseGeocodeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(g.delay):
		return &model.ReverseGeocodeResult{
			RoadAddressName: fmt.Sprintf("通り %.2f", lat),
			DistrictName:    "テスト区",
		}, nil
	}
}

func (g *ctxAwareGeoLookup) SearchPlacesByText(ctx context.Context, text string) ([]model.Place, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(g.delay):
		return []model.Place{{ID: "p1", Name: text}}, nil
	}
}

func (g *ctxAwareGeoLookup) SearchPlacesByLocation(ctx context.Context, lat, lng float64) ([]model.Place, error) {
	return nil, nil
}

// 実サーバー越しの検証: タップのHTTPリクエストはルックアップより先に完了するため、
// リクエストのctxに引きずられると住所が空のまま確定してしまう
func TestAddressResolution_AcrossServerBoundary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessionUseCase := usecase.NewSessionUseCase(&ctxAwareGeoLookup{delay: 50 * time.Millisecond}, nil)
	sessionHandler := handler.NewSessionHandler(sessionUseCase)

	r := gin.New()
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.OpenSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.POST("/:id/taps", sessionHandler.HandleMapTap)
	}

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var opened usecase.SessionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opened))
	resp.Body.Close()

	tap := func(body string) {
		resp, err := http.Post(srv.URL+"/sessions/"+opened.SessionID+"/taps", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	tap(`{"latitude": 37.50, "longitude": 127.03}`)
	tap(`{"latitude": 37.51, "longitude": 127.04}`)

	assert.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/sessions/" + opened.SessionID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var view usecase.SessionView
		if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
			return false
		}
		return len(view.Addresses) == 2 &&
			view.Addresses[0] == "通り 37.50 (テスト区)" &&
			view.Addresses[1] == "通り 37.51 (テスト区)"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCloseSession_WithoutRepoSaveFails(t *testing.T) {
	r := setupTestRouter(t)
	id := openSession(t, r)

	// 保存先が構成されていない場合、save=true はエラーになる
	w := doRequest(t, r, http.MethodDelete, "/sessions/"+id+"?save=true", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/sessions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

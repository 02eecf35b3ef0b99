package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/gominatim"

	"walkcourse-editor/internal/domain/model"
)

const (
	defaultNominatimServer = "https://nominatim.openstreetmap.org"
	searchResultLimit      = 10
)

// NominatimClient Nominatim APIを使った逆ジオコーディングとテキスト検索の実装
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimClient 新しいNominatimClientを作成する。baseURLが空ならパブリックサーバーを使う
func NewNominatimClient(baseURL string) (*NominatimClient, error) {
	if baseURL == "" {
		baseURL = defaultNominatimServer
	}
	gominatim.SetServer(baseURL)
	return &NominatimClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ReverseGeocode 座標を人間が読める住所に解決する
func (n *NominatimClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.ReverseGeocodeResult, error) {
	reqURL := n.buildReverseURL(lat, lng)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("逆ジオコーディングAPIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp nominatimReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	return apiResp.toReverseGeocodeResult(), nil
}

type textSearchOutcome struct {
	results []gominatim.SearchResult
	err     error
}

// SearchPlacesByText テキストクエリで場所を検索する
// gominatimはcontextを受け取れないため、検索はゴルーチンで実行して
// ctxの取り消し・タイムアウトと競わせる
func (n *NominatimClient) SearchPlacesByText(ctx context.Context, text string) ([]model.Place, error) {
	query := gominatim.SearchQuery{
		Q:     text,
		Limit: searchResultLimit,
	}

	outcomeCh := make(chan textSearchOutcome, 1)
	go func() {
		results, err := query.Get()
		outcomeCh <- textSearchOutcome{results: results, err: err}
	}()

	var results []gominatim.SearchResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("場所検索が中断されました: %w", ctx.Err())
	case outcome := <-outcomeCh:
		if outcome.err != nil {
			return nil, fmt.Errorf("場所検索に失敗: %w", outcome.err)
		}
		results = outcome.results
	}

	places := make([]model.Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		places = append(places, model.Place{
			ID:        fmt.Sprintf("nominatim:%s,%s", r.Lat, r.Lon),
			Name:      displayNameHead(r.DisplayName),
			Address:   r.DisplayName,
			Latitude:  lat,
			Longitude: lng,
		})
		if len(places) >= searchResultLimit {
			break
		}
	}

	return places, nil
}

func (n *NominatimClient) buildReverseURL(lat, lng float64) string {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("addressdetails", "1")
	return fmt.Sprintf("%s/reverse?%s", n.baseURL, params.Encode())
}

// displayNameHead Nominatimのdisplay_nameの先頭要素（施設・道路名）を取り出す
func displayNameHead(displayName string) string {
	if i := strings.Index(displayName, ","); i >= 0 {
		return strings.TrimSpace(displayName[:i])
	}
	return displayName
}

// --- Nominatim reverse APIのレスポンスをパースするための構造体 ---

type nominatimReverseResponse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Borough       string `json:"borough"`
	CityDistrict  string `json:"city_district"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	County        string `json:"county"`
}

// toReverseGeocodeResult APIレスポンスをドメインモデルに変換する
// 道路名住所は道路名＋番地、行政区は区相当の要素を優先して採用する
func (r *nominatimReverseResponse) toReverseGeocodeResult() *model.ReverseGeocodeResult {
	road := r.Address.Road
	if road != "" && r.Address.HouseNumber != "" {
		road = fmt.Sprintf("%s %s", road, r.Address.HouseNumber)
	}

	district := firstNonEmpty(
		r.Address.Borough,
		r.Address.CityDistrict,
		r.Address.Suburb,
		r.Address.County,
	)

	return &model.ReverseGeocodeResult{
		RoadAddressName:    road,
		GeneralAddressName: r.DisplayName,
		DistrictName:       district,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

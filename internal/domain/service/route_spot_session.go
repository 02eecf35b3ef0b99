package service

import (
	"context"
	"sync"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
)

// RouteSpotSession ルート・スポット編集セッションの中核となる状態機械
//
// タップ座標の順序列（ルート）、各地点の解決済み住所、スポット一覧、編集モード、
// 検索サブ状態を所有し、MapSurface と GeoLookupClient へコマンドを発行して
// その非同期結果を自身のモデルへ反映する。
//
// ユーザー操作による変更は受け取った順に同期的に適用される。
// 非同期の完了（逆ジオコーディング・場所検索）は完了順に届くため、
// 各結果が持つ発行時のコンテキスト（インデックス・トークン）を照合し、
// すでに無効になった結果は黙って捨てる。住所列は常に
// len(addresses) <= len(routePoints) を満たし、保留中の検索がすべて
// 完了した時点でインデックスのずれなく等しい長さに収束する。
type RouteSpotSession struct {
	mu        sync.Mutex
	surface   MapSurface
	geo       repository.GeoLookupClient
	debouncer *SearchDebouncer

	mode         model.EditMode
	routePoints  []model.RoutePoint
	addresses    []string
	spots        []model.Spot
	selectedSpot int // 未選択は -1

	queryText       string
	inputFocused    bool
	candidatePlaces []model.Place
	searchSeq       uint64 // candidatePlaces の世代。古い検索結果の適用を防ぐ

	geocodeSeq      uint64
	pendingGeocodes map[int]uint64 // インデックス -> そのインデックスで有効な逆ジオコーディングのトークン
	bufferedResults map[int]string // 先に完了したが前の地点が未解決で追記待ちの住所

	hasLocationMarker bool
}

// NewRouteSpotSession 空のモデルから新しい編集セッションを開始する
func NewRouteSpotSession(surface MapSurface, geo repository.GeoLookupClient, debouncer *SearchDebouncer) *RouteSpotSession {
	if debouncer == nil {
		debouncer = NewSearchDebouncer(DefaultSearchDebounceDelay)
	}
	return &RouteSpotSession{
		surface:         surface,
		geo:             geo,
		debouncer:       debouncer,
		mode:            model.ModeRouteDrawing,
		selectedSpot:    -1,
		pendingGeocodes: make(map[int]uint64),
		bufferedResults: make(map[int]string),
	}
}

// NewRouteSpotSessionWithState 保存済みの状態をシードとしてセッションを再開する
// シードされたルートとスポットは DrawPolyline / AddMarkers で地図へ一括反映する
func NewRouteSpotSessionWithState(surface MapSurface, geo repository.GeoLookupClient, debouncer *SearchDebouncer, state *model.SessionState) *RouteSpotSession {
	s := NewRouteSpotSession(surface, geo, debouncer)
	if state == nil {
		return s
	}

	if state.Mode.IsValid() {
		s.mode = state.Mode
	}
	s.routePoints = append(s.routePoints, state.RoutePoints...)
	s.addresses = append(s.addresses, state.Addresses...)
	// 住所が欠けたまま保存されていた場合は空のプレースホルダで穴埋めし、整合を保つ
	for len(s.addresses) < len(s.routePoints) {
		s.addresses = append(s.addresses, "")
	}
	if len(s.addresses) > len(s.routePoints) {
		s.addresses = s.addresses[:len(s.routePoints)]
	}

	s.spots = append(s.spots, state.Spots...)

	if len(s.routePoints) > 0 {
		s.surface.DrawPolyline(s.routePoints)
	}
	if len(s.spots) > 0 {
		points := make([]model.RoutePoint, len(s.spots))
		for i, spot := range s.spots {
			points[i] = spot.Point
		}
		s.surface.AddMarkers(points)
	}

	return s
}

// SetCurrentLocation セッション開始時の現在地マーカーを地図に置く
// 最初のルート地点が置かれた時点でマーカーは取り除かれる
func (s *RouteSpotSession) SetCurrentLocation(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.AddCurrentLocationMarker(lat, lng)
	s.hasLocationMarker = true
}

// SetMode 編集モードを切り替える。モデルにも MapSurface にも副作用はない
func (s *RouteSpotSession) SetMode(mode model.EditMode) {
	if !mode.IsValid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// HandleMapTap 地図タップを処理する
// ルート描画モードでは地点を追加して線分を描き、逆ジオコーディングを非同期で発行する。
// スポット配置モードでは空のタイトル・本文を持つスポットを追加してマーカーを置く。
func (s *RouteSpotSession) HandleMapTap(ctx context.Context, lat, lng float64) {
	point := model.RoutePoint{Latitude: lat, Longitude: lng}
	if err := point.Validate(); err != nil {
		return
	}

	s.mu.Lock()

	switch s.mode {
	case model.ModeRouteDrawing:
		s.routePoints = append(s.routePoints, point)
		index := len(s.routePoints) - 1

		s.geocodeSeq++
		token := s.geocodeSeq
		s.pendingGeocodes[index] = token

		s.surface.DrawSegment(lat, lng)

		first := index == 0
		if first && s.hasLocationMarker {
			s.surface.RemoveCurrentLocationMarker()
			s.hasLocationMarker = false
		}
		s.mu.Unlock()

		// 呼び出し元のctx（HTTPリクエストなど）はタップ処理の復帰と同時に
		// 取り消され得るため、リクエストより長生きするルックアップには引き継がない
		lookupCtx := context.WithoutCancel(ctx)
		go s.resolveAddress(lookupCtx, index, token, point)
		if first {
			// 最初の地点が決まった時点で周辺の場所を先回りして出す
			go s.lookupNearbyPlaces(lookupCtx, point)
		}

	case model.ModeSpotPlacing:
		s.spots = append(s.spots, model.Spot{Point: point})
		s.surface.AddMarker(lat, lng)
		s.mu.Unlock()

	default:
		s.mu.Unlock()
	}
}

// resolveAddress タップ地点の住所を逆ジオコーディングで解決する
// 失敗しても致命的エラーにはせず、空のプレースホルダとして扱う
func (s *RouteSpotSession) resolveAddress(ctx context.Context, index int, token uint64, point model.RoutePoint) {
	display := ""
	result, err := s.geo.ReverseGeocode(ctx, point.Latitude, point.Longitude)
	if err == nil && result != nil {
		display = result.DisplayAddress()
	}
	s.applyResolvedAddress(index, token, display)
}

// applyResolvedAddress 逆ジオコーディング結果をモデルへ反映する
// 発行時のトークンが現在も有効な場合のみ受け付け、取り消し済み・上書き済みの
// 結果は黙って捨てる。完了順がインデックス順と一致しない場合はバッファへ置き、
// 前の地点が揃った時点でインデックス順に追記する。
func (s *RouteSpotSession) applyResolvedAddress(index int, token uint64, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.pendingGeocodes[index]
	if !ok || current != token {
		return
	}
	delete(s.pendingGeocodes, index)

	s.bufferedResults[index] = display
	for {
		next := len(s.addresses)
		buffered, ok := s.bufferedResults[next]
		if !ok {
			break
		}
		delete(s.bufferedResults, next)
		s.addresses = append(s.addresses, buffered)
	}
}

// lookupNearbyPlaces 最初のルート地点の周辺の場所を検索して候補に出す
func (s *RouteSpotSession) lookupNearbyPlaces(ctx context.Context, point model.RoutePoint) {
	s.mu.Lock()
	s.searchSeq++
	token := s.searchSeq
	s.mu.Unlock()

	places, err := s.geo.SearchPlacesByLocation(ctx, point.Latitude, point.Longitude)
	if err != nil {
		places = nil
	}
	s.applySearchResults(token, places)
}

// ClearRoute ルートの全地点と住所を破棄する。スポットには影響しない
func (s *RouteSpotSession) ClearRoute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routePoints = nil
	s.addresses = nil
	s.pendingGeocodes = make(map[int]uint64)
	s.bufferedResults = make(map[int]string)
	s.surface.RemoveAllLines()
}

// RevertLastRoutePoint 最後のルート地点を取り消す。空ルートではno-op
func (s *RouteSpotSession) RevertLastRoutePoint() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.routePoints) == 0 {
		return
	}

	last := len(s.routePoints) - 1
	s.routePoints = s.routePoints[:last]
	if len(s.addresses) > last {
		s.addresses = s.addresses[:last]
	}
	// 取り消した地点宛ての解決結果が後から届いても適用されないようにする
	delete(s.pendingGeocodes, last)
	delete(s.bufferedResults, last)

	s.surface.RemoveLastLine()
}

// RemoveSpot 指定インデックスのスポットを削除する。範囲外はno-op
// 選択中スポットが削除されたら選択を解除し、それより後ろが選択されていたら
// インデックスを1つ詰める
func (s *RouteSpotSession) RemoveSpot(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.spots) {
		return
	}

	s.spots = append(s.spots[:index], s.spots[index+1:]...)
	s.surface.RemoveMarker(index)

	switch {
	case s.selectedSpot == index:
		s.selectedSpot = -1
	case s.selectedSpot > index:
		s.selectedSpot--
	}
}

// UpdateSpotTitle スポットのタイトルを更新する。MapSurfaceへの副作用はない
func (s *RouteSpotSession) UpdateSpotTitle(index int, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.spots) {
		return
	}
	s.spots[index].Title = title
}

// UpdateSpotContent スポットの本文を更新する。MapSurfaceへの副作用はない
func (s *RouteSpotSession) UpdateSpotContent(index int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.spots) {
		return
	}
	s.spots[index].Content = content
}

// SelectSpot スポットを選択してその地点へ地図を移動する。範囲外はno-op
func (s *RouteSpotSession) SelectSpot(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.spots) {
		return
	}
	s.selectedSpot = index
	s.surface.PanTo(s.spots[index].Point.Latitude, s.spots[index].Point.Longitude)
}

// SetSearchFocus 検索入力のフォーカス状態を記録する
func (s *RouteSpotSession) SetSearchFocus(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputFocused = focused
}

// OnSearchTextChange 検索テキストの変更を処理する
// queryText は即時反映し、検索リクエストの発行はデバウンスする。
// 空文字列なら保留中の検索を取り消して候補を消すだけで、リクエストは発行しない。
func (s *RouteSpotSession) OnSearchTextChange(ctx context.Context, text string) {
	s.mu.Lock()
	s.queryText = text
	s.searchSeq++
	token := s.searchSeq

	if text == "" {
		s.debouncer.Cancel()
		s.candidatePlaces = nil
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// デバウンス後の検索は呼び出し元のctxの寿命を超えて実行される
	lookupCtx := context.WithoutCancel(ctx)
	s.debouncer.Schedule(text, func(query string, debounceToken uint64) {
		if debounceToken != s.debouncer.Latest() {
			return
		}
		s.performTextSearch(lookupCtx, query, token)
	})
}

// performTextSearch デバウンス後に実際のテキスト検索を実行する
func (s *RouteSpotSession) performTextSearch(ctx context.Context, text string, token uint64) {
	places, err := s.geo.SearchPlacesByText(ctx, text)
	if err != nil {
		places = nil
	}
	s.applySearchResults(token, places)
}

// applySearchResults 場所検索の結果を候補一覧へ反映する
// 発行後にクエリが変わっていた場合（トークン不一致）は捨てる
func (s *RouteSpotSession) applySearchResults(token uint64, places []model.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.searchSeq {
		return
	}
	s.candidatePlaces = places
}

// SelectPlace 検索候補から場所を選ぶ
// 地図をその場所へ移動し、クエリを表示名で確定して候補を閉じる。
// ルート地点・スポットは追加しない（検索はビューの移動だけを行う）
func (s *RouteSpotSession) SelectPlace(place model.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchSeq++
	s.debouncer.Cancel()
	s.queryText = place.Name
	s.inputFocused = false
	s.candidatePlaces = nil
	s.surface.PanTo(place.Latitude, place.Longitude)
}

// Resize 地図ビューのサイズ変更を MapSurface へ通知する
func (s *RouteSpotSession) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.Resize()
}

// Mode 現在の編集モード
func (s *RouteSpotSession) Mode() model.EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// RoutePoints ルート地点のコピーを返す
func (s *RouteSpotSession) RoutePoints() []model.RoutePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := make([]model.RoutePoint, len(s.routePoints))
	copy(points, s.routePoints)
	return points
}

// ResolvedAddresses 解決済み住所のコピーを返す
func (s *RouteSpotSession) ResolvedAddresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	addresses := make([]string, len(s.addresses))
	copy(addresses, s.addresses)
	return addresses
}

// Spots スポット一覧のコピーを返す
func (s *RouteSpotSession) Spots() []model.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	spots := make([]model.Spot, len(s.spots))
	copy(spots, s.spots)
	return spots
}

// SelectedSpot 選択中スポットのインデックス。未選択は -1
func (s *RouteSpotSession) SelectedSpot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedSpot
}

// QueryText 現在の検索テキスト
func (s *RouteSpotSession) QueryText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryText
}

// CandidatePlaces 現在の検索候補のコピーを返す
func (s *RouteSpotSession) CandidatePlaces() []model.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	places := make([]model.Place, len(s.candidatePlaces))
	copy(places, s.candidatePlaces)
	return places
}

// Snapshot 提出フロー向けの読み取り専用スナップショットを返す
// 座標は [lng, lat] 順で出力する
func (s *RouteSpotSession) Snapshot() *model.CourseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &model.CourseSnapshot{
		RoutePoints: make([][2]float64, len(s.routePoints)),
		Addresses:   make([]string, len(s.addresses)),
		Spots:       make([]model.SpotSnapshot, len(s.spots)),
	}
	for i, p := range s.routePoints {
		snapshot.RoutePoints[i] = [2]float64{p.Longitude, p.Latitude}
	}
	copy(snapshot.Addresses, s.addresses)
	for i, spot := range s.spots {
		snapshot.Spots[i] = model.SpotSnapshot{
			Title:   spot.Title,
			Content: spot.Content,
			Point:   [2]float64{spot.Point.Longitude, spot.Point.Latitude},
		}
	}
	return snapshot
}

// State セッション再開用の保存状態を返す
func (s *RouteSpotSession) State(sessionID string) *model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &model.SessionState{
		SessionID:   sessionID,
		Mode:        s.mode,
		RoutePoints: make([]model.RoutePoint, len(s.routePoints)),
		Addresses:   make([]string, len(s.addresses)),
		Spots:       make([]model.Spot, len(s.spots)),
	}
	copy(state.RoutePoints, s.routePoints)
	copy(state.Addresses, s.addresses)
	copy(state.Spots, s.spots)
	return state
}

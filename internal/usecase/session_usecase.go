package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
	"walkcourse-editor/internal/domain/service"
	"walkcourse-editor/internal/infrastructure/mapsurface"
)

// 一時保存したセッションの有効時間
const sessionStateTTLHours = 24

// OpenSessionRequest セッション開始リクエスト
// ResumeSessionIDを指定すると保存済みの状態をシードとして再開する
type OpenSessionRequest struct {
	ResumeSessionID string            `json:"resume_session_id"`
	CurrentLocation *model.RoutePoint `json:"current_location"`
}

// SessionView セッションの現在状態と、前回以降に溜まった地図コマンド
type SessionView struct {
	SessionID       string                  `json:"session_id"`
	Mode            model.EditMode          `json:"mode"`
	RoutePoints     []model.RoutePoint      `json:"route_points"`
	Addresses       []string                `json:"addresses"`
	Spots           []model.Spot            `json:"spots"`
	SelectedSpot    int                     `json:"selected_spot"`
	QueryText       string                  `json:"query_text"`
	CandidatePlaces []model.Place           `json:"candidate_places"`
	MapCommands     []mapsurface.MapCommand `json:"map_commands"`
}

// SessionUseCase 編集セッションのライフサイクルと操作ディスパッチを担う
type SessionUseCase interface {
	OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionView, error)
	GetSessionView(sessionID string) (*SessionView, error)

	HandleMapTap(ctx context.Context, sessionID string, lat, lng float64) (*SessionView, error)
	SetMode(sessionID string, mode model.EditMode) (*SessionView, error)
	ClearRoute(sessionID string) (*SessionView, error)
	RevertLastRoutePoint(sessionID string) (*SessionView, error)

	RemoveSpot(sessionID string, index int) (*SessionView, error)
	UpdateSpotTitle(sessionID string, index int, title string) (*SessionView, error)
	UpdateSpotContent(sessionID string, index int, content string) (*SessionView, error)
	SelectSpot(sessionID string, index int) (*SessionView, error)

	ChangeSearchText(ctx context.Context, sessionID string, text string) (*SessionView, error)
	SetSearchFocus(sessionID string, focused bool) (*SessionView, error)
	SelectPlace(sessionID string, place model.Place) (*SessionView, error)
	NotifyResize(sessionID string) (*SessionView, error)

	Snapshot(sessionID string) (*model.CourseSnapshot, error)
	CloseSession(ctx context.Context, sessionID string, save bool) error
}

// liveSession 開いているセッション1つ分のコアとコマンドキューの組
type liveSession struct {
	core  *service.RouteSpotSession
	queue *mapsurface.CommandQueue
}

// sessionUseCaseImpl はSessionUseCaseの実装
type sessionUseCaseImpl struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	geo         repository.GeoLookupClient
	sessionRepo repository.SessionStateRepository
}

// NewSessionUseCase 新しいSessionUseCaseインスタンスを作成
// sessionRepoはnil可（その場合は保存・再開なしで動作する）
func NewSessionUseCase(geo repository.GeoLookupClient, sessionRepo repository.SessionStateRepository) SessionUseCase {
	return &sessionUseCaseImpl{
		sessions:    make(map[string]*liveSession),
		geo:         geo,
		sessionRepo: sessionRepo,
	}
}

// OpenSession 新しい編集セッションを開く
func (u *sessionUseCaseImpl) OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionView, error) {
	if req == nil {
		req = &OpenSessionRequest{}
	}

	queue := mapsurface.NewCommandQueue()
	debouncer := service.NewSearchDebouncer(service.DefaultSearchDebounceDelay)

	var core *service.RouteSpotSession
	if req.ResumeSessionID != "" {
		if u.sessionRepo == nil {
			return nil, fmt.Errorf("セッションの再開はこの構成では利用できません")
		}
		state, err := u.sessionRepo.Get(ctx, req.ResumeSessionID)
		if err != nil {
			return nil, fmt.Errorf("セッションの再開に失敗: %w", err)
		}
		core = service.NewRouteSpotSessionWithState(queue, u.geo, debouncer, state)
		log.Printf("🔄 セッション再開: %s (地点数: %d)", req.ResumeSessionID, len(state.RoutePoints))
	} else {
		core = service.NewRouteSpotSession(queue, u.geo, debouncer)
	}

	if req.CurrentLocation != nil {
		core.SetCurrentLocation(req.CurrentLocation.Latitude, req.CurrentLocation.Longitude)
	}

	sessionID := uuid.New().String()
	u.mu.Lock()
	u.sessions[sessionID] = &liveSession{core: core, queue: queue}
	u.mu.Unlock()

	log.Printf("🚀 編集セッション開始: %s", sessionID)
	return u.view(sessionID, core, queue), nil
}

// lookup 開いているセッションを取得する
func (u *sessionUseCaseImpl) lookup(sessionID string) (*liveSession, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	ls, ok := u.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("セッションが見つかりません: %s", sessionID)
	}
	return ls, nil
}

// view コアの現在状態と溜まった地図コマンドをまとめる
func (u *sessionUseCaseImpl) view(sessionID string, core *service.RouteSpotSession, queue *mapsurface.CommandQueue) *SessionView {
	return &SessionView{
		SessionID:       sessionID,
		Mode:            core.Mode(),
		RoutePoints:     core.RoutePoints(),
		Addresses:       core.ResolvedAddresses(),
		Spots:           core.Spots(),
		SelectedSpot:    core.SelectedSpot(),
		QueryText:       core.QueryText(),
		CandidatePlaces: core.CandidatePlaces(),
		MapCommands:     queue.Drain(),
	}
}

func (u *sessionUseCaseImpl) GetSessionView(sessionID string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) HandleMapTap(ctx context.Context, sessionID string, lat, lng float64) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.HandleMapTap(ctx, lat, lng)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) SetMode(sessionID string, mode model.EditMode) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("対応していないモードです: %s", mode)
	}
	ls.core.SetMode(mode)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) ClearRoute(sessionID string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.ClearRoute()
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) RevertLastRoutePoint(sessionID string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.RevertLastRoutePoint()
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) RemoveSpot(sessionID string, index int) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.RemoveSpot(index)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) UpdateSpotTitle(sessionID string, index int, title string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.UpdateSpotTitle(index, title)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) UpdateSpotContent(sessionID string, index int, content string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.UpdateSpotContent(index, content)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) SelectSpot(sessionID string, index int) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.SelectSpot(index)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) ChangeSearchText(ctx context.Context, sessionID string, text string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.OnSearchTextChange(ctx, text)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) SetSearchFocus(sessionID string, focused bool) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.SetSearchFocus(focused)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) SelectPlace(sessionID string, place model.Place) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.SelectPlace(place)
	return u.view(sessionID, ls.core, ls.queue), nil
}

func (u *sessionUseCaseImpl) NotifyResize(sessionID string) (*SessionView, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ls.core.Resize()
	return u.view(sessionID, ls.core, ls.queue), nil
}

// Snapshot 提出フロー向けのスナップショットを返す（セッションは開いたまま）
func (u *sessionUseCaseImpl) Snapshot(sessionID string) (*model.CourseSnapshot, error) {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return ls.core.Snapshot(), nil
}

// CloseSession セッションを閉じる
// saveが真ならモデルの保存状態をリポジトリへ書いてから破棄する
func (u *sessionUseCaseImpl) CloseSession(ctx context.Context, sessionID string, save bool) error {
	ls, err := u.lookup(sessionID)
	if err != nil {
		return err
	}

	if save {
		if u.sessionRepo == nil {
			return fmt.Errorf("セッションの保存はこの構成では利用できません")
		}
		state := ls.core.State(sessionID)
		if err := u.sessionRepo.Save(ctx, state, sessionStateTTLHours); err != nil {
			return fmt.Errorf("セッション状態の保存に失敗: %w", err)
		}
	}

	u.mu.Lock()
	delete(u.sessions, sessionID)
	u.mu.Unlock()

	log.Printf("👋 編集セッション終了: %s (保存: %v)", sessionID, save)
	return nil
}

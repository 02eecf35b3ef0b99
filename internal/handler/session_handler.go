package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/usecase"
)

// SessionHandler 編集セッションに関するHTTPハンドラー
type SessionHandler struct {
	sessionUseCase usecase.SessionUseCase
}

// NewSessionHandler SessionHandlerの新しいインスタンスを作成
func NewSessionHandler(sessionUseCase usecase.SessionUseCase) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
	}
}

// tapRequest 地図タップのリクエストボディ
type tapRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// modeRequest モード切り替えのリクエストボディ
type modeRequest struct {
	Mode model.EditMode `json:"mode" binding:"required"`
}

// textRequest 検索テキスト変更のリクエストボディ
type textRequest struct {
	Text string `json:"text"`
}

// focusRequest 検索フォーカス変更のリクエストボディ
type focusRequest struct {
	Focused bool `json:"focused"`
}

// spotFieldRequest スポットのタイトル・本文更新のリクエストボディ
type spotFieldRequest struct {
	Value string `json:"value"`
}

// OpenSession POST /sessions - 編集セッションの開始
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req usecase.OpenSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Invalid JSON format: " + err.Error(),
			})
			return
		}
	}

	view, err := h.sessionUseCase.OpenSession(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to open session: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession GET /sessions/:id - セッションの現在状態を取得
func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.sessionUseCase.GetSessionView(c.Param("id"))
	h.respondView(c, view, err)
}

// CloseSession DELETE /sessions/:id - セッションの終了
// save=true を指定するとモデルの状態を保存してから閉じる
func (h *SessionHandler) CloseSession(c *gin.Context) {
	save := c.Query("save") == "true"

	if err := h.sessionUseCase.CloseSession(c.Request.Context(), c.Param("id"), save); err != nil {
		h.respondError(c, "Failed to close session: ", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed", "saved": save})
}

// HandleMapTap POST /sessions/:id/taps - 地図タップの処理
func (h *SessionHandler) HandleMapTap(c *gin.Context) {
	var req tapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	point := model.RoutePoint{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := point.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.HandleMapTap(c.Request.Context(), c.Param("id"), req.Latitude, req.Longitude)
	h.respondView(c, view, err)
}

// SetMode PUT /sessions/:id/mode - 操作モードの切り替え
func (h *SessionHandler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	if !req.Mode.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "mode must be 'route_drawing' or 'spot_placing'",
		})
		return
	}

	view, err := h.sessionUseCase.SetMode(c.Param("id"), req.Mode)
	h.respondView(c, view, err)
}

// ClearRoute POST /sessions/:id/route/clear - ルートの全消去
func (h *SessionHandler) ClearRoute(c *gin.Context) {
	view, err := h.sessionUseCase.ClearRoute(c.Param("id"))
	h.respondView(c, view, err)
}

// RevertLastRoutePoint POST /sessions/:id/route/revert - 直前のルート地点を取り消し
func (h *SessionHandler) RevertLastRoutePoint(c *gin.Context) {
	view, err := h.sessionUseCase.RevertLastRoutePoint(c.Param("id"))
	h.respondView(c, view, err)
}

// RemoveSpot DELETE /sessions/:id/spots/:index - スポットの削除
func (h *SessionHandler) RemoveSpot(c *gin.Context) {
	index, ok := h.parseSpotIndex(c)
	if !ok {
		return
	}

	view, err := h.sessionUseCase.RemoveSpot(c.Param("id"), index)
	h.respondView(c, view, err)
}

// UpdateSpotTitle PUT /sessions/:id/spots/:index/title - スポットのタイトル更新
func (h *SessionHandler) UpdateSpotTitle(c *gin.Context) {
	index, ok := h.parseSpotIndex(c)
	if !ok {
		return
	}

	var req spotFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.UpdateSpotTitle(c.Param("id"), index, req.Value)
	h.respondView(c, view, err)
}

// UpdateSpotContent PUT /sessions/:id/spots/:index/content - スポットの本文更新
func (h *SessionHandler) UpdateSpotContent(c *gin.Context) {
	index, ok := h.parseSpotIndex(c)
	if !ok {
		return
	}

	var req spotFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.UpdateSpotContent(c.Param("id"), index, req.Value)
	h.respondView(c, view, err)
}

// SelectSpot POST /sessions/:id/spots/:index/select - スポットの選択
func (h *SessionHandler) SelectSpot(c *gin.Context) {
	index, ok := h.parseSpotIndex(c)
	if !ok {
		return
	}

	view, err := h.sessionUseCase.SelectSpot(c.Param("id"), index)
	h.respondView(c, view, err)
}

// ChangeSearchText PUT /sessions/:id/search/text - 検索テキストの変更
func (h *SessionHandler) ChangeSearchText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.ChangeSearchText(c.Request.Context(), c.Param("id"), req.Text)
	h.respondView(c, view, err)
}

// SetSearchFocus PUT /sessions/:id/search/focus - 検索欄のフォーカス状態変更
func (h *SessionHandler) SetSearchFocus(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.SetSearchFocus(c.Param("id"), req.Focused)
	h.respondView(c, view, err)
}

// SelectPlace POST /sessions/:id/search/select - 検索候補の選択
func (h *SessionHandler) SelectPlace(c *gin.Context) {
	var place model.Place
	if err := c.ShouldBindJSON(&place); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	view, err := h.sessionUseCase.SelectPlace(c.Param("id"), place)
	h.respondView(c, view, err)
}

// NotifyResize POST /sessions/:id/resize - 地図表示領域のリサイズ通知
func (h *SessionHandler) NotifyResize(c *gin.Context) {
	view, err := h.sessionUseCase.NotifyResize(c.Param("id"))
	h.respondView(c, view, err)
}

// GetSnapshot GET /sessions/:id/snapshot - 提出フロー向けスナップショットの取得
func (h *SessionHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.sessionUseCase.Snapshot(c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to get snapshot: ", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// parseSpotIndex パスパラメータのスポットインデックスを解析
func (h *SessionHandler) parseSpotIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "spot index must be a non-negative integer",
		})
		return 0, false
	}
	return index, true
}

// respondView セッションビューまたはエラーを返す共通処理
func (h *SessionHandler) respondView(c *gin.Context, view *usecase.SessionView, err error) {
	if err != nil {
		h.respondError(c, "Failed to process session operation: ", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// respondError セッション系エラーをHTTPステータスに変換する
func (h *SessionHandler) respondError(c *gin.Context, prefix string, err error) {
	if strings.Contains(err.Error(), "セッションが見つかりません") {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "session_not_found",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": prefix + err.Error(),
	})
}

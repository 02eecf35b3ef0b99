package model

import "time"

// SessionState 編集セッションの保存用スナップショット
// セッション再開時のシード値として使い、コアの内部状態そのものではない
type SessionState struct {
	SessionID   string       `json:"session_id"`
	Mode        EditMode     `json:"mode"`
	RoutePoints []RoutePoint `json:"route_points"`
	Addresses   []string     `json:"addresses"`
	Spots       []Spot       `json:"spots"`
}

// FirestoreSessionState Firestore保存用のセッション状態
type FirestoreSessionState struct {
	Mode        string       `firestore:"mode"`
	RoutePoints []RoutePoint `firestore:"route_points"`
	Addresses   []string     `firestore:"addresses"`
	Spots       []Spot       `firestore:"spots"`
	ExpireAt    time.Time    `firestore:"expireAt"`
}

// ToFirestoreSessionState SessionState をFirestore保存用に変換
func (s *SessionState) ToFirestoreSessionState(ttlHours int) *FirestoreSessionState {
	return &FirestoreSessionState{
		Mode:        string(s.Mode),
		RoutePoints: s.RoutePoints,
		Addresses:   s.Addresses,
		Spots:       s.Spots,
		ExpireAt:    time.Now().Add(time.Duration(ttlHours) * time.Hour),
	}
}

// ToSessionState Firestore保存用の構造体から SessionState に変換
func (f *FirestoreSessionState) ToSessionState(sessionID string) *SessionState {
	mode := EditMode(f.Mode)
	if !mode.IsValid() {
		mode = ModeRouteDrawing
	}
	return &SessionState{
		SessionID:   sessionID,
		Mode:        mode,
		RoutePoints: f.RoutePoints,
		Addresses:   f.Addresses,
		Spots:       f.Spots,
	}
}

package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"

	"walkcourse-editor/internal/domain/model"
	"walkcourse-editor/internal/domain/repository"
)

const sessionStatesCollection = "sessionStates"

// FirestoreSessionRepository Firestoreを使用した編集セッションの一時保存リポジトリ
// ドキュメントは expireAt のTTLポリシーで自動削除される
type FirestoreSessionRepository struct {
	client *firestore.Client
}

// NewFirestoreSessionRepository 新しいFirestoreSessionRepositoryインスタンスを作成
func NewFirestoreSessionRepository(client *firestore.Client) repository.SessionStateRepository {
	return &FirestoreSessionRepository{
		client: client,
	}
}

// Save セッション状態をTTL付きで保存する
func (r *FirestoreSessionRepository) Save(ctx context.Context, state *model.SessionState, ttlHours int) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("セッションIDが指定されていません")
	}

	firestoreData := state.ToFirestoreSessionState(ttlHours)

	_, err := r.client.Collection(sessionStatesCollection).Doc(state.SessionID).Set(ctx, firestoreData)
	if err != nil {
		log.Printf("❌ Failed to save session state %s: %v", state.SessionID, err)
		return fmt.Errorf("セッション状態の保存に失敗しました: %w", err)
	}

	log.Printf("✅ Session state saved: %s (expires in %d hours)", state.SessionID, ttlHours)
	return nil
}

// Get 保存済みのセッション状態を取得する
func (r *FirestoreSessionRepository) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	doc, err := r.client.Collection(sessionStatesCollection).Doc(sessionID).Get(ctx)
	if err != nil {
		if status := err.Error(); strings.Contains(status, "NotFound") || strings.Contains(status, "not found") {
			return nil, fmt.Errorf("セッション状態が見つかりません（有効期限切れまたは無効なID）: %s", sessionID)
		}
		return nil, fmt.Errorf("セッション状態の取得に失敗しました: %w", err)
	}

	var firestoreData model.FirestoreSessionState
	if err := doc.DataTo(&firestoreData); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	return firestoreData.ToSessionState(sessionID), nil
}

// Delete 保存済みのセッション状態を削除する
func (r *FirestoreSessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.client.Collection(sessionStatesCollection).Doc(sessionID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("セッション状態の削除に失敗しました: %w", err)
	}
	return nil
}

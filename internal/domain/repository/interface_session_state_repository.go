package repository

import (
	"context"

	"walkcourse-editor/internal/domain/model"
)

// SessionStateRepository 編集セッションの一時保存リポジトリ
// 一定時間で失効するため、提出済みコースの永続化には使わない
type SessionStateRepository interface {
	Save(ctx context.Context, state *model.SessionState, ttlHours int) error
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)
	Delete(ctx context.Context, sessionID string) error
}

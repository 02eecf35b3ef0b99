package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreClient セッション状態保存用のFirestoreクライアントのラッパー
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient 新しいFirestoreクライアントを作成
// GOOGLE_APPLICATION_CREDENTIALSでキーファイルが指定されていればそれを使い、
// なければ実行環境のデフォルト認証（Cloud Runのサービスアカウントなど）を使う
func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	var opts []option.ClientOption
	if credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("認証情報ファイルが見つかりません: %s", credentialsFile)
		}
		log.Printf("📄 Using credentials file: %s", credentialsFile)
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
	}

	log.Printf("✅ Firestore client initialized for project: %s", projectID)
	return &FirestoreClient{client: client}, nil
}

// Close クライアントを閉じる
func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

// GetClient Firestoreクライアントを取得
func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}

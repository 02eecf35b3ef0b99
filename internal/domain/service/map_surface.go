package service

import "walkcourse-editor/internal/domain/model"

// MapSurface 描画済み地図への外部コラボレーターインターフェース
// セッションはコマンドを発行するだけで、描画結果には関与しない
// コマンドは呼び出し順に論理キューイングされるが、完了順は保証されない
type MapSurface interface {
	// ルート描画系
	DrawSegment(lat, lng float64)
	RemoveLastLine()
	RemoveAllLines()
	// セッション再開時の一括描画用
	DrawPolyline(points []model.RoutePoint)

	// スポットマーカー系
	AddMarker(lat, lng float64)
	AddMarkers(points []model.RoutePoint)
	RemoveMarker(index int)

	// 現在地マーカー系
	AddCurrentLocationMarker(lat, lng float64)
	RemoveCurrentLocationMarker()

	// ビュー操作系
	PanTo(lat, lng float64)
	Resize()
}

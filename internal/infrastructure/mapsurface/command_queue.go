package mapsurface

import (
	"sync"

	"walkcourse-editor/internal/domain/model"
)

// コマンド種別。フロントエンドの地図SDK呼び出しにそのまま対応する
const (
	OpDrawSegment           = "draw_segment"
	OpRemoveLastLine        = "remove_last_line"
	OpRemoveAllLines        = "remove_all_lines"
	OpDrawPolyline          = "draw_polyline"
	OpAddMarker             = "add_marker"
	OpAddMarkers            = "add_markers"
	OpRemoveMarker          = "remove_marker"
	OpAddLocationMarker     = "add_current_location_marker"
	OpRemoveLocationMarker  = "remove_current_location_marker"
	OpPanTo                 = "pan_to"
	OpResize                = "resize"
)

// MapCommand フロントエンドへ引き渡す地図操作コマンド1件
type MapCommand struct {
	Op     string       `json:"op"`
	Lat    float64      `json:"lat,omitempty"`
	Lng    float64      `json:"lng,omitempty"`
	Index  int          `json:"index,omitempty"`
	Points [][2]float64 `json:"points,omitempty"` // [lng, lat]
}

// CommandQueue MapSurface の実装。発行されたコマンドを発行順に記録し、
// フロントエンドがポーリングで取り出すまで保持する
type CommandQueue struct {
	mu       sync.Mutex
	commands []MapCommand
}

// NewCommandQueue 新しいCommandQueueを作成する
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

func (q *CommandQueue) push(cmd MapCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = append(q.commands, cmd)
}

// Drain 溜まっているコマンドを発行順に取り出してキューを空にする
func (q *CommandQueue) Drain() []MapCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	commands := q.commands
	q.commands = nil
	return commands
}

func (q *CommandQueue) DrawSegment(lat, lng float64) {
	q.push(MapCommand{Op: OpDrawSegment, Lat: lat, Lng: lng})
}

func (q *CommandQueue) RemoveLastLine() {
	q.push(MapCommand{Op: OpRemoveLastLine})
}

func (q *CommandQueue) RemoveAllLines() {
	q.push(MapCommand{Op: OpRemoveAllLines})
}

func (q *CommandQueue) DrawPolyline(points []model.RoutePoint) {
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Longitude, p.Latitude}
	}
	q.push(MapCommand{Op: OpDrawPolyline, Points: coords})
}

func (q *CommandQueue) AddMarker(lat, lng float64) {
	q.push(MapCommand{Op: OpAddMarker, Lat: lat, Lng: lng})
}

func (q *CommandQueue) AddMarkers(points []model.RoutePoint) {
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Longitude, p.Latitude}
	}
	q.push(MapCommand{Op: OpAddMarkers, Points: coords})
}

func (q *CommandQueue) RemoveMarker(index int) {
	q.push(MapCommand{Op: OpRemoveMarker, Index: index})
}

func (q *CommandQueue) AddCurrentLocationMarker(lat, lng float64) {
	q.push(MapCommand{Op: OpAddLocationMarker, Lat: lat, Lng: lng})
}

func (q *CommandQueue) RemoveCurrentLocationMarker() {
	q.push(MapCommand{Op: OpRemoveLocationMarker})
}

func (q *CommandQueue) PanTo(lat, lng float64) {
	q.push(MapCommand{Op: OpPanTo, Lat: lat, Lng: lng})
}

func (q *CommandQueue) Resize() {
	q.push(MapCommand{Op: OpResize})
}

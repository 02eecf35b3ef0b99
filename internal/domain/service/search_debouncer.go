package service

import (
	"sync"
	"time"
)

// DefaultSearchDebounceDelay キー入力が止まってから検索を発行するまでの待ち時間
const DefaultSearchDebounceDelay = 500 * time.Millisecond

// SearchDebouncer 連続するクエリテキスト変更を1回の検索リクエストにまとめる
// Schedule のたびに単調増加トークンを発行し、最新トークンの呼び出しだけが生き残る
// 同じテキストでもキー入力ごとに別トークンになるため、テキスト比較では判定しない
type SearchDebouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// NewSearchDebouncer 新しいSearchDebouncerを作成する。delayが0以下ならデフォルト値を使う
func NewSearchDebouncer(delay time.Duration) *SearchDebouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounceDelay
	}
	return &SearchDebouncer{delay: delay}
}

// Schedule 保留中の呼び出しを破棄し、delay 経過後に fn(text, token) を1回だけ実行する
// 発行したトークンを返す。fn 側は Latest と照合することで、実行後にさらに
// Schedule / Cancel されていた場合の結果適用を防げる
func (d *SearchDebouncer) Schedule(text string, fn func(text string, token uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	token := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		fn(text, token)
	})

	return token
}

// Cancel 保留中の呼び出しを破棄する
// トークンも進めるため、すでに発火済みで実行中の検索の結果も無効化される
func (d *SearchDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Latest 現在有効なトークンを返す
func (d *SearchDebouncer) Latest() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

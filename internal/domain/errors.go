package domain

import (
	"fmt"
	"time"
)

// UpstreamError はSlack API呼び出し（一覧・履歴・投稿）の失敗を表す
type UpstreamError struct {
	Op         string
	Err        error
	RetryAfter time.Duration // レート制限時のみ
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

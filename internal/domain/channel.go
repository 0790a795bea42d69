package domain

import "time"

// Channel はSlackチャンネルを表すドメインモデル
type Channel struct {
	ID   string
	Name string
}

// DefaultLocation は日付の区切りに使う固定オフセット（UTC+09:00）
var DefaultLocation = time.FixedZone("UTC+9", 9*60*60)

// TimeWindow は集計対象期間 [Oldest, Latest) を表す値オブジェクト
type TimeWindow struct {
	Oldest time.Time
	Latest time.Time
}

// NewTimeWindow は now を loc に変換し、前日 0:00 から当日 0:00 までの期間を返す
func NewTimeWindow(now time.Time, loc *time.Location) TimeWindow {
	local := now.In(loc)
	latest := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return TimeWindow{
		Oldest: latest.Add(-24 * time.Hour),
		Latest: latest,
	}
}

// ReportDate はレポートに表示する日付（集計対象日）を YYYY-MM-DD 形式で返す
func (w TimeWindow) ReportDate() string {
	return w.Oldest.Format("2006-01-02")
}

// Contains は指定された時刻が期間内かどうかを返す（Latest は含まない）
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Oldest) && t.Before(w.Latest)
}

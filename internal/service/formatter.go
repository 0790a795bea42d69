package service

import (
	"fmt"
	"strings"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
)

// ReportFormatter はランキングを投稿用のテキストに整形する
type ReportFormatter struct{}

// Format はヘッダー行と順位ごとの行からなるレポートを返す。
// チャンネルは <#ID> 形式で書き、Slack側で自動リンクさせる。
func (f *ReportFormatter) Format(ranking domain.Ranking, reportDate string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s の発言数ランキング ==", reportDate)
	for _, activity := range ranking {
		fmt.Fprintf(&b, "\n- <#%s> (%d)", activity.ChannelID, activity.Count)
	}
	return b.String()
}

package service

import (
	"context"
	"fmt"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
)

// DefaultHistoryLimit は1チャンネルあたりに取得するメッセージの上限。
// Slackへはconversations.historyの上限999に切り詰めて渡される
const DefaultHistoryLimit = 1000

// ActivityCounter は1チャンネルの期間内の発言数（ボットを除く）を数えるサービス
type ActivityCounter struct {
	messageRepo domain.MessageRepository
	limit       int
}

// NewActivityCounter は新しいActivityCounterを作成する
func NewActivityCounter(messageRepo domain.MessageRepository, limit int) *ActivityCounter {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ActivityCounter{
		messageRepo: messageRepo,
		limit:       limit,
	}
}

// Count はチャンネルの発言数を数える。メッセージがなければ0件
func (c *ActivityCounter) Count(ctx context.Context, channel *domain.Channel, window domain.TimeWindow) (domain.ChannelActivity, error) {
	messages, err := c.messageRepo.FindInWindow(ctx, channel.ID, window, c.limit)
	if err != nil {
		return domain.ChannelActivity{}, fmt.Errorf("メッセージ取得エラー (#%s): %w", channel.Name, err)
	}

	count := 0
	for _, msg := range messages {
		// ボットメッセージをスキップ
		if msg.IsBot() {
			continue
		}
		if !window.Contains(msg.Timestamp) {
			continue
		}
		count++
	}

	return domain.ChannelActivity{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Count:       count,
	}, nil
}

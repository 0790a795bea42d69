package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// maxHistoryLimit はconversations.historyのlimitの上限
const maxHistoryLimit = 999

// MessageRepository はSlack APIを使用してメッセージを取得するリポジトリ
type MessageRepository struct {
	client *slack.Client
}

// NewMessageRepository は新しいMessageRepositoryを作成する
func NewMessageRepository(client *slack.Client) *MessageRepository {
	return &MessageRepository{
		client: client,
	}
}

// FindInWindow はチャンネルの期間内のメッセージを最大limit件取得する。
// 2ページ目以降は取得しないため、limitを超えるチャンネルは少なく数えられる。
// limitはAPIの上限999に切り詰める。
func (r *MessageRepository) FindInWindow(ctx context.Context, channelID string, window domain.TimeWindow, limit int) ([]*domain.Message, error) {
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	// oldestは排他的なので1マイクロ秒手前を渡して開始時刻ちょうどを含める
	params := slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    formatSlackTimestamp(window.Oldest.Add(-time.Microsecond)),
		Latest:    formatSlackTimestamp(window.Latest),
		Limit:     limit,
	}

	history, err := r.client.GetConversationHistoryContext(ctx, &params)
	if err != nil {
		return nil, upstreamError("conversations.history", err)
	}

	if history.HasMore {
		log.Warn().
			Str("channelID", channelID).
			Int("limit", limit).
			Msg("取得上限を超えるメッセージがあります（発言数は上限で打ち切られます）")
	}

	messages := make([]*domain.Message, 0, len(history.Messages))
	for i := range history.Messages {
		domainMsg, err := r.convertToDomainMessage(&history.Messages[i], channelID)
		if err != nil {
			return nil, upstreamError("conversations.history", err)
		}
		messages = append(messages, domainMsg)
	}

	return messages, nil
}

// convertToDomainMessage はSlackのMessageをドメインモデルに変換する
func (r *MessageRepository) convertToDomainMessage(msg *slack.Message, channelID string) (*domain.Message, error) {
	timestamp, err := parseSlackTimestamp(msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("不正なメッセージ (channel=%s): %w", channelID, err)
	}

	return &domain.Message{
		ID:        msg.Timestamp,
		UserID:    msg.User,
		ChannelID: channelID,
		Timestamp: timestamp,
		BotID:     msg.BotID,
		SubType:   msg.SubType,
	}, nil
}

package slack

import (
	"context"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// ChannelRepository はSlack APIを使用してチャンネル情報を取得するリポジトリ
type ChannelRepository struct {
	client *slack.Client
}

// NewChannelRepository は新しいChannelRepositoryを作成する
func NewChannelRepository(client *slack.Client) *ChannelRepository {
	return &ChannelRepository{
		client: client,
	}
}

// FindAll はアーカイブされていないすべてのチャンネルを取得する。
// ページングはこの中で完結し、呼び出し側には1回の呼び出しとして見える。
func (r *ChannelRepository) FindAll(ctx context.Context) ([]*domain.Channel, error) {
	var allChannels []*domain.Channel
	cursor := ""
	pages := 0

	for {
		conversations, nextCursor, err := r.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           1000,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, upstreamError("conversations.list", err)
		}
		pages++

		for _, conversation := range conversations {
			allChannels = append(allChannels, &domain.Channel{
				ID:   conversation.ID,
				Name: conversation.Name,
			})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	log.Debug().
		Int("channels", len(allChannels)).
		Int("pages", pages).
		Msg("チャンネル一覧を取得しました")

	return allChannels, nil
}

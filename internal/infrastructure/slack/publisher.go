package slack

import (
	"context"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Publisher はchat.postMessageでレポートを投稿する
type Publisher struct {
	client *slack.Client
}

// NewPublisher は新しいPublisherを作成する
func NewPublisher(client *slack.Client) *Publisher {
	return &Publisher{
		client: client,
	}
}

// Publish はテキストを指定チャンネルに投稿する。冪等ではない
func (p *Publisher) Publish(ctx context.Context, channelID, text string, opts domain.PostOptions) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if opts.Username != "" {
		options = append(options, slack.MsgOptionUsername(opts.Username))
	}
	if opts.IconEmoji != "" {
		options = append(options, slack.MsgOptionIconEmoji(opts.IconEmoji))
	}
	if opts.IconURL != "" {
		options = append(options, slack.MsgOptionIconURL(opts.IconURL))
	}

	channel, ts, err := p.client.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return upstreamError("chat.postMessage", err)
	}

	log.Info().
		Str("channelID", channel).
		Str("ts", ts).
		Msg("レポートを投稿しました")

	return nil
}

package domain

import "context"

// ChannelRepository はチャンネル情報を取得するリポジトリインターフェース
type ChannelRepository interface {
	// FindAll はアーカイブされていない全チャンネルを列挙順で返す
	FindAll(ctx context.Context) ([]*Channel, error)
}

// MessageRepository はメッセージを取得するリポジトリインターフェース
type MessageRepository interface {
	// FindInWindow は期間内のメッセージを最大 limit 件返す。続きのページは取得しない
	FindInWindow(ctx context.Context, channelID string, window TimeWindow, limit int) ([]*Message, error)
}

// PostOptions は投稿時の表示名・アイコンの上書き設定
type PostOptions struct {
	Username  string
	IconEmoji string
	IconURL   string
}

// ReportPublisher はレポートを投稿する
type ReportPublisher interface {
	Publish(ctx context.Context, channelID, text string, opts PostOptions) error
}

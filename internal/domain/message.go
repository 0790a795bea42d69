package domain

import "time"

// Message はSlackメッセージを表すドメインモデル
type Message struct {
	ID        string
	UserID    string
	ChannelID string
	Timestamp time.Time
	BotID     string
	SubType   string
}

// IsBot はボット（インテグレーション）から投稿されたメッセージかどうかを返す
func (m *Message) IsBot() bool {
	return m.BotID != "" || m.SubType == "bot_message"
}

// ChannelActivity は1チャンネルの集計期間内の発言数
type ChannelActivity struct {
	ChannelID   string
	ChannelName string
	Count       int
}

// Ranking は発言数の降順に並んだ ChannelActivity の列
type Ranking []ChannelActivity

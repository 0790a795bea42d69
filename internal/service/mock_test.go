package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
)

// mockMessageRepository はMessageRepositoryのモック実装
type mockMessageRepository struct {
	messages map[string][]*domain.Message
	errs     map[string]error
	blocking map[string]bool // trueのチャンネルはctxがキャンセルされるまで返らない
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	limits      sync.Map
}

func (m *mockMessageRepository) FindInWindow(ctx context.Context, channelID string, window domain.TimeWindow, limit int) ([]*domain.Message, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	m.limits.Store(channelID, limit)

	if m.blocking[channelID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err := m.errs[channelID]; err != nil {
		return nil, err
	}
	return m.messages[channelID], nil
}

// mockChannelRepository はChannelRepositoryのモック実装
type mockChannelRepository struct {
	channels []*domain.Channel
	err      error
}

func (m *mockChannelRepository) FindAll(ctx context.Context) ([]*domain.Channel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.channels, nil
}

// mockPublisher はReportPublisherのモック実装
type mockPublisher struct {
	channelID string
	text      string
	opts      domain.PostOptions
	calls     int
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, channelID, text string, opts domain.PostOptions) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.channelID = channelID
	m.text = text
	m.opts = opts
	return nil
}

var jst = time.FixedZone("UTC+9", 9*60*60)

func testWindow() domain.TimeWindow {
	return domain.NewTimeWindow(time.Date(2024, 3, 15, 0, 0, 10, 0, jst), jst)
}

// humanMessages は期間内の人間の発言をn件作る
func humanMessages(window domain.TimeWindow, n int) []*domain.Message {
	msgs := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, &domain.Message{
			UserID:    "U1",
			Timestamp: window.Oldest.Add(time.Duration(i+1) * time.Minute),
		})
	}
	return msgs
}

// botMessages は期間内のボットの発言をn件作る
func botMessages(window domain.TimeWindow, n int) []*domain.Message {
	msgs := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, &domain.Message{
			BotID:     "B1",
			Timestamp: window.Oldest.Add(time.Duration(i+1) * time.Hour),
		})
	}
	return msgs
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReporter(channelRepo domain.ChannelRepository, messageRepo domain.MessageRepository, publisher domain.ReportPublisher) *Reporter {
	r := NewReporter(channelRepo, NewAggregator(NewActivityCounter(messageRepo, 0), 10, 4), publisher, ReporterOptions{
		Destination: "C_POST",
		PostOptions: domain.PostOptions{Username: "ranking", IconEmoji: ":bar_chart:"},
		Location:    jst,
	})
	r.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 10, 0, jst) }
	return r
}

func TestReporter_Run(t *testing.T) {
	window := testWindow()
	channelRepo := &mockChannelRepository{channels: []*domain.Channel{
		{ID: "C1", Name: "general"},
		{ID: "C2", Name: "random"},
	}}
	messageRepo := &mockMessageRepository{messages: map[string][]*domain.Message{
		"C1": humanMessages(window, 1),
		"C2": append(humanMessages(window, 3), botMessages(window, 10)...),
	}}
	publisher := &mockPublisher{}

	err := newTestReporter(channelRepo, messageRepo, publisher).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, publisher.calls)
	assert.Equal(t, "C_POST", publisher.channelID)
	assert.Equal(t, "== 2024-03-14 の発言数ランキング ==\n- <#C2> (3)\n- <#C1> (1)", publisher.text)
	assert.Equal(t, domain.PostOptions{Username: "ranking", IconEmoji: ":bar_chart:"}, publisher.opts)
}

func TestReporter_Build(t *testing.T) {
	channelRepo := &mockChannelRepository{}
	publisher := &mockPublisher{}

	report, err := newTestReporter(channelRepo, &mockMessageRepository{}, publisher).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-14", report.Date)
	assert.Equal(t, testWindow(), report.Window)
	assert.Empty(t, report.Ranking)
	assert.Equal(t, "== 2024-03-14 の発言数ランキング ==", report.Text)
	assert.Zero(t, publisher.calls)
}

func TestReporter_Run_ListFailure(t *testing.T) {
	channelRepo := &mockChannelRepository{err: &domain.UpstreamError{Op: "conversations.list", Err: errors.New("invalid_auth")}}
	publisher := &mockPublisher{}

	err := newTestReporter(channelRepo, &mockMessageRepository{}, publisher).Run(context.Background())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Zero(t, publisher.calls)
}

func TestReporter_Run_CountFailureSkipsPublish(t *testing.T) {
	channelRepo := &mockChannelRepository{channels: []*domain.Channel{{ID: "C1"}, {ID: "C2"}}}
	messageRepo := &mockMessageRepository{errs: map[string]error{
		"C2": &domain.UpstreamError{Op: "conversations.history", Err: errors.New("ratelimited"), RetryAfter: 30 * time.Second},
	}}
	publisher := &mockPublisher{}

	err := newTestReporter(channelRepo, messageRepo, publisher).Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, publisher.calls)
}

func TestReporter_Run_PublishFailure(t *testing.T) {
	channelRepo := &mockChannelRepository{channels: []*domain.Channel{{ID: "C1"}}}
	publisher := &mockPublisher{err: &domain.UpstreamError{Op: "chat.postMessage", Err: errors.New("channel_not_found")}}

	err := newTestReporter(channelRepo, &mockMessageRepository{}, publisher).Run(context.Background())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "chat.postMessage", upstream.Op)
	assert.Equal(t, 1, publisher.calls)
}

func TestNewReporter_DefaultLocation(t *testing.T) {
	r := NewReporter(&mockChannelRepository{}, NewAggregator(NewActivityCounter(&mockMessageRepository{}, 0), 10, 1), &mockPublisher{}, ReporterOptions{})
	// UTCでは3/14 16:00だがUTC+9では3/15 1:00
	r.now = func() time.Time { return time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC) }

	report, err := r.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-14", report.Date)
	assert.True(t, report.Window.Latest.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, jst)))
}

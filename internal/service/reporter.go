package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
)

// Report は1回の実行で作られるレポート
type Report struct {
	Date    string
	Window  domain.TimeWindow
	Ranking domain.Ranking
	Text    string
}

// ReporterOptions は投稿先と日付計算に使うタイムゾーン
type ReporterOptions struct {
	Destination string
	PostOptions domain.PostOptions
	Location    *time.Location
}

// Reporter は期間計算→チャンネル一覧→集計→整形→投稿を順に実行する。
// 単発実行と定期実行のどちらもこれを使う。
type Reporter struct {
	channelRepo domain.ChannelRepository
	aggregator  *Aggregator
	formatter   *ReportFormatter
	publisher   domain.ReportPublisher
	opts        ReporterOptions
	now         func() time.Time
}

// NewReporter は新しいReporterを作成する
func NewReporter(channelRepo domain.ChannelRepository, aggregator *Aggregator, publisher domain.ReportPublisher, opts ReporterOptions) *Reporter {
	if opts.Location == nil {
		opts.Location = domain.DefaultLocation
	}
	return &Reporter{
		channelRepo: channelRepo,
		aggregator:  aggregator,
		formatter:   &ReportFormatter{},
		publisher:   publisher,
		opts:        opts,
		now:         time.Now,
	}
}

// Build は投稿せずにレポートを作成する
func (r *Reporter) Build(ctx context.Context) (*Report, error) {
	window := domain.NewTimeWindow(r.now(), r.opts.Location)

	channels, err := r.channelRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("チャンネル一覧取得エラー: %w", err)
	}

	log.Info().
		Int("channels", len(channels)).
		Time("oldest", window.Oldest).
		Time("latest", window.Latest).
		Msg("発言数の集計を開始します")

	ranking, err := r.aggregator.Aggregate(ctx, channels, window)
	if err != nil {
		return nil, err
	}

	date := window.ReportDate()
	return &Report{
		Date:    date,
		Window:  window,
		Ranking: ranking,
		Text:    r.formatter.Format(ranking, date),
	}, nil
}

// Run はレポートを作成して投稿する。失敗はログに記録した上で返す
func (r *Reporter) Run(ctx context.Context) error {
	report, err := r.Build(ctx)
	if err == nil {
		err = r.publisher.Publish(ctx, r.opts.Destination, report.Text, r.opts.PostOptions)
		if err != nil {
			err = fmt.Errorf("レポート投稿エラー (%s): %w", report.Date, err)
		}
	}
	if err != nil {
		logFailure(err)
		return err
	}

	log.Info().
		Str("date", report.Date).
		Int("entries", len(report.Ranking)).
		Msg("ランキングを投稿しました")
	return nil
}

// logFailure はエラーを運用者向けに記録する
func logFailure(err error) {
	event := log.Error().Err(err)

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		event = event.Str("op", upstream.Op)
		if upstream.RetryAfter > 0 {
			event = event.Dur("retryAfter", upstream.RetryAfter)
		}
	}

	event.Msg("ランキングの作成に失敗しました")
}

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultTopN はランキングに載せるチャンネル数
	DefaultTopN = 10
	// DefaultConcurrency は同時に履歴を取得するチャンネル数
	DefaultConcurrency = 8
)

// Aggregator は全チャンネルの発言数を並行に集計してランキングを作るサービス
type Aggregator struct {
	counter     *ActivityCounter
	topN        int
	concurrency int
}

// NewAggregator は新しいAggregatorを作成する
func NewAggregator(counter *ActivityCounter, topN, concurrency int) *Aggregator {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{
		counter:     counter,
		topN:        topN,
		concurrency: concurrency,
	}
}

// Aggregate はチャンネルごとの発言数を同時実行数を制限して取得し、上位のランキングを返す。
// 1チャンネルでも失敗すると残りの取得をキャンセルし、全体をエラーにする。
func (a *Aggregator) Aggregate(ctx context.Context, channels []*domain.Channel, window domain.TimeWindow) (domain.Ranking, error) {
	// 各タスクは自分のスロットにだけ書き込む
	activities := make([]domain.ChannelActivity, len(channels))

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(a.concurrency).
		WithCancelOnError().
		WithFirstError()

	for i, channel := range channels {
		p.Go(func(ctx context.Context) error {
			activity, err := a.counter.Count(ctx, channel, window)
			if err != nil {
				return err
			}
			activities[i] = activity
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("発言数の集計に失敗しました: %w", err)
	}

	log.Debug().
		Int("channels", len(channels)).
		Int("concurrency", a.concurrency).
		Msg("発言数の集計が完了しました")

	return rank(activities, a.topN), nil
}

// rank は発言数の降順に並べて上位n件を返す。同数の場合は元の並び順を保つ
func rank(activities []domain.ChannelActivity, n int) domain.Ranking {
	ranking := make(domain.Ranking, len(activities))
	copy(ranking, activities)

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog/log"
)

// State はスケジューラの状態
type State int

const (
	StateIdle State = iota
	StateArmed
	StateFiring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFiring:
		return "firing"
	default:
		return "unknown"
	}
}

// Job はスケジューラから1日1回呼ばれる処理
type Job func(ctx context.Context) error

// Scheduler は毎日決まったローカル時刻にJobを実行する
type Scheduler struct {
	job      Job
	at       time.Duration // 0:00からのオフセット
	location *time.Location

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu    sync.Mutex
	state State
	next  time.Time
}

// New は location における毎日 at（0:00からの経過時間）に job を実行するスケジューラを作成する
func New(job Job, at time.Duration, location *time.Location) *Scheduler {
	if location == nil {
		location = domain.DefaultLocation
	}
	return &Scheduler{
		job:      job,
		at:       at,
		location: location,
		now:      time.Now,
		after:    time.After,
	}
}

// Run はctxがキャンセルされるまでJobを毎日実行する。Jobの失敗では止まらない
func (s *Scheduler) Run(ctx context.Context) {
	var prev time.Time
	for {
		// タイマーは壁時計の巻き戻しに影響されないため、発火後に時計が
		// 予定時刻より手前を指していても同じ枠を二度実行しない
		next := s.NextFire(laterOf(s.now(), prev))
		prev = next
		s.setState(StateArmed, next)

		wait := next.Sub(s.now())
		log.Info().
			Time("next", next).
			Dur("wait", wait).
			Msg("次回の実行を予約しました")

		select {
		case <-ctx.Done():
			s.setState(StateIdle, time.Time{})
			log.Info().Msg("スケジューラを停止しました")
			return
		case <-s.after(wait):
		}

		s.setState(StateFiring, next)
		if err := s.job(ctx); err != nil {
			log.Warn().Err(err).Msg("今回の実行は失敗しました。次回の実行を待ちます")
		}
	}
}

// NextFire は now より後で最も近い実行時刻を返す
func (s *Scheduler) NextFire(now time.Time) time.Time {
	local := now.In(s.location)
	h := int(s.at / time.Hour)
	m := int(s.at % time.Hour / time.Minute)
	sec := int(s.at % time.Minute / time.Second)

	next := time.Date(local.Year(), local.Month(), local.Day(), h, m, sec, 0, s.location)
	if !local.Before(next) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, h, m, sec, 0, s.location)
	}
	return next
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// State は現在の状態と次回の実行時刻を返す
func (s *Scheduler) State() (State, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.next
}

func (s *Scheduler) setState(state State, next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.next = next
}

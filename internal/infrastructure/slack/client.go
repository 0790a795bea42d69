package slack

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// logAdapter はslack-goのログ出力をzerologに流す
type logAdapter struct {
	logger zerolog.Logger
}

func (a *logAdapter) Output(calldepth int, s string) error {
	a.logger.Debug().Msg(s)
	return nil
}

// NewClient はzerologアダプタ付きのSlackクライアントを作成する。
// ログレベルがdebug以下ならslack-goのデバッグ出力も流す。
func NewClient(token string, options ...slack.Option) *slack.Client {
	adapter := &logAdapter{
		logger: log.With().Str("component", "slack-api").Logger(),
	}
	opts := append([]slack.Option{
		slack.OptionLog(adapter),
		slack.OptionDebug(zerolog.GlobalLevel() <= zerolog.DebugLevel),
	}, options...)
	return slack.New(token, opts...)
}

// upstreamError はslack-goのエラーを domain.UpstreamError に包む
func upstreamError(op string, err error) error {
	return &domain.UpstreamError{
		Op:         op,
		Err:        err,
		RetryAfter: retryAfter(err),
	}
}

// retryAfter はレート制限エラーから待機時間を取り出す。レート制限でなければ0
func retryAfter(err error) time.Duration {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter
	}
	return 0
}

// formatSlackTimestamp はtime.TimeをSlackのタイムスタンプ形式（秒.マイクロ秒）に変換する
func formatSlackTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "." + leftPad(strconv.Itoa(t.Nanosecond()/1000), 6)
}

// parseSlackTimestamp はSlackのタイムスタンプ文字列をtime.Timeに変換する
func parseSlackTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")

	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("タイムスタンプ解析エラー: %w", err)
	}

	var micro int64
	if fracPart != "" {
		if len(fracPart) > 6 {
			fracPart = fracPart[:6]
		}
		micro, err = strconv.ParseInt(fracPart+strings.Repeat("0", 6-len(fracPart)), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("タイムスタンプ解析エラー: %w", err)
		}
	}

	return time.Unix(sec, micro*int64(time.Microsecond)), nil
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

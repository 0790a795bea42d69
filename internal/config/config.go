package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config はプロセス起動時に一度だけ読み込む設定
type Config struct {
	SlackToken    string `mapstructure:"slack_token"`
	PostChannel   string `mapstructure:"post_channel"`
	PostUsername  string `mapstructure:"post_username"`
	PostIconEmoji string `mapstructure:"post_icon_emoji"`
	PostIconURL   string `mapstructure:"post_icon_url"`

	UTCOffset    string `mapstructure:"utc_offset"`
	TriggerTime  string `mapstructure:"trigger_time"`
	TopN         int    `mapstructure:"top_n"`
	HistoryLimit int    `mapstructure:"history_limit"`
	Concurrency  int    `mapstructure:"concurrency"`
	LogLevel     string `mapstructure:"log_level"`

	Location  *time.Location `mapstructure:"-"`
	TriggerAt time.Duration  `mapstructure:"-"` // 0:00からのオフセット
}

// 設定キーと環境変数の対応
var envBindings = map[string]string{
	"slack_token":     "SLACK_TOKEN",
	"post_channel":    "POST_CHANNEL",
	"post_username":   "POST_USERNAME",
	"post_icon_emoji": "POST_ICON_EMOJI",
	"post_icon_url":   "POST_ICON_URL",
	"utc_offset":      "REPORT_UTC_OFFSET",
	"trigger_time":    "REPORT_TRIGGER_TIME",
	"top_n":           "REPORT_TOP_N",
	"history_limit":   "HISTORY_LIMIT",
	"concurrency":     "FETCH_CONCURRENCY",
	"log_level":       "LOG_LEVEL",
}

// Options は設定の読み込み元
type Options struct {
	ConfigFile string         // 空なら読まない
	EnvFile    string         // 空なら ".env"。存在しなくてもよい
	Flags      *pflag.FlagSet // "log-level" フラグがあれば環境変数より優先する
}

// Load はデフォルト値、設定ファイル、環境変数、フラグの順に重ねて設定を読み込む
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env読み込みエラー: %w", err)
	}

	v := viper.New()
	v.SetDefault("utc_offset", "+09:00")
	v.SetDefault("trigger_time", "00:00:10")
	v.SetDefault("top_n", 10)
	v.SetDefault("history_limit", 1000)
	v.SetDefault("concurrency", 8)
	v.SetDefault("log_level", "info")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("環境変数のバインドに失敗しました (%s): %w", env, err)
		}
	}

	if opts.Flags != nil {
		if flag := opts.Flags.Lookup("log-level"); flag != nil {
			if err := v.BindPFlag("log_level", flag); err != nil {
				return nil, fmt.Errorf("フラグのバインドに失敗しました: %w", err)
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗しました: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SlackToken == "" {
		return errors.New("SLACK_TOKEN が設定されていません")
	}
	if c.PostChannel == "" {
		return errors.New("POST_CHANNEL が設定されていません")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n は1以上にしてください: %d", c.TopN)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit は1以上にしてください: %d", c.HistoryLimit)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency は1以上にしてください: %d", c.Concurrency)
	}

	loc, err := ParseOffset(c.UTCOffset)
	if err != nil {
		return err
	}
	c.Location = loc

	at, err := ParseClock(c.TriggerTime)
	if err != nil {
		return err
	}
	c.TriggerAt = at

	return nil
}

// ParseOffset は "+09:00" 形式のUTCオフセットを固定タイムゾーンに変換する
func ParseOffset(offset string) (*time.Location, error) {
	t, err := time.Parse("Z07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("UTCオフセットの形式が無効です (%q): %w", offset, err)
	}
	_, sec := t.Zone()
	return time.FixedZone("UTC"+offset, sec), nil
}

// ParseClock は "15:04:05" 形式の時刻を0:00からの経過時間に変換する
func ParseClock(clock string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return 0, fmt.Errorf("実行時刻の形式が無効です (%q): %w", clock, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

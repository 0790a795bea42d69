package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tattsum/slack-channel-ranking/internal/config"
	"github.com/Tattsum/slack-channel-ranking/internal/domain"
	infraslack "github.com/Tattsum/slack-channel-ranking/internal/infrastructure/slack"
	"github.com/Tattsum/slack-channel-ranking/internal/scheduler"
	"github.com/Tattsum/slack-channel-ranking/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "slack-channel-ranking",
		Short:         "前日の発言数が多いSlackチャンネルのランキングを投稿する",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "設定ファイルのパス（省略可）")
	root.PersistentFlags().String("log-level", "", "ログレベル: trace, debug, info, warn, error")

	var dryRun bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "ランキングを1回だけ作成して投稿する",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			reporter := newReporter(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dryRun {
				report, err := reporter.Build(ctx)
				if err != nil {
					log.Error().Err(err).Msg("ランキングの作成に失敗しました")
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.Text)
				return nil
			}
			return reporter.Run(ctx)
		},
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "投稿せずに標準出力に表示する")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "毎日決まった時刻にランキングを投稿し続ける",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			reporter := newReporter(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().
				Str("triggerTime", cfg.TriggerTime).
				Str("utcOffset", cfg.UTCOffset).
				Msg("スケジューラを開始します")

			scheduler.New(reporter.Run, cfg.TriggerAt, cfg.Location).Run(ctx)
			return nil
		},
	}

	root.AddCommand(runCmd, serveCmd)
	return root
}

// loadConfig は設定を読み込み、ロガーを初期化する
func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	setupLogger("info")

	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		log.Error().Err(err).Msg("設定の読み込みに失敗しました")
		return nil, err
	}

	setupLogger(cfg.LogLevel)
	log.Info().
		Str("postChannel", cfg.PostChannel).
		Int("topN", cfg.TopN).
		Int("historyLimit", cfg.HistoryLimit).
		Int("concurrency", cfg.Concurrency).
		Msg("設定を読み込みました")

	return cfg, nil
}

func setupLogger(level string) {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
}

// newReporter はSlackクライアントと各サービスを組み立てる
func newReporter(cfg *config.Config) *service.Reporter {
	client := infraslack.NewClient(cfg.SlackToken)

	counter := service.NewActivityCounter(infraslack.NewMessageRepository(client), cfg.HistoryLimit)
	aggregator := service.NewAggregator(counter, cfg.TopN, cfg.Concurrency)

	return service.NewReporter(
		infraslack.NewChannelRepository(client),
		aggregator,
		infraslack.NewPublisher(client),
		service.ReporterOptions{
			Destination: cfg.PostChannel,
			PostOptions: domain.PostOptions{
				Username:  cfg.PostUsername,
				IconEmoji: cfg.PostIconEmoji,
				IconURL:   cfg.PostIconURL,
			},
			Location: cfg.Location,
		},
	)
}


package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tv-notifier/internal/bot"
	"tv-notifier/internal/config"
	"tv-notifier/internal/feed"
	"tv-notifier/internal/schedule"
	"tv-notifier/internal/scheduler"
	"tv-notifier/internal/store"
	"tv-notifier/internal/sync"
	"tv-notifier/internal/telegram"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "tv-notifier",
		Short:         "Telegram reminders for followed TV shows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			setupLogging(cfg.Logging)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Sync the feed, then serve commands and scheduled jobs until stopped",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDaemon(cfg)
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Run one feed synchronization",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "weekly",
			Short: "Print this week's schedule",
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := store.Open(cfg.Database.Path)
				if err != nil {
					return err
				}
				defer st.Close()

				week, err := schedule.NewEngine(st).ThisWeek(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), schedule.RenderWeek(week))
				return nil
			},
		},
		newNotifyCommand(&cfg),
	)

	return cmd
}

func newNotifyCommand(cfg **config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send reminders for shows airing tomorrow",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			st, err := store.Open(c.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			var sender bot.Sender
			if dryRun {
				sender = stdoutSender{cmd: cmd}
			} else {
				if err := c.RequireTelegram(); err != nil {
					return err
				}
				client, err := telegram.NewClient(c.Telegram.Token)
				if err != nil {
					return err
				}
				sender = client
			}

			_, err = bot.NewNotifier(schedule.NewEngine(st), sender, c.Telegram.ChatID).CheckTomorrow(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print reminders instead of sending them")
	return cmd
}

// stdoutSender prints messages instead of delivering them.
type stdoutSender struct {
	cmd *cobra.Command
}

func (s stdoutSender) Send(ctx context.Context, chatID int64, text string) error {
	_, err := fmt.Fprintf(s.cmd.OutOrStdout(), "[%d] %s\n\n", chatID, text)
	return err
}

func newSyncer(cfg *config.Config, st *store.Store, state *sync.State) *sync.Syncer {
	client := feed.NewClient(cfg.Feed.URL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
	return sync.NewSyncer(client, st, cfg.Feed.CachePath, state)
}

func runSync(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireFeed(); err != nil {
		return err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	state := sync.NewState(cfg.State.Path)
	if err := state.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to load state, starting fresh")
	}

	res, err := newSyncer(cfg, st, state).Sync(ctx)
	if err != nil {
		return err
	}

	total, err := st.Count(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("inserted", res.Inserted).
		Int("total", total).
		Msg("Sync finished")
	return nil
}

func runDaemon(cfg *config.Config) error {
	if err := cfg.RequireFeed(); err != nil {
		return err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	log.Info().Msg("Starting TV notifier")

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	state := sync.NewState(cfg.State.Path)
	if err := state.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to load state, starting fresh")
	}

	client, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	syncer := newSyncer(cfg, st, state)
	engine := schedule.NewEngine(st)
	notifier := bot.NewNotifier(engine, client, cfg.Telegram.ChatID)
	handler := bot.NewHandler(engine, client, state)

	// Handle shutdown gracefully
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	// Initial sync; a failure here is retried on the next scheduled run.
	if _, err := syncer.Sync(ctx); err != nil {
		log.Error().Err(err).Msg("Initial sync failed")
	}

	sched := scheduler.New(ctx)
	if err := sched.Add("sync", cfg.Schedule.Sync, func(ctx context.Context) error {
		_, err := syncer.Sync(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Add("notify", cfg.Schedule.Notify, func(ctx context.Context) error {
		_, err := notifier.CheckTomorrow(ctx)
		return err
	}); err != nil {
		return err
	}

	var wg stdsync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		client.Listen(ctx, handler)
	}()
	wg.Wait()

	log.Info().Msg("TV notifier stopped")
	return nil
}

func setupLogging(cfg config.LoggingConfig) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output = os.Stdout
	if cfg.Path != "" {
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to open log file, using stdout")
		} else {
			output = file
		}
	}

	// Configure format
	if cfg.Format == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}
}

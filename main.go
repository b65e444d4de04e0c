package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/bot"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/config"
	"github.com/vladimiradmaev/nutriscan/internal/logger"
	"github.com/vladimiradmaev/nutriscan/internal/repository"
	"github.com/vladimiradmaev/nutriscan/internal/server"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
	"github.com/vladimiradmaev/nutriscan/internal/tui"
	"github.com/vladimiradmaev/nutriscan/internal/utils"
)

// Namespace of the terminal session.
const localNamespace = "local:"

// Commands annotated with storageOnly never call the AI service and skip
// provider credential checks.
const storageOnly = "storage-only"

var (
	cfg      *config.Config
	httpAddr string
	chatID   int64
	clientID string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nutriscan",
	Short: "Food scanner that scores products against your dietary goal",
	Long: `nutriscan analyses food photos and product names with a generative AI
service and scores them against a dietary goal. It runs as a Telegram bot,
a websocket server or a terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load()

		var err error
		cfg, err = config.Read()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		validate := cfg.Validate
		if cmd.Annotations[storageOnly] != "" {
			validate = cfg.ValidateStorage
		}
		if err := validate(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.InitWithConfig(logger.Config{
			Level:      cfg.Logger.Level,
			OutputPath: cfg.Logger.OutputPath,
			Format:     cfg.Logger.Format,
		}); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		if envErr != nil {
			logger.Warn(".env file not found")
		}
		logger.Info("Configuration loaded", "provider", cfg.AI.Provider, "storage", cfg.Storage.Backend)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	historyCmd.Flags().Int64Var(&chatID, "chat", 0, "Telegram chat ID")
	historyCmd.Flags().StringVar(&clientID, "client", "", "websocket client ID")

	rootCmd.AddCommand(botCmd, serveCmd, tuiCmd, historyCmd)
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.Build(ctx, cfg, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer a.Close()

		telegramBot, err := bot.NewBot(cfg.TelegramToken, a)
		if err != nil {
			return err
		}

		logger.Info("Bot is running. Press Ctrl+C to stop.")
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot stopped: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sessions over websocket with /health and /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		a, err := app.Build(ctx, cfg, reg)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := httpAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		return server.New(a, reg).Start(ctx, addr)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal UI against the snapshot files of a local camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.Build(ctx, cfg, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer a.Close()

		device := capture.NewFileDevice(cfg.Camera.RearPath, cfg.Camera.FrontPath)
		sess := a.NewSession(ctx, localNamespace, device)
		defer sess.Controller.Close()

		return tui.Run(ctx, sess.Controller, cfg.ProgressInterval)
	},
}

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Print the stored scan history of a session",
	Annotations: map[string]string{storageOnly: "true"},
	Long: `Print the stored scan history of a session, newest first.

Examples:
  # Terminal session
  nutriscan history

  # A Telegram chat
  nutriscan history --chat 123456789

  # A websocket client
  nutriscan history --client 3f0c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := app.NewStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		namespace := localNamespace
		switch {
		case chatID != 0:
			namespace = storage.ChatPrefix(chatID)
		case clientID != "":
			namespace = storage.ClientPrefix(clientID)
		}

		history := repository.NewHistoryRepository(storage.Namespaced(store, namespace), logger.GetLogger())
		if err := history.Load(ctx); err != nil {
			return err
		}

		entries := history.All()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scans yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSCORE\tKCAL\tPRODUCT\tID")
		for _, e := range entries {
			fmt.Fprintf(w, "%s %s\t%d/10\t%.0f\t%s\t%s\n",
				e.Time().In(time.Local).Format("2006-01-02"),
				utils.FormatClock(e.Timestamp, time.Local),
				e.HealthScore, e.Calories, e.ProductName, e.ID)
		}
		return w.Flush()
	},
}

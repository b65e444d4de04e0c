package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/bot/handlers"
	"github.com/vladimiradmaev/nutriscan/internal/bot/state"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

// Bot serves one controller session per Telegram chat.
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *state.Manager
	handler  *handlers.UpdateHandler
	logger   *slog.Logger
}

// NewBot connects to Telegram and prepares the handlers.
func NewBot(token string, a *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger := a.Logger.With("component", "bot")
	logger.Info("Bot authorized", "account", api.Self.UserName)

	sessions := state.NewManager(SessionFactory(a), a.Metrics)
	return &Bot{
		api:      api,
		sessions: sessions,
		handler: handlers.NewUpdateHandler(api, handlers.Dependencies{
			Sessions: sessions,
			Download: handlers.HTTPDownload,
			Location: time.Local,
			Logger:   logger,
		}),
		logger: logger,
	}, nil
}

// SessionFactory creates chat sessions whose camera is fed by the photos
// the chat sends.
func SessionFactory(a *app.App) state.Factory {
	return func(ctx context.Context, chatID int64) *state.Session {
		frames := capture.NewFrameDevice()
		return &state.Session{
			Session: a.NewSession(ctx, storage.ChatPrefix(chatID), frames),
			Frames:  frames,
		}
	}
}

// Start polls for updates until ctx is cancelled. Each update is handled in
// its own goroutine; a chat's controller rejects overlapping requests.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot is now listening for updates")

	var wg sync.WaitGroup
	defer func() {
		b.api.StopReceivingUpdates()
		wg.Wait()
		b.sessions.CloseAll()
	}()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot is shutting down")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := b.handler.Handle(ctx, update); err != nil {
					b.logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
				}
			}()
		}
	}
}

package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/menus"
	"github.com/vladimiradmaev/nutriscan/internal/bot/state"
)

// Telegram caps bot downloads at 20 MB.
const maxPhotoBytes = 20 << 20

// API is the part of the Telegram bot API the handlers use.
type API interface {
	menus.Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader fetches the bytes behind a file URL.
type Downloader func(ctx context.Context, url string) ([]byte, error)

// Dependencies holds everything the handlers share
type Dependencies struct {
	Sessions *state.Manager
	Download Downloader
	Location *time.Location
	Logger   *slog.Logger
}

// HTTPDownload downloads url with the default client.
func HTTPDownload(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

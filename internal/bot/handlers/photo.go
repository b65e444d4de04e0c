package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
)

// PhotoHandler feeds photos to an open scanner.
type PhotoHandler struct {
	api  API
	deps Dependencies
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api API, deps Dependencies) *PhotoHandler {
	return &PhotoHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a photo message
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	sess := h.deps.Sessions.Get(ctx, chatID)

	if sess.Controller.Snapshot().State.Kind() != controller.KindScanning {
		msg := tgbotapi.NewMessage(chatID, "Please tap \"📷 Scan food\" in the menu first.")
		_, err := h.api.Send(msg)
		return err
	}

	// Get the largest photo
	photo := message.Photo[len(message.Photo)-1]
	url, err := h.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	data, err := h.deps.Download(ctx, url)
	if err != nil {
		return err
	}

	if err := sess.Frames.PushEncoded(data); err != nil {
		h.deps.Logger.Warn("Photo rejected by scanner", "chat_id", chatID, "error", err)
		msg := tgbotapi.NewMessage(chatID, "I couldn't read that image. Please send another photo.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	err = withProgress(h.api, h.deps.Logger, chatID, sess, func() error {
		return sess.Controller.Capture(ctx)
	})
	return reply(h.api, chatID, sess, err)
}

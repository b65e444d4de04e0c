package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
)

// TextHandler treats free text as a product search.
type TextHandler struct {
	api  API
	deps Dependencies
}

// NewTextHandler creates a new text handler
func NewTextHandler(api API, deps Dependencies) *TextHandler {
	return &TextHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	sess := h.deps.Sessions.Get(ctx, chatID)

	if sess.Controller.Snapshot().State.Kind() == controller.KindScanning {
		msg := tgbotapi.NewMessage(chatID, "📷 The camera is open. Send a photo, or tap ✖️ Close to search by name.")
		_, err := h.api.Send(msg)
		return err
	}

	if err := toIdle(sess); err != nil {
		return sendHint(h.api, chatID, err)
	}

	err := withProgress(h.api, h.deps.Logger, chatID, sess, func() error {
		return sess.Controller.Search(ctx, message.Text)
	})
	return reply(h.api, chatID, sess, err)
}

package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/menus"
	"github.com/vladimiradmaev/nutriscan/internal/bot/state"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             API
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api API, deps Dependencies) *UpdateHandler {
	if deps.Download == nil {
		deps.Download = HTTPDownload
	}
	return &UpdateHandler{
		api:             api,
		deps:            deps,
		callbackHandler: NewCallbackHandler(api, deps),
		commandHandler:  NewCommandHandler(api, deps),
		textHandler:     NewTextHandler(api, deps),
		photoHandler:    NewPhotoHandler(api, deps),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.MyChatMember != nil {
		h.handleMembership(update.MyChatMember)
		return nil
	}

	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message == nil {
			return nil
		}
		return h.callbackHandler.Handle(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}

	switch {
	case update.Message.IsCommand():
		return h.commandHandler.Handle(ctx, update.Message)
	case len(update.Message.Photo) > 0:
		return h.photoHandler.Handle(ctx, update.Message)
	case update.Message.Text != "":
		return h.textHandler.Handle(ctx, update.Message)
	}
	return nil
}

// handleMembership drops the session of a chat that blocked or left the bot.
// History stays in storage and is loaded again if the chat returns.
func (h *UpdateHandler) handleMembership(m *tgbotapi.ChatMemberUpdated) {
	if !m.NewChatMember.WasKicked() && !m.NewChatMember.HasLeft() {
		return
	}
	h.deps.Logger.Info("Chat closed the bot, dropping session", "chat_id", m.Chat.ID, "status", m.NewChatMember.Status)
	h.deps.Sessions.Drop(m.Chat.ID)
}

// toIdle leaves a result, report, guide, error or the scanner so a new
// request can start.
func toIdle(sess *state.Session) error {
	if sess.Controller.Snapshot().State.Kind() == controller.KindIdle {
		return nil
	}
	return sess.Controller.Reset()
}

// reply answers a controller error with a hint, or renders the new state.
func reply(api API, chatID int64, sess *state.Session, err error) error {
	if err != nil {
		return sendHint(api, chatID, err)
	}
	return menus.SendSnapshot(api, chatID, sess.Controller.Snapshot())
}

func sendHint(api API, chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, controller.ErrBusy):
		text = "⏳ Still working on your previous request, one moment."
	case errors.Is(err, controller.ErrEntryNotFound):
		text = "That scan is no longer in your history."
	case errors.Is(err, controller.ErrInvalidTransition):
		text = "That action isn't available right now. Use /start to return to the menu."
	default:
		return err
	}
	_, sendErr := api.Send(tgbotapi.NewMessage(chatID, text))
	return sendErr
}

package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/menus"
)

const helpText = `Available commands:
/start - Show the main menu
/help - Show this message

How to scan:
1. Tap "📷 Scan food"
2. Send a photo of the product or its label
3. Wait for the score and the advice for your goal

You can also type a product name, e.g. "Greek yogurt", to analyse it without a photo.
Change your goal with "🎯 Goal"; new scans are scored against it.`

// CommandHandler handles bot commands
type CommandHandler struct {
	api  API
	deps Dependencies
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api API, deps Dependencies) *CommandHandler {
	return &CommandHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	h.deps.Logger.Info("Handling command", "command", message.Command(), "chat_id", message.Chat.ID)

	switch message.Command() {
	case "start":
		sess := h.deps.Sessions.Get(ctx, message.Chat.ID)
		if err := sess.Controller.Reset(); err != nil {
			return sendHint(h.api, message.Chat.ID, err)
		}
		return menus.SendMainMenu(h.api, message.Chat.ID, sess.Controller.Snapshot())
	case "help":
		return h.handleHelp(message.Chat.ID)
	default:
		return h.handleUnknownCommand(message.Chat.ID)
	}
}

// handleHelp handles the /help command
func (h *CommandHandler) handleHelp(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	_, err := h.api.Send(msg)
	return err
}

func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
	_, err := h.api.Send(msg)
	return err
}

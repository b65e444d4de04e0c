package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutriscan/internal/bot/menus"
	"github.com/vladimiradmaev/nutriscan/internal/bot/state"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api  API
	deps Dependencies
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api API, deps Dependencies) *CallbackHandler {
	return &CallbackHandler{
		api:  api,
		deps: deps,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Answer the callback query first
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		h.deps.Logger.Warn("Failed to answer callback query", "error", err)
	}

	chatID := query.Message.Chat.ID
	sess := h.deps.Sessions.Get(ctx, chatID)

	switch {
	case query.Data == keyboards.Scan:
		return h.handleScan(ctx, chatID, sess)
	case query.Data == keyboards.SwitchCamera:
		return reply(h.api, chatID, sess, sess.Controller.ToggleCamera(ctx))
	case query.Data == keyboards.CloseScanner:
		return reply(h.api, chatID, sess, sess.Controller.CancelScan())
	case query.Data == keyboards.DailyReport:
		return h.handleAnalysis(chatID, sess, func() error {
			return sess.Controller.GenerateDailyReport(ctx)
		})
	case query.Data == keyboards.GoalGuide:
		return h.handleAnalysis(chatID, sess, func() error {
			return sess.Controller.GenerateGoalGuide(ctx)
		})
	case query.Data == keyboards.Goals:
		return menus.SendGoalMenu(h.api, chatID, sess.Controller.Snapshot().Goal)
	case strings.HasPrefix(query.Data, keyboards.GoalPrefix):
		return h.handleGoal(ctx, chatID, sess, query.Data)
	case query.Data == keyboards.History:
		return menus.SendHistoryMenu(h.api, chatID, sess.Controller.Snapshot().History, h.deps.Location)
	case strings.HasPrefix(query.Data, keyboards.HistoryPrefix):
		return h.handleHistoryItem(chatID, sess, strings.TrimPrefix(query.Data, keyboards.HistoryPrefix))
	case query.Data == keyboards.Theme:
		if err := sess.Controller.ToggleTheme(ctx); err != nil {
			return err
		}
		return menus.SendMainMenu(h.api, chatID, sess.Controller.Snapshot())
	case query.Data == keyboards.MainMenuData:
		return reply(h.api, chatID, sess, sess.Controller.Reset())
	default:
		return h.handleUnknownCallback(chatID)
	}
}

func (h *CallbackHandler) handleScan(ctx context.Context, chatID int64, sess *state.Session) error {
	if err := toIdle(sess); err != nil {
		return sendHint(h.api, chatID, err)
	}
	return reply(h.api, chatID, sess, sess.Controller.StartScan(ctx))
}

func (h *CallbackHandler) handleAnalysis(chatID int64, sess *state.Session, op func() error) error {
	if err := toIdle(sess); err != nil {
		return sendHint(h.api, chatID, err)
	}
	return reply(h.api, chatID, sess, withProgress(h.api, h.deps.Logger, chatID, sess, op))
}

func (h *CallbackHandler) handleGoal(ctx context.Context, chatID int64, sess *state.Session, data string) error {
	goal, ok := keyboards.ParseGoal(data)
	if !ok {
		return h.handleUnknownCallback(chatID)
	}
	if err := sess.Controller.SetGoal(ctx, goal); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, "🎯 Goal set to "+string(goal)+". New scans will be scored against it.")
	if _, err := h.api.Send(msg); err != nil {
		return err
	}
	return menus.SendMainMenu(h.api, chatID, sess.Controller.Snapshot())
}

func (h *CallbackHandler) handleHistoryItem(chatID int64, sess *state.Session, id string) error {
	if err := toIdle(sess); err != nil {
		return sendHint(h.api, chatID, err)
	}
	return reply(h.api, chatID, sess, sess.Controller.OpenHistory(id))
}

func (h *CallbackHandler) handleUnknownCallback(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown action. Use /start to open the menu.")
	_, err := h.api.Send(msg)
	return err
}

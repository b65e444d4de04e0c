package handlers

import (
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/state"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
)

// progressMessage is the "processing" message edited on every stage change.
type progressMessage struct {
	api    API
	logger *slog.Logger
	chatID int64
	msgID  int

	mu    sync.Mutex
	stage string
	done  bool
}

func progressText(p controller.Progress) string {
	return fmt.Sprintf("⏳ %s %.0f%%", p.Stage, p.Percent)
}

func (p *progressMessage) observe(snap controller.Snapshot) {
	if !snap.Busy {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || snap.Progress.Stage == p.stage {
		return
	}
	p.stage = snap.Progress.Stage

	edit := tgbotapi.NewEditMessageText(p.chatID, p.msgID, progressText(snap.Progress))
	if _, err := p.api.Send(edit); err != nil {
		p.logger.Debug("Failed to edit progress message", "chat_id", p.chatID, "error", err)
	}
}

func (p *progressMessage) finish() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()

	if _, err := p.api.Request(tgbotapi.NewDeleteMessage(p.chatID, p.msgID)); err != nil {
		p.logger.Debug("Failed to delete progress message", "chat_id", p.chatID, "error", err)
	}
}

// withProgress runs op while a processing message tracks the progress stage,
// then removes the message.
func withProgress(api API, logger *slog.Logger, chatID int64, sess *state.Session, op func() error) error {
	initial := controller.Progress{Stage: controller.StageWarmingUp}
	sent, err := api.Send(tgbotapi.NewMessage(chatID, progressText(initial)))
	if err != nil {
		logger.Warn("Failed to send processing message", "chat_id", chatID, "error", err)
		return op()
	}

	pm := &progressMessage{
		api:    api,
		logger: logger,
		chatID: chatID,
		msgID:  sent.MessageID,
		stage:  initial.Stage,
	}
	unsubscribe := sess.Controller.Subscribe(pm.observe)
	err = op()
	unsubscribe()
	pm.finish()
	return err
}

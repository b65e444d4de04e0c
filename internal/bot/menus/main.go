package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/utils"
)

// Telegram rejects longer messages.
const maxMessageLength = 4000

// Sender is the part of the bot API the menus need.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64, snap controller.Snapshot) error {
	return sendMarkdown(api, chatID, MainMenuText(snap), keyboards.MainMenu(snap.Theme))
}

// SendGoalMenu asks the user to pick a goal.
func SendGoalMenu(api Sender, chatID int64, current domain.Goal) error {
	text := fmt.Sprintf("🎯 Current goal: *%s*\n\nScores and advice are tailored to it. Pick a new one:", Escape(string(current)))
	return sendMarkdown(api, chatID, text, keyboards.GoalMenu(current))
}

// SendHistoryMenu lists past scans as buttons.
func SendHistoryMenu(api Sender, chatID int64, entries []domain.HistoryEntry, loc *time.Location) error {
	if len(entries) == 0 {
		return sendMarkdown(api, chatID, "🕘 No scans yet. Tap 📷 Scan food to start.", keyboards.ResultMenu())
	}
	return sendMarkdown(api, chatID, "🕘 Your recent scans, newest first:", keyboards.HistoryMenu(entries, loc))
}

// SendSnapshot renders the controller state. Nothing is sent while
// analysing; the progress message covers that.
func SendSnapshot(api Sender, chatID int64, snap controller.Snapshot) error {
	switch s := snap.State.(type) {
	case controller.Idle:
		return SendMainMenu(api, chatID, snap)
	case controller.Scanning:
		return sendMarkdown(api, chatID, ScannerText(s.Facing), keyboards.ScannerMenu())
	case controller.ShowingResult:
		return sendMarkdown(api, chatID, ResultText(s.Record, snap.Goal), keyboards.ResultMenu())
	case controller.ShowingDailyReport:
		return sendMarkdown(api, chatID, ReportText(s.Report), keyboards.ResultMenu())
	case controller.ShowingGoalGuide:
		return sendMarkdown(api, chatID, GuideText(s.Guide), keyboards.ResultMenu())
	case controller.Failed:
		return sendMarkdown(api, chatID, ErrorText(s.Message), keyboards.ErrorMenu())
	default:
		return nil
	}
}

// MainMenuText is the greeting with the current goal.
func MainMenuText(snap controller.Snapshot) string {
	return fmt.Sprintf(`🥗 *NutriScan*, your pocket nutritionist

📷 Tap *Scan food* and send a photo of a product or its label
🔎 Or just type a product name, e.g. Lays Classic
📊 Get a report of the last 24 hours or a 🗓️ plan for your goal

🎯 Goal: *%s*
🕘 Scans in history: %d`, Escape(string(snap.Goal)), len(snap.History))
}

// ScannerText prompts for a photo.
func ScannerText(facing capture.Facing) string {
	camera := "rear"
	if facing == capture.FacingFront {
		camera = "front"
	}
	return fmt.Sprintf("📷 Camera ready (%s). Send a photo of the food or its label.", camera)
}

// ResultText renders a nutrition record for the goal it was scored against.
func ResultText(r domain.NutritionRecord, goal domain.Goal) string {
	var b strings.Builder
	m := r.Macros()

	fmt.Fprintf(&b, "🍽️ *%s*\n", Escape(r.ProductName))
	fmt.Fprintf(&b, "%s Health score: *%d/10* · 🔥 %.0f kcal\n\n",
		keyboards.BandMarker(domain.BandForScore(r.HealthScore)), r.HealthScore, r.Calories)
	fmt.Fprintf(&b, "🥩 Protein: %.1f g (%.0f%%)\n", r.Protein, m.Protein)
	fmt.Fprintf(&b, "🍞 Carbs: %.1f g (%.0f%%)\n", r.Carbs, m.Carbs)
	fmt.Fprintf(&b, "🧈 Fat: %.1f g (%.0f%%)\n\n", r.Fat, m.Fat)
	fmt.Fprintf(&b, "%s\n", Escape(r.Summary))

	writeList(&b, "✅ *Pros*", r.Pros)
	writeList(&b, "⚠️ *Cons*", r.Cons)

	fmt.Fprintf(&b, "\n🫀 *Effect on body*\n%s\n", Escape(r.EffectOnBody))
	fmt.Fprintf(&b, "\n💡 *Is it good for %s?*\n%s", Escape(string(goal)), Escape(r.ConsumptionAdvice))
	return utils.Truncate(b.String(), maxMessageLength)
}

// ReportText renders the daily report.
func ReportText(r domain.DailyReportRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Daily report*\n\n")
	fmt.Fprintf(&b, "🔥 Total: %.0f kcal\n", r.TotalCalories)
	fmt.Fprintf(&b, "⚖️ Macro balance: %s\n", Escape(r.MacroBalance))
	fmt.Fprintf(&b, "%s Score: *%d/10*\n\n", keyboards.BandMarker(domain.BandForScore(r.Score)), r.Score)
	fmt.Fprintf(&b, "%s\n", Escape(r.Analysis))
	writeList(&b, "💡 *Recommendations*", r.Recommendations)
	return utils.Truncate(b.String(), maxMessageLength)
}

// GuideText renders a goal guide.
func GuideText(g domain.GoalGuideRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ *%s*\n\n%s\n\n", Escape(g.GoalName), Escape(g.Summary))

	for _, gl := range g.Guidelines {
		fmt.Fprintf(&b, "%s *%s*: %s\n", guidelineMarker(gl.Kind), Escape(gl.Title), Escape(gl.Description))
	}

	if len(g.Schedule) > 0 {
		b.WriteString("\n⏰ *Schedule*\n")
		for _, s := range g.Schedule {
			fmt.Fprintf(&b, "%s · *%s*: %s\n", Escape(s.Time), Escape(s.Activity), Escape(s.Description))
		}
	}
	return utils.Truncate(strings.TrimRight(b.String(), "\n"), maxMessageLength)
}

// ErrorText renders a failure message.
func ErrorText(message string) string {
	return "❌ " + Escape(message)
}

// Escape escapes the characters legacy Markdown treats as markup.
func Escape(s string) string {
	s = strings.ToValidUTF8(s, "")
	return markdownEscaper.Replace(s)
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"`", "\\`",
)

func guidelineMarker(k domain.GuidelineKind) string {
	switch k {
	case domain.GuidelineDo:
		return "✅"
	case domain.GuidelineDont:
		return "❌"
	default:
		return "💡"
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "• %s\n", Escape(item))
	}
}

func sendMarkdown(api Sender, chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup
	if _, err := api.Send(msg); err != nil {
		// If Markdown parsing fails, try sending without Markdown
		msg.ParseMode = ""
		if _, err := api.Send(msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

package keyboards

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/utils"
)

// Callback data
const (
	Scan          = "scan"
	SwitchCamera  = "scan_switch"
	CloseScanner  = "scan_close"
	DailyReport   = "report"
	GoalGuide     = "guide"
	Goals         = "goals"
	History       = "history"
	Theme         = "theme"
	MainMenuData  = "main_menu"
	GoalPrefix    = "goal:"
	HistoryPrefix = "history:"
)

const historyLabelLength = 40

// MainMenu creates the main menu keyboard
func MainMenu(theme domain.Theme) tgbotapi.InlineKeyboardMarkup {
	themeLabel := "🌙 Dark theme"
	if theme == domain.ThemeDark {
		themeLabel = "☀️ Light theme"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 Scan food", Scan),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Daily report", DailyReport),
			tgbotapi.NewInlineKeyboardButtonData("🗓️ Daily plan", GoalGuide),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Goal", Goals),
			tgbotapi.NewInlineKeyboardButtonData("🕘 History", History),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(themeLabel, Theme),
		),
	)
}

// ScannerMenu is shown while the camera waits for a photo.
func ScannerMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Switch camera", SwitchCamera),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Close", CloseScanner),
		),
	)
}

// ResultMenu follows a result, report or plan.
func ResultMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 Scan another", Scan),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
		),
	)
}

// ErrorMenu offers to go back and try again.
func ErrorMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Try again", MainMenuData),
		),
	)
}

// GoalMenu lists every goal, marking the current one.
func GoalMenu(current domain.Goal) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, g := range domain.Goals {
		label := string(g)
		if g == current {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, GoalPrefix+strconv.Itoa(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HistoryMenu has one button per past scan, newest first.
func HistoryMenu(entries []domain.HistoryEntry, loc *time.Location) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(HistoryLabel(e, loc), HistoryPrefix+e.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HistoryLabel is the button text for a history entry.
func HistoryLabel(e domain.HistoryEntry, loc *time.Location) string {
	return utils.Truncate(fmt.Sprintf("%s %s · %d/10 · %.0f kcal · %s",
		BandMarker(domain.ListBandForScore(e.HealthScore)),
		utils.FormatClock(e.Timestamp, loc),
		e.HealthScore,
		e.Calories,
		e.ProductName,
	), historyLabelLength)
}

// BandMarker is the coloured dot for a score band.
func BandMarker(b domain.ScoreBand) string {
	switch b {
	case domain.ScoreGood:
		return "🟢"
	case domain.ScoreMedium:
		return "🟡"
	default:
		return "🔴"
	}
}

// ParseGoal resolves goal callback data back to a goal.
func ParseGoal(data string) (domain.Goal, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(data, GoalPrefix))
	if err != nil || idx < 0 || idx >= len(domain.Goals) {
		return "", false
	}
	return domain.Goals[idx], true
}

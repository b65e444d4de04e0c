package menus

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

type recordingSender struct {
	sent      []tgbotapi.MessageConfig
	failFirst bool
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	s.sent = append(s.sent, msg)
	if s.failFirst && len(s.sent) == 1 {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	return tgbotapi.Message{}, nil
}

var lays = domain.NutritionRecord{
	ProductName:       "Lays_Classic",
	Calories:          160,
	Protein:           2,
	Carbs:             15,
	Fat:               3,
	HealthScore:       3,
	Summary:           "Salty *snack*.",
	Pros:              []string{"Tasty"},
	Cons:              []string{"High sodium"},
	EffectOnBody:      "Spikes sodium.",
	ConsumptionAdvice: "Rarely.",
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a\\_b \\*c\\* \\[d\\] \\`e\\`", Escape("a_b *c* [d] `e`"))
	assert.Equal(t, "ok", Escape("ok\xff"))
}

func TestResultText(t *testing.T) {
	text := ResultText(lays, domain.GoalWeightLoss)
	assert.Contains(t, text, `🍽️ *Lays\_Classic*`)
	assert.Contains(t, text, "🔴 Health score: *3/10* · 🔥 160 kcal")
	assert.Contains(t, text, "🍞 Carbs: 15.0 g (75%)")
	assert.Contains(t, text, `Salty \*snack\*.`)
	assert.Contains(t, text, "• High sodium")
	assert.Contains(t, text, "*Is it good for Weight Loss?*\nRarely.")
}

func TestResultTextSkipsEmptyLists(t *testing.T) {
	r := lays
	r.Pros = nil
	assert.NotContains(t, ResultText(r, domain.GoalGeneralHealth), "Pros")
}

func TestReportText(t *testing.T) {
	text := ReportText(domain.DailyReportRecord{
		TotalCalories:   1850,
		MacroBalance:    "Carb heavy",
		Score:           6,
		Analysis:        "Mostly fine.",
		Recommendations: []string{"More protein"},
	})
	assert.Contains(t, text, "🔥 Total: 1850 kcal")
	assert.Contains(t, text, "🟡 Score: *6/10*")
	assert.Contains(t, text, "• More protein")
}

func TestGuideText(t *testing.T) {
	text := GuideText(domain.GoalGuideRecord{
		GoalName: "Weight Loss",
		Summary:  "Eat less, move more.",
		Guidelines: []domain.Guideline{
			{Title: "Protein", Description: "Every meal", Kind: domain.GuidelineDo},
			{Title: "Soda", Description: "Skip it", Kind: domain.GuidelineDont},
			{Title: "Water", Description: "Drink first", Kind: domain.GuidelineTip},
		},
		Schedule: []domain.ScheduleItem{{Time: "07:00", Activity: "Breakfast", Description: "Eggs"}},
	})
	assert.Contains(t, text, "✅ *Protein*: Every meal")
	assert.Contains(t, text, "❌ *Soda*: Skip it")
	assert.Contains(t, text, "💡 *Water*: Drink first")
	assert.Contains(t, text, "07:00 · *Breakfast*: Eggs")
}

func TestSendSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		state controller.State
		want  string
	}{
		{"idle", controller.Idle{}, "NutriScan"},
		{"scanning", controller.Scanning{Facing: capture.FacingFront}, "Camera ready (front)"},
		{"result", controller.ShowingResult{Record: lays}, "Lays"},
		{"error", controller.Failed{Message: "Camera access denied."}, "❌ Camera access denied."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSender{}
			snap := controller.Snapshot{State: tt.state, Goal: domain.GoalGeneralHealth}
			require.NoError(t, SendSnapshot(s, 1, snap))
			require.Len(t, s.sent, 1)
			assert.Contains(t, s.sent[0].Text, tt.want)
			assert.Equal(t, tgbotapi.ModeMarkdown, s.sent[0].ParseMode)
		})
	}
}

func TestSendSnapshotWhileAnalyzingSendsNothing(t *testing.T) {
	s := &recordingSender{}
	require.NoError(t, SendSnapshot(s, 1, controller.Snapshot{State: controller.Analyzing{}}))
	assert.Empty(t, s.sent)
}

func TestSendFallsBackToPlainText(t *testing.T) {
	s := &recordingSender{failFirst: true}
	require.NoError(t, SendMainMenu(s, 1, controller.Snapshot{State: controller.Idle{}}))
	require.Len(t, s.sent, 2)
	assert.Empty(t, s.sent[1].ParseMode)
}

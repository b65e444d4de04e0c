package tui

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/config"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/services"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

type stubGenerator struct{}

func (stubGenerator) Name() string { return "stub" }

func (stubGenerator) Generate(context.Context, services.Request) (string, error) {
	return `{"productName": "Banana", "calories": 105, "protein": 1.3, "carbs": 27, "fat": 0.4,
		"healthScore": 8, "summary": "Fruit.", "pros": ["Potassium"], "cons": [],
		"effectOnBody": "Steady energy.", "consumptionAdvice": "Daily."}`, nil
}

func newTestModel(t *testing.T) (Model, *capture.FrameDevice) {
	t.Helper()
	cfg := &config.Config{AI: config.AIConfig{Timeout: time.Second}, ProgressInterval: time.Second}
	a := app.New(cfg, storage.NewMemoryStore(), stubGenerator{}, nil)
	t.Cleanup(func() { a.Close() })

	frames := capture.NewFrameDevice()
	sess := a.NewSession(context.Background(), "tui:", frames)
	t.Cleanup(sess.Controller.Close)
	return NewModel(context.Background(), sess.Controller, time.Second, time.UTC), frames
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends msg and, when it yields an operation, runs it and feeds the
// result back.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	if done, ok := cmd().(opDoneMsg); ok {
		updated, _ = m.Update(done)
		m = updated.(Model)
	}
	return m
}

// openSearch focuses the search box without running the cursor blink command.
func openSearch(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(keyRunes("/"))
	return updated.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		updated, _ := m.Update(keyRunes(string(r)))
		m = updated.(Model)
	}
	return m
}

func TestInitSchedulesTick(t *testing.T) {
	m, _ := newTestModel(t)
	assert.NotNil(t, m.Init())
}

func TestSearchClearsInputOnSuccess(t *testing.T) {
	m, _ := newTestModel(t)

	m = openSearch(t, m)
	assert.Equal(t, modeSearch, m.mode)
	m = typeText(t, m, "banana")
	assert.Equal(t, "banana", m.input.Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, controller.KindShowingResult, m.snap.State.Kind())
	assert.Empty(t, m.input.Value())
	assert.Equal(t, modeMenu, m.mode)
	assert.Contains(t, m.View(), "Banana")
	assert.Contains(t, m.View(), "Is it good for General Health?")
}

func TestBlankSearchDoesNothing(t *testing.T) {
	m, _ := newTestModel(t)
	m = openSearch(t, m)
	m = typeText(t, m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestScanCaptureFlow(t *testing.T) {
	m, frames := newTestModel(t)

	m = press(t, m, keyRunes("s"))
	require.Equal(t, controller.KindScanning, m.snap.State.Kind())
	assert.Contains(t, m.View(), "rear")

	m = press(t, m, keyRunes("f"))
	assert.Contains(t, m.View(), "front")

	require.NoError(t, frames.Push(testImage()))
	m = press(t, m, keyRunes("c"))
	assert.Equal(t, controller.KindShowingResult, m.snap.State.Kind())
	assert.Len(t, m.snap.History, 1)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, controller.KindIdle, m.snap.State.Kind())
}

func TestScanDeniedShowsError(t *testing.T) {
	m, frames := newTestModel(t)
	frames.Deny()

	m = press(t, m, keyRunes("s"))
	assert.Equal(t, controller.KindError, m.snap.State.Kind())
	assert.Contains(t, m.View(), "Camera access denied.")
}

func TestDailyReportWithoutHistory(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyRunes("r"))
	assert.Contains(t, m.View(), controller.MsgNoRecentScans)
}

func TestGoalPicker(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, keyRunes("g"))
	assert.Equal(t, modeGoals, m.mode)
	assert.Contains(t, m.View(), "(current)")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, domain.GoalWeightGain, m.snap.Goal)
	assert.Equal(t, modeMenu, m.mode)
}

func TestHistoryOpen(t *testing.T) {
	m, _ := newTestModel(t)
	m = openSearch(t, m)
	m = typeText(t, m, "banana")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m = press(t, m, keyRunes("h"))
	assert.Contains(t, m.View(), "Banana")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	res, ok := m.snap.State.(controller.ShowingResult)
	require.True(t, ok)
	assert.Equal(t, m.snap.History[0].ID, res.EntryID)
}

func TestThemeToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyRunes("t"))
	assert.Equal(t, domain.ThemeDark, m.snap.Theme)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(keyRunes("q"))
	assert.True(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, updated.(Model).View())
}

func TestBusyShowsProgress(t *testing.T) {
	m, _ := newTestModel(t)
	m.snap = controller.Snapshot{
		State:    controller.Analyzing{},
		Busy:     true,
		Progress: controller.Progress{Percent: 42, Stage: controller.StageNutrients},
		Goal:     domain.GoalGeneralHealth,
	}
	view := m.View()
	assert.Contains(t, view, controller.StageNutrients)
	assert.Contains(t, view, "42%")

	_, cmd := m.Update(keyRunes("s"))
	assert.Nil(t, cmd, "keys are ignored while busy")
}

func TestHintForControllerErrors(t *testing.T) {
	assert.Equal(t, "Still working on the previous request.", hint(controller.ErrBusy))
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

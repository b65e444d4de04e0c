// Package tui is a terminal front end over one controller session.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	apperrors "github.com/vladimiradmaev/nutriscan/internal/errors"
)

type mode int

const (
	modeMenu mode = iota
	modeSearch
	modeGoals
	modeHistory
)

// Operations run in the background.
const (
	opScan    = "scan"
	opFlip    = "flip"
	opCapture = "capture"
	opSearch  = "search"
	opReport  = "report"
	opGuide   = "guide"
	opOpen    = "open"
	opReset   = "reset"
	opGoal    = "goal"
	opTheme   = "theme"
	opCancel  = "cancel"
)

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     *controller.Controller
	interval time.Duration
	loc      *time.Location

	snap   controller.Snapshot
	mode   mode
	cursor int
	notice string
	width  int

	input    textinput.Model
	bar      progress.Model
	quitting bool
}

// Message types
type tickMsg time.Time

type opDoneMsg struct {
	op  string
	err error
}

// NewModel creates a model over ctrl, polling it every interval.
func NewModel(ctx context.Context, ctrl *controller.Controller, interval time.Duration, loc *time.Location) Model {
	input := textinput.New()
	input.Placeholder = "Product name, e.g. Lays Classic"
	input.CharLimit = 120
	input.Width = 40

	if loc == nil {
		loc = time.Local
	}

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		interval: interval,
		loc:      loc,
		snap:     ctrl.Snapshot(),
		input:    input,
		bar: progress.New(
			progress.WithGradient("#34d399", "#10b981"),
			progress.WithWidth(40),
		),
	}
}

// Init starts polling.
func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// run executes a blocking controller call off the UI loop.
func run(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick(m.interval)

	case opDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.notice = hint(msg.err)
			return m, nil
		}
		m.notice = ""
		if msg.op == opSearch && m.snap.State.Kind() == controller.KindShowingResult {
			m.input.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeGoals, modeHistory:
			return m.updateList(msg)
		}
		return m.updateMenu(msg)
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.snap.Busy {
		return m, nil
	}

	kind := m.snap.State.Kind()
	if kind == controller.KindScanning {
		switch key {
		case "c", "enter", " ":
			return m, run(opCapture, func() error { return m.ctrl.Capture(m.ctx) })
		case "f":
			return m, run(opFlip, func() error { return m.ctrl.ToggleCamera(m.ctx) })
		case "esc":
			return m, run(opCancel, m.ctrl.CancelScan)
		}
		return m, nil
	}

	switch key {
	case "s":
		return m, run(opScan, func() error { return m.fromIdle(func() error { return m.ctrl.StartScan(m.ctx) }) })
	case "/":
		m.mode = modeSearch
		return m, m.input.Focus()
	case "r":
		return m, run(opReport, func() error { return m.fromIdle(func() error { return m.ctrl.GenerateDailyReport(m.ctx) }) })
	case "p":
		return m, run(opGuide, func() error { return m.fromIdle(func() error { return m.ctrl.GenerateGoalGuide(m.ctx) }) })
	case "g":
		m.mode = modeGoals
		m.cursor = goalIndex(m.snap.Goal)
		return m, nil
	case "h":
		m.mode = modeHistory
		m.cursor = 0
		return m, nil
	case "t":
		return m, run(opTheme, func() error { return m.ctrl.ToggleTheme(m.ctx) })
	case "esc":
		return m, run(opReset, m.ctrl.Reset)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeMenu
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		query := m.input.Value()
		if strings.TrimSpace(query) == "" {
			return m, nil
		}
		m.mode = modeMenu
		m.input.Blur()
		return m, run(opSearch, func() error {
			return m.fromIdle(func() error { return m.ctrl.Search(m.ctx, query) })
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := len(domain.Goals)
	if m.mode == modeHistory {
		size = len(m.snap.History)
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = modeMenu
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < size-1 {
			m.cursor++
		}
	case "enter":
		if size == 0 {
			m.mode = modeMenu
			return m, nil
		}
		selected := m.mode
		m.mode = modeMenu
		if selected == modeGoals {
			goal := domain.Goals[m.cursor]
			return m, run(opGoal, func() error { return m.ctrl.SetGoal(m.ctx, goal) })
		}
		id := m.snap.History[m.cursor].ID
		return m, run(opOpen, func() error { return m.fromIdle(func() error { return m.ctrl.OpenHistory(id) }) })
	}
	return m, nil
}

// fromIdle returns to Idle when needed and then runs fn.
func (m Model) fromIdle(fn func() error) error {
	if m.ctrl.Snapshot().State.Kind() != controller.KindIdle {
		if err := m.ctrl.Reset(); err != nil {
			return err
		}
	}
	return fn()
}

func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	if m.mode == modeHistory && m.cursor >= len(m.snap.History) {
		m.cursor = max(len(m.snap.History)-1, 0)
	}
}

func goalIndex(g domain.Goal) int {
	for i, goal := range domain.Goals {
		if goal == g {
			return i
		}
	}
	return 0
}

func hint(err error) string {
	switch {
	case errors.Is(err, controller.ErrBusy):
		return "Still working on the previous request."
	case errors.Is(err, controller.ErrEntryNotFound):
		return "That scan is no longer in history."
	case errors.Is(err, controller.ErrInvalidTransition):
		return "Not available right now."
	default:
		return apperrors.UserMessage(err)
	}
}

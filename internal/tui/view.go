package tui

import (
	"fmt"
	"strings"

	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/utils"
)

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := newStyles(m.snap.Theme)
	var b strings.Builder

	b.WriteString(st.header.Render("NutriScan"))
	b.WriteString(" " + st.label.Render("Goal: ") + st.value.Render(string(m.snap.Goal)))
	b.WriteString("\n\n")

	switch {
	case m.snap.Busy:
		b.WriteString(m.renderProgress(st))
	case m.mode == modeSearch:
		b.WriteString(st.section.Render("Search") + "\n" + m.input.View())
	case m.mode == modeGoals:
		b.WriteString(m.renderGoals(st))
	case m.mode == modeHistory:
		b.WriteString(m.renderHistory(st))
	default:
		b.WriteString(m.renderState(st))
	}

	if m.notice != "" {
		b.WriteString("\n\n" + st.poor.Render(m.notice))
	}
	b.WriteString("\n\n" + m.renderFooter(st))
	return st.container.Render(b.String())
}

func (m Model) renderProgress(st styles) string {
	p := m.snap.Progress
	return fmt.Sprintf("%s\n%s %s",
		st.value.Render(p.Stage),
		m.bar.ViewAs(p.Percent/100),
		st.dim.Render(fmt.Sprintf("%.0f%%", p.Percent)),
	)
}

func (m Model) renderState(st styles) string {
	switch s := m.snap.State.(type) {
	case controller.Scanning:
		camera := "rear"
		if s.Facing == capture.FacingFront {
			camera = "front"
		}
		return st.section.Render("Scanner") + "\n" +
			st.label.Render("Camera: ") + st.value.Render(camera) + "\n" +
			st.dim.Render("Point the camera at the food or its label, then capture.")
	case controller.ShowingResult:
		return renderResult(st, s.Record, m.snap.Goal)
	case controller.ShowingDailyReport:
		return renderReport(st, s.Report)
	case controller.ShowingGoalGuide:
		return renderGuide(st, s.Guide)
	case controller.Failed:
		return st.poor.Render("Error: "+s.Message) + "\n" + st.dim.Render("Press esc to go back.")
	default:
		return st.section.Render("Welcome") + "\n" +
			"Scan a product, search by name or check how your day went.\n" +
			st.dim.Render(fmt.Sprintf("%d scans in history", len(m.snap.History)))
	}
}

func renderResult(st styles, r domain.NutritionRecord, goal domain.Goal) string {
	var b strings.Builder
	m := r.Macros()
	band := st.band(domain.BandForScore(r.HealthScore))

	b.WriteString(st.value.Render(r.ProductName) + "\n")
	b.WriteString(band.Render(fmt.Sprintf("%d/10", r.HealthScore)) + "  " +
		st.label.Render(fmt.Sprintf("%.0f kcal", r.Calories)) + "\n\n")
	fmt.Fprintf(&b, "Protein %.1fg (%.0f%%)  Carbs %.1fg (%.0f%%)  Fat %.1fg (%.0f%%)\n\n",
		r.Protein, m.Protein, r.Carbs, m.Carbs, r.Fat, m.Fat)
	b.WriteString(r.Summary + "\n")

	writeList(&b, st, "Pros", r.Pros)
	writeList(&b, st, "Cons", r.Cons)

	b.WriteString(st.section.Render("Effect on body") + "\n" + r.EffectOnBody + "\n")
	b.WriteString(st.section.Render(fmt.Sprintf("Is it good for %s?", goal)) + "\n" + r.ConsumptionAdvice)
	return b.String()
}

func renderReport(st styles, r domain.DailyReportRecord) string {
	var b strings.Builder
	band := st.band(domain.BandForScore(r.Score))

	b.WriteString(st.section.Render("Daily report") + "\n")
	b.WriteString(st.label.Render("Total: ") + st.value.Render(fmt.Sprintf("%.0f kcal", r.TotalCalories)) + "\n")
	b.WriteString(st.label.Render("Macro balance: ") + r.MacroBalance + "\n")
	b.WriteString(st.label.Render("Score: ") + band.Render(fmt.Sprintf("%d/10", r.Score)) + "\n\n")
	b.WriteString(r.Analysis + "\n")
	writeList(&b, st, "Recommendations", r.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func renderGuide(st styles, g domain.GoalGuideRecord) string {
	var b strings.Builder
	b.WriteString(st.section.Render(g.GoalName) + "\n" + g.Summary + "\n")

	for _, gl := range g.Guidelines {
		marker := st.good.Render("do  ")
		switch gl.Kind {
		case domain.GuidelineDont:
			marker = st.poor.Render("dont")
		case domain.GuidelineTip:
			marker = st.medium.Render("tip ")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", marker, st.value.Render(gl.Title), gl.Description)
	}

	if len(g.Schedule) > 0 {
		b.WriteString(st.section.Render("Schedule") + "\n")
		for _, s := range g.Schedule {
			fmt.Fprintf(&b, "%s  %s: %s\n", st.label.Render(s.Time), st.value.Render(s.Activity), s.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderGoals(st styles) string {
	var b strings.Builder
	b.WriteString(st.section.Render("Choose a goal") + "\n")
	for i, g := range domain.Goals {
		line := "  " + string(g)
		if g == m.snap.Goal {
			line += " (current)"
		}
		if i == m.cursor {
			line = st.selected.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHistory(st styles) string {
	if len(m.snap.History) == 0 {
		return st.section.Render("History") + "\n" + st.dim.Render("No scans yet.")
	}

	var b strings.Builder
	b.WriteString(st.section.Render("History") + "\n")
	for i, e := range m.snap.History {
		score := st.band(domain.ListBandForScore(e.HealthScore)).Render(fmt.Sprintf("%2d/10", e.HealthScore))
		line := fmt.Sprintf("%s %s %s %s",
			utils.FormatClock(e.Timestamp, m.loc),
			score,
			st.dim.Render(fmt.Sprintf("%5.0f kcal", e.Calories)),
			utils.Truncate(e.ProductName, 32),
		)
		if i == m.cursor {
			line = st.selected.Render(">") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFooter(st styles) string {
	var keys [][2]string
	switch {
	case m.snap.Busy:
		keys = [][2]string{{"q", "quit"}}
	case m.mode == modeSearch:
		keys = [][2]string{{"enter", "analyse"}, {"esc", "back"}}
	case m.mode == modeGoals || m.mode == modeHistory:
		keys = [][2]string{{"↑/↓", "move"}, {"enter", "select"}, {"esc", "back"}}
	case m.snap.State.Kind() == controller.KindScanning:
		keys = [][2]string{{"c", "capture"}, {"f", "flip"}, {"esc", "close"}}
	default:
		keys = [][2]string{{"s", "scan"}, {"/", "search"}, {"r", "report"}, {"p", "plan"},
			{"g", "goal"}, {"h", "history"}, {"t", "theme"}, {"q", "quit"}}
		if m.snap.State.Kind() != controller.KindIdle {
			keys = append([][2]string{{"esc", "back"}}, keys...)
		}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, st.footerKey.Render("["+k[0]+"]")+" "+st.dim.Render(k[1]))
	}
	return strings.Join(parts, "  ")
}

func writeList(b *strings.Builder, st styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(st.section.Render(title) + "\n")
	for _, item := range items {
		b.WriteString("  • " + item + "\n")
	}
}

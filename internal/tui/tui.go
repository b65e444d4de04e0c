package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
)

// Run shows the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *controller.Controller, interval time.Duration) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, interval, time.Local), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}

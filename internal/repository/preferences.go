package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

const (
	GoalKey  = "nutriscan_goal"
	ThemeKey = "nutriscan_theme"
)

// PreferencesRepository persists the selected goal and theme as plain strings.
type PreferencesRepository struct {
	store  storage.Store
	logger *slog.Logger
}

// NewPreferencesRepository creates a preferences repository over store
func NewPreferencesRepository(store storage.Store, logger *slog.Logger) *PreferencesRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesRepository{store: store, logger: logger}
}

// Goal returns the stored goal, or the default when missing or invalid
func (r *PreferencesRepository) Goal(ctx context.Context) domain.Goal {
	raw, found := r.read(ctx, GoalKey)
	if !found {
		return domain.DefaultGoal
	}
	goal, err := domain.ParseGoal(raw)
	if err != nil {
		r.logger.Warn("Stored goal is invalid, using default", "value", raw)
		return domain.DefaultGoal
	}
	return goal
}

// SetGoal persists goal
func (r *PreferencesRepository) SetGoal(ctx context.Context, goal domain.Goal) error {
	if _, err := domain.ParseGoal(string(goal)); err != nil {
		return err
	}
	if err := r.store.Set(ctx, GoalKey, string(goal)); err != nil {
		return fmt.Errorf("failed to persist goal: %w", err)
	}
	return nil
}

// Theme returns the stored theme, or light when missing or invalid
func (r *PreferencesRepository) Theme(ctx context.Context) domain.Theme {
	raw, found := r.read(ctx, ThemeKey)
	if !found {
		return domain.ThemeLight
	}
	theme, err := domain.ParseTheme(raw)
	if err != nil {
		r.logger.Warn("Stored theme is invalid, using light", "value", raw)
		return domain.ThemeLight
	}
	return theme
}

// SetTheme persists theme
func (r *PreferencesRepository) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := r.store.Set(ctx, ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) read(ctx context.Context, key string) (string, bool) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Failed to read preference, using default", "key", key, "error", err)
		return "", false
	}
	return raw, found
}
